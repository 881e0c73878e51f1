package main

import (
	"fmt"
	"strings"

	"github.com/scott-cotton/cli"
	"github.com/signadot/spdb/entry"
)

func set(cfg *SetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Set.Parse(cc, args)
	if err != nil {
		cfg.Set.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: set requires a uri and at least one path=value", cli.ErrUsage)
	}
	if cfg.String && cfg.Ref {
		return fmt.Errorf("%w: -s and -ref exclude each other", cli.ErrUsage)
	}
	uri := args[0]
	root, err := cfg.Reg.Load(uri)
	if err != nil {
		return err
	}
	for _, arg := range args[1:] {
		p, v, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%w: %q is not path=value", cli.ErrUsage, arg)
		}
		if err := cfg.setOne(root, p, v); err != nil {
			return fmt.Errorf("error setting %s: %w", p, err)
		}
	}
	if err := cfg.Reg.Sync(root, uri); err != nil {
		return err
	}
	cfg.Log.Info("saved", "uri", uri, "set", len(args)-1)
	return nil
}

// setOne stores v at p, replacing a leaf which is already there.
func (cfg *SetConfig) setOne(root *entry.Entry, p, v string) error {
	e, err := root.InsertPath(p)
	if err != nil {
		return err
	}
	if cfg.Ref {
		t, err := root.AtPath(v)
		if err != nil {
			return err
		}
		if e.Kind() != entry.ReferenceTag {
			e.Clear()
		}
		return e.SetReference(t)
	}
	s := entry.ParseScalar(v)
	if cfg.String {
		s = entry.Str(v)
	}
	if k := e.Kind(); k != entry.ScalarTag && k != entry.EmptyTag && k != entry.ReferenceTag {
		e.Clear()
	}
	return e.SetScalar(s)
}

func rm(cfg *RmConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Rm.Parse(cc, args)
	if err != nil {
		cfg.Rm.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: rm requires a uri and at least one path", cli.ErrUsage)
	}
	uri := args[0]
	root, err := cfg.Reg.Load(uri)
	if err != nil {
		return err
	}
	for _, p := range args[1:] {
		if err := root.ErasePath(p); err != nil {
			return fmt.Errorf("error erasing %s: %w", p, err)
		}
	}
	return cfg.Reg.Sync(root, uri)
}
