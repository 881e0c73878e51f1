package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"
	"github.com/signadot/spdb/backend/all"
	"github.com/signadot/spdb/config"
)

func spdbMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	if err := cfg.setup(cc); err != nil {
		return err
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

// setup reads the config file, lets flags override it, and builds the
// logger and the backend registry.
func (cfg *MainConfig) setup(cc *cli.Context) error {
	file := config.DefaultConfig()
	if cfg.ConfigFile != "" {
		f, err := config.LoadConfig(cfg.ConfigFile)
		if err != nil {
			return err
		}
		file = f
	}
	if cfg.Color != "" {
		file.Color = cfg.Color
	}
	if cfg.LogLevel != "" {
		file.LogLevel = cfg.LogLevel
	}
	if cfg.Root != "" {
		file.Root = cfg.Root
	}
	if err := file.Validate(); err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	cfg.File = file
	level, _ := file.Level()
	cfg.Log = newLog(os.Stderr, level)

	opts := all.Options{Logger: cfg.Log}
	if file.Root != "" {
		opts.FS = osfs.New(file.Root)
	}
	reg, err := all.NewRegistry(opts)
	if err != nil {
		return err
	}
	for name, pats := range file.Associations {
		if err := reg.Associate(name, pats...); err != nil {
			return err
		}
	}
	cfg.Reg = reg

	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			fmt.Fprintf(cc.Out, "gops agent failed: %v\n", err)
		}
	}
	return nil
}
