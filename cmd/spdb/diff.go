package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/scott-cotton/cli"
	"github.com/signadot/spdb/encode"
	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/libdiff"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, err := cfg.Reg.Load(args[0])
	if err != nil {
		return fmt.Errorf("error loading %s: %w", args[0], err)
	}
	b, err := cfg.Reg.Load(args[1])
	if err != nil {
		return fmt.Errorf("error loading %s: %w", args[1], err)
	}
	cs, err := libdiff.Diff(a, b)
	if err != nil {
		return err
	}
	if cfg.Reverse {
		cs = libdiff.Reverse(cs)
	}
	if err := writeChanges(cc.Out, cs, cfg.useColor(cc.Out)); err != nil {
		return err
	}
	if len(cs) != 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func writeChanges(w io.Writer, cs []libdiff.Change, colored bool) error {
	c := encode.NewColors()
	if !colored {
		c.Map = nil
	}
	var opts []encode.EncodeOption
	if colored {
		opts = append(opts, encode.EncodeColors(c))
	}
	for _, ch := range cs {
		var line string
		switch ch.Op {
		case libdiff.Insert:
			line = c.Color(encode.TypeOf(ch.To), encode.InsertColor, "+ "+ch.Path.String()+":") +
				value(ch.To, opts)
		case libdiff.Delete:
			line = c.Color(encode.TypeOf(ch.From), encode.DeleteColor, "- "+ch.Path.String()+":") +
				value(ch.From, opts)
		case libdiff.Replace:
			line = "~ " + ch.Path.String() + ":" + value(ch.From, opts) + " ->" + value(ch.To, opts)
		case libdiff.Edit:
			line = "~ " + ch.Path.String() + ": " + editText(c, ch.Text)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// value encodes a changed value on the line of its change, indenting
// containers below it.
func value(e *entry.Entry, opts []encode.EncodeOption) string {
	s := encode.MustString(e, opts...)
	if !strings.Contains(s, "\n") && !hasChildren(e) {
		return " " + s
	}
	return "\n    " + strings.ReplaceAll(s, "\n", "\n    ")
}

func hasChildren(e *entry.Entry) bool {
	switch v := e.Value().(type) {
	case entry.ObjectValue:
		return v.Object.Size() > 0
	case entry.ArrayValue:
		return v.Array.Size() > 0
	}
	return false
}

func editText(c *encode.Colors, diffs []diffpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			b.WriteString(c.Color(encode.StringType, encode.InsertColor, "{+"+d.Text+"+}"))
		case diffpatch.DiffDelete:
			b.WriteString(c.Color(encode.StringType, encode.DeleteColor, "[-"+d.Text+"-]"))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
