package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/signadot/spdb/backend"
	"github.com/signadot/spdb/config"
	"github.com/signadot/spdb/encode"
)

type MainConfig struct {
	ConfigFile string `cli:"name=config desc='configuration file (yaml)'"`
	Color      string `cli:"name=color desc='color output: auto, always or never'"`
	LogLevel   string `cli:"name=log desc='log level: debug, info, warn or error'"`
	Root       string `cli:"name=root desc='directory relative file paths are read from'"`
	Gops       bool   `cli:"name=gops desc='start a gops diagnostics agent'"`

	File *config.Config
	Reg  *backend.Registry
	Log  *slog.Logger

	Main *cli.Command
}

// encOpts returns the encoder options for output to w.
func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	if !cfg.useColor(w) {
		return nil
	}
	return []encode.EncodeOption{encode.EncodeColors(encode.NewColors())}
}

func (cfg *MainConfig) useColor(w io.Writer) bool {
	switch cfg.File.Color {
	case config.ColorNever:
		return false
	case config.ColorAlways:
		color.NoColor = false
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type GetConfig struct {
	*MainConfig
	Depth int `cli:"name=depth desc='elide containers nested deeper than this'"`

	Get *cli.Command
}

type SetConfig struct {
	*MainConfig
	String bool `cli:"name=s desc='store values as strings'"`
	Ref    bool `cli:"name=ref desc='values are paths to refer to'"`

	Set *cli.Command
}

type RmConfig struct {
	*MainConfig

	Rm *cli.Command
}

type DumpConfig struct {
	*MainConfig
	Depth  int `cli:"name=depth desc='elide containers nested deeper than this'"`
	Blocks int `cli:"name=blocks desc='block elements to print, negative for all'"`

	Dump *cli.Command
}

type ListConfig struct {
	*MainConfig

	List *cli.Command
}

type ConvertConfig struct {
	*MainConfig

	Convert *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Reverse bool `cli:"name=r desc='reverse the diff'"`

	Diff *cli.Command
}

type PatchConfig struct {
	*MainConfig
	Merge  bool `cli:"name=merge desc='the patch is a JSON merge patch'"`
	DryRun bool `cli:"name=n desc='print the changes without saving'"`

	Patch *cli.Command
}

type BackendsConfig struct {
	*MainConfig

	Backends *cli.Command
}
