// Command edufin analyzes facility financial statements from the command
// line: batch analysis with XLSX/DOCX reports, registry summaries,
// name matching and raw statement extraction.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/edufin/internal/config"
	"github.com/dgallion1/edufin/internal/registry"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose  bool
	registry string
	powiat   string
	gmina    string
	cfg      config.Config
}

func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) filter() registry.Filter {
	return registry.Filter{Powiat: o.powiat, Gmina: o.gmina}
}

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{cfg: config.Load()}

	root := &cobra.Command{
		Use:           "edufin",
		Short:         "Financial statement analysis for municipal schools and preschools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")
	root.PersistentFlags().StringVar(&opts.registry, "registry", opts.cfg.RegistryFile, "enrollment registry (.xlsx or .csv)")
	root.PersistentFlags().StringVar(&opts.powiat, "powiat", opts.cfg.RegistryPowiat, "registry county filter")
	root.PersistentFlags().StringVar(&opts.gmina, "gmina", opts.cfg.RegistryGmina, "registry municipality filter")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newRegistryCmd(opts),
		newMatchCmd(opts),
		newExtractCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red.Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}
