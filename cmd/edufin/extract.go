package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dgallion1/edufin/internal/parser"
	"github.com/dgallion1/edufin/internal/resolver"
	"github.com/spf13/cobra"
)

func newExtractCmd(root *rootOptions) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Dump the labeled rows of one statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", parser.ErrSourceUnreadable, err)
			}
			opts := parser.Options{
				PDFFallbackRows:      root.cfg.PDFFallbackRows,
				PDFFallbackPdftotext: root.cfg.PDFFallbackPdftotext,
			}
			records, err := parser.ExtractFile(bytes.NewReader(data), args[0], opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !summary {
				for _, r := range records {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.Label, r.Prior.String(), r.Current.String())
				}
				return nil
			}

			catalog, err := resolver.CatalogOrDefault(root.cfg.CatalogFile)
			if err != nil {
				return err
			}
			s := resolver.BuildSummary(records, catalog)
			for _, field := range s.Fields {
				fmt.Fprintf(w, "%-32s %s\n", field, amount(s.Get(field)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print the resolved summary instead of the rows")
	return cmd
}
