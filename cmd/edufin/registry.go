package main

import (
	"fmt"
	"io"

	"github.com/dgallion1/edufin/internal/registry"
	"github.com/dgallion1/edufin/internal/report"
	"github.com/spf13/cobra"
)

func newRegistryCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Summaries of the school and preschool registry",
	}
	cmd.AddCommand(newRegistrySummaryCmd(root), newRegistryComplexesCmd(root))
	return cmd
}

func newRegistrySummaryCmd(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count facilities and pupils per kind in the county and the city",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := registry.Load(root.registry)
			if err != nil {
				return err
			}
			areas := registry.Areas(rows, root.filter())
			printAreas(cmd.OutOrStdout(), areas)

			f, err := report.RegistryWorkbook(areas)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(out); err != nil {
				return fmt.Errorf("save %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green.Sprint("Saved"), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "rejestr_podsumowanie.xlsx", "output workbook")
	return cmd
}

func printAreas(w io.Writer, areas []registry.Area) {
	for _, a := range areas {
		fmt.Fprintf(w, "%s (%d)\n", bold.Sprint(a.Label), len(a.Rows))
		for _, s := range registry.Summarize(a.Rows, a.Label) {
			fmt.Fprintf(w, "  %-24s %4d placówek  %6.0f uczniów  %5.0f oddziałów\n",
				cyan.Sprint(s.Kind), s.Facilities, s.Students, s.Classes)
		}
	}
}

func newRegistryComplexesCmd(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "complexes",
		Short: "List school and preschool complexes with their component enrollment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := registry.Load(root.registry)
			if err != nil {
				return err
			}
			complexes := registry.Complexes(root.filter().PowiatOnly().Apply(rows))
			w := cmd.OutOrStdout()
			for _, c := range complexes {
				computed := c.Computed()
				line := fmt.Sprintf("%s  %d składników, wyliczone %.0f", c.Parent.Name, len(c.Components), computed)
				if reported, ok := c.Reported().Get(); ok && reported != computed {
					line += yellow.Sprintf(", w rejestrze %.0f", reported)
				}
				fmt.Fprintln(w, line)
			}

			f, err := report.ComplexesWorkbook(complexes)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(out); err != nil {
				return fmt.Errorf("save %s: %w", out, err)
			}
			fmt.Fprintf(w, "%s %d complexes to %s\n", green.Sprint("Saved"), len(complexes), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "zespoly_szkolno_przedszkolne.xlsx", "output workbook")
	return cmd
}
