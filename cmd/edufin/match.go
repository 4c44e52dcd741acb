package main

import (
	"fmt"

	"github.com/dgallion1/edufin/internal/facility"
	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/dgallion1/edufin/internal/registry"
	"github.com/spf13/cobra"
)

func newMatchCmd(root *rootOptions) *cobra.Command {
	var suggest int
	cmd := &cobra.Command{
		Use:   "match <name>",
		Short: "Show how a facility name is classified and matched in the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := registry.LoadIndex(root.registry, root.filter(), root.logger())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			id := facility.Classify(args[0])
			fmt.Fprintf(w, "key:        %s\n", id.Key)
			fmt.Fprintf(w, "category:   %s\n", cyan.Sprint(id.Category))
			fmt.Fprintf(w, "identifier: %s\n", orDash(id.Identifier))

			if n, ok := idx.Match(args[0]).Get(); ok {
				fmt.Fprintf(w, "enrollment: %s\n", green.Sprint(ledger.Some(n).String()))
				return nil
			}
			fmt.Fprintf(w, "enrollment: %s\n", red.Sprint("not found"))
			for _, s := range idx.Suggest(args[0], suggest) {
				fmt.Fprintf(w, "  did you mean %s\n", yellow.Sprint(s))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&suggest, "suggest", 5, "registry names to suggest when nothing matches")
	return cmd
}
