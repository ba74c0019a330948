package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sdllogs/sdllogs/internal/syntax"
)

func newSyntaxCommand(g *globals) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "syntax",
		Short: "Print the trace patterns in use",
		Long: `Prints every pattern of the active syntax file. With --check only reports
whether the file defines all patterns the analyses need.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set := g.env.Syntax
			w := cmd.OutOrStdout()
			if err := set.Require(syntax.Names...); err != nil {
				return fmt.Errorf("%s: %w", set.Source(), err)
			}
			if check {
				color.New(color.FgGreen).Fprintf(w, "ok: %s defines %d patterns\n", set.Source(), len(syntax.Names))
				return nil
			}

			name := color.New(color.FgCyan)
			fmt.Fprintf(w, "# %s\n", set.Source())
			for _, n := range set.Names() {
				name.Fprintf(w, "%-14s", n)
				fmt.Fprintf(w, " %s\n", set.Pattern(n))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "only validate the syntax file")
	return cmd
}
