package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdllogs/sdllogs/internal/filter"
	"github.com/sdllogs/sdllogs/internal/fold"
	"github.com/sdllogs/sdllogs/internal/ignition"
	"github.com/sdllogs/sdllogs/internal/logtail"
)

func newFilterCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "filter FILE PATTERN",
		Short: "Print the lines matching a regular expression",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := g.load(args[0])
			if err != nil {
				return err
			}
			out, err := filter.Lines(buf, args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out.String())
			return err
		},
	}
}

func newFoldCommand(g *globals) *cobra.Command {
	var placeholder string
	enabled := make(map[fold.Category]*bool, len(fold.Categories))

	cmd := &cobra.Command{
		Use:   "fold FILE",
		Short: "Print a log with timestamps, threads, components or path prefixes hidden",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := g.load(args[0])
			if err != nil {
				return err
			}
			var state fold.State
			for c, on := range enabled {
				state.Set(c, *on)
			}
			regions := fold.Regions(buf, g.env.Syntax, state)
			_, err = fmt.Fprint(cmd.OutOrStdout(), fold.Render(buf, regions, placeholder))
			return err
		},
	}
	for _, c := range fold.Categories {
		enabled[c] = cmd.Flags().Bool(c.String(), false, "hide "+c.String()+" fields")
	}
	cmd.Flags().StringVar(&placeholder, "placeholder", "", "text shown in place of hidden fields")
	return cmd
}

func newIgnitionCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "ignition FILE",
		Short: "Print a log with a separator before every application start",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := logtail.Load(args[0], logtail.Options{MaxLines: g.env.Config.MaxLines})
			if err != nil {
				return err
			}
			out, err := ignition.Apply(buf, g.env.Syntax)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out.String())
			return err
		},
	}
}
