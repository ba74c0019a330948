package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdllogs/sdllogs/internal/jump"
)

func newJumpCommand(g *globals) *cobra.Command {
	var line int
	var sourcePath string
	cmd := &cobra.Command{
		Use:   "jump FILE --line N",
		Short: "Resolve the source reference of a trace line to a local file",
		Long: `Prints "path:line" for the source location written in line N, ready to
pass to an editor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := g.load(args[0])
			if err != nil {
				return err
			}
			idx, err := lineArg(buf, line)
			if err != nil {
				return err
			}
			ref, err := jump.ParseReference(buf.LineText(idx), g.env.Config.SourceMarker)
			if err != nil {
				return err
			}
			root := sourcePath
			if root == "" {
				root = g.env.Config.SourcePath
			}
			loc, err := jump.Resolver{SourcePath: root}.Resolve(ref)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s:%d\n", loc.Path, loc.Line)
			return err
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", 0, "line of FILE holding the reference (1-based)")
	cmd.Flags().StringVar(&sourcePath, "source-path", "", "local source checkout (default from config)")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}
