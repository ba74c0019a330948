package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdllogs/sdllogs/internal/trace"
)

func newTreeCommand(g *globals) *cobra.Command {
	var (
		thread    string
		line      int
		signature string
		indent    string
	)
	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the call tree of one thread",
		Long: `Keeps the lines of one thread and indents them by call depth. The thread
is given by its address (--thread 0x7f0a1b2c3d4e), by a line of the file
that belongs to it (--line N), or by any literal text (--signature).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := g.load(args[0])
			if err != nil {
				return err
			}

			sig := signature
			switch {
			case thread != "":
				sig = threadTag(thread)
			case line > 0:
				idx, err := lineArg(buf, line)
				if err != nil {
					return err
				}
				tag, ok := trace.ThreadTag(buf.LineText(idx), g.env.Syntax)
				if !ok {
					return fmt.Errorf("line %d has no thread address", line)
				}
				sig = tag
			}
			if sig == "" {
				return errors.New("one of --thread, --line or --signature is required")
			}

			unit := indent
			if unit == "" {
				unit = g.env.Config.IndentUnit
			}
			if unit == "" {
				unit = trace.DefaultIndentUnit
			}
			tree, err := trace.CallTree(buf, sig, g.env.Syntax, unit)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), tree.String())
			return err
		},
	}
	cmd.Flags().StringVarP(&thread, "thread", "t", "", "thread address, with or without brackets")
	cmd.Flags().IntVarP(&line, "line", "l", 0, "use the thread of this line (1-based)")
	cmd.Flags().StringVarP(&signature, "signature", "s", "", "literal text selecting the lines")
	cmd.Flags().StringVar(&indent, "indent", "", "indent per call level (default from config)")
	cmd.MarkFlagsMutuallyExclusive("thread", "line", "signature")
	return cmd
}

// threadTag brackets a bare thread address the way traces print it.
func threadTag(thread string) string {
	thread = strings.TrimSpace(thread)
	if strings.HasPrefix(thread, "[") {
		return thread
	}
	return "[" + thread + "]"
}
