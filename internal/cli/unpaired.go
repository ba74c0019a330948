package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/trace"
)

type unpairedResult struct {
	path   string
	buf    *buffer.Buffer
	report trace.Report
}

func newUnpairedCommand(g *globals) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "unpaired FILE...",
		Short: "List Enter traces that have no matching Exit",
		Long: `Scans each file for Enter traces whose call never logs an Exit.
Files are scanned concurrently and reported in the order given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]unpairedResult, len(args))

			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.SetLimit(max(jobs, 1))
			for i, path := range args {
				eg.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					buf, err := g.load(path)
					if err != nil {
						return err
					}
					report, err := trace.FindUnpairedCalls(buf, g.env.Syntax)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					results[i] = unpairedResult{path: path, buf: buf, report: report}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}

			for _, r := range results {
				printUnpaired(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "files scanned at once")
	return cmd
}

func printUnpaired(w io.Writer, r unpairedResult) {
	header := color.New(color.Bold)
	bad := color.New(color.FgRed)
	good := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	n := len(r.report.Unpaired)
	switch {
	case n == 0:
		good.Fprintf(w, "%s: all calls paired\n", r.path)
	default:
		header.Fprintf(w, "%s: ", r.path)
		bad.Fprintf(w, "%d unpaired\n", n)
	}
	for _, u := range r.report.Unpaired {
		idx := r.buf.LineIndex(u.Start)
		fmt.Fprintf(w, "%7d  %s\n", idx+1, r.buf.LineText(idx))
	}
	if m := r.report.Malformed; m != nil {
		warn.Fprintf(w, "%7d  scan stopped: no call signature in %q\n", r.buf.LineIndex(m.Start)+1, r.buf.Text(*m))
	}
}
