package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sdllogs/sdllogs/internal/export"
	"github.com/sdllogs/sdllogs/internal/trace"
)

func newExportCommand(g *globals) *cobra.Command {
	var out, bucket, key string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the parsed trace as Parquet",
		Long: `Parses every line into timestamp, thread, component, source, message and
kind columns and writes a zstd-compressed Parquet file. With --bucket the
result is stored in a blob bucket (file:// or mem://) instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bucket == "" && out == "" {
				bucket = g.env.Config.ExportBucket
			}
			if bucket == "" && out == "" {
				return errors.New("one of --out or --bucket is required (or set export_bucket in the config)")
			}

			buf, err := g.load(args[0])
			if err != nil {
				return err
			}
			records := trace.Parse(buf, g.env.Syntax)

			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				n, err := export.WriteParquet(f, records)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", n, out)
				return nil
			}

			var data bytes.Buffer
			n, err := export.WriteParquet(&data, records)
			if err != nil {
				return err
			}
			if key == "" {
				key = export.Key(args[0])
			}
			if err := export.Upload(cmd.Context(), bucket, key, &data); err != nil {
				return err
			}
			g.log.WithFields(logrus.Fields{"bucket": bucket, "key": key, "rows": n}).Info("export uploaded")
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "uploaded %d rows to %s/%s\n", n, bucket, key)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Parquet file to write")
	cmd.Flags().StringVar(&bucket, "bucket", "", "blob bucket URL (default from config)")
	cmd.Flags().StringVar(&key, "key", "", "object name in the bucket (default FILE.parquet)")
	cmd.MarkFlagsMutuallyExclusive("out", "bucket")
	return cmd
}
