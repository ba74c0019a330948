package export

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

const parquetContentType = "application/vnd.apache.parquet"

// Key derives the object name for an exported log, e.g. core.log.parquet.
func Key(logPath string) string {
	return filepath.Base(logPath) + ".parquet"
}

// Upload copies r to key in the bucket at bucketURL (file:// or mem://).
func Upload(ctx context.Context, bucketURL, key string, r io.Reader) error {
	if strings.TrimSpace(bucketURL) == "" {
		return fmt.Errorf("upload %s: no bucket configured", key)
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return fmt.Errorf("open blob bucket %s: %w", bucketURL, err)
	}
	defer bucket.Close()

	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: parquetContentType})
	if err != nil {
		return fmt.Errorf("create blob writer: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write blob data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish blob %s: %w", key, err)
	}
	return nil
}
