package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/parquet/file"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/syntax"
	"github.com/sdllogs/sdllogs/internal/trace"
)

func sampleBuffer(n int) *buffer.Buffer {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "TRACE [05 Mar 2020 10:11:12,345][0x7f0a1b2c3d4e][Connection] /home/ci/sdl_core/src/components/tcp.cc:120 SendData: Enter"
	}
	return buffer.FromLines(lines)
}

func TestWriteParquet_RowCount(t *testing.T) {
	tests := []struct {
		name string
		rows int
	}{
		{"empty", 0},
		{"single batch", 3},
		{"spans batches", batchSize + 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			n, err := WriteParquet(&out, trace.Parse(sampleBuffer(tt.rows), syntax.Default()))
			if err != nil {
				t.Fatalf("WriteParquet returned error: %v", err)
			}
			if n != tt.rows {
				t.Fatalf("WriteParquet wrote %d rows, want %d", n, tt.rows)
			}

			pf, err := file.NewParquetReader(bytes.NewReader(out.Bytes()))
			if err != nil {
				t.Fatalf("NewParquetReader: %v", err)
			}
			defer pf.Close()
			if got := pf.NumRows(); got != int64(tt.rows) {
				t.Fatalf("file has %d rows, want %d", got, tt.rows)
			}
			if got := pf.MetaData().Schema.NumColumns(); got != Schema().NumFields() {
				t.Fatalf("file has %d columns, want %d", got, Schema().NumFields())
			}
		})
	}
}

func TestUpload_FileBucket(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	if err := Upload(ctx, "file://"+dir, Key("/var/log/core.log"), bytes.NewReader([]byte("PAR1"))); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "core.log.parquet"))
	if err != nil {
		t.Fatalf("read uploaded blob: %v", err)
	}
	if string(data) != "PAR1" {
		t.Fatalf("blob = %q, want %q", data, "PAR1")
	}
}

func TestUpload_MemBucket(t *testing.T) {
	if err := Upload(context.Background(), "mem://", "a.parquet", bytes.NewReader(nil)); err != nil {
		t.Fatalf("Upload to mem:// returned error: %v", err)
	}
	if err := Upload(context.Background(), "", "a.parquet", bytes.NewReader(nil)); err == nil {
		t.Fatalf("Upload without a bucket returned nil error")
	}
}
