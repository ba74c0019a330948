// Package export writes parsed trace records to Parquet and stores the
// result in a blob bucket.
package export

import (
	"fmt"
	"io"
	"iter"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/sdllogs/sdllogs/internal/trace"
)

const batchSize = 10000

// Schema is the Arrow schema of an exported trace.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "line", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "offset", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "timestamp", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "thread", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "component", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "source", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "source_line", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
		{Name: "message", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "kind", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "raw", Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
}

// batchBuilder holds one builder per column. Builders reset after NewArray,
// so they are reused across batches.
type batchBuilder struct {
	schema     *arrow.Schema
	line       *array.Int64Builder
	offset     *array.Int64Builder
	timestamp  *array.StringBuilder
	thread     *array.StringBuilder
	component  *array.StringBuilder
	source     *array.StringBuilder
	sourceLine *array.Int32Builder
	message    *array.StringBuilder
	kind       *array.StringBuilder
	raw        *array.StringBuilder
}

func newBatchBuilder(pool memory.Allocator) *batchBuilder {
	return &batchBuilder{
		schema:     Schema(),
		line:       array.NewInt64Builder(pool),
		offset:     array.NewInt64Builder(pool),
		timestamp:  array.NewStringBuilder(pool),
		thread:     array.NewStringBuilder(pool),
		component:  array.NewStringBuilder(pool),
		source:     array.NewStringBuilder(pool),
		sourceLine: array.NewInt32Builder(pool),
		message:    array.NewStringBuilder(pool),
		kind:       array.NewStringBuilder(pool),
		raw:        array.NewStringBuilder(pool),
	}
}

func (b *batchBuilder) append(r trace.Record) {
	b.line.Append(int64(r.Index))
	b.offset.Append(int64(r.Offset))
	b.timestamp.Append(r.Timestamp)
	b.thread.Append(r.Thread)
	b.component.Append(r.Component)
	b.source.Append(r.Source)
	b.sourceLine.Append(int32(r.SourceLine))
	b.message.Append(r.Message)
	b.kind.Append(r.Kind.String())
	b.raw.Append(r.Raw)
}

func (b *batchBuilder) record(rows int) arrow.Record {
	cols := []arrow.Array{
		b.line.NewArray(),
		b.offset.NewArray(),
		b.timestamp.NewArray(),
		b.thread.NewArray(),
		b.component.NewArray(),
		b.source.NewArray(),
		b.sourceLine.NewArray(),
		b.message.NewArray(),
		b.kind.NewArray(),
		b.raw.NewArray(),
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()
	return array.NewRecord(b.schema, cols, int64(rows))
}

func (b *batchBuilder) release() {
	b.line.Release()
	b.offset.Release()
	b.timestamp.Release()
	b.thread.Release()
	b.component.Release()
	b.source.Release()
	b.sourceLine.Release()
	b.message.Release()
	b.kind.Release()
	b.raw.Release()
}

// WriteParquet streams records to w as zstd-compressed Parquet and returns
// the number of rows written.
func WriteParquet(w io.Writer, records iter.Seq[trace.Record]) (int, error) {
	pool := memory.NewGoAllocator()
	b := newBatchBuilder(pool)
	defer b.release()

	writer, err := pqarrow.NewFileWriter(b.schema, w,
		parquet.NewWriterProperties(
			parquet.WithCompression(compress.Codecs.Zstd),
			parquet.WithCompressionLevel(5),
		),
		pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(pool)),
	)
	if err != nil {
		return 0, fmt.Errorf("create parquet writer: %w", err)
	}

	flush := func(rows int) error {
		rec := b.record(rows)
		defer rec.Release()
		return writer.Write(rec)
	}

	total, pending := 0, 0
	for r := range records {
		b.append(r)
		pending++
		if pending == batchSize {
			if err := flush(pending); err != nil {
				_ = writer.Close()
				return total, fmt.Errorf("write batch: %w", err)
			}
			total += pending
			pending = 0
		}
	}
	if pending > 0 {
		if err := flush(pending); err != nil {
			_ = writer.Close()
			return total, fmt.Errorf("write batch: %w", err)
		}
		total += pending
	}
	if err := writer.Close(); err != nil {
		return total, fmt.Errorf("close parquet writer: %w", err)
	}
	return total, nil
}
