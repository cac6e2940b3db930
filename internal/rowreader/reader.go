// Package rowreader is the row-over-column adapter (spec §4.5): it walks a
// snapshot's active files through an injected ColumnReader and presents
// typed row access over the resulting Arrow record batches.
package rowreader

import (
	"context"
	"time"

	"github.com/apache/arrow/go/v14/arrow"

	"tablelog/internal/actions"
	"tablelog/internal/schema"
	"tablelog/internal/snapshot"
)

// ColumnReader is the injected collaborator from spec §6.2: it opens one
// data file and returns a batch-at-a-time Arrow record stream. Resource
// release is tied to BatchReader.Close.
type ColumnReader interface {
	Open(ctx context.Context, path string) (BatchReader, error)
}

// BatchReader iterates the Arrow record batches of one open file.
type BatchReader interface {
	Next() bool
	Record() arrow.Record
	Close() error
}

// RowIterator drains a snapshot's active files in order, presenting each
// row as a *Record. Traversal is one data file at a time (spec §4.5
// Traversal); the underlying BatchReader is released on Close and on
// every early-exit path, never leaked.
type RowIterator struct {
	ctx    context.Context
	reader ColumnReader
	tz     *time.Location
	files  []actions.AddFileAction
	st     schema.StructType

	fileIdx    int
	batch      BatchReader
	curRecord  arrow.Record
	rowInBatch int
}

// Open returns a RowIterator draining snap.GetAllFiles() in order. tz is
// the configured parquet time zone (spec §6 "parquet.time.zone.id");
// pass time.UTC if unset.
func Open(ctx context.Context, snap *snapshot.Snapshot, reader ColumnReader, tz *time.Location) (*RowIterator, error) {
	st, err := snap.Schema()
	if err != nil {
		return nil, err
	}
	if tz == nil {
		tz = time.UTC
	}
	return &RowIterator{
		ctx:    ctx,
		reader: reader,
		tz:     tz,
		files:  snap.GetAllFiles(),
		st:     st,
	}, nil
}

// Next advances to the next row, opening subsequent files as needed, and
// reports whether one is available.
func (it *RowIterator) Next() (*Record, error) {
	for {
		if it.curRecord != nil && it.rowInBatch < int(it.curRecord.NumRows()) {
			rec := &Record{arrowRecord: it.curRecord, row: it.rowInBatch, schema: it.st, tz: it.tz}
			it.rowInBatch++
			return rec, nil
		}

		if it.batch != nil && it.batch.Next() {
			it.curRecord = it.batch.Record()
			it.rowInBatch = 0
			continue
		}

		if it.batch != nil {
			if err := it.batch.Close(); err != nil {
				return nil, err
			}
			it.batch = nil
			it.curRecord = nil
		}

		if it.fileIdx >= len(it.files) {
			return nil, nil
		}

		path := it.files[it.fileIdx].Path
		it.fileIdx++
		br, err := it.reader.Open(it.ctx, path)
		if err != nil {
			return nil, err
		}
		it.batch = br
	}
}

// Close releases the currently open file, if any. Safe to call multiple
// times and safe to call after Next has already exhausted every file.
func (it *RowIterator) Close() error {
	if it.batch == nil {
		return nil
	}
	err := it.batch.Close()
	it.batch = nil
	it.curRecord = nil
	return err
}
