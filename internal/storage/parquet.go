package storage

import (
	"io"
	"os"
	"time"

	"github.com/23skdu/halfdist/internal/errors"
	"github.com/23skdu/halfdist/internal/metrics"
	"github.com/parquet-go/parquet-go"
)

// VectorRecord represents a single row for Parquet serialization.
// Values are widened to float32 on disk so any parquet reader can load them.
type VectorRecord struct {
	ID     int32     `parquet:"id"`
	Vector []float32 `parquet:"vector"`
}

// WriteParquet writes vecs as zstd-compressed VectorRecord rows.
// All vectors must share one dimension.
func WriteParquet(w io.Writer, vecs []Vector) error {
	if _, err := checkDims("write_parquet", vecs); err != nil {
		return err
	}

	start := time.Now()
	pw := parquet.NewGenericWriter[VectorRecord](w, parquet.Compression(&parquet.Zstd))

	parquetRecords := make([]VectorRecord, len(vecs))
	for i, v := range vecs {
		parquetRecords[i] = VectorRecord{
			ID:     v.ID,
			Vector: widen(v.Values),
		}
	}

	if _, err := pw.Write(parquetRecords); err != nil {
		_ = pw.Close()
		return errors.WrapStorageError(err, "write_parquet", "failed to write rows")
	}
	if err := pw.Close(); err != nil {
		return errors.WrapStorageError(err, "write_parquet", "failed to close writer")
	}

	metrics.SnapshotWriteDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.StorageVectorsWritten.Add(float64(len(vecs)))
	if fi, ok := w.(interface{ Stat() (os.FileInfo, error) }); ok {
		if stat, err := fi.Stat(); err == nil {
			metrics.SnapshotSizeBytes.Observe(float64(stat.Size()))
		}
	}
	return nil
}

// ReadParquet reads VectorRecord rows and narrows them to half precision.
// Rows must share one dimension.
func ReadParquet(r io.ReaderAt, size int64) ([]Vector, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, errors.WrapStorageError(err, "read_parquet", "failed to open file")
	}

	pr := parquet.NewGenericReader[VectorRecord](pf)
	defer func() { _ = pr.Close() }()

	rows := make([]VectorRecord, pr.NumRows())
	n, err := pr.Read(rows)
	if err != nil && err != io.EOF {
		return nil, errors.WrapStorageError(err, "read_parquet", "failed to read rows")
	}
	rows = rows[:n]

	vecs := make([]Vector, len(rows))
	for i, row := range rows {
		vecs[i] = Vector{ID: row.ID, Values: narrow(row.Vector)}
	}
	if len(vecs) > 0 {
		if _, err := checkDims("read_parquet", vecs); err != nil {
			return nil, err
		}
	}

	metrics.StorageVectorsRead.WithLabelValues("parquet").Add(float64(len(vecs)))
	return vecs, nil
}

// ReadParquetFile opens path and reads it with ReadParquet.
func ReadParquetFile(path string) ([]Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapStorageError(err, "read_parquet", "failed to open file").
			WithContext("path", path)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.WrapStorageError(err, "read_parquet", "failed to stat file").
			WithContext("path", path)
	}
	return ReadParquet(f, stat.Size())
}

// WriteParquetFile creates path and writes vecs to it.
func WriteParquetFile(path string, vecs []Vector) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapStorageError(err, "write_parquet", "failed to create file").
			WithContext("path", path)
	}
	if err := WriteParquet(f, vecs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
