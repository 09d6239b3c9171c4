package storage

import (
	stderrors "errors"
	"fmt"
	"math"

	"github.com/23skdu/halfdist/internal/errors"
	"github.com/23skdu/halfdist/internal/half"
	"github.com/23skdu/halfdist/internal/metrics"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Vector is one stored half-precision vector.
type Vector struct {
	ID     int32
	Values []float16.Num
}

// VectorSchema returns the arrow schema used for dim-element vectors:
// id int32, vector fixed_size_list<float16>[dim].
func VectorSchema(dim int) *arrow.Schema {
	return arrow.NewSchema(
		[]arrow.Field{
			{Name: "id", Type: arrow.PrimitiveTypes.Int32},
			{Name: "vector", Type: arrow.FixedSizeListOf(int32(dim), arrow.FixedWidthTypes.Float16)},
		},
		nil,
	)
}

// checkDims returns the common dimension of vecs.
func checkDims(op string, vecs []Vector) (int, error) {
	if len(vecs) == 0 {
		return 0, errors.NewValidationError(op, "no vectors")
	}
	dim := len(vecs[0].Values)
	for i, v := range vecs {
		if len(v.Values) != dim {
			return 0, errors.NewValidationError(op, "vectors differ in dimension").
				WithContext("row", i).
				WithContext("want", dim).
				WithContext("got", len(v.Values))
		}
	}
	return dim, nil
}

// NewRecord builds an arrow record from vecs. All vectors must have the
// same dimension. The caller owns the returned record.
func NewRecord(mem memory.Allocator, vecs []Vector) (arrow.Record, error) {
	dim, err := checkDims("new_record", vecs)
	if err != nil {
		return nil, err
	}

	b := array.NewRecordBuilder(mem, VectorSchema(dim))
	defer b.Release()

	idBuilder := b.Field(0).(*array.Int32Builder)
	vecBuilder := b.Field(1).(*array.FixedSizeListBuilder)
	vecValBuilder := vecBuilder.ValueBuilder().(*array.Float16Builder)

	for _, v := range vecs {
		idBuilder.Append(v.ID)
		vecBuilder.Append(true)
		vecValBuilder.AppendValues(v.Values, nil)
	}

	return b.NewRecord(), nil
}

// VectorsFromRecord extracts vectors from rec. The "id" and "vector"
// columns are found by name, falling back to columns 0 and 1. FLOAT16
// elements are sliced from the record's buffers without copying and are
// only valid while rec is retained; FLOAT32 and FLOAT64 elements are
// narrowed to half precision.
func VectorsFromRecord(rec arrow.Record) ([]Vector, error) {
	const op = "vectors_from_record"

	idColIdx, vecColIdx := -1, -1
	for i, f := range rec.Schema().Fields() {
		switch f.Name {
		case "id":
			idColIdx = i
		case "vector":
			vecColIdx = i
		}
	}
	if idColIdx == -1 {
		idColIdx = 0
	}
	if vecColIdx == -1 {
		vecColIdx = 1
	}
	if vecColIdx >= int(rec.NumCols()) {
		return nil, errors.NewValidationError(op, "missing vector column").
			WithContext("cols", rec.NumCols())
	}

	rows := int(rec.NumRows())
	ids, err := idValues(rec.Column(idColIdx), rows)
	if err != nil {
		return nil, errors.WrapValidationError(err, op, "bad id column")
	}

	vecCol, ok := rec.Column(vecColIdx).(*array.FixedSizeList)
	if !ok {
		return nil, errors.NewValidationError(op, "vector column is not a fixed size list").
			WithContext("type", rec.Column(vecColIdx).DataType().String())
	}
	elemType := vecCol.DataType().(*arrow.FixedSizeListType).Elem()

	out := make([]Vector, rows)
	switch elemType.ID() {
	case arrow.FLOAT16:
		vals := vecCol.ListValues().(*array.Float16).Values()
		for i := 0; i < rows; i++ {
			if vecCol.IsNull(i) {
				return nil, nullRow(op, i)
			}
			start, end := vecCol.ValueOffsets(i)
			out[i] = Vector{ID: ids[i], Values: vals[start:end:end]}
		}
	case arrow.FLOAT32:
		vals := vecCol.ListValues().(*array.Float32).Float32Values()
		for i := 0; i < rows; i++ {
			if vecCol.IsNull(i) {
				return nil, nullRow(op, i)
			}
			start, end := vecCol.ValueOffsets(i)
			out[i] = Vector{ID: ids[i], Values: narrow(vals[start:end])}
		}
	case arrow.FLOAT64:
		vals := vecCol.ListValues().(*array.Float64).Float64Values()
		for i := 0; i < rows; i++ {
			if vecCol.IsNull(i) {
				return nil, nullRow(op, i)
			}
			start, end := vecCol.ValueOffsets(i)
			hv := make([]float16.Num, end-start)
			for k, v := range vals[start:end] {
				hv[k] = half.FromFloat64(v)
			}
			out[i] = Vector{ID: ids[i], Values: hv}
		}
	default:
		return nil, errors.NewValidationError(op, "unsupported vector element type").
			WithContext("type", elemType.String())
	}

	metrics.StorageVectorsRead.WithLabelValues("arrow").Add(float64(rows))
	return out, nil
}

// ErrIDOutOfRange is returned when a stored id does not fit in an int32.
var ErrIDOutOfRange = stderrors.New("storage: id out of int32 range")

func idValues(col arrow.Array, rows int) ([]int32, error) {
	switch idArr := col.(type) {
	case *array.Int32:
		return idArr.Int32Values(), nil
	case *array.Uint32:
		ids := make([]int32, rows)
		for i := range ids {
			v := idArr.Value(i)
			if v > math.MaxInt32 {
				return nil, fmt.Errorf("%w: %d at row %d", ErrIDOutOfRange, v, i)
			}
			ids[i] = int32(v)
		}
		return ids, nil
	case *array.Int64:
		ids := make([]int32, rows)
		for i := range ids {
			v := idArr.Value(i)
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("%w: %d at row %d", ErrIDOutOfRange, v, i)
			}
			ids[i] = int32(v)
		}
		return ids, nil
	case *array.FixedSizeList:
		// No id column; use row numbers.
		ids := make([]int32, rows)
		for i := range ids {
			ids[i] = int32(i)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("unsupported id type %s", col.DataType())
	}
}

func nullRow(op string, row int) error {
	return errors.NewValidationError(op, "null vector").WithContext("row", row)
}

func narrow(src []float32) []float16.Num {
	return half.FromFloat32Slice(src)
}

func widen(src []float16.Num) []float32 {
	out := make([]float32, len(src))
	half.ToFloat32Slice(out, src)
	return out
}
