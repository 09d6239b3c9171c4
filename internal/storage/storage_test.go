package storage

import (
	"bytes"
	stderrors "errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/23skdu/halfdist/internal/errors"
	"github.com/23skdu/halfdist/internal/half"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func halves(vals ...float32) []float16.Num {
	out := make([]float16.Num, len(vals))
	for i, v := range vals {
		out[i] = half.FromFloat32(v)
	}
	return out
}

func testVectors() []Vector {
	return []Vector{
		{ID: 7, Values: halves(1, 2, 3, 4)},
		{ID: 8, Values: halves(-0.5, 0.25, 0, 65504)},
		{ID: 9, Values: halves(0.1, 0.2, 0.3, 0.4)},
	}
}

func TestParquetRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	vecs := testVectors()
	require.NoError(t, WriteParquet(&buf, vecs))

	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	// Half values are exact in float32, so the round trip is lossless.
	assert.Equal(t, vecs, got)
}

func TestParquetFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vecs.parquet")
	vecs := testVectors()
	require.NoError(t, WriteParquetFile(path, vecs))

	got, err := ReadParquetFile(path)
	require.NoError(t, err)
	assert.Equal(t, vecs, got)
}

func TestReadParquetFileMissing(t *testing.T) {
	_, err := ReadParquetFile(filepath.Join(t.TempDir(), "absent.parquet"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStorage))
}

func TestReadParquetGarbage(t *testing.T) {
	data := []byte("definitely not parquet")
	_, err := ReadParquet(bytes.NewReader(data), int64(len(data)))
	assert.Error(t, err)
}

func TestWriteParquetValidation(t *testing.T) {
	var buf bytes.Buffer
	err := WriteParquet(&buf, nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	err = WriteParquet(&buf, []Vector{
		{ID: 1, Values: halves(1, 2)},
		{ID: 2, Values: halves(1, 2, 3)},
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Zero(t, buf.Len())
}

func TestRecordRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	vecs := testVectors()
	rec, err := NewRecord(mem, vecs)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(3), rec.NumRows())
	assert.True(t, rec.Schema().Equal(VectorSchema(4)))

	got, err := VectorsFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, vecs, got)
}

func TestVectorsFromRecordZeroCopy(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec, err := NewRecord(mem, testVectors())
	require.NoError(t, err)
	defer rec.Release()

	got, err := VectorsFromRecord(rec)
	require.NoError(t, err)

	buf := rec.Column(1).(*array.FixedSizeList).ListValues().(*array.Float16).Values()
	assert.Same(t, &buf[4], &got[1].Values[0])
	assert.Equal(t, 4, cap(got[0].Values))
}

func TestVectorsFromRecordSliced(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec, err := NewRecord(mem, testVectors())
	require.NoError(t, err)
	defer rec.Release()

	sliced := rec.NewSlice(1, 3)
	defer sliced.Release()

	got, err := VectorsFromRecord(sliced)
	require.NoError(t, err)
	assert.Equal(t, testVectors()[1:], got)
}

func TestVectorsFromRecordNarrowsFloat32(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "vector", Type: arrow.FixedSizeListOf(3, arrow.PrimitiveTypes.Float32)},
		{Name: "id", Type: arrow.PrimitiveTypes.Uint32},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	vecBuilder := b.Field(0).(*array.FixedSizeListBuilder)
	vals := vecBuilder.ValueBuilder().(*array.Float32Builder)
	ids := b.Field(1).(*array.Uint32Builder)

	vecBuilder.Append(true)
	vals.AppendValues([]float32{1, 0.1, -3}, nil)
	ids.Append(42)

	rec := b.NewRecord()
	defer rec.Release()

	got, err := VectorsFromRecord(rec)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int32(42), got[0].ID)
	assert.Equal(t, halves(1, 0.1, -3), got[0].Values)
}

func TestVectorsFromRecordFloat64(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "vector", Type: arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Float64)},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).Append(5)
	vecBuilder := b.Field(1).(*array.FixedSizeListBuilder)
	vecBuilder.Append(true)
	vecBuilder.ValueBuilder().(*array.Float64Builder).AppendValues([]float64{0.5, 2}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	got, err := VectorsFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, []Vector{{ID: 5, Values: halves(0.5, 2)}}, got)
}

func TestVectorsFromRecordErrors(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("unsupported element type", func(t *testing.T) {
		schema := arrow.NewSchema([]arrow.Field{
			{Name: "id", Type: arrow.PrimitiveTypes.Int32},
			{Name: "vector", Type: arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Int8)},
		}, nil)
		b := array.NewRecordBuilder(mem, schema)
		defer b.Release()
		b.Field(0).(*array.Int32Builder).Append(1)
		vecBuilder := b.Field(1).(*array.FixedSizeListBuilder)
		vecBuilder.Append(true)
		vecBuilder.ValueBuilder().(*array.Int8Builder).AppendValues([]int8{1, 2}, nil)
		rec := b.NewRecord()
		defer rec.Release()

		_, err := VectorsFromRecord(rec)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("vector column not a list", func(t *testing.T) {
		schema := arrow.NewSchema([]arrow.Field{
			{Name: "id", Type: arrow.PrimitiveTypes.Int32},
			{Name: "vector", Type: arrow.PrimitiveTypes.Float32},
		}, nil)
		b := array.NewRecordBuilder(mem, schema)
		defer b.Release()
		b.Field(0).(*array.Int32Builder).Append(1)
		b.Field(1).(*array.Float32Builder).Append(1)
		rec := b.NewRecord()
		defer rec.Release()

		_, err := VectorsFromRecord(rec)
		assert.Error(t, err)
	})

	t.Run("null vector", func(t *testing.T) {
		b := array.NewRecordBuilder(mem, VectorSchema(2))
		defer b.Release()
		b.Field(0).(*array.Int32Builder).Append(1)
		vecBuilder := b.Field(1).(*array.FixedSizeListBuilder)
		vecBuilder.AppendNull()
		rec := b.NewRecord()
		defer rec.Release()

		_, err := VectorsFromRecord(rec)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	})
}

func TestNewRecordValidation(t *testing.T) {
	mem := memory.NewGoAllocator()
	_, err := NewRecord(mem, nil)
	assert.True(t, errors.IsValidation(err))

	_, err = NewRecord(mem, []Vector{{Values: halves(1)}, {Values: halves(1, 2)}})
	assert.True(t, errors.IsValidation(err))
}

func TestParquetRoundTripSubnormals(t *testing.T) {
	vecs := []Vector{{ID: 1, Values: []float16.Num{
		float16.FromBits(0x0001), float16.FromBits(0x0200), float16.FromBits(0x83ff), float16.FromBits(0x7bff),
	}}}
	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, vecs))

	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, vecs, got)
}

func TestVectorsFromRecordRoundsToNearest(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "vector", Type: arrow.FixedSizeListOf(3, arrow.PrimitiveTypes.Float64)},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int32Builder).Append(1)
	vecBuilder := b.Field(1).(*array.FixedSizeListBuilder)
	vecBuilder.Append(true)
	vecBuilder.ValueBuilder().(*array.Float64Builder).AppendValues([]float64{3e-5, 0.1, 1.0018766}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	got, err := VectorsFromRecord(rec)
	require.NoError(t, err)
	require.Len(t, got, 1)
	bits := make([]uint16, 3)
	for i, v := range got[0].Values {
		bits[i] = v.Uint16()
	}
	assert.Equal(t, []uint16{0x01f7, 0x2e66, 0x3c02}, bits)
}

func TestVectorsFromRecordIDOutOfRange(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("int64", func(t *testing.T) {
		schema := arrow.NewSchema([]arrow.Field{
			{Name: "id", Type: arrow.PrimitiveTypes.Int64},
			{Name: "vector", Type: arrow.FixedSizeListOf(1, arrow.FixedWidthTypes.Float16)},
		}, nil)
		b := array.NewRecordBuilder(mem, schema)
		defer b.Release()
		b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, math.MaxInt32 + 1}, nil)
		vecBuilder := b.Field(1).(*array.FixedSizeListBuilder)
		vecBuilder.AppendValues([]bool{true, true})
		vecBuilder.ValueBuilder().(*array.Float16Builder).AppendValues(halves(1, 2), nil)
		rec := b.NewRecord()
		defer rec.Release()

		_, err := VectorsFromRecord(rec)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.True(t, stderrors.Is(err, ErrIDOutOfRange))
	})

	t.Run("uint32", func(t *testing.T) {
		schema := arrow.NewSchema([]arrow.Field{
			{Name: "id", Type: arrow.PrimitiveTypes.Uint32},
			{Name: "vector", Type: arrow.FixedSizeListOf(1, arrow.FixedWidthTypes.Float16)},
		}, nil)
		b := array.NewRecordBuilder(mem, schema)
		defer b.Release()
		b.Field(0).(*array.Uint32Builder).Append(math.MaxUint32)
		vecBuilder := b.Field(1).(*array.FixedSizeListBuilder)
		vecBuilder.Append(true)
		vecBuilder.ValueBuilder().(*array.Float16Builder).AppendValues(halves(1), nil)
		rec := b.NewRecord()
		defer rec.Release()

		_, err := VectorsFromRecord(rec)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, ErrIDOutOfRange))
	})

	t.Run("int64 in range", func(t *testing.T) {
		schema := arrow.NewSchema([]arrow.Field{
			{Name: "id", Type: arrow.PrimitiveTypes.Int64},
			{Name: "vector", Type: arrow.FixedSizeListOf(1, arrow.FixedWidthTypes.Float16)},
		}, nil)
		b := array.NewRecordBuilder(mem, schema)
		defer b.Release()
		b.Field(0).(*array.Int64Builder).Append(math.MinInt32)
		vecBuilder := b.Field(1).(*array.FixedSizeListBuilder)
		vecBuilder.Append(true)
		vecBuilder.ValueBuilder().(*array.Float16Builder).AppendValues(halves(1), nil)
		rec := b.NewRecord()
		defer rec.Release()

		got, err := VectorsFromRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, int32(math.MinInt32), got[0].ID)
	})
}
