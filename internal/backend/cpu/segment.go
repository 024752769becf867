package cpu

import (
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/gomlx/exceptions"
)

// SegmentMax reduces the rows of a 2D tensor with element-wise max, grouping rows
// by segmentIDs. Segments without rows produce zeros.
//
//	x (6, F), ids [0,0,1,1,2,2], 3 -> (3, F)
func (cpu *CPUBackend) SegmentMax(x *tensor.RawTensor, segmentIDs []int32, numSegments int) *tensor.RawTensor {
	rows, cols := checkSegments("segmentMax", x, segmentIDs, numSegments)
	result := tensor.MustNewRaw(tensor.Shape{numSegments, cols}, x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		segmentMax(result.AsFloat32(), x.AsFloat32(), segmentIDs, rows, cols)
	case tensor.Float64:
		segmentMax(result.AsFloat64(), x.AsFloat64(), segmentIDs, rows, cols)
	case tensor.Int32:
		segmentMax(result.AsInt32(), x.AsInt32(), segmentIDs, rows, cols)
	case tensor.Int64:
		segmentMax(result.AsInt64(), x.AsInt64(), segmentIDs, rows, cols)
	default:
		exceptions.Panicf("segmentMax: unsupported dtype %s", x.DType())
	}
	return result
}

// SegmentMean averages the rows of a 2D tensor grouped by segmentIDs. Segments
// without rows produce zeros.
func (cpu *CPUBackend) SegmentMean(x *tensor.RawTensor, segmentIDs []int32, numSegments int) *tensor.RawTensor {
	rows, cols := checkSegments("segmentMean", x, segmentIDs, numSegments)
	counts := SegmentCounts(segmentIDs, numSegments)
	result := tensor.MustNewRaw(tensor.Shape{numSegments, cols}, x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		segmentMean(result.AsFloat32(), x.AsFloat32(), segmentIDs, counts, rows, cols)
	case tensor.Float64:
		segmentMean(result.AsFloat64(), x.AsFloat64(), segmentIDs, counts, rows, cols)
	default:
		exceptions.Panicf("segmentMean: unsupported dtype %s (only float32/float64 supported)", x.DType())
	}
	return result
}

// SegmentCounts returns the number of rows in each segment.
func SegmentCounts(segmentIDs []int32, numSegments int) []int {
	counts := make([]int, numSegments)
	for _, id := range segmentIDs {
		counts[id]++
	}
	return counts
}

// checkSegments validates x against the segment ids and returns (rows, cols).
func checkSegments(op string, x *tensor.RawTensor, segmentIDs []int32, numSegments int) (int, int) {
	shape := x.Shape()
	if len(shape) != 2 {
		exceptions.Panicf("%s: input must be 2D, got shape %v", op, shape)
	}
	if numSegments <= 0 {
		exceptions.Panicf("%s: numSegments must be positive, got %d", op, numSegments)
	}
	if len(segmentIDs) != shape[0] {
		exceptions.Panicf("%s: %d segment ids for %d rows", op, len(segmentIDs), shape[0])
	}
	for i, id := range segmentIDs {
		if id < 0 || int(id) >= numSegments {
			exceptions.Panicf("%s: segment id %d at row %d out of range [0, %d)", op, id, i, numSegments)
		}
		if i > 0 && id < segmentIDs[i-1] {
			exceptions.Panicf("%s: segment ids must be sorted, got %d after %d at row %d", op, id, segmentIDs[i-1], i)
		}
	}
	return shape[0], shape[1]
}

func segmentMax[T number](dst, src []T, ids []int32, rows, cols int) {
	seen := make([]bool, len(dst)/cols)
	for r := 0; r < rows; r++ {
		seg := int(ids[r])
		out := dst[seg*cols : (seg+1)*cols]
		row := src[r*cols : (r+1)*cols]
		if !seen[seg] {
			copy(out, row)
			seen[seg] = true
			continue
		}
		for j, v := range row {
			if v > out[j] {
				out[j] = v
			}
		}
	}
}

func segmentMean[T number](dst, src []T, ids []int32, counts []int, rows, cols int) {
	for r := 0; r < rows; r++ {
		seg := int(ids[r])
		out := dst[seg*cols : (seg+1)*cols]
		for j, v := range src[r*cols : (r+1)*cols] {
			out[j] += v
		}
	}
	for seg, c := range counts {
		if c == 0 {
			continue
		}
		out := dst[seg*cols : (seg+1)*cols]
		for j := range out {
			out[j] /= T(c)
		}
	}
}
