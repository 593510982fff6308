package num

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Fill array with a scalar value
func Fill(a *Array, scalar float64) {
	for i := range a.data {
		a.data[i] = scalar
	}
}

// Element wise multiply: res <- x * y
func Mul(x, y, res *Array) {
	if !SameShape(x.dims, res.dims) || !SameShape(y.dims, res.dims) {
		panic("Mul: arrays must be same shape")
	}
	floats.MulTo(res.data, x.data, y.data)
}

// Element wise addition: res <- x + y
func Add(x, y, res *Array) {
	if !SameShape(x.dims, res.dims) || !SameShape(y.dims, res.dims) {
		panic("Add: arrays must be same shape")
	}
	floats.AddTo(res.data, x.data, y.data)
}

// Array addition and scaling: y <- alpha*x + y
func Axpy(alpha float64, x, y *Array) {
	if !SameShape(x.dims, y.dims) {
		panic("Axpy: arrays must be same shape")
	}
	floats.AddScaled(y.data, alpha, x.data)
}

// Scale array: x <- alpha*x
func Scale(alpha float64, x *Array) {
	floats.Scale(alpha, x.data)
}

// Calculate the scalar sum of all values in the array.
func Sum(a *Array) float64 {
	return floats.Sum(a.data)
}

// Dot is the scalar product of two arrays of the same shape summed over
// every axis.
func Dot(x, y *Array) float64 {
	if !SameShape(x.dims, y.dims) {
		panic("Dot: arrays must be same shape")
	}
	return floats.Dot(x.data, y.data)
}

// Mean of all values in the array.
func Mean(a *Array) float64 {
	return floats.Sum(a.data) / float64(len(a.data))
}

// Min value in the array.
func Min(a *Array) float64 {
	return floats.Min(a.data)
}

// Max value in the array.
func Max(a *Array) float64 {
	return floats.Max(a.data)
}

// SumAxes returns a new array with the given axes summed out. Axes must be
// strictly increasing and within range. The reduced axes are removed from
// the shape, so summing over every axis gives a zero dimensional array
// holding the total.
func SumAxes(a *Array, axes []int) *Array {
	out, ostride := groupLayout(a.dims, axes, "SumAxes")
	ix := make([]int, len(a.dims))
	for in := range a.data {
		at := 0
		for i, x := range ix {
			at += x * ostride[i]
		}
		out.data[at] += a.data[in]
		step(ix, a.dims)
	}
	return out
}

// ExpandAxes broadcasts per group values back over the full shape, the
// inverse of SumAxes. The source must have the shape which is left after
// summing the given axes out of dims.
func ExpandAxes(src *Array, dims []int, axes []int) *Array {
	group, ostride := groupLayout(dims, axes, "ExpandAxes")
	if !SameShape(src.dims, group.dims) {
		panic(fmt.Sprintf("ExpandAxes: source shape %v does not match group shape %v", src.dims, group.dims))
	}
	out := NewArray(dims...)
	ix := make([]int, len(dims))
	for in := range out.data {
		at := 0
		for i, x := range ix {
			at += x * ostride[i]
		}
		out.data[in] = src.data[at]
		step(ix, dims)
	}
	return out
}

// groupLayout allocates the reduced shape array and the output stride for
// each input axis, zero for the axes which are summed out.
func groupLayout(dims []int, axes []int, op string) (*Array, []int) {
	rank := len(dims)
	reduce := make([]bool, rank)
	prev := -1
	for _, ax := range axes {
		if ax < 0 || ax >= rank {
			panic(fmt.Sprintf("%s: axis %d out of range for %d dimensions", op, ax, rank))
		}
		if ax <= prev {
			panic(op + ": axes must be strictly increasing")
		}
		reduce[ax] = true
		prev = ax
	}
	var outDims []int
	for i, n := range dims {
		if !reduce[i] {
			outDims = append(outDims, n)
		}
	}
	ostride := make([]int, rank)
	stride := 1
	for i := rank - 1; i >= 0; i-- {
		if !reduce[i] {
			ostride[i] = stride
			stride *= dims[i]
		}
	}
	return NewArray(outDims...), ostride
}

// advance a row major index by one element
func step(ix, dims []int) {
	for i := len(dims) - 1; i >= 0; i-- {
		ix[i]++
		if ix[i] < dims[i] {
			return
		}
		ix[i] = 0
	}
}
