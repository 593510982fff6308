// Package num contains the n dimensional Array type and the elementwise and
// reduction routines used to score segmentation masks.
package num

import (
	"fmt"
	"strings"
)

// Parameters for array printing
var (
	PrintThreshold = 12
	PrintEdgeitems = 4
)

// Array is a general n dimensional array similar to a numpy ndarray.
// Data is stored in row major order, batch dimension first. A zero
// dimensional array holds a single value.
type Array struct {
	dims []int
	data []float64
}

// NewArray creates a zero filled array with the given dimensions.
func NewArray(dims ...int) *Array {
	for _, d := range dims {
		if d < 0 {
			panic(fmt.Sprintf("NewArray: invalid dimension %d", d))
		}
	}
	return &Array{dims: dims, data: make([]float64, Prod(dims))}
}

// NewArrayFrom creates an array with the given dimensions backed by the data
// slice. The slice is used directly, not copied.
func NewArrayFrom(data []float64, dims ...int) *Array {
	if len(data) != Prod(dims) {
		panic(fmt.Sprintf("NewArrayFrom: have %d values for %v shape", len(data), dims))
	}
	return &Array{dims: dims, data: data}
}

// Dims returns the shape of the array.
func (a *Array) Dims() []int { return a.dims }

// Size is the total number of elements.
func (a *Array) Size() int { return len(a.data) }

// Data is a reference to the raw values in row major order.
func (a *Array) Data() []float64 { return a.data }

// At returns the element at the given index, one coordinate per dimension.
func (a *Array) At(ix ...int) float64 {
	return a.data[a.offset(ix)]
}

// Set updates the element at the given index.
func (a *Array) Set(val float64, ix ...int) {
	a.data[a.offset(ix)] = val
}

func (a *Array) offset(ix []int) int {
	if len(ix) != len(a.dims) {
		panic(fmt.Sprintf("Array: have %d indices for %d dimensions", len(ix), len(a.dims)))
	}
	at := 0
	for i, x := range ix {
		if x < 0 || x >= a.dims[i] {
			panic(fmt.Sprintf("Array: index %d out of range for axis %d", x, i))
		}
		at = at*a.dims[i] + x
	}
	return at
}

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	data := make([]float64, len(a.data))
	copy(data, a.data)
	dims := make([]int, len(a.dims))
	copy(dims, a.dims)
	return &Array{dims: dims, data: data}
}

// Reshape returns a new array of the same size with a view on the same data
// but with a different shape. A single dimension may be -1 to infer it from
// the size.
func (a *Array) Reshape(dims ...int) *Array {
	n := len(a.data)
	for i := range dims {
		if dims[i] == -1 {
			other := 1
			for j, dim := range dims {
				if i != j {
					if dim == -1 {
						panic("Reshape: can only have single -1 value")
					}
					other *= dim
				}
			}
			dims[i] = n / other
		}
	}
	if Prod(dims) != n {
		panic(fmt.Sprintf("Reshape: cannot reshape size %d array to %v", n, dims))
	}
	return &Array{dims: dims, data: a.data}
}

// Formatted output in numpy style with edge items elided for large arrays.
func (a *Array) String() string {
	if len(a.dims) == 0 {
		return formatValue(a.data[0])
	}
	return format(a.dims, a.data, 0, "")
}

func format(dims []int, data []float64, at int, indent string) string {
	var sb strings.Builder
	n := dims[0]
	stride := Prod(dims[1:])
	sb.WriteString("[")
	for i := 0; i < n; i++ {
		if n > PrintThreshold+1 && i == PrintEdgeitems {
			if len(dims) == 1 {
				sb.WriteString("... ")
			} else {
				sb.WriteString("\n" + indent + " ...")
			}
			i = n - PrintEdgeitems - 1
			continue
		}
		if len(dims) == 1 {
			sb.WriteString(formatValue(data[at+i]))
			if i < n-1 {
				sb.WriteString(" ")
			}
		} else {
			if i > 0 {
				sb.WriteString("\n" + indent + " ")
			}
			sb.WriteString(format(dims[1:], data, at+i*stride, indent+" "))
		}
	}
	sb.WriteString("]")
	return sb.String()
}

func formatValue(val float64) string {
	return fmt.Sprintf("%.5g", val)
}

// Prod is the product of elements of an integer array. Zero dimension array
// (scalar) has size 1.
func Prod(arr []int) int {
	prod := 1
	for _, v := range arr {
		prod *= v
	}
	return prod
}

// Check if two arrays are the same shape
func SameShape(xd, yd []int) bool {
	if len(xd) != len(yd) {
		return false
	}
	for i := range xd {
		if xd[i] != yd[i] {
			return false
		}
	}
	return true
}
