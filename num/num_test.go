package num

import (
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func TestArray(t *testing.T) {
	xd := []float64{1, 1, 2, 2, 3, 3}
	x := NewArrayFrom(xd, 2, 3)
	if dim := x.Dims(); !reflect.DeepEqual(dim, []int{2, 3}) {
		t.Error("dims invalid: got", dim)
	}
	if n := x.Size(); n != 6 {
		t.Error("size invalid: got", n)
	}
	if v := x.At(1, 2); v != 3 {
		t.Error("at(1,2): got", v)
	}
	x.Set(9, 0, 1)
	if v := x.At(0, 1); v != 9 {
		t.Error("set(0,1): got", v)
	}
	y := x.Reshape(3, 2)
	if dim := y.Dims(); !reflect.DeepEqual(dim, []int{3, 2}) {
		t.Error("reshape dims: got", dim)
	}
	if v := y.At(0, 1); v != 9 {
		t.Error("reshape should share data: got", v)
	}
	z := x.Reshape(-1)
	if dim := z.Dims(); !reflect.DeepEqual(dim, []int{6}) {
		t.Error("reshape -1 dims: got", dim)
	}
	c := x.Clone()
	c.Set(7, 0, 0)
	if v := x.At(0, 0); v != 1 {
		t.Error("clone should copy data: got", v)
	}
}

func TestZeroDim(t *testing.T) {
	a := NewArray()
	if n := a.Size(); n != 1 {
		t.Error("scalar array size: got", n)
	}
	if s := Sum(a); s != 0 {
		t.Error("scalar array sum: got", s)
	}
}

func TestShape(t *testing.T) {
	if n := Prod([]int{2, 3, 4}); n != 24 {
		t.Error("prod: got", n)
	}
	if n := Prod([]int{}); n != 1 {
		t.Error("empty prod: got", n)
	}
	if !SameShape([]int{2, 3}, []int{2, 3}) {
		t.Error("expect same shape")
	}
	if SameShape([]int{2, 3}, []int{3, 2}) {
		t.Error("expect different shape")
	}
	if SameShape([]int{2, 3}, []int{2, 3, 1}) {
		t.Error("expect different rank")
	}
}

func TestOps(t *testing.T) {
	x := NewArrayFrom([]float64{1, 2, 3, 4}, 2, 2)
	y := NewArrayFrom([]float64{2, 2, 0.5, 1}, 2, 2)
	res := NewArray(2, 2)
	Mul(x, y, res)
	if expect := []float64{2, 4, 1.5, 4}; !reflect.DeepEqual(res.Data(), expect) {
		t.Error("mul: got", res.Data(), "expect", expect)
	}
	Add(x, y, res)
	if expect := []float64{3, 4, 3.5, 5}; !reflect.DeepEqual(res.Data(), expect) {
		t.Error("add: got", res.Data(), "expect", expect)
	}
	Axpy(2, x, res)
	if expect := []float64{5, 8, 9.5, 13}; !reflect.DeepEqual(res.Data(), expect) {
		t.Error("axpy: got", res.Data(), "expect", expect)
	}
	Scale(0.5, res)
	if expect := []float64{2.5, 4, 4.75, 6.5}; !reflect.DeepEqual(res.Data(), expect) {
		t.Error("scale: got", res.Data(), "expect", expect)
	}
	Fill(res, 1)
	if expect := []float64{1, 1, 1, 1}; !reflect.DeepEqual(res.Data(), expect) {
		t.Error("fill: got", res.Data(), "expect", expect)
	}
	if s := Sum(x); s != 10 {
		t.Error("sum: got", s)
	}
	if d := Dot(x, y); d != 11.5 {
		t.Error("dot: got", d)
	}
	if m := Mean(x); m != 2.5 {
		t.Error("mean: got", m)
	}
	if v := Min(x); v != 1 {
		t.Error("min: got", v)
	}
	if v := Max(x); v != 4 {
		t.Error("max: got", v)
	}
}

func TestSumAxes(t *testing.T) {
	x := NewArrayFrom([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	r := SumAxes(x, []int{1})
	if dim := r.Dims(); !reflect.DeepEqual(dim, []int{2}) {
		t.Error("axis 1 dims: got", dim)
	}
	if expect := []float64{6, 15}; !reflect.DeepEqual(r.Data(), expect) {
		t.Error("axis 1: got", r.Data(), "expect", expect)
	}
	r = SumAxes(x, []int{0})
	if expect := []float64{5, 7, 9}; !reflect.DeepEqual(r.Data(), expect) {
		t.Error("axis 0: got", r.Data(), "expect", expect)
	}
	r = SumAxes(x, []int{0, 1})
	if len(r.Dims()) != 0 || r.Data()[0] != 21 {
		t.Error("full reduce: got", r.Dims(), r.Data())
	}
}

func TestSumAxesBatch(t *testing.T) {
	// one score group per batch element and channel
	x := NewArrayFrom([]float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
		17, 18, 19, 20,
		21, 22, 23, 24,
	}, 2, 3, 4)
	r := SumAxes(x, []int{1, 2})
	if dim := r.Dims(); !reflect.DeepEqual(dim, []int{2}) {
		t.Error("dims: got", dim)
	}
	if expect := []float64{78, 222}; !reflect.DeepEqual(r.Data(), expect) {
		t.Error("got", r.Data(), "expect", expect)
	}
	r = SumAxes(x, []int{0, 2})
	if dim := r.Dims(); !reflect.DeepEqual(dim, []int{3}) {
		t.Error("dims: got", dim)
	}
	if expect := []float64{68, 100, 132}; !reflect.DeepEqual(r.Data(), expect) {
		t.Error("got", r.Data(), "expect", expect)
	}
}

func TestExpandAxes(t *testing.T) {
	src := NewArrayFrom([]float64{10, 20}, 2)
	a := ExpandAxes(src, []int{2, 3}, []int{1})
	expect := []float64{10, 10, 10, 20, 20, 20}
	if !reflect.DeepEqual(a.Data(), expect) {
		t.Error("expand axis 1: got", a.Data(), "expect", expect)
	}
	src = NewArrayFrom([]float64{1, 2, 3}, 3)
	a = ExpandAxes(src, []int{2, 3}, []int{0})
	expect = []float64{1, 2, 3, 1, 2, 3}
	if !reflect.DeepEqual(a.Data(), expect) {
		t.Error("expand axis 0: got", a.Data(), "expect", expect)
	}
	// summing out the expansion recovers the source times the group size
	total := SumAxes(a, []int{0})
	expect = []float64{2, 4, 6}
	if !reflect.DeepEqual(total.Data(), expect) {
		t.Error("sum of expanded: got", total.Data(), "expect", expect)
	}
}

func TestSumAxesRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	x := NewArray(3, 4, 5, 2)
	for i := range x.Data() {
		x.Data()[i] = rng.Float64()
	}
	r := SumAxes(x, []int{1, 2})
	total := 0.0
	for _, v := range r.Data() {
		total += v
	}
	if math.Abs(total-Sum(x)) > 1e-12 {
		t.Error("totals differ: got", total, "expect", Sum(x))
	}
	// cross check one entry against a direct loop
	want := 0.0
	for j := 0; j < 4; j++ {
		for k := 0; k < 5; k++ {
			want += x.At(1, j, k, 1)
		}
	}
	if got := r.At(1, 1); math.Abs(got-want) > 1e-12 {
		t.Error("entry (1,1): got", got, "expect", want)
	}
}

func TestString(t *testing.T) {
	x := NewArrayFrom([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	s := x.String()
	if !strings.Contains(s, "[1 2 3]") || !strings.Contains(s, "[4 5 6]") {
		t.Error("unexpected format:\n" + s)
	}
	big := NewArray(100)
	if s = big.String(); !strings.Contains(s, "...") {
		t.Error("expect elided output, got:\n" + s)
	}
}
