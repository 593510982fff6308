// Package mask builds ground truth and prediction masks as float arrays
// from image files or from synthetic shapes.
package mask

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/ashahba/medical-decathlon/num"
	"github.com/pkg/errors"
)

// FromImage converts an image to a height x width array of luminance
// values in range 0-1.
func FromImage(m image.Image) *num.Array {
	bounds := m.Bounds()
	a := num.NewArray(bounds.Dy(), bounds.Dx())
	data := a.Data()
	pos := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := m.At(x, y).RGBA()
			data[pos] = 0.299*float64(r)/0xffff + 0.587*float64(g)/0xffff + 0.114*float64(b)/0xffff
			pos++
		}
	}
	return a
}

// Load reads a mask image from a PNG or JPEG file as per FromImage.
func Load(path string) (*num.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening mask file")
	}
	defer f.Close()
	m, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding mask file %s", path)
	}
	return FromImage(m), nil
}

// Binarize returns a new array with each value set to 1 where the input is
// at or above the threshold, else 0.
func Binarize(a *num.Array, threshold float64) *num.Array {
	out := num.NewArray(a.Dims()...)
	od := out.Data()
	for i, v := range a.Data() {
		if v >= threshold {
			od[i] = 1
		}
	}
	return out
}

// Stack combines equal sized height x width masks into a single array in
// batch x height x width x channels layout with a single channel.
func Stack(masks []*num.Array) (*num.Array, error) {
	if len(masks) == 0 {
		return nil, errors.New("no masks to stack")
	}
	dims := masks[0].Dims()
	if len(dims) != 2 {
		return nil, errors.Errorf("mask 0 is not 2 dimensional: shape %v", dims)
	}
	out := num.NewArray(len(masks), dims[0], dims[1], 1)
	od := out.Data()
	size := dims[0] * dims[1]
	for i, m := range masks {
		if !num.SameShape(m.Dims(), dims) {
			return nil, errors.Errorf("mask %d shape %v does not match %v", i, m.Dims(), dims)
		}
		copy(od[i*size:(i+1)*size], m.Data())
	}
	return out, nil
}

// Validate checks that every value is a probability in range 0-1.
func Validate(a *num.Array) error {
	for i, v := range a.Data() {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return errors.Errorf("mask value %g at element %d is not in range 0-1", v, i)
		}
	}
	return nil
}

// Rect returns a height x width mask with a rectangle of ones covering
// rows top to bottom and columns left to right, both exclusive of the end.
func Rect(height, width, top, left, bottom, right int) *num.Array {
	a := num.NewArray(height, width)
	for i := top; i < bottom; i++ {
		for j := left; j < right; j++ {
			a.Set(1, i, j)
		}
	}
	return a
}

// Disc returns a height x width mask with a disc of ones of the given
// radius centred on row cy and column cx.
func Disc(height, width, cy, cx int, radius float64) *num.Array {
	a := num.NewArray(height, width)
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			dy, dx := float64(i-cy), float64(j-cx)
			if dy*dy+dx*dx <= radius*radius {
				a.Set(1, i, j)
			}
		}
	}
	return a
}
