package metric

import "fmt"

// ShapeError is returned when the ground truth and prediction masks do not
// have the same shape.
type ShapeError struct {
	Truth, Pred []int
}

func (e ShapeError) Error() string {
	return fmt.Sprintf("mask shape mismatch: truth %v prediction %v", e.Truth, e.Pred)
}

// SmoothError is returned when the smoothing constant is not strictly
// positive.
type SmoothError struct {
	Value float64
}

func (e SmoothError) Error() string {
	return fmt.Sprintf("smoothing constant must be greater than zero: have %g", e.Value)
}

// WeightError is returned when the loss blend weight is outside [0,1].
type WeightError struct {
	Value float64
}

func (e WeightError) Error() string {
	return fmt.Sprintf("blend weight must be in range [0,1]: have %g", e.Value)
}

// AxisError is returned when a reduction axis is out of range, repeated,
// not in increasing order or refers to the batch axis.
type AxisError struct {
	Axis, Rank int
}

func (e AxisError) Error() string {
	if e.Axis == 0 {
		return "reduction axes must not include the batch axis"
	}
	return fmt.Sprintf("reduction axis %d invalid for rank %d mask", e.Axis, e.Rank)
}
