package metric

import "github.com/ashahba/medical-decathlon/num"

// SoftDiceD returns the gradient of the mean SoftDice score with respect
// to each element of the prediction. Raising the score improves overlap so
// a gradient ascent step moves the prediction towards the ground truth.
func SoftDiceD(truth, pred *num.Array, axes []int, smooth float64) (*num.Array, error) {
	if err := check(truth, pred, smooth); err != nil {
		return nil, err
	}
	if err := checkAxes(axes, len(truth.Dims())); err != nil {
		return nil, err
	}
	inter, tsum, psum := groupSums(truth, pred, axes)
	groups := float64(inter.Size())
	c1 := num.NewArray(inter.Dims()...)
	c2 := num.NewArray(inter.Dims()...)
	d1, d2 := c1.Data(), c2.Data()
	ts, ps := tsum.Data(), psum.Data()
	for i, in := range inter.Data() {
		size := ts[i] + ps[i] + smooth
		d1[i] = 2 / size
		d2[i] = (2*in + smooth) / (size * size)
	}
	dims := truth.Dims()
	e1 := num.ExpandAxes(c1, dims, axes)
	e2 := num.ExpandAxes(c2, dims, axes)
	grad := num.NewArray(dims...)
	gd, td := grad.Data(), truth.Data()
	b1, b2 := e1.Data(), e2.Data()
	for i := range gd {
		gd[i] = (td[i]*b1[i] - b2[i]) / groups
	}
	return grad, nil
}

// DiceLossD returns the gradient of DiceLoss with respect to each element
// of the prediction. Pooling before the logs makes the per element
// derivative affine in the ground truth.
func DiceLossD(truth, pred *num.Array, axes []int, smooth float64) (*num.Array, error) {
	if err := check(truth, pred, smooth); err != nil {
		return nil, err
	}
	if err := checkAxes(axes, len(truth.Dims())); err != nil {
		return nil, err
	}
	inter, tsum, psum := groupSums(truth, pred, axes)
	groups := float64(inter.Size())
	iMean := num.Mean(inter)
	size := num.Mean(tsum) + num.Mean(psum)
	scale := -1 / (groups * (iMean + smooth))
	shift := 1 / (groups * (size + smooth))
	grad := num.NewArray(truth.Dims()...)
	gd, td := grad.Data(), truth.Data()
	for i := range gd {
		gd[i] = scale*td[i] + shift
	}
	return grad, nil
}

// CrossEntropyD returns the gradient of CrossEntropy with respect to each
// element of the prediction. Probabilities are clipped as in the forward
// pass so the gradient of a saturated prediction stays finite.
func CrossEntropyD(truth, pred *num.Array) (*num.Array, error) {
	if err := checkShape(truth, pred); err != nil {
		return nil, err
	}
	grad := num.NewArray(truth.Dims()...)
	gd, td, pd := grad.Data(), truth.Data(), pred.Data()
	n := float64(len(td))
	for i, t := range td {
		p := clip(pd[i])
		gd[i] = (p - t) / (p * (1 - p) * n)
	}
	return grad, nil
}

// CombinedLossD returns the gradient of CombinedLoss with respect to each
// element of the prediction.
func CombinedLossD(truth, pred *num.Array, weight float64, axes []int, smooth float64) (*num.Array, error) {
	if err := checkWeight(weight); err != nil {
		return nil, err
	}
	grad, err := DiceLossD(truth, pred, axes, smooth)
	if err != nil {
		return nil, err
	}
	bce, err := CrossEntropyD(truth, pred)
	if err != nil {
		return nil, err
	}
	num.Scale(weight, grad)
	num.Axpy(1-weight, bce, grad)
	return grad, nil
}
