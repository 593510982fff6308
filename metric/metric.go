// Package metric implements the overlap scores and loss functions used to
// evaluate predicted segmentation masks against the ground truth.
//
// Two reduction conventions are provided as separately named functions
// since they give different results on batched input. Dice sums over every
// axis and returns a single score for the whole array: this is the
// convention used when reporting the score for one example. SoftDice and
// the losses sum over an explicit set of non batch axes so that each
// sample is scored on its own before averaging: this is the convention
// used during training where small foreground regions in one sample
// should not be swamped by large supports in another.
package metric

import (
	"math"

	"github.com/ashahba/medical-decathlon/num"
	"gonum.org/v1/gonum/floats"
)

// Default settings for the smoothing constant added to the overlap ratios
// and for the dice weighting in the combined loss.
const (
	DefaultSmooth = 1.0
	DefaultWeight = 0.9
)

// SpatialAxes are the reduction axes for masks in batch x height x width x
// channels layout, scoring each sample and channel separately.
var SpatialAxes = []int{1, 2}

// clip bound keeping predicted probabilities away from 0 and 1 so that the
// cross entropy of a hard binary prediction stays finite
const probEpsilon = 1e-7

// Dice returns the dice overlap score between the ground truth mask and a
// prediction of the same shape, reduced over every axis. Identical non
// empty masks score 1, disjoint masks score smooth over the pooled mask
// size. Predictions are used as given, threshold them first to score
// binarised output.
func Dice(truth, pred *num.Array, smooth float64) (float64, error) {
	if err := check(truth, pred, smooth); err != nil {
		return 0, err
	}
	inter := num.Dot(truth, pred)
	return (2*inter + smooth) / (num.Sum(truth) + num.Sum(pred) + smooth), nil
}

// SoftDice returns the dice score per sample together with the mean over
// the batch. Axes lists the dimensions summed out when pooling the
// intersection and the mask sizes, typically SpatialAxes for image masks,
// and must not include the leading batch axis.
func SoftDice(truth, pred *num.Array, axes []int, smooth float64) ([]float64, float64, error) {
	if err := check(truth, pred, smooth); err != nil {
		return nil, 0, err
	}
	if err := checkAxes(axes, len(truth.Dims())); err != nil {
		return nil, 0, err
	}
	inter, tsum, psum := groupSums(truth, pred, axes)
	scores := make([]float64, inter.Size())
	ts, ps := tsum.Data(), psum.Data()
	for i, in := range inter.Data() {
		scores[i] = (2*in + smooth) / (ts[i] + ps[i] + smooth)
	}
	return scores, floats.Sum(scores) / float64(len(scores)), nil
}

// DiceLoss returns the negative log dice loss over the batch. The
// intersection and mask sizes are pooled per sample over the given axes
// and then averaged before taking logs, and the log form keeps the
// gradient useful near perfect overlap where the linear form flattens out.
func DiceLoss(truth, pred *num.Array, axes []int, smooth float64) (float64, error) {
	if err := check(truth, pred, smooth); err != nil {
		return 0, err
	}
	if err := checkAxes(axes, len(truth.Dims())); err != nil {
		return 0, err
	}
	inter, tsum, psum := groupSums(truth, pred, axes)
	iMean := num.Mean(inter)
	size := num.Mean(tsum) + num.Mean(psum)
	return -math.Log(2*(iMean+smooth)) + math.Log(size+smooth), nil
}

// CrossEntropy returns the binary cross entropy between the ground truth
// mask and the predicted probabilities, averaged over all elements.
func CrossEntropy(truth, pred *num.Array) (float64, error) {
	if err := checkShape(truth, pred); err != nil {
		return 0, err
	}
	td, pd := truth.Data(), pred.Data()
	loss := 0.0
	for i, t := range td {
		p := clip(pd[i])
		loss -= t*math.Log(p) + (1-t)*math.Log(1-p)
	}
	return loss / float64(len(td)), nil
}

// CombinedLoss blends the dice loss with binary cross entropy as
// weight*DiceLoss + (1-weight)*CrossEntropy. Weight 1 gives the pure dice
// loss and weight 0 pure cross entropy, values outside [0,1] are an error.
func CombinedLoss(truth, pred *num.Array, weight float64, axes []int, smooth float64) (float64, error) {
	if err := checkWeight(weight); err != nil {
		return 0, err
	}
	dice, err := DiceLoss(truth, pred, axes, smooth)
	if err != nil {
		return 0, err
	}
	bce, err := CrossEntropy(truth, pred)
	if err != nil {
		return 0, err
	}
	return weight*dice + (1-weight)*bce, nil
}

// Jaccard returns the intersection over union score between the masks,
// reduced over every axis as per Dice.
func Jaccard(truth, pred *num.Array, smooth float64) (float64, error) {
	if err := check(truth, pred, smooth); err != nil {
		return 0, err
	}
	inter := num.Dot(truth, pred)
	union := num.Sum(truth) + num.Sum(pred) - inter
	return (inter + smooth) / (union + smooth), nil
}

// Sensitivity returns the true positive rate, the fraction of the ground
// truth foreground recovered by the prediction.
func Sensitivity(truth, pred *num.Array, smooth float64) (float64, error) {
	if err := check(truth, pred, smooth); err != nil {
		return 0, err
	}
	inter := num.Dot(truth, pred)
	return (inter + smooth) / (num.Sum(truth) + smooth), nil
}

// Specificity returns the true negative rate, the fraction of the ground
// truth background the prediction leaves empty.
func Specificity(truth, pred *num.Array, smooth float64) (float64, error) {
	if err := check(truth, pred, smooth); err != nil {
		return 0, err
	}
	n := float64(truth.Size())
	inter := num.Dot(truth, pred)
	neg := n - num.Sum(truth)
	trueNeg := neg - num.Sum(pred) + inter
	return (trueNeg + smooth) / (neg + smooth), nil
}

// per group sums of the intersection and of each mask with the given axes
// summed out
func groupSums(truth, pred *num.Array, axes []int) (inter, tsum, psum *num.Array) {
	prod := num.NewArray(truth.Dims()...)
	num.Mul(truth, pred, prod)
	return num.SumAxes(prod, axes), num.SumAxes(truth, axes), num.SumAxes(pred, axes)
}

func clip(p float64) float64 {
	return math.Min(math.Max(p, probEpsilon), 1-probEpsilon)
}

func check(truth, pred *num.Array, smooth float64) error {
	if err := checkShape(truth, pred); err != nil {
		return err
	}
	return checkSmooth(smooth)
}

func checkShape(truth, pred *num.Array) error {
	if !num.SameShape(truth.Dims(), pred.Dims()) {
		return ShapeError{Truth: truth.Dims(), Pred: pred.Dims()}
	}
	return nil
}

func checkSmooth(smooth float64) error {
	if !(smooth > 0) {
		return SmoothError{Value: smooth}
	}
	return nil
}

func checkWeight(weight float64) error {
	if !(weight >= 0 && weight <= 1) {
		return WeightError{Value: weight}
	}
	return nil
}

func checkAxes(axes []int, rank int) error {
	prev := 0
	for _, ax := range axes {
		if ax <= prev || ax >= rank {
			return AxisError{Axis: ax, Rank: rank}
		}
		prev = ax
	}
	return nil
}
