package background

import (
	"sort"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//ErrEmptyInput is returned when background estimation is attempted with no sample frames
var ErrEmptyInput = errors.New("background: no frames available for estimation")

//ErrDimensionMismatch is returned when sample frames do not all share the same dimensions
var ErrDimensionMismatch = errors.New("background: sample frames have mismatched dimensions")

//Method selects the statistical strategy used to build the background image
type Method string

const (
	//MethodMedian takes the per-pixel, per-channel median over the sample set
	MethodMedian Method = "median"
	//MethodMean takes the per-pixel, per-channel arithmetic mean over the sample set
	MethodMean Method = "mean"
	//MethodAdaptiveMixture runs a mixture-of-Gaussians classifier over the sample set,
	//masks out pixels classified as foreground and medians the remaining background samples
	MethodAdaptiveMixture Method = "adaptiveMixture"
)

//Mixture model parameters used by MethodAdaptiveMixture
const (
	mixtureHistory       = 500
	mixtureVarThreshold  = 16
	mixtureDetectShadows = true
)

//ParseMethod maps a configuration string to a Method. 'gmm' is accepted as an
//alias for the adaptive mixture method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "median":
		return MethodMedian, nil
	case "mean":
		return MethodMean, nil
	case "adaptiveMixture", "gmm":
		return MethodAdaptiveMixture, nil
	}
	return "", errors.Errorf("background: unknown estimation method '%s'", s)
}

//Estimate computes a single reference background image from the given sample
//frames using the selected method. All frames must be 8-bit 3-channel images of
//identical dimensions. The returned Mat is owned by the caller.
func Estimate(frames []gocv.Mat, method Method) (gocv.Mat, error) {
	if len(frames) == 0 {
		return gocv.Mat{}, ErrEmptyInput
	}

	rows, cols := frames[0].Rows(), frames[0].Cols()
	for _, f := range frames {
		if f.Rows() != rows || f.Cols() != cols || f.Channels() != frames[0].Channels() {
			return gocv.Mat{}, ErrDimensionMismatch
		}
	}

	switch method {
	case MethodMedian:
		return aggregate(frames, medianOf)
	case MethodMean:
		return aggregate(frames, meanOf)
	case MethodAdaptiveMixture:
		return estimateAdaptive(frames)
	}

	return gocv.Mat{}, errors.Errorf("background: unknown estimation method '%s'", method)
}

//aggregate reduces the sample set element-wise over the raw interleaved BGR
//bytes. Every frame contributes one sample per byte position, so the reducer
//runs per pixel per channel.
func aggregate(frames []gocv.Mat, reduce func([]uint8) uint8) (gocv.Mat, error) {
	samples := make([][]uint8, len(frames))
	for i, f := range frames {
		b, err := f.DataPtrUint8()
		if err != nil {
			//Region views are not contiguous; fall back to a copy
			b = f.ToBytes()
		}
		samples[i] = b
	}

	out := make([]uint8, len(samples[0]))
	vals := make([]uint8, len(frames))
	for i := range out {
		for j := range samples {
			vals[j] = samples[j][i]
		}
		out[i] = reduce(vals)
	}

	return gocv.NewMatFromBytes(frames[0].Rows(), frames[0].Cols(), frames[0].Type(), out)
}

//medianOf mutates it's argument (sorts in place). For an even sample count the
//two middle values are averaged and truncated, matching an exact statistical median.
func medianOf(vals []uint8) uint8 {
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return uint8((int(vals[mid-1]) + int(vals[mid])) / 2)
}

//meanOf truncates toward zero
func meanOf(vals []uint8) uint8 {
	sum := 0
	for _, v := range vals {
		sum += int(v)
	}
	return uint8(sum / len(vals))
}

//estimateAdaptive feeds the sample frames through a MOG2 background subtractor,
//zeroes out every pixel the mixture classifies as foreground or shadow, then
//takes the per-pixel median over the masked frames. Pixels that were never
//classified as background stay zero in every masked sample and so end up zero
//in the result.
func estimateAdaptive(frames []gocv.Mat) (gocv.Mat, error) {
	mog2 := gocv.NewBackgroundSubtractorMOG2WithParams(mixtureHistory, mixtureVarThreshold, mixtureDetectShadows)
	defer mog2.Close()

	fgMask := gocv.NewMat()
	defer fgMask.Close()
	bgMask := gocv.NewMat()
	defer bgMask.Close()

	masked := make([]gocv.Mat, 0, len(frames))
	defer func() {
		for _, m := range masked {
			m.Close()
		}
	}()

	for _, f := range frames {
		mog2.Apply(f, &fgMask)

		//foreground pixels are 255 and shadows 127 in the MOG2 mask; keep only exact zeroes
		gocv.Threshold(fgMask, &bgMask, 0, 255, gocv.ThresholdBinaryInv)

		m := gocv.NewMatWithSize(f.Rows(), f.Cols(), f.Type())
		f.CopyToWithMask(&m, bgMask)
		masked = append(masked, m)
	}

	return aggregate(masked, medianOf)
}
