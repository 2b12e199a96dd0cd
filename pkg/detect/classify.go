package detect

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//ErrDimensionMismatch is returned when the frame and background image shapes differ.
//It indicates a configuration error: the background must be rebuilt for the new geometry.
var ErrDimensionMismatch = errors.New("detect: frame and background dimensions differ")

const (
	//DefaultThreshold is the grayscale difference above which a pixel counts as foreground
	DefaultThreshold = 30
	//DefaultBlurSize is the median smoothing window applied to the binary mask
	DefaultBlurSize = 5
)

//Classify compares one frame against the fixed background and returns the
//isolated-motion image (original pixels where the mask is set, zero elsewhere)
//and the binary motion mask. Both returned Mats are owned by the caller.
//
//The subtraction runs on a signed 16-bit copy of both images so the full
//-255..255 difference range survives, then the absolute difference is reduced
//to grayscale and thresholded. blurSize is normalized to the nearest odd value >= 1.
func Classify(frame, background gocv.Mat, threshold, blurSize int) (gocv.Mat, gocv.Mat, error) {
	if frame.Rows() != background.Rows() || frame.Cols() != background.Cols() || frame.Channels() != background.Channels() {
		return gocv.Mat{}, gocv.Mat{}, errors.Wrapf(ErrDimensionMismatch, "frame %dx%d vs background %dx%d",
			frame.Cols(), frame.Rows(), background.Cols(), background.Rows())
	}

	if blurSize < 1 {
		blurSize = 1
	}
	if blurSize%2 == 0 {
		blurSize++
	}

	frameSigned := gocv.NewMat()
	defer frameSigned.Close()
	backgroundSigned := gocv.NewMat()
	defer backgroundSigned.Close()

	frame.ConvertTo(&frameSigned, gocv.MatTypeCV16SC3)
	background.ConvertTo(&backgroundSigned, gocv.MatTypeCV16SC3)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(frameSigned, backgroundSigned, &diff)

	diff8 := gocv.NewMat()
	defer diff8.Close()
	diff.ConvertTo(&diff8, gocv.MatTypeCV8UC3)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(diff8, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	gocv.Threshold(gray, &mask, float32(threshold), 255, gocv.ThresholdBinary)

	//median smoothing removes salt-and-pepper noise without eroding large regions
	if blurSize > 1 {
		gocv.MedianBlur(mask, &mask, blurSize)
	}

	isolated := gocv.NewMatWithSize(frame.Rows(), frame.Cols(), frame.Type())
	frame.CopyToWithMask(&isolated, mask)

	return isolated, mask, nil
}
