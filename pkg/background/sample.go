package background

import (
	"context"
	"log"

	"gocv.io/x/gocv"
)

//FrameReader is the slice of the video source the sampler needs: one blocking
//read into the destination Mat, reporting false at end of stream.
type FrameReader interface {
	Read(dst *gocv.Mat) bool
}

//Sample reads up to numFrames frames from the source into an owned buffer.
//A source that ends early is fine as long as at least one frame was read;
//zero frames is ErrEmptyInput. The caller must Close every returned Mat.
func Sample(ctx context.Context, src FrameReader, numFrames int) ([]gocv.Mat, error) {
	log.Printf("Sample: Capturing up to %d frames to build background model", numFrames)

	img := gocv.NewMat()
	defer img.Close()

	frames := make([]gocv.Mat, 0, numFrames)
	for len(frames) < numFrames {
		if ctx.Err() != nil {
			break
		}

		if !src.Read(&img) {
			log.Printf("Sample: Source ended after %d frames", len(frames))
			break
		}
		frames = append(frames, img.Clone())
	}

	if len(frames) == 0 {
		return nil, ErrEmptyInput
	}

	return frames, nil
}

//CloseFrames releases a sample buffer once the background has been computed
func CloseFrames(frames []gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
