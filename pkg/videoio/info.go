package videoio

import (
	"os"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//VideoInfo describes a video file's properties
type VideoInfo struct {
	Path       string  `json:"path"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
	FrameCount int     `json:"frame_count"`
	Duration   float64 `json:"duration"`
}

//Info reads the properties of a video file without decoding it
func Info(path string) (VideoInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return VideoInfo{}, errors.Wrapf(ErrSourceUnavailable, "video file not found: '%s'", path)
	}

	cap, err := gocv.VideoCaptureFile(path)
	if err != nil || !cap.IsOpened() {
		if cap != nil {
			cap.Close()
		}
		return VideoInfo{}, errors.Wrapf(ErrSourceUnavailable, "could not open video file '%s'", path)
	}
	defer cap.Close()

	fps := cap.Get(gocv.VideoCaptureFPS)
	frameCount := int(cap.Get(gocv.VideoCaptureFrameCount))

	duration := 0.0
	if fps > 0 {
		duration = float64(frameCount) / fps
	}

	return VideoInfo{
		Path:       path,
		Width:      int(cap.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(cap.Get(gocv.VideoCaptureFrameHeight)),
		FPS:        fps,
		FrameCount: frameCount,
		Duration:   duration,
	}, nil
}

//ListCameras probes device indexes 0..max-1 and returns the ones that open and
//deliver a frame
func ListCameras(max int) []int {
	available := make([]int, 0)

	img := gocv.NewMat()
	defer img.Close()

	for i := 0; i < max; i++ {
		cap, err := gocv.VideoCaptureDevice(i)
		if err != nil || !cap.IsOpened() {
			if cap != nil {
				cap.Close()
			}
			continue
		}
		if cap.Read(&img) && !img.Empty() {
			available = append(available, i)
		}
		cap.Close()
	}

	return available
}
