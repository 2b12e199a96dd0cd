package videoio

import (
	"image"
	"log"
	"strconv"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//ErrSourceUnavailable is returned when a camera or video file cannot be opened
var ErrSourceUnavailable = errors.New("videoio: video source unavailable")

//FrameSource supplies a sequence of fixed-size color frames from a camera
//device or a video file. Frames read through it are resized to the configured
//dimensions so every consumer sees one geometry.
type FrameSource struct {
	cap    *gocv.VideoCapture
	source string
	isFile bool
	width  int
	height int
}

//deviceIndex reports whether the source identifier names a camera device
//(a plain integer) rather than a file path
func deviceIndex(source string) (int, bool) {
	idx, err := strconv.Atoi(source)
	return idx, err == nil
}

//Open opens a camera (numeric identifier) or a video file and fixes the frame
//geometry every Read will deliver
func Open(source string, width, height int) (*FrameSource, error) {
	var cap *gocv.VideoCapture
	var err error

	idx, isDevice := deviceIndex(source)
	if isDevice {
		cap, err = gocv.VideoCaptureDevice(idx)
	} else {
		cap, err = gocv.VideoCaptureFile(source)
	}
	if err != nil || !cap.IsOpened() {
		if cap != nil {
			cap.Close()
		}
		return nil, errors.Wrapf(ErrSourceUnavailable, "could not open '%s'", source)
	}

	if isDevice {
		log.Printf("Open: Opened camera source: %s", source)
	} else {
		log.Printf("Open: Opened video file: %s (%vx%v @ %v FPS)", source,
			int(cap.Get(gocv.VideoCaptureFrameWidth)), int(cap.Get(gocv.VideoCaptureFrameHeight)), cap.Get(gocv.VideoCaptureFPS))
	}

	return &FrameSource{
		cap:    cap,
		source: source,
		isFile: !isDevice,
		width:  width,
		height: height,
	}, nil
}

//Read reads the next frame into dst, resized to the source's fixed dimensions.
//It returns false at end of stream.
func (s *FrameSource) Read(dst *gocv.Mat) bool {
	if !s.cap.Read(dst) || dst.Empty() {
		return false
	}
	if dst.Cols() != s.width || dst.Rows() != s.height {
		gocv.Resize(*dst, dst, image.Pt(s.width, s.height), 0, 0, gocv.InterpolationLinear)
	}
	return true
}

//Dimensions returns the fixed frame geometry delivered by Read
func (s *FrameSource) Dimensions() (width, height int) {
	return s.width, s.height
}

//FPS returns the source's reported frame rate, or fallback when the source
//does not report one (common for cameras)
func (s *FrameSource) FPS(fallback float64) float64 {
	fps := s.cap.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		return fallback
	}
	return fps
}

//FrameCount returns the total frame count for file sources, -1 for cameras
func (s *FrameSource) FrameCount() int {
	if !s.isFile {
		return -1
	}
	return int(s.cap.Get(gocv.VideoCaptureFrameCount))
}

//Seek positions a file source at the given frame number. Cameras cannot seek.
func (s *FrameSource) Seek(frame int) bool {
	if !s.isFile {
		return false
	}
	s.cap.Set(gocv.VideoCapturePosFrames, float64(frame))
	return true
}

//Close releases the underlying capture handle
func (s *FrameSource) Close() error {
	return s.cap.Close()
}
