package videoio

import (
	"image"
	"log"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

//Writer records processed frames to an XVID (MPEG-4) video file
type Writer struct {
	writer *gocv.VideoWriter
	path   string
	width  int
	height int
}

//NewWriter opens the output file for recording
func NewWriter(path string, fps float64, width, height int) (*Writer, error) {
	w, err := gocv.VideoWriterFile(path, "XVID", fps, width, height, true)
	if err != nil {
		return nil, errors.Wrapf(err, "NewWriter: could not create video writer for '%s'", path)
	}
	if !w.IsOpened() {
		w.Close()
		return nil, errors.Errorf("NewWriter: could not open video writer for '%s'", path)
	}

	log.Printf("NewWriter: Started video recording to '%s'", path)
	return &Writer{writer: w, path: path, width: width, height: height}, nil
}

//Write appends one frame, resizing it to the recording geometry when needed
func (w *Writer) Write(frame gocv.Mat) error {
	if frame.Cols() != w.width || frame.Rows() != w.height {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(frame, &resized, image.Pt(w.width, w.height), 0, 0, gocv.InterpolationLinear)
		return errors.Wrap(w.writer.Write(resized), "Write")
	}
	return errors.Wrap(w.writer.Write(frame), "Write")
}

//Close stops the recording and releases the writer
func (w *Writer) Close() error {
	log.Printf("Close: Stopped video recording: '%s'", w.path)
	return w.writer.Close()
}
