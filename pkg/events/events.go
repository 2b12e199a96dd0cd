package events

import (
	"fmt"
	"image"
	"time"
)

//Box is one detected region in frame pixel coordinates
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

//MotionEvent is one logged occurrence of one-or-more qualifying regions
//detected in a single frame. Events are never mutated after creation; the
//bounding box list is an owned copy, not a view into any mask.
type MotionEvent struct {
	Timestamp     float64 `json:"timestamp"`
	Datetime      string  `json:"datetime"`
	ObjectCount   int     `json:"object_count"`
	Confidence    float64 `json:"confidence"`
	BoundingBoxes []Box   `json:"bounding_boxes"`
}

//Time reconstructs the event's wall-clock instant from it's epoch timestamp
func (e MotionEvent) Time() time.Time {
	sec := int64(e.Timestamp)
	nsec := int64((e.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

func (e MotionEvent) String() string {
	return fmt.Sprintf("MotionEvent(%s, objects=%d)", e.Datetime, e.ObjectCount)
}

func newEvent(now time.Time, regions []image.Rectangle, confidence float64) MotionEvent {
	boxes := make([]Box, len(regions))
	for i, r := range regions {
		boxes[i] = Box{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
	}

	return MotionEvent{
		Timestamp:     float64(now.UnixNano()) / 1e9,
		Datetime:      now.Format(time.RFC3339Nano),
		ObjectCount:   len(regions),
		Confidence:    confidence,
		BoundingBoxes: boxes,
	}
}
