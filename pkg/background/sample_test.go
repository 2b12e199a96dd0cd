package background

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

//stubReader plays back a fixed frame sequence
type stubReader struct {
	frames []gocv.Mat
	next   int
}

func (s *stubReader) Read(dst *gocv.Mat) bool {
	if s.next >= len(s.frames) {
		return false
	}
	s.frames[s.next].CopyTo(dst)
	s.next++
	return true
}

func TestSampleCapsAtRequestedCount(t *testing.T) {
	src := &stubReader{frames: []gocv.Mat{solid(2, 2, 1), solid(2, 2, 2), solid(2, 2, 3)}}
	defer CloseFrames(src.frames)

	frames, err := Sample(context.Background(), src, 2)
	require.NoError(t, err)
	defer CloseFrames(frames)

	assert.Len(t, frames, 2)
}

func TestSampleAcceptsShortStream(t *testing.T) {
	src := &stubReader{frames: []gocv.Mat{solid(2, 2, 1)}}
	defer CloseFrames(src.frames)

	frames, err := Sample(context.Background(), src, 100)
	require.NoError(t, err)
	defer CloseFrames(frames)

	assert.Len(t, frames, 1)
}

func TestSampleEmptyStream(t *testing.T) {
	_, err := Sample(context.Background(), &stubReader{}, 10)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestSampleCancelledBeforeFirstFrame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &stubReader{frames: []gocv.Mat{solid(2, 2, 1)}}
	defer CloseFrames(src.frames)

	_, err := Sample(ctx, src, 10)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestSampleClonesFrames(t *testing.T) {
	original := solid(2, 2, 7)
	defer original.Close()
	src := &stubReader{frames: []gocv.Mat{original}}

	frames, err := Sample(context.Background(), src, 1)
	require.NoError(t, err)
	defer CloseFrames(frames)

	//the sampled frame must be an owned copy, not a view of the read buffer
	original.SetUCharAt(0, 0, 99)
	assert.Equal(t, uint8(7), frames[0].GetUCharAt(0, 0))
}
