package videoio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceIndex(t *testing.T) {
	tests := []struct {
		source   string
		idx      int
		isDevice bool
	}{
		{source: "0", idx: 0, isDevice: true},
		{source: "2", idx: 2, isDevice: true},
		{source: "video.mp4", isDevice: false},
		{source: "/recordings/cam1.avi", isDevice: false},
		{source: "", isDevice: false},
	}

	for _, tc := range tests {
		t.Run(tc.source, func(t *testing.T) {
			idx, isDevice := deviceIndex(tc.source)
			assert.Equal(t, tc.isDevice, isDevice)
			if tc.isDevice {
				assert.Equal(t, tc.idx, idx)
			}
		})
	}
}

func TestInfoMissingFile(t *testing.T) {
	_, err := Info("no_such_video.mp4")
	require.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("no_such_video.mp4", 640, 480)
	require.ErrorIs(t, err, ErrSourceUnavailable)
}
