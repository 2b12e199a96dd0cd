package events

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func regions(n int) []image.Rectangle {
	rs := make([]image.Rectangle, n)
	for i := range rs {
		rs[i] = image.Rect(i*10, i*10, i*10+50, i*10+50)
	}
	return rs
}

func TestRecordIfMotionEmptyRegions(t *testing.T) {
	r := NewRecorder()

	ev := r.RecordIfMotion(nil, 0.8)
	assert.Nil(t, ev)
	assert.Empty(t, r.Events())

	ev = r.RecordIfMotion([]image.Rectangle{}, 0.8)
	assert.Nil(t, ev)
	assert.Empty(t, r.Events())
}

func TestRecordIfMotionAppendsOneEvent(t *testing.T) {
	r := NewRecorder()
	now := time.Date(2024, 5, 14, 10, 30, 0, 0, time.UTC)
	r.now = fixedClock(now)

	ev := r.RecordIfMotion(regions(3), 0.8)
	require.NotNil(t, ev)
	assert.Equal(t, 3, ev.ObjectCount)
	assert.Equal(t, 0.8, ev.Confidence)
	assert.Len(t, ev.BoundingBoxes, 3)
	assert.Equal(t, Box{X: 10, Y: 10, Width: 50, Height: 50}, ev.BoundingBoxes[1])
	assert.Equal(t, float64(now.UnixNano())/1e9, ev.Timestamp)

	require.Len(t, r.Events(), 1)
	assert.Equal(t, *ev, r.Events()[0])
}

func TestRecentEventsWindow(t *testing.T) {
	r := NewRecorder()
	base := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

	r.now = fixedClock(base.Add(-2 * time.Hour))
	r.RecordIfMotion(regions(1), 0.8)
	r.now = fixedClock(base.Add(-30 * time.Minute))
	r.RecordIfMotion(regions(2), 0.8)
	r.now = fixedClock(base.Add(-time.Minute))
	r.RecordIfMotion(regions(3), 0.8)

	r.now = fixedClock(base)
	recent := r.RecentEvents(time.Hour)
	require.Len(t, recent, 2)
	//insertion order is chronological order
	assert.Equal(t, 2, recent[0].ObjectCount)
	assert.Equal(t, 3, recent[1].ObjectCount)

	assert.Len(t, r.RecentEvents(24*time.Hour), 3)
	assert.Empty(t, r.RecentEvents(time.Second))
	//recent queries filter but never delete
	assert.Len(t, r.Events(), 3)
}

func TestStatisticsZeroEvents(t *testing.T) {
	r := NewRecorder()

	stats := r.Statistics()
	assert.Equal(t, 0, stats.TotalEvents)
	assert.Nil(t, stats.TotalObjectsDetected)
	assert.Nil(t, stats.AverageObjectsPerEvent)
	assert.Nil(t, stats.EventsPerHour)
	assert.Nil(t, stats.FirstEvent)
	assert.Nil(t, stats.LastEvent)

	data, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_events": 0}`, string(data))
}

func TestStatisticsCounts(t *testing.T) {
	r := NewRecorder()
	now := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)
	r.now = fixedClock(now)

	for _, n := range []int{1, 2, 3} {
		r.RecordIfMotion(regions(n), 0.8)
	}

	stats := r.Statistics()
	assert.Equal(t, 3, stats.TotalEvents)
	require.NotNil(t, stats.TotalObjectsDetected)
	assert.Equal(t, 6, *stats.TotalObjectsDetected)
	require.NotNil(t, stats.AverageObjectsPerEvent)
	assert.Equal(t, 2.0, *stats.AverageObjectsPerEvent)
	require.NotNil(t, stats.EventsPerHour)
	assert.Equal(t, 3.0/24, *stats.EventsPerHour)
	require.NotNil(t, stats.FirstEvent)
	require.NotNil(t, stats.LastEvent)
	assert.Equal(t, now.Format(time.RFC3339Nano), *stats.FirstEvent)
}

func TestClear(t *testing.T) {
	r := NewRecorder()
	r.RecordIfMotion(regions(1), 0.8)
	require.Len(t, r.Events(), 1)

	r.Clear()
	assert.Empty(t, r.Events())
	assert.Equal(t, 0, r.Statistics().TotalEvents)
}

func TestAlertHookFailureIsIsolated(t *testing.T) {
	r := NewRecorder()
	r.OnEvent = func(MotionEvent) { panic("alert device gone") }

	ev := r.RecordIfMotion(regions(2), 0.8)
	require.NotNil(t, ev)
	assert.Len(t, r.Events(), 1)
}

func TestExportJSONRoundTrip(t *testing.T) {
	r := NewRecorder()
	now := time.Date(2024, 5, 14, 12, 0, 0, 123456789, time.UTC)
	r.now = fixedClock(now)

	counts := []int{1, 2, 3}
	for _, n := range counts {
		r.RecordIfMotion(regions(n), 0.8)
	}

	path := filepath.Join(t.TempDir(), "events.json")
	written, err := r.ExportJSON(path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed []MotionEvent
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed, 3)

	for i, ev := range parsed {
		assert.Equal(t, counts[i], ev.ObjectCount)

		parsedTime, err := time.Parse(time.RFC3339Nano, ev.Datetime)
		require.NoError(t, err)
		assert.InDelta(t, float64(parsedTime.UnixNano())/1e9, ev.Timestamp, 1e-3)
	}
}

func TestExportJSONEmptyLogIsEmptyArray(t *testing.T) {
	r := NewRecorder()

	path := filepath.Join(t.TempDir(), "empty.json")
	_, err := r.ExportJSON(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed []MotionEvent
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.NotNil(t, parsed)
	assert.Empty(t, parsed)
}

func TestExportCSV(t *testing.T) {
	r := NewRecorder()
	r.now = fixedClock(time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC))
	r.RecordIfMotion(regions(2), 0.8)

	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, r.ExportCSV(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,datetime,object_count,confidence", lines[0])
	assert.Contains(t, lines[1], ",2,0.8")

	//appending must not repeat the header
	r.RecordIfMotion(regions(1), 0.8)
	require.NoError(t, r.ExportCSV(path, true))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4) //header + first export (1 row) + appended export (2 rows)
	assert.NotContains(t, lines[2], "timestamp")
}

func TestEventTimeRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 14, 12, 0, 0, 500000000, time.UTC)
	ev := newEvent(now, regions(1), 0.8)

	assert.WithinDuration(t, now, ev.Time(), time.Millisecond)
}
