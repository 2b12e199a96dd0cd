package events

import (
	"image"
	"log"
	"sync"
	"time"
)

//Recorder keeps the append-only in-memory motion event log. It is constructed
//explicitly and passed to whatever drives the detection loop; there is no
//package-level instance. Safe for one writer and any number of readers - the
//capture/processing split in the pipeline means readers (API, exports) run on
//other goroutines.
type Recorder struct {
	mu     sync.Mutex
	events []MotionEvent
	now    func() time.Time

	//OnEvent is an optional notification hook invoked after each recorded
	//event. Failures inside the hook are isolated and logged; they never
	//abort the processing loop.
	OnEvent func(MotionEvent)
}

//NewRecorder returns an empty event log
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

//RecordIfMotion builds and appends a MotionEvent when regions is non-empty and
//returns it. An empty region list records nothing and returns nil.
func (r *Recorder) RecordIfMotion(regions []image.Rectangle, confidence float64) *MotionEvent {
	if len(regions) == 0 {
		return nil
	}

	ev := newEvent(r.now(), regions, confidence)

	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()

	if r.OnEvent != nil {
		r.notify(ev)
	}

	return &ev
}

func (r *Recorder) notify(ev MotionEvent) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("Recorder: Alert hook failed, got '%v'", p)
		}
	}()
	r.OnEvent(ev)
}

//RecentEvents returns the events whose timestamp falls within window of now,
//in insertion order. The log itself is never trimmed.
func (r *Recorder) RecentEvents(window time.Duration) []MotionEvent {
	cutoff := float64(r.now().Add(-window).UnixNano()) / 1e9

	r.mu.Lock()
	defer r.mu.Unlock()

	recent := make([]MotionEvent, 0)
	for _, ev := range r.events {
		if ev.Timestamp > cutoff {
			recent = append(recent, ev)
		}
	}
	return recent
}

//Events returns a snapshot copy of the full log in insertion order
func (r *Recorder) Events() []MotionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]MotionEvent, len(r.events))
	copy(snapshot, r.events)
	return snapshot
}

//Clear drops every recorded event
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

//Statistics summarises the event log. With zero events only TotalEvents is
//populated - every other field is nil and omitted from JSON, and callers must
//handle that shape explicitly.
type Statistics struct {
	TotalEvents            int      `json:"total_events"`
	TotalObjectsDetected   *int     `json:"total_objects_detected,omitempty"`
	AverageObjectsPerEvent *float64 `json:"average_objects_per_event,omitempty"`
	EventsPerHour          *float64 `json:"events_per_hour,omitempty"`
	FirstEvent             *string  `json:"first_event,omitempty"`
	LastEvent              *string  `json:"last_event,omitempty"`
}

//Statistics computes totals, the average object count per event and the event
//rate over the last 24 hours
func (r *Recorder) Statistics() Statistics {
	events := r.Events()
	if len(events) == 0 {
		return Statistics{}
	}

	totalObjects := 0
	for _, ev := range events {
		totalObjects += ev.ObjectCount
	}
	avgObjects := float64(totalObjects) / float64(len(events))
	eventsPerHour := float64(len(r.RecentEvents(24*time.Hour))) / 24

	first := events[0].Datetime
	last := events[len(events)-1].Datetime

	return Statistics{
		TotalEvents:            len(events),
		TotalObjectsDetected:   &totalObjects,
		AverageObjectsPerEvent: &avgObjects,
		EventsPerHour:          &eventsPerHour,
		FirstEvent:             &first,
		LastEvent:              &last,
	}
}
