package events

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

//csvHeader is the flat event schema; bounding boxes are omitted from CSV rows
var csvHeader = []string{"timestamp", "datetime", "object_count", "confidence"}

//ExportJSON serialises the full event log to the given path as an indented
//JSON array and returns the path written. An empty path picks a timestamped
//filename in the working directory. Failures never touch the in-memory log.
func (r *Recorder) ExportJSON(path string) (string, error) {
	events := r.Events()

	if path == "" {
		path = fmt.Sprintf("motion_events_%d.json", r.now().Unix())
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "ExportJSON: could not marshal events")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "ExportJSON: could not write '%s'", path)
	}

	log.Printf("ExportJSON: Exported %d events to '%s'", len(events), path)
	return path, nil
}

//ExportCSV writes one row per event to the given path. With appendRows set the
//rows are appended to an existing file; otherwise the file is truncated and a
//header row written first.
func (r *Recorder) ExportCSV(path string, appendRows bool) error {
	events := r.Events()

	flags := os.O_CREATE | os.O_WRONLY
	if appendRows {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return errors.Wrapf(err, "ExportCSV: could not open '%s'", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if !appendRows {
		if err := w.Write(csvHeader); err != nil {
			return errors.Wrap(err, "ExportCSV: could not write header")
		}
	}

	for _, ev := range events {
		row := []string{
			strconv.FormatFloat(ev.Timestamp, 'f', -1, 64),
			ev.Datetime,
			strconv.Itoa(ev.ObjectCount),
			strconv.FormatFloat(ev.Confidence, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "ExportCSV: could not write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "ExportCSV: could not flush '%s'", path)
	}

	log.Printf("ExportCSV: Wrote %d events to '%s'", len(events), path)
	return nil
}

//InitCSV truncates the file at path and writes the header row only, matching
//the recorder's append schema
func InitCSV(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "InitCSV: could not create '%s'", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errors.Wrap(err, "InitCSV: could not write header")
	}
	w.Flush()
	return errors.Wrap(w.Error(), "InitCSV")
}

//ConsoleBell is the default alert hook: an ASCII bell plus a log line
func ConsoleBell(ev MotionEvent) {
	fmt.Print("\a")
	log.Printf("Alert: Motion detected, %d objects (confidence: %.2f)", ev.ObjectCount, ev.Confidence)
}
