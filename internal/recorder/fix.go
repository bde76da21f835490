package recorder

import (
	"time"

	"backend-pathrecorder/internal/path"
)

const (
	// MinAccuracyM rejects fixes whose reported horizontal accuracy is
	// worse than this many meters.
	MinAccuracyM = 20.0
	// MinInterval rejects fixes arriving sooner than this after the last
	// accepted fix, by fix timestamp.
	MinInterval = 2 * time.Second
	// MinDistanceM suppresses distance contributions of steps shorter
	// than this, to keep GPS jitter out of the total while stationary.
	MinDistanceM = 2.0
	// AvgWindow is the size of the moving-average smoothing window.
	AvgWindow = 3
)

// RawFix is a single raw location sample as delivered by the fix source.
type RawFix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	AccuracyM float64   `json:"accuracy_m"`
}

// Filter gates raw fixes by accuracy and interval and smooths accepted
// ones over a bounded moving-average window. Rejection is silent: the
// only observable effect is that no Position comes out.
type Filter struct {
	window       []RawFix
	lastAccepted time.Time
}

// Accept runs the gates on fix and, when it passes, returns the smoothed
// position stamped with the current fix's timestamp and segmentID.
func (f *Filter) Accept(fix RawFix, segmentID string) (path.Position, bool) {
	if fix.AccuracyM > MinAccuracyM {
		return path.Position{}, false
	}
	if !f.lastAccepted.IsZero() && fix.Timestamp.Sub(f.lastAccepted) < MinInterval {
		return path.Position{}, false
	}
	f.lastAccepted = fix.Timestamp

	f.window = append(f.window, fix)
	if len(f.window) > AvgWindow {
		f.window = f.window[1:]
	}

	var lat, lng float64
	for _, w := range f.window {
		lat += w.Latitude
		lng += w.Longitude
	}
	n := float64(len(f.window))

	return path.Position{
		Latitude:  lat / n,
		Longitude: lng / n,
		Timestamp: fix.Timestamp,
		AccuracyM: fix.AccuracyM,
		SegmentID: segmentID,
	}, true
}

// Reset clears the smoothing window and the interval gate so the next
// accepted fix bootstraps fresh. Called on resume and start.
func (f *Filter) Reset() {
	f.window = f.window[:0]
	f.lastAccepted = time.Time{}
}
