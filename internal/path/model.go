package path

import "time"

// Position is a single smoothed GPS point in a path's history. Positions
// are immutable once appended; the segment id groups contiguous points
// recorded without an intervening pause or stop.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	AccuracyM float64   `json:"accuracy_m"`
	SegmentID string    `json:"segment_id"`
}

// Photo is the metadata of a picture attached to a path. The image bytes
// live elsewhere; ImageRef points at them.
type Photo struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	ImageRef  string    `json:"image_ref"`
}

// Record is a finalized recording. Locations are append-only across edit
// sessions; photo removal deletes Photo entries only, never Positions.
type Record struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	StartTime     time.Time  `json:"start_time"`
	TotalDuration float64    `json:"total_duration_sec"`
	TotalDistance float64    `json:"total_distance_m"`
	Locations     []Position `json:"locations"`
	Photos        []Photo    `json:"photos"`
}

// SessionState is the durable checkpoint of an in-progress recording.
// An empty Locations list means there is nothing to restore.
type SessionState struct {
	Locations       []Position `json:"locations"`
	TotalDistance   float64    `json:"total_distance_m"`
	ElapsedSec      float64    `json:"elapsed_sec"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	IsPaused        bool       `json:"is_paused"`
	EditingPathID   string     `json:"editing_path_id,omitempty"`
	EditingPathName string     `json:"editing_path_name,omitempty"`
	Photos          []Photo    `json:"photos"`
}
