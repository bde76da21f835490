package recorder

import (
	"encoding/json"
	"log"

	"backend-pathrecorder/internal/path"
)

// Summary is the live digest pushed on every tick and accepted fix and
// returned by the status endpoint.
type Summary struct {
	Type       string           `json:"type"`
	IsActive   bool             `json:"is_active"`
	IsPaused   bool             `json:"is_paused"`
	DistanceM  float64          `json:"distance_m"`
	ElapsedSec float64          `json:"elapsed_sec"`
	Latest     *path.Coordinate `json:"latest,omitempty"`
}

// PolylinesEvent carries the renderable path, recomputed on every
// accepted fix.
type PolylinesEvent struct {
	Type     string           `json:"type"`
	Segments []path.Polyline  `json:"segments"`
	Latest   *path.Coordinate `json:"latest,omitempty"`
}

func (r *Recorder) summaryLocked() Summary {
	return Summary{
		Type:       "summary",
		IsActive:   r.active,
		IsPaused:   r.session.IsPaused,
		DistanceM:  r.session.TotalDistance,
		ElapsedSec: r.session.ElapsedSec,
		Latest:     r.latest,
	}
}

func (r *Recorder) broadcastSummary() {
	if r.hub == nil {
		return
	}
	r.publish(r.summaryLocked())
}

func (r *Recorder) broadcastPolylines() {
	if r.hub == nil {
		return
	}
	r.publish(PolylinesEvent{
		Type:     "polylines",
		Segments: path.SplitSegments(r.session.Locations),
		Latest:   r.latest,
	})
}

func (r *Recorder) publish(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal live event: %v", err)
		return
	}
	r.hub.Broadcast(LiveTopic, payload)
}
