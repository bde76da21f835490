package recorder

import (
	"backend-pathrecorder/internal/geo"
	"backend-pathrecorder/internal/path"
)

// Accumulator turns smoothed positions into cumulative great-circle
// distance. Steps shorter than MinDistanceM contribute nothing and do
// not advance the anchor, so slow drift still counts once it adds up.
type Accumulator struct {
	total  float64
	anchor *path.Position
}

// Add feeds the next smoothed position and returns the meters added to
// the total. The first position after a reset only sets the anchor.
func (a *Accumulator) Add(p path.Position) float64 {
	if a.anchor == nil {
		a.anchor = &p
		return 0
	}
	d := geo.Haversine(a.anchor.Latitude, a.anchor.Longitude, p.Latitude, p.Longitude)
	if d < MinDistanceM {
		return 0
	}
	a.total += d
	a.anchor = &p
	return d
}

func (a *Accumulator) Total() float64 {
	return a.total
}

// Reset sets the running total (used when rehydrating a session) and
// drops the anchor so the next position bootstraps.
func (a *Accumulator) Reset(total float64) {
	a.total = total
	a.anchor = nil
}

// DropAnchor forgets the anchor position without touching the total, so
// the next accepted fix cannot produce a spurious jump from a stale
// point. Called on resume-from-pause.
func (a *Accumulator) DropAnchor() {
	a.anchor = nil
}
