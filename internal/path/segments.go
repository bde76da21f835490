package path

import (
	"sort"
	"time"

	"backend-pathrecorder/internal/geo"
)

// Coordinate is a bare lat/lng pair for rendering consumers.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Polyline is one drawable run of a path. Consumers must not connect
// points across polyline boundaries.
type Polyline struct {
	SegmentID   string       `json:"segment_id"`
	Coordinates []Coordinate `json:"coordinates"`
}

// SegmentRange is the timestamp span covered by one segment's positions.
type SegmentRange struct {
	SegmentID string
	Start     time.Time
	End       time.Time
	Positions []Position
}

// SplitSegments partitions locations into polylines, one per contiguous
// run of a segment id, points within a run ordered by timestamp.
func SplitSegments(locations []Position) []Polyline {
	var lines []Polyline
	for _, seg := range SegmentRanges(locations) {
		line := Polyline{SegmentID: seg.SegmentID}
		for _, p := range seg.Positions {
			line.Coordinates = append(line.Coordinates, Coordinate{Latitude: p.Latitude, Longitude: p.Longitude})
		}
		lines = append(lines, line)
	}
	return lines
}

// Region is a viewport that covers a path with some margin, for map
// consumers to frame the route.
type Region struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

const minRegionRadiusM = 50.0

// FitRegion computes the viewport around the positions' center, padded
// so the route does not touch the edges. Empty input yields the zero
// region.
func FitRegion(locations []Position) Region {
	if len(locations) == 0 {
		return Region{}
	}

	minLat, maxLat := locations[0].Latitude, locations[0].Latitude
	minLng, maxLng := locations[0].Longitude, locations[0].Longitude
	for _, p := range locations[1:] {
		if p.Latitude < minLat {
			minLat = p.Latitude
		}
		if p.Latitude > maxLat {
			maxLat = p.Latitude
		}
		if p.Longitude < minLng {
			minLng = p.Longitude
		}
		if p.Longitude > maxLng {
			maxLng = p.Longitude
		}
	}

	centerLat := (minLat + maxLat) / 2
	centerLng := (minLng + maxLng) / 2
	radius := minRegionRadiusM
	for _, p := range locations {
		if d := geo.Haversine(centerLat, centerLng, p.Latitude, p.Longitude); d > radius {
			radius = d
		}
	}

	var r Region
	r.MinLat, r.MaxLat, r.MinLng, r.MaxLng = geo.BoundingBox(centerLat, centerLng, radius*1.2)
	return r
}

// SegmentRanges partitions locations into contiguous segment runs with
// their inclusive timestamp bounds.
func SegmentRanges(locations []Position) []SegmentRange {
	var ranges []SegmentRange
	for _, p := range locations {
		n := len(ranges)
		if n == 0 || ranges[n-1].SegmentID != p.SegmentID {
			ranges = append(ranges, SegmentRange{SegmentID: p.SegmentID})
			n++
		}
		ranges[n-1].Positions = append(ranges[n-1].Positions, p)
	}
	for i := range ranges {
		sort.SliceStable(ranges[i].Positions, func(a, b int) bool {
			return ranges[i].Positions[a].Timestamp.Before(ranges[i].Positions[b].Timestamp)
		})
		ranges[i].Start = ranges[i].Positions[0].Timestamp
		ranges[i].End = ranges[i].Positions[len(ranges[i].Positions)-1].Timestamp
	}
	return ranges
}
