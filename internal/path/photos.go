package path

import (
	"sort"
	"time"

	"backend-pathrecorder/internal/geo"

	"github.com/google/uuid"
)

// ClusterRadiusM is the great-circle distance under which photos share a
// single map marker.
const ClusterRadiusM = 10.0

// CandidatePhoto is a picked photo offered for association with a path.
type CandidatePhoto struct {
	Timestamp time.Time `json:"timestamp"`
	ImageRef  string    `json:"image_ref"`
}

// PhotoCluster is one map marker and the photos it stands for, ordered
// by capture time.
type PhotoCluster struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Photos    []Photo `json:"photos"`
}

// AssociatePhotos matches candidates against the record's segments: a
// candidate belongs to a segment when its timestamp falls inside the
// segment's time range, boundaries inclusive, and is geotagged with the
// coordinate of that segment's temporally closest position. Candidates
// matching no segment are returned as rejected.
func AssociatePhotos(record Record, candidates []CandidatePhoto) (added []Photo, rejected []CandidatePhoto) {
	ranges := SegmentRanges(record.Locations)
	for _, c := range candidates {
		matched := false
		for _, seg := range ranges {
			if c.Timestamp.Before(seg.Start) || c.Timestamp.After(seg.End) {
				continue
			}
			closest := seg.Positions[0]
			best := absDuration(closest.Timestamp.Sub(c.Timestamp))
			for _, p := range seg.Positions[1:] {
				if d := absDuration(p.Timestamp.Sub(c.Timestamp)); d < best {
					best = d
					closest = p
				}
			}
			added = append(added, Photo{
				ID:        uuid.NewString(),
				Latitude:  closest.Latitude,
				Longitude: closest.Longitude,
				Timestamp: c.Timestamp,
				ImageRef:  c.ImageRef,
			})
			matched = true
			break
		}
		if !matched {
			rejected = append(rejected, c)
		}
	}
	return added, rejected
}

// ClusterPhotos groups photos within ClusterRadiusM of a seed photo into
// one marker. Members are ordered by capture time.
func ClusterPhotos(photos []Photo) []PhotoCluster {
	ordered := make([]Photo, len(photos))
	copy(ordered, photos)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].Timestamp.Before(ordered[b].Timestamp)
	})

	assigned := make(map[string]bool, len(ordered))
	var clusters []PhotoCluster
	for _, seed := range ordered {
		if assigned[seed.ID] {
			continue
		}
		cluster := PhotoCluster{Latitude: seed.Latitude, Longitude: seed.Longitude}
		for _, p := range ordered {
			if assigned[p.ID] {
				continue
			}
			if geo.Haversine(seed.Latitude, seed.Longitude, p.Latitude, p.Longitude) <= ClusterRadiusM {
				assigned[p.ID] = true
				cluster.Photos = append(cluster.Photos, p)
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// NearbyPhotos returns the photos within ClusterRadiusM of the tapped
// photo, the tapped one first and the rest by capture time. Returns nil
// when the tapped id is not present.
func NearbyPhotos(photos []Photo, tappedID string) []Photo {
	var tapped *Photo
	for i := range photos {
		if photos[i].ID == tappedID {
			tapped = &photos[i]
			break
		}
	}
	if tapped == nil {
		return nil
	}

	var nearby []Photo
	for _, p := range photos {
		if p.ID == tappedID {
			continue
		}
		if geo.Haversine(tapped.Latitude, tapped.Longitude, p.Latitude, p.Longitude) <= ClusterRadiusM {
			nearby = append(nearby, p)
		}
	}
	sort.SliceStable(nearby, func(a, b int) bool {
		return nearby[a].Timestamp.Before(nearby[b].Timestamp)
	})
	return append([]Photo{*tapped}, nearby...)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
