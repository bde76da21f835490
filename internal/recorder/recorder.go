package recorder

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"backend-pathrecorder/internal/metrics"
	"backend-pathrecorder/internal/path"

	"github.com/google/uuid"
)

const (
	tickPeriod = time.Second
	fixBuffer  = 256

	// LiveTopic is the stream topic live summary and polyline events are
	// broadcast on.
	LiveTopic = "live"
)

var (
	ErrAlreadyRecording = errors.New("a recording is already active")
	ErrNotRecording     = errors.New("no active recording")
	ErrRecordingActive  = errors.New("cannot load a path for editing while recording")
)

// Broadcaster pushes live events to stream consumers. *stream.Hub
// satisfies it; a nil Broadcaster disables live updates.
type Broadcaster interface {
	Broadcast(topic string, payload []byte)
}

// Recorder is the recording state machine. It owns the in-progress
// session exclusively: every mutation — fix arrivals, timer ticks and
// user commands — serializes through one mutex, and fixes are drained
// from a FIFO channel by a single goroutine.
type Recorder struct {
	mu sync.Mutex

	store path.Store
	hub   Broadcaster
	now   func() time.Time

	session   path.SessionState
	active    bool
	filter    Filter
	acc       Accumulator
	segmentID string
	latest    *path.Coordinate
	lastTick  time.Time

	fixes chan RawFix
	done  chan struct{}
	once  sync.Once
}

func New(store path.Store, hub Broadcaster) *Recorder {
	r := &Recorder{
		store: store,
		hub:   hub,
		now:   time.Now,
		fixes: make(chan RawFix, fixBuffer),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

// Close stops the fix-drain loop. The in-progress session, if any,
// stays checkpointed for the next start.
func (r *Recorder) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Recorder) loop() {
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case fix := <-r.fixes:
			r.handleFix(fix)
		case <-ticker.C:
			r.handleTick()
		}
	}
}

// Ingest hands a raw fix to the recorder. Delivery order is preserved;
// when the buffer is full the fix is dropped, which the filter's
// interval gate makes harmless at any realistic source cadence.
func (r *Recorder) Ingest(fix RawFix) {
	select {
	case r.fixes <- fix:
	default:
		log.Printf("fix buffer full, dropping fix at %v", fix.Timestamp)
	}
}

// Start begins a fresh recording session.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return ErrAlreadyRecording
	}

	now := r.now()
	r.session = path.SessionState{StartTime: &now}
	r.filter.Reset()
	r.acc.Reset(0)
	r.segmentID = uuid.NewString()
	r.active = true
	r.lastTick = now
	return nil
}

// Pause halts fix intake and elapsed-time accrual. Calling it when not
// recording, or when already paused, is a no-op.
func (r *Recorder) Pause(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active || r.session.IsPaused {
		return
	}
	r.session.IsPaused = true
	r.checkpoint(ctx)
	r.broadcastSummary()
}

// Resume continues a paused session in a new segment. The smoothing
// window and distance anchor are dropped so the first fix after the gap
// bootstraps instead of measuring a jump from a stale point. No-op when
// not recording or not paused.
func (r *Recorder) Resume(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active || !r.session.IsPaused {
		return
	}
	r.session.IsPaused = false
	r.filter.Reset()
	r.acc.DropAnchor()
	r.segmentID = uuid.NewString()
	r.lastTick = r.now()
	r.broadcastSummary()
}

// Stop finalizes the session into a stored record and returns it along
// with whether the caller still needs to prompt for a name. When the
// session was editing an existing path, the old record is deleted and
// replaced by a new one carrying the original name.
func (r *Recorder) Stop(ctx context.Context) (path.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return path.Record{}, false, ErrNotRecording
	}

	record := path.Record{
		ID:            uuid.NewString(),
		Name:          r.session.EditingPathName,
		TotalDuration: r.session.ElapsedSec,
		TotalDistance: r.session.TotalDistance,
		Locations:     r.session.Locations,
		Photos:        r.session.Photos,
	}
	if r.session.StartTime != nil {
		record.StartTime = *r.session.StartTime
	}

	if r.session.EditingPathID != "" {
		if err := r.store.DeletePath(ctx, r.session.EditingPathID); err != nil {
			log.Printf("delete edited path %s: %v", r.session.EditingPathID, err)
		}
	}
	if err := r.store.SavePath(ctx, record); err != nil {
		// The checkpoint blob stays so a relaunch can still restore.
		return path.Record{}, false, err
	}
	metrics.PathsSaved.Inc()
	if err := r.store.ClearSession(ctx); err != nil {
		log.Printf("clear session checkpoint: %v", err)
	}

	r.active = false
	r.session = path.SessionState{}
	r.latest = nil
	return record, record.Name == "", nil
}

// LoadForEditing rehydrates a stored record as a paused session so the
// user can resume and append to it. Fails while a recording is active.
func (r *Recorder) LoadForEditing(ctx context.Context, record path.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return ErrRecordingActive
	}

	start := record.StartTime
	r.session = path.SessionState{
		Locations:       record.Locations,
		TotalDistance:   record.TotalDistance,
		ElapsedSec:      record.TotalDuration,
		StartTime:       &start,
		IsPaused:        true,
		EditingPathID:   record.ID,
		EditingPathName: record.Name,
		Photos:          record.Photos,
	}
	r.filter.Reset()
	r.acc.Reset(record.TotalDistance)
	// New segment so the continuation is never drawn connected to the
	// old path's tail.
	r.segmentID = uuid.NewString()
	r.active = true
	r.checkpoint(ctx)
	return nil
}

// Restore loads the checkpointed session, if any, and resumes it as a
// paused active recording. Called once at process start.
func (r *Recorder) Restore(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok, err := r.store.LoadSession(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	state.IsPaused = true
	r.session = state
	r.filter.Reset()
	r.acc.Reset(state.TotalDistance)
	r.segmentID = uuid.NewString()
	r.active = true
	log.Printf("restored in-progress recording: %d positions, %.1fm", len(state.Locations), state.TotalDistance)
	return nil
}

// AddPhoto attaches a photo to the live session, geotagged at the most
// recently recorded position.
func (r *Recorder) AddPhoto(ctx context.Context, timestamp time.Time, imageRef string) (path.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return path.Photo{}, ErrNotRecording
	}

	photo := path.Photo{
		ID:        uuid.NewString(),
		Timestamp: timestamp,
		ImageRef:  imageRef,
	}
	if n := len(r.session.Locations); n > 0 {
		photo.Latitude = r.session.Locations[n-1].Latitude
		photo.Longitude = r.session.Locations[n-1].Longitude
	}
	r.session.Photos = append(r.session.Photos, photo)
	r.checkpoint(ctx)
	return photo, nil
}

// Status reports the live summary consumed by notification surfaces.
func (r *Recorder) Status() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryLocked()
}

func (r *Recorder) handleFix(fix RawFix) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active || r.session.IsPaused {
		return
	}

	p, ok := r.filter.Accept(fix, r.segmentID)
	if !ok {
		reason := "interval"
		if fix.AccuracyM > MinAccuracyM {
			reason = "accuracy"
		}
		metrics.FixesRejected.WithLabelValues(reason).Inc()
		return
	}

	// The latest coordinate only moves on accepted fixes, so a poor
	// sample never leaks into the status or stream surfaces.
	r.latest = &path.Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}

	// The position always joins the history; only the distance
	// contribution is thresholded.
	r.session.Locations = append(r.session.Locations, p)
	r.acc.Add(p)
	r.session.TotalDistance = r.acc.Total()

	metrics.FixesAccepted.Inc()
	r.checkpoint(context.Background())
	r.broadcastSummary()
	r.broadcastPolylines()
}

func (r *Recorder) handleTick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active || r.session.IsPaused {
		return
	}
	now := r.now()
	if !r.lastTick.IsZero() {
		// Accrue the actual wall-clock delta, not a fixed second, to
		// tolerate scheduling jitter.
		r.session.ElapsedSec += now.Sub(r.lastTick).Seconds()
	}
	r.lastTick = now
	r.broadcastSummary()
}

// checkpoint persists the session blob. Failures are logged, not fatal:
// the session lives on in memory and the next mutation retries.
func (r *Recorder) checkpoint(ctx context.Context) {
	if err := r.store.SaveSession(ctx, r.session); err != nil {
		metrics.CheckpointFailures.Inc()
		log.Printf("session checkpoint failed: %v", err)
		return
	}
	metrics.Checkpoints.Inc()
}
