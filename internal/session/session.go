package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/copperline/imagesession/internal/autosave"
	"github.com/copperline/imagesession/internal/codec"
	"github.com/copperline/imagesession/internal/history"
	"github.com/copperline/imagesession/internal/params"
	"github.com/copperline/imagesession/internal/pipeline"
)

// State identifies where a session is in its lifecycle.
type State int

const (
	Editing State = iota
	RestoreAvailable
	Applying
	Cancelled
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case RestoreAvailable:
		return "restore-available"
	case Applying:
		return "applying"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	// ErrApplyInFlight is returned by mutations attempted while Apply is
	// running or after it has completed.
	ErrApplyInFlight = errors.New("session: apply in flight")

	// ErrNoRestore is returned by RestoreFromAutosave outside the
	// RestoreAvailable state.
	ErrNoRestore = errors.New("session: no restore offer available")

	// ErrEnded is returned by operations on a cancelled or closed session.
	ErrEnded = errors.New("session: session has ended")
)

// Option customizes session construction.
type Option func(*Session)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.logger = l } }

// WithQuietPeriod sets the autosave debounce quiet period.
// Default: autosave.DefaultQuiet.
func WithQuietPeriod(d time.Duration) Option { return func(s *Session) { s.quiet = d } }

// Session orchestrates one edit session over one source image. All methods
// are safe for use from the event loop plus the autosave timer; a single
// mutex serializes them.
type Session struct {
	mu sync.Mutex

	source    []byte
	signature string
	info      *codec.ImageInfo

	live  params.EditParameters
	hist  *history.History
	state State
	offer *autosave.Snapshot

	store  autosave.Store
	saver  *autosave.Debouncer
	quiet  time.Duration
	logger *slog.Logger

	closed bool
}

// New opens a session over the encoded source blob.
//
// The blob header is decoded up front so an unreadable source fails here
// with codec.ErrDecode rather than at Apply. If store holds a snapshot
// whose signature matches the source, the session starts in
// RestoreAvailable with that snapshot on offer; a mismatched snapshot is
// left in storage and not offered. store may be nil, which disables
// autosave entirely.
//
// The session keeps a reference to source for its whole lifetime; callers
// must not mutate the slice. Continuing to edit an applied output means
// calling New again on the output blob: the derived image is a new entity
// with a new signature and inherits no autosave.
func New(ctx context.Context, source []byte, store autosave.Store, opts ...Option) (*Session, error) {
	info, err := codec.DecodeInfo(source)
	if err != nil {
		return nil, fmt.Errorf("session: open source: %w", err)
	}

	s := &Session{
		source:    source,
		signature: codec.Signature(source),
		info:      info,
		live:      params.Default(),
		hist:      history.New(),
		state:     Editing,
		store:     store,
		quiet:     autosave.DefaultQuiet,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.saver = autosave.NewDebouncer(s.quiet, s.autosaveNow)

	if store != nil {
		snap, err := store.Load(ctx)
		if err != nil {
			s.logger.Warn("session: autosave load failed", "error", err)
		} else if autosave.Matches(snap, s.signature) {
			s.state = RestoreAvailable
			s.offer = snap
		}
	}

	return s, nil
}

// mutableLocked reports whether the session accepts a mutation right now.
// A completed apply leaves the session closed in the Applying state, so
// that case is checked first: it answers ErrApplyInFlight, not ErrEnded.
func (s *Session) mutableLocked() error {
	switch {
	case s.state == Applying:
		return ErrApplyInFlight
	case s.closed || s.state == Cancelled:
		return ErrEnded
	default:
		return nil
	}
}

// forfeitLocked drops a pending restore offer: any edit while the offer is
// up means the user chose to keep their current state.
func (s *Session) forfeitLocked() {
	if s.state == RestoreAvailable {
		s.state = Editing
		s.offer = nil
	}
}

func (s *Session) scheduleLocked() {
	if s.store != nil {
		s.saver.Trigger()
	}
}

// PreviewBrightness updates the live brightness without touching history.
// The value is clamped to [0,200]. Call CommitBrightness at gesture end.
func (s *Session) PreviewBrightness(v int) error {
	return s.preview(func(p *params.EditParameters) { p.Brightness = params.ClampTone(v) })
}

// PreviewContrast updates the live contrast without touching history.
func (s *Session) PreviewContrast(v int) error {
	return s.preview(func(p *params.EditParameters) { p.Contrast = params.ClampTone(v) })
}

func (s *Session) preview(apply func(*params.EditParameters)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutableLocked(); err != nil {
		return err
	}
	s.forfeitLocked()
	apply(&s.live)
	s.scheduleLocked()
	return nil
}

// CommitBrightness pushes the current live state into history as one entry,
// closing a brightness gesture. Committing an unchanged state is a no-op.
func (s *Session) CommitBrightness() error { return s.commitLive() }

// CommitContrast pushes the current live state into history as one entry,
// closing a contrast gesture.
func (s *Session) CommitContrast() error { return s.commitLive() }

func (s *Session) commitLive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutableLocked(); err != nil {
		return err
	}
	s.forfeitLocked()
	s.hist.Commit(s.live)
	s.scheduleLocked()
	return nil
}

// Rotate turns the image 90 degrees clockwise and commits immediately.
// It returns the new rotation angle.
func (s *Session) Rotate() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutableLocked(); err != nil {
		return 0, err
	}
	s.forfeitLocked()
	s.live.Rotation = params.NormalizeRotation(s.live.Rotation + 90)
	s.hist.Commit(s.live)
	s.scheduleLocked()
	return s.live.Rotation, nil
}

// SetCropRatio sets the center-crop ratio and commits immediately.
// An unknown ratio is rejected with the state unchanged.
func (s *Session) SetCropRatio(r params.CropRatio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutableLocked(); err != nil {
		return err
	}
	if !r.Valid() {
		return fmt.Errorf("session: unknown crop ratio %q", r)
	}
	s.forfeitLocked()
	s.live.CropRatio = r
	s.hist.Commit(s.live)
	s.scheduleLocked()
	return nil
}

// Undo steps history back one entry and overwrites the live parameters with
// the result. At the bottom of the stack it returns history.ErrNoOp and
// changes nothing.
func (s *Session) Undo() (params.EditParameters, error) {
	return s.step((*history.History).Undo)
}

// Redo steps history forward one entry and overwrites the live parameters
// with the result. At the top of the stack it returns history.ErrNoOp.
func (s *Session) Redo() (params.EditParameters, error) {
	return s.step((*history.History).Redo)
}

func (s *Session) step(move func(*history.History) (params.EditParameters, error)) (params.EditParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutableLocked(); err != nil {
		return s.live, err
	}
	p, err := move(s.hist)
	if err != nil {
		return s.live, err
	}
	s.forfeitLocked()
	s.live = p
	s.scheduleLocked()
	return p, nil
}

// Reset restores the default parameters and clears history back to its
// single default entry.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutableLocked(); err != nil {
		return err
	}
	s.forfeitLocked()
	s.live = params.Default()
	s.hist.Reset()
	s.scheduleLocked()
	return nil
}

// RestoreFromAutosave applies the pending restore offer, overwriting the
// live parameters and the entire history stack with the stored snapshot.
// Only valid in RestoreAvailable.
func (s *Session) RestoreFromAutosave() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != RestoreAvailable || s.offer == nil {
		return ErrNoRestore
	}

	h, err := history.FromRecord(s.offer.History)
	if err != nil {
		// Stores validate on load, so this indicates the offer was
		// tampered with after construction. Drop it rather than apply it.
		s.state = Editing
		s.offer = nil
		return fmt.Errorf("%w: %v", ErrNoRestore, err)
	}

	s.live = s.offer.Live
	s.hist = h
	s.state = Editing
	s.offer = nil
	s.scheduleLocked()
	return nil
}

// Apply bakes the live parameters into the source and returns the composed
// image encoded as format (a codec MIME type; "" means PNG).
//
// Apply is single-flight: the session enters Applying for the duration and
// every mutation in that window fails with ErrApplyInFlight. On success the
// session has ended (Applying is terminal) and its autosave schedule is
// stopped. If the source fails to decode, the error wraps codec.ErrDecode
// and the session returns to Editing so the caller can retry or cancel.
func (s *Session) Apply(ctx context.Context, format string) ([]byte, error) {
	s.mu.Lock()
	if err := s.mutableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.forfeitLocked()
	s.state = Applying
	p := s.live
	source := s.source
	s.mu.Unlock()

	// Decode, compose, and encode outside the lock; this is the single
	// suspend point and may run on a background task.
	out, err := s.compose(ctx, source, p, format)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Editing
		return nil, err
	}

	s.closed = true
	s.saver.Stop()
	return out, nil
}

// jpegQuality is the encoder quality used for JPEG apply output.
const jpegQuality = 90

func (s *Session) compose(ctx context.Context, source []byte, p params.EditParameters, format string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("session: apply: %w", err)
	}

	img, _, err := codec.Decode(source)
	if err != nil {
		return nil, fmt.Errorf("session: apply: %w", err)
	}
	composed, err := pipeline.Render(img, p)
	if err != nil {
		return nil, fmt.Errorf("session: apply: %w", err)
	}

	switch format {
	case "", codec.MIMEPNG:
		return codec.EncodePNG(composed)
	case codec.MIMEJPEG:
		return codec.EncodeJPEG(composed, jpegQuality)
	case codec.MIMEQOI:
		return codec.EncodeQOI(composed)
	default:
		return nil, fmt.Errorf("session: apply: unsupported output format %q", format)
	}
}

// Cancel discards the session without producing output. Terminal.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutableLocked(); err != nil {
		return err
	}
	s.state = Cancelled
	s.closed = true
	s.offer = nil
	s.saver.Stop()
	return nil
}

// Close tears the session down: the pending autosave (if any) is cancelled
// and mutations are rejected from here on. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.saver.Stop()
}

// autosaveNow is the debounce callback: it snapshots the session as of this
// moment and writes it to the store. Failures are logged, never surfaced.
func (s *Session) autosaveNow() {
	s.mu.Lock()
	if s.closed || s.state == Cancelled || s.state == Applying {
		s.mu.Unlock()
		return
	}
	snap := &autosave.Snapshot{
		SourceSignature: s.signature,
		Live:            s.live,
		History:         s.hist.Record(),
		SavedAt:         time.Now(),
	}
	store := s.store
	logger := s.logger
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Save(ctx, snap); err != nil {
		logger.Warn("session: autosave failed", "error", err)
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Live returns the current live parameters, which may be ahead of the last
// committed history entry during a gesture.
func (s *Session) Live() params.EditParameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Signature returns the source image's fingerprint.
func (s *Session) Signature() string { return s.signature }

// SourceInfo returns the decoded metadata of the source image.
func (s *Session) SourceInfo() codec.ImageInfo { return *s.info }

// RestoreOffer returns the pending autosave snapshot while the session is
// in RestoreAvailable, or nil.
func (s *Session) RestoreOffer() *autosave.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offer
}

// HistoryLen returns the number of entries in the undo stack.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Len()
}

// HistoryIndex returns the position of the current history entry.
func (s *Session) HistoryIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Index()
}

// CanUndo reports whether Undo would succeed.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// PreviewDimensions reports the output size Apply would produce for the
// current live parameters.
func (s *Session) PreviewDimensions() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pipeline.OutputDimensions(s.info.Width, s.info.Height, s.live)
}
