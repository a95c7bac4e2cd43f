package trace

import (
	"errors"
	"fmt"
	"log/slog"

	"iftseg/internal/models"
	"iftseg/pkg/edge"
	"iftseg/pkg/ift"
)

var (
	// ErrNoAnchor is returned when a path is requested before the first anchor
	ErrNoAnchor = errors.New("no anchor placed")

	// ErrClosed is returned when a closed contour is edited
	ErrClosed = errors.New("contour already closed")
)

// Tracker drives an interactive tracing session. Each anchor becomes the
// single seed of a fresh edge algorithm run; moving the cursor reads the live
// segment off that run's predecessor map, and placing the next anchor commits
// the segment to the contour.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	log    *slog.Logger
	img    *models.Image
	mask   *models.Image
	alg    edge.Algorithm
	params edge.Params

	// snap is the squared distance within which a click lands on the first anchor
	snap float64

	anchors []int
	contour []int
	forest  *ift.Result
	closed  bool
}

// NewTracker starts a session over img. snapRadius is the distance (in
// pixels) under which a new anchor snaps onto the first one and closes the
// contour; 0 disables snapping.
func NewTracker(log *slog.Logger, img, mask *models.Image, alg edge.Algorithm, params edge.Params, snapRadius float64) (*Tracker, error) {
	if _, err := edge.Defaults(alg); err != nil {
		return nil, err
	}
	if img == nil || img.Size() == 0 {
		return nil, fmt.Errorf("%w: empty image", models.ErrShape)
	}
	if mask != nil && !mask.Shape.Equal(img.Shape) {
		return nil, fmt.Errorf("%w: image %v, mask %v", edge.ErrDimensionMismatch, img.Dims, mask.Dims)
	}
	return &Tracker{
		log:    log.With(slog.String("op", "trace.Tracker"), slog.String("algorithm", string(alg))),
		img:    img,
		mask:   mask,
		alg:    alg,
		params: params,
		snap:   snapRadius * snapRadius,
	}, nil
}

// Anchors returns the anchors placed so far
func (t *Tracker) Anchors() []int { return append([]int(nil), t.anchors...) }

// Contour returns the committed contour pixels in tracing order
func (t *Tracker) Contour() []int { return append([]int(nil), t.contour...) }

// Closed reports whether the contour was closed
func (t *Tracker) Closed() bool { return t.closed }

// Forest returns the run computed from the last anchor
func (t *Tracker) Forest() *ift.Result { return t.forest }

// AddAnchor places an anchor at pixel p. From the second anchor on, the live
// segment from the previous anchor to p is committed. A click within the
// snap radius of the first anchor (with at least two anchors placed) closes
// the contour instead.
func (t *Tracker) AddAnchor(p int) error {
	if t.closed {
		return ErrClosed
	}
	if p < 0 || p >= t.img.Size() {
		return fmt.Errorf("%w: anchor %d not in [0,%d)", ErrOutOfRange, p, t.img.Size())
	}
	if t.mask != nil && t.mask.Data[p] == 0 {
		return fmt.Errorf("%w: anchor %d is outside the mask", ErrOutOfRange, p)
	}

	if len(t.anchors) >= 2 {
		if first, ok := t.snapToFirst(p); ok {
			t.log.Debug("anchor snapped to contour start", slog.Int("pixel", p))
			return t.commitTo(first, true)
		}
	}

	// the next forest is computed first so a failed run leaves the session as it was
	seeds := make([]bool, t.img.Size())
	seeds[p] = true
	res, err := edge.Compute(t.alg, t.img, t.mask, seeds, t.params)
	if err != nil {
		return fmt.Errorf("trace: anchor %d: %w", p, err)
	}

	if len(t.anchors) > 0 {
		if err := t.commitTo(p, false); err != nil {
			return err
		}
	}
	t.forest = res
	t.anchors = append(t.anchors, p)
	t.log.Debug("anchor placed", slog.Int("pixel", p), slog.Int("anchors", len(t.anchors)))
	return nil
}

// Move returns the live segment from the last anchor to cursor. The segment
// is a single pixel when cursor is unreachable from the anchor.
func (t *Tracker) Move(cursor int) ([]int, error) {
	if t.forest == nil {
		return nil, ErrNoAnchor
	}
	if t.closed {
		return nil, ErrClosed
	}
	return Path(t.forest.Predecessor, cursor)
}

// Close commits the segment from the last anchor back to the first one
func (t *Tracker) Close() error {
	if t.closed {
		return ErrClosed
	}
	if len(t.anchors) < 2 {
		return fmt.Errorf("trace: closing needs two anchors, have %d", len(t.anchors))
	}
	return t.commitTo(t.anchors[0], true)
}

// commitTo appends the live segment ending at p to the contour
func (t *Tracker) commitTo(p int, closing bool) error {
	seg, err := Path(t.forest.Predecessor, p)
	if err != nil {
		return err
	}
	if !t.forest.Reached(p) {
		return fmt.Errorf("trace: pixel %d is not reachable from anchor %d", p, t.anchors[len(t.anchors)-1])
	}
	// the segment starts at the last anchor, already on the contour
	if len(t.contour) > 0 {
		seg = seg[1:]
	}
	if closing && len(seg) > 0 {
		// the first anchor opens the contour; do not repeat it
		seg = seg[:len(seg)-1]
	}
	t.contour = append(t.contour, seg...)
	if closing {
		t.closed = true
		t.forest = nil
		t.log.Info("contour closed", slog.Int("pixels", len(t.contour)), slog.Int("anchors", len(t.anchors)))
	}
	return nil
}

// snapToFirst reports whether p lies within the snap radius of the first
// anchor, the nearest anchor to p
func (t *Tracker) snapToFirst(p int) (int, bool) {
	if t.snap <= 0 {
		return 0, false
	}
	points := make([]anchorPoint, len(t.anchors))
	for i, a := range t.anchors {
		points[i] = t.point(a, i)
	}
	near, dist, ok := newAnchorIndex(points).nearest(t.point(p, -1))
	if !ok || near.Order != 0 || dist > t.snap {
		return 0, false
	}
	return t.anchors[0], true
}

func (t *Tracker) point(p, order int) anchorPoint {
	coords := t.img.Coords(p, nil)
	fc := make([]float64, len(coords))
	for d, c := range coords {
		fc[d] = float64(c)
	}
	return anchorPoint{Coords: fc, Order: order}
}
