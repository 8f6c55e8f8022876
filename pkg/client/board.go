package client

import (
	"sync"

	"github.com/shared-canvas/backend/internal/model"
)

// Shape is the renderable form of a stroke. The rendering backend is
// external; the board only needs hit-testing and teardown.
type Shape interface {
	// Contains reports whether the point lies within tolerance of the
	// rendered stroke geometry.
	Contains(p model.Point, tolerance float64) bool
	// Remove tears the shape down from whatever surface rendered it.
	Remove()
}

// Renderer converts a wire stroke into its renderable form. The shape is
// reconstructed fresh on the receiving side; the conversion is otherwise
// lossless in both directions.
type Renderer interface {
	Render(s *model.Stroke) Shape
}

// polylineShape is the headless default: hit-testing against the raw point
// sequence, nothing to tear down.
type polylineShape struct {
	points []model.Point
}

func (s *polylineShape) Contains(p model.Point, tolerance float64) bool {
	return distanceToPolyline(p, s.points) <= tolerance
}

func (s *polylineShape) Remove() {}

type headlessRenderer struct{}

func (headlessRenderer) Render(s *model.Stroke) Shape {
	return &polylineShape{points: s.Points}
}

type boardEntry struct {
	stroke *model.Stroke
	shape  Shape
}

// Board is the ordered local view of strokes held by one client. It is not
// authoritative: it is reconciled against the store via snapshot replace
// and kept live-updated via push.
type Board struct {
	mu       sync.Mutex
	renderer Renderer
	entries  []*boardEntry
}

// NewBoard creates a Board. A nil renderer gives the headless default.
func NewBoard(r Renderer) *Board {
	if r == nil {
		r = headlessRenderer{}
	}
	return &Board{renderer: r}
}

// Add appends a stroke to the local view and renders it.
func (b *Board) Add(s *model.Stroke) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, &boardEntry{stroke: s, shape: b.renderer.Render(s)})
}

// Remove drops the given stroke (by identity) from the local view.
// Returns false if the stroke is not on the board.
func (b *Board) Remove(s *model.Stroke) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if e.stroke == s {
			e.shape.Remove()
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Rerender rebuilds the shape of a stroke whose points changed, e.g. after
// simplification at the end of a draw gesture.
func (b *Board) Rerender(s *model.Stroke) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.entries {
		if e.stroke == s {
			e.shape.Remove()
			e.shape = b.renderer.Render(s)
			return
		}
	}
}

// Replace swaps the entire local view for the given snapshot. Replacing,
// rather than appending, keeps resynchronization idempotent.
func (b *Board) Replace(strokes []*model.Stroke) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.entries {
		e.shape.Remove()
	}

	b.entries = make([]*boardEntry, 0, len(strokes))
	for _, s := range strokes {
		b.entries = append(b.entries, &boardEntry{stroke: s, shape: b.renderer.Render(s)})
	}
}

// EraseAt removes and returns the first stroke whose rendered geometry
// passes within tolerance of the point. Returns false on a miss.
func (b *Board) EraseAt(p model.Point, tolerance float64) (*model.Stroke, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if e.shape.Contains(p, tolerance) {
			e.shape.Remove()
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return e.stroke, true
		}
	}
	return nil, false
}

// HitTest returns the first stroke within tolerance of the point, without
// removing it.
func (b *Board) HitTest(p model.Point, tolerance float64) (*model.Stroke, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.entries {
		if e.shape.Contains(p, tolerance) {
			return e.stroke, true
		}
	}
	return nil, false
}

// Strokes returns a copy of the current local view, in order.
func (b *Board) Strokes() []*model.Stroke {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*model.Stroke, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.stroke
	}
	return out
}

// Len returns the number of strokes in the local view.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
