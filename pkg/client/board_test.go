package client

import (
	"testing"

	"github.com/shared-canvas/backend/internal/model"
)

func lineStroke(user string, from, to model.Point) *model.Stroke {
	return &model.Stroke{
		Points: []model.Point{from, to},
		Color:  "#000000",
		Width:  2,
		User:   user,
	}
}

func TestBoardAddPreservesOrder(t *testing.T) {
	b := NewBoard(nil)

	first := lineStroke("alice", model.Point{X: 0, Y: 0}, model.Point{X: 10, Y: 0})
	second := lineStroke("alice", model.Point{X: 0, Y: 10}, model.Point{X: 10, Y: 10})
	b.Add(first)
	b.Add(second)

	got := b.Strokes()
	if len(got) != 2 || got[0] != first || got[1] != second {
		t.Errorf("board order broken: %+v", got)
	}
}

func TestBoardRemoveByIdentity(t *testing.T) {
	b := NewBoard(nil)

	kept := lineStroke("alice", model.Point{X: 0, Y: 0}, model.Point{X: 10, Y: 0})
	dropped := lineStroke("alice", model.Point{X: 0, Y: 5}, model.Point{X: 10, Y: 5})
	b.Add(kept)
	b.Add(dropped)

	if !b.Remove(dropped) {
		t.Fatalf("remove of a present stroke failed")
	}
	if b.Remove(dropped) {
		t.Errorf("second remove of the same stroke should miss")
	}
	if b.Len() != 1 || b.Strokes()[0] != kept {
		t.Errorf("wrong stroke survived")
	}
}

func TestBoardReplaceIsIdempotent(t *testing.T) {
	b := NewBoard(nil)
	b.Add(lineStroke("stale", model.Point{X: 0, Y: 0}, model.Point{X: 1, Y: 1}))

	snapshot := []*model.Stroke{
		lineStroke("alice", model.Point{X: 0, Y: 0}, model.Point{X: 10, Y: 0}),
		lineStroke("bob", model.Point{X: 0, Y: 10}, model.Point{X: 10, Y: 10}),
	}

	b.Replace(snapshot)
	b.Replace(snapshot)

	if b.Len() != 2 {
		t.Fatalf("repeated replace must not accumulate, got %d strokes", b.Len())
	}
	got := b.Strokes()
	if got[0].User != "alice" || got[1].User != "bob" {
		t.Errorf("snapshot order lost: %+v", got)
	}
}

func TestBoardReplaceWithEmptySnapshot(t *testing.T) {
	b := NewBoard(nil)
	b.Add(lineStroke("alice", model.Point{X: 0, Y: 0}, model.Point{X: 10, Y: 0}))

	b.Replace(nil)

	if b.Len() != 0 {
		t.Errorf("empty snapshot should clear the board, got %d strokes", b.Len())
	}
}

func TestBoardEraseAt(t *testing.T) {
	b := NewBoard(nil)

	horizontal := lineStroke("alice", model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0})
	vertical := lineStroke("bob", model.Point{X: 0, Y: 50}, model.Point{X: 0, Y: 150})
	b.Add(horizontal)
	b.Add(vertical)

	stroke, ok := b.EraseAt(model.Point{X: 50, Y: 3}, 5.0)
	if !ok || stroke != horizontal {
		t.Fatalf("erase should hit the horizontal stroke, got %+v ok=%v", stroke, ok)
	}
	if b.Len() != 1 {
		t.Errorf("erased stroke still on board")
	}

	if _, ok := b.EraseAt(model.Point{X: 500, Y: 500}, 5.0); ok {
		t.Errorf("erase far from any stroke should miss")
	}
	if b.Len() != 1 {
		t.Errorf("miss must not remove anything")
	}
}

func TestBoardHitTestDoesNotRemove(t *testing.T) {
	b := NewBoard(nil)

	s := lineStroke("alice", model.Point{X: 0, Y: 0}, model.Point{X: 100, Y: 0})
	b.Add(s)

	if got, ok := b.HitTest(model.Point{X: 50, Y: 2}, 5.0); !ok || got != s {
		t.Fatalf("hit-test missed: %+v ok=%v", got, ok)
	}
	if b.Len() != 1 {
		t.Errorf("hit-test must not remove the stroke")
	}
}

// recordingShape counts teardown calls so tests can assert that replace
// and erase release rendered shapes.
type recordingShape struct {
	points  []model.Point
	removed *int
}

func (s *recordingShape) Contains(p model.Point, tolerance float64) bool {
	return distanceToPolyline(p, s.points) <= tolerance
}

func (s *recordingShape) Remove() { *s.removed++ }

type recordingRenderer struct {
	removed int
}

func (r *recordingRenderer) Render(s *model.Stroke) Shape {
	return &recordingShape{points: s.Points, removed: &r.removed}
}

func TestBoardReplaceTearsDownOldShapes(t *testing.T) {
	renderer := &recordingRenderer{}
	b := NewBoard(renderer)

	b.Add(lineStroke("alice", model.Point{X: 0, Y: 0}, model.Point{X: 1, Y: 0}))
	b.Add(lineStroke("bob", model.Point{X: 0, Y: 1}, model.Point{X: 1, Y: 1}))

	b.Replace(nil)

	if renderer.removed != 2 {
		t.Errorf("expected 2 shape teardowns, got %d", renderer.removed)
	}
}
