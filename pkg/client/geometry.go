package client

import (
	"math"

	"github.com/shared-canvas/backend/internal/model"
)

// Simplify thins a polyline with the Ramer-Douglas-Peucker algorithm,
// keeping every point whose removal would move the line by more than
// tolerance. Consecutive duplicate points are collapsed first, so a
// click-without-drag gesture reduces to a single point.
func Simplify(points []model.Point, tolerance float64) []model.Point {
	pts := dedupe(points)
	if len(pts) <= 2 {
		return pts
	}
	return rdp(pts, tolerance)
}

func dedupe(points []model.Point) []model.Point {
	if len(points) == 0 {
		return nil
	}
	out := points[:1:1]
	for _, p := range points[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

func rdp(points []model.Point, tolerance float64) []model.Point {
	if len(points) <= 2 {
		return points
	}

	first, last := points[0], points[len(points)-1]
	maxDist := 0.0
	maxIdx := 0
	for i := 1; i < len(points)-1; i++ {
		if d := distanceToSegment(points[i], first, last); d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= tolerance {
		return []model.Point{first, last}
	}

	left := rdp(points[:maxIdx+1], tolerance)
	right := rdp(points[maxIdx:], tolerance)

	out := make([]model.Point, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	out = append(out, right...)
	return out
}

// distanceToSegment returns the distance from p to the segment ab.
func distanceToSegment(p, a, b model.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// distanceToPolyline returns the minimum distance from p to any segment of
// the polyline.
func distanceToPolyline(p model.Point, points []model.Point) float64 {
	if len(points) == 0 {
		return math.Inf(1)
	}
	if len(points) == 1 {
		return math.Hypot(p.X-points[0].X, p.Y-points[0].Y)
	}

	min := math.Inf(1)
	for i := 0; i < len(points)-1; i++ {
		if d := distanceToSegment(p, points[i], points[i+1]); d < min {
			min = d
		}
	}
	return min
}
