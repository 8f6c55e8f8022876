package model

import (
	"encoding/json"
)

// Point is a single 2-D coordinate of a stroke, in canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke represents one continuous drawn line: an ordered point sequence
// plus color, width and the owning user.
//
// Strokes carry no unique identifier. A stroke is identified by structural
// equality of all four attributes, so two strokes with the same points,
// color, width and user are indistinguishable to the store.
type Stroke struct {
	Points []Point `json:"points"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
	User   string  `json:"user"`
}

// PointsToJSON converts the point sequence to its canonical JSON form.
// The repository uses this form as the comparison key for structural
// matches, so every write path must go through it.
func (s *Stroke) PointsToJSON() (string, error) {
	if s.Points == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s.Points)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PointsFromJSON parses a JSON array into the point sequence.
func (s *Stroke) PointsFromJSON(data string) error {
	if data == "" {
		s.Points = nil
		return nil
	}
	return json.Unmarshal([]byte(data), &s.Points)
}

// Equal reports whether two strokes are structurally equal.
func (s *Stroke) Equal(o *Stroke) bool {
	if s.Color != o.Color || s.Width != o.Width || s.User != o.User {
		return false
	}
	if len(s.Points) != len(o.Points) {
		return false
	}
	for i := range s.Points {
		if s.Points[i] != o.Points[i] {
			return false
		}
	}
	return true
}
