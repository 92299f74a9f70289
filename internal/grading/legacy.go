package grading

// Older grade documents stored either the points earned or an already
// computed percentage in the same score field. This file is the only place
// that guesses which one it is; new writes always store points.

// StoredShape says how a legacy stored score was interpreted.
type StoredShape string

const (
	ShapePoints     StoredShape = "points"
	ShapePercentage StoredShape = "percentage"
)

// StoredScore is a legacy score resolved into both representations.
type StoredScore struct {
	Points     float64     `json:"points"`
	Percentage float64     `json:"percentage"`
	Shape      StoredShape `json:"shape"`
}

// ClassifyStoredScore resolves a legacy stored score against the assignment's
// max points. A value above max points cannot be points earned and is read as
// a percentage; anything else is read as points.
//
// The guess is wrong for a percentage that happens to be <= max points (e.g.
// 40% on a 50 point assignment), which is why it stays confined to migrations.
func ClassifyStoredScore(stored, maxPoints float64) (StoredScore, error) {
	if maxPoints <= 0 {
		return StoredScore{}, &InvalidAssignmentError{MaxPoints: maxPoints}
	}
	if stored > maxPoints {
		pct := clamp(stored, 0, 100)
		return StoredScore{Points: pct / 100 * maxPoints, Percentage: pct, Shape: ShapePercentage}, nil
	}
	pct, err := Normalize(stored, maxPoints)
	if err != nil {
		return StoredScore{}, err
	}
	return StoredScore{Points: clamp(stored, 0, maxPoints), Percentage: pct, Shape: ShapePoints}, nil
}

// LooksLikePointsAsPercentages flags a class average so low that grades were
// probably entered as points where percentages were expected.
func LooksLikePointsAsPercentages(averagePercentage float64, count int) bool {
	return count > 0 && averagePercentage < 20
}
