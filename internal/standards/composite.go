package standards

import (
	"github.com/mind-engage/mindengage-gradebook/internal/grades"
	"github.com/mind-engage/mindengage-gradebook/internal/grading"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
)

// Weights blends the traditional and standards tracks. They are applied as
// given; nothing forces them to sum to 1.
type Weights struct {
	Traditional float64 `json:"traditional" yaml:"traditional" mapstructure:"traditional"`
	Standards   float64 `json:"standards" yaml:"standards" mapstructure:"standards"`
}

// DefaultWeights gives both tracks equal weight.
func DefaultWeights() Weights { return Weights{Traditional: 0.5, Standards: 0.5} }

type Breakdown struct {
	TraditionalWeight float64 `json:"traditional_weight"`
	StandardsWeight   float64 `json:"standards_weight"`
	StandardsCount    int     `json:"standards_count"`
	StandardsAverage  float64 `json:"standards_average"`
	// StandardsExcluded counts ratings outside 1..4 that the average skipped.
	StandardsExcluded int     `json:"standards_excluded"`
}

// CompositeGradeResult is the blended grade of one student on one assignment.
type CompositeGradeResult struct {
	TraditionalScore float64 `json:"traditional_score"`
	StandardsScore   float64 `json:"standards_score"`
	CompositeScore   float64 `json:"composite_score"`
	LetterGrade      string  `json:"letter_grade"`
	Weights          Weights `json:"weights"`
	// StandardsConversion tells whether StandardsScore came from the scale
	// table or was derived from neighbouring levels.
	StandardsConversion proficiency.ConversionKind `json:"standards_conversion"`
	Breakdown           Breakdown                  `json:"breakdown"`
}

// Composite blends a traditional grade with the standards ratings for the same
// assignment. A nil trad scores 0 on the traditional track.
//
// The standards average only counts levels 1 through 4, whatever the scale.
// On a five point scale a level 5 rating is skipped and reported in
// Breakdown.StandardsExcluded; a student rated only 5s scores 0 on the
// standards track.
//
// Errors are limited to an assignment with no max points and an unregistered
// scale.
func Composite(trad *grades.TraditionalGrade, gs []grades.StandardsGrade, w Weights, scale proficiency.ScaleType) (CompositeGradeResult, error) {
	var traditional float64
	if trad != nil {
		pct, err := grading.Normalize(trad.Score, trad.Points)
		if err != nil {
			return CompositeGradeResult{}, err
		}
		traditional = pct
	}

	avg := AverageProficiency(gs)
	conv, err := proficiency.PercentageFor(avg, scale)
	if err != nil {
		return CompositeGradeResult{}, err
	}

	composite := traditional*w.Traditional + conv.Percentage*w.Standards
	return CompositeGradeResult{
		TraditionalScore:    grading.Round2(traditional),
		StandardsScore:      grading.Round2(conv.Percentage),
		CompositeScore:      grading.Round2(composite),
		LetterGrade:         grading.LetterGrade(composite),
		Weights:             w,
		StandardsConversion: conv.Kind,
		Breakdown: Breakdown{
			TraditionalWeight: w.Traditional,
			StandardsWeight:   w.Standards,
			StandardsCount:    len(gs),
			StandardsAverage:  avg,
			StandardsExcluded: len(gs) - countWithin(gs, classicMaxLevel),
		},
	}, nil
}
