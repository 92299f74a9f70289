package proficiency

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// ScaleType names a registered proficiency scale, e.g. "four_point".
type ScaleType string

const (
	FourPoint ScaleType = "four_point"
	FivePoint ScaleType = "five_point"
)

// DefaultScale is used when a caller does not configure one.
const DefaultScale = FourPoint

// Level is one rung of a proficiency scale.
type Level struct {
	Level             int     `json:"level" yaml:"level"`
	Label             string  `json:"label" yaml:"label"`
	Description       string  `json:"description" yaml:"description"`
	PercentageMapping float64 `json:"percentage_mapping" yaml:"percentage_mapping"`
}

// Scale is an ordered list of levels starting at 1.
type Scale struct {
	Type   ScaleType `json:"type" yaml:"type"`
	Name   string    `json:"name,omitempty" yaml:"name,omitempty"`
	Levels []Level   `json:"levels" yaml:"levels"`
}

// Max returns the highest level of the scale, 0 when empty.
func (s Scale) Max() int {
	if len(s.Levels) == 0 {
		return 0
	}
	return s.Levels[len(s.Levels)-1].Level
}

func (s Scale) level(n int) (Level, bool) {
	if n < 1 || n > len(s.Levels) {
		return Level{}, false
	}
	return s.Levels[n-1], true
}

// Validate checks that levels are contiguous from 1 and that the percentage
// mapping never decreases.
func (s Scale) Validate() error {
	if s.Type == "" {
		return errors.New("scale type is required")
	}
	if len(s.Levels) == 0 {
		return fmt.Errorf("scale %s has no levels", s.Type)
	}
	for i, l := range s.Levels {
		if l.Level != i+1 {
			return fmt.Errorf("scale %s: level %d out of sequence at position %d", s.Type, l.Level, i)
		}
		if l.PercentageMapping < 0 || l.PercentageMapping > 100 {
			return fmt.Errorf("scale %s: level %d mapping %.2f outside 0..100", s.Type, l.Level, l.PercentageMapping)
		}
		if i > 0 && l.PercentageMapping < s.Levels[i-1].PercentageMapping {
			return fmt.Errorf("scale %s: mapping decreases at level %d", s.Type, l.Level)
		}
	}
	return nil
}

// ConversionKind tells whether a percentage came straight from the scale table
// or was derived.
type ConversionKind string

const (
	Found        ConversionKind = "found"
	Interpolated ConversionKind = "interpolated"
)

// Conversion is the result of mapping a proficiency level to a percentage.
type Conversion struct {
	Percentage float64        `json:"percentage"`
	Kind       ConversionKind `json:"kind"`
}

// ErrUnknownScale is matched by every *UnknownScaleError.
var ErrUnknownScale = errors.New("unknown proficiency scale")

type UnknownScaleError struct {
	Scale ScaleType
}

func (e *UnknownScaleError) Error() string {
	return fmt.Sprintf("unknown proficiency scale %q", string(e.Scale))
}

func (e *UnknownScaleError) Is(target error) bool { return target == ErrUnknownScale }

// Registry maps scale types to scales. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	scales map[ScaleType]Scale
}

// NewRegistry returns a registry preloaded with the built-in scales.
func NewRegistry() *Registry {
	r := &Registry{scales: map[ScaleType]Scale{}}
	for _, s := range builtin() {
		r.scales[s.Type] = s
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry holding the built-in scales.
func Default() *Registry { return defaultRegistry }

// Register adds or replaces a scale after validating it.
func (r *Registry) Register(s Scale) error {
	if err := s.Validate(); err != nil {
		return err
	}
	levels := make([]Level, len(s.Levels))
	copy(levels, s.Levels)
	s.Levels = levels
	r.mu.Lock()
	r.scales[s.Type] = s
	r.mu.Unlock()
	return nil
}

// Lookup returns a registered scale.
func (r *Registry) Lookup(t ScaleType) (Scale, error) {
	r.mu.RLock()
	s, ok := r.scales[t]
	r.mu.RUnlock()
	if !ok {
		return Scale{}, &UnknownScaleError{Scale: t}
	}
	return s, nil
}

// Types lists registered scale types in name order.
func (r *Registry) Types() []ScaleType {
	r.mu.RLock()
	out := make([]ScaleType, 0, len(r.scales))
	for t := range r.scales {
		out = append(out, t)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PercentageFor converts a (possibly fractional) proficiency level into a
// percentage on the named scale.
//
// Integer levels present in the scale are returned as Found. Fractional levels
// inside the scale are interpolated between the neighbouring mappings. Levels
// outside the scale fall back to the legacy linear rule (level/4)*100; both
// derived cases are tagged Interpolated.
func (r *Registry) PercentageFor(level float64, t ScaleType) (Conversion, error) {
	s, err := r.Lookup(t)
	if err != nil {
		return Conversion{}, err
	}
	if math.IsNaN(level) {
		return Conversion{Kind: Interpolated}, nil
	}
	if level == math.Trunc(level) {
		if l, ok := s.level(int(level)); ok {
			return Conversion{Percentage: l.PercentageMapping, Kind: Found}, nil
		}
	}
	if level > 1 && level < float64(s.Max()) {
		lo, _ := s.level(int(math.Floor(level)))
		hi, _ := s.level(int(math.Ceil(level)))
		frac := level - math.Floor(level)
		pct := lo.PercentageMapping + frac*(hi.PercentageMapping-lo.PercentageMapping)
		return Conversion{Percentage: pct, Kind: Interpolated}, nil
	}
	return Conversion{Percentage: (level / 4) * 100, Kind: Interpolated}, nil
}

// LabelFor returns the level label or "Unknown".
func (r *Registry) LabelFor(level int, t ScaleType) string {
	s, err := r.Lookup(t)
	if err != nil {
		return "Unknown"
	}
	if l, ok := s.level(level); ok {
		return l.Label
	}
	return "Unknown"
}

// DescriptionFor returns the level description or "Unknown".
func (r *Registry) DescriptionFor(level int, t ScaleType) string {
	s, err := r.Lookup(t)
	if err != nil {
		return "Unknown"
	}
	if l, ok := s.level(level); ok {
		return l.Description
	}
	return "Unknown"
}

// PercentageFor uses the default registry.
func PercentageFor(level float64, t ScaleType) (Conversion, error) {
	return defaultRegistry.PercentageFor(level, t)
}

// LabelFor uses the default registry.
func LabelFor(level int, t ScaleType) string { return defaultRegistry.LabelFor(level, t) }

// DescriptionFor uses the default registry.
func DescriptionFor(level int, t ScaleType) string { return defaultRegistry.DescriptionFor(level, t) }

// Option is a selectable scale for settings screens.
type Option struct {
	Value ScaleType `json:"value"`
	Label string    `json:"label"`
}

// Options lists the registered scales with a display label.
func (r *Registry) Options() []Option {
	types := r.Types()
	out := make([]Option, 0, len(types))
	for _, t := range types {
		s, _ := r.Lookup(t)
		label := s.Name
		if label == "" {
			label = fmt.Sprintf("%d-Point Scale", s.Max())
		}
		out = append(out, Option{Value: t, Label: label})
	}
	return out
}

func builtin() []Scale {
	return []Scale{
		{
			Type: FourPoint,
			Name: "4-Point Scale",
			Levels: []Level{
				{1, "Novice", "With help, student can demonstrate concept with 50% accuracy", 55},
				{2, "Developing", "Student can demonstrate concept with 75% accuracy", 70},
				{3, "Proficient", "Student can demonstrate concept with 90% accuracy", 85},
				{4, "Advanced", "Student can demonstrate concept with 100% accuracy and can teach others", 100},
			},
		},
		{
			Type: FivePoint,
			Name: "5-Point Scale",
			Levels: []Level{
				{1, "Novice", "With help, student can demonstrate concept with 50% accuracy", 50},
				{2, "Approaching", "Student can demonstrate concept with 65% accuracy", 65},
				{3, "Developing", "Student can demonstrate concept with 80% accuracy", 80},
				{4, "Proficient", "Student can demonstrate concept with 95% accuracy", 95},
				{5, "Advanced", "Student can demonstrate concept with 100% accuracy and can teach others", 100},
			},
		},
	}
}
