package valuation

import (
	"sort"
	"strings"
)

// Grade is a letter grade, A (best) through F.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Grades lists the letter grades from best to worst.
var Grades = []Grade{GradeA, GradeB, GradeC, GradeD, GradeF}

// Cutoff maps every average score >= Min to Grade.
type Cutoff struct {
	Min   float64
	Grade Grade
}

// GradeScale is the bidirectional letter-grade <-> score table.
type GradeScale struct {
	scores  map[Grade]float64
	neutral float64
	cutoffs []Cutoff
	floor   Grade
}

// NewGradeScale builds a scale from explicit tables. Unknown grades score
// neutral; averages below every cutoff map to floor.
func NewGradeScale(scores map[Grade]float64, neutral float64, cutoffs []Cutoff, floor Grade) GradeScale {
	s := GradeScale{
		scores:  make(map[Grade]float64, len(scores)),
		neutral: neutral,
		cutoffs: append([]Cutoff(nil), cutoffs...),
		floor:   floor,
	}
	for g, v := range scores {
		s.scores[g] = v
	}
	sort.SliceStable(s.cutoffs, func(i, j int) bool { return s.cutoffs[i].Min > s.cutoffs[j].Min })
	return s
}

// DefaultGradeScale is A=5 .. F=1 with a neutral C and the standard partition.
func DefaultGradeScale() GradeScale {
	return NewGradeScale(
		map[Grade]float64{GradeA: 5, GradeB: 4, GradeC: 3, GradeD: 2, GradeF: 1},
		3,
		[]Cutoff{
			{Min: 4.5, Grade: GradeA},
			{Min: 4.0, Grade: GradeB},
			{Min: 3.0, Grade: GradeC},
			{Min: 2.0, Grade: GradeD},
		},
		GradeF,
	)
}

// Score returns the numeric score of g, or the neutral score when g is
// missing or unrecognised.
func (s GradeScale) Score(g Grade) float64 {
	if v, ok := s.scores[ParseGrade(string(g))]; ok {
		return v
	}
	return s.neutral
}

// GradeFor maps an average score onto a letter grade.
func (s GradeScale) GradeFor(avg float64) Grade {
	for _, c := range s.cutoffs {
		if avg >= c.Min {
			return c.Grade
		}
	}
	return s.floor
}

// Neutral is the score used for unknown grades and empty driver sets.
func (s GradeScale) Neutral() float64 { return s.neutral }

func (s GradeScale) isZero() bool { return s.scores == nil }

// ParseGrade upper-cases and trims s. The result may not be a known grade.
func ParseGrade(s string) Grade {
	return Grade(strings.ToUpper(strings.TrimSpace(s)))
}
