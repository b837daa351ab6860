package valuation

import (
	"fmt"
	"math"
	"strings"
)

// Driver names a qualitative value driver.
type Driver string

const (
	DriverFinancialPerformance  Driver = "financialPerformance"
	DriverCustomerConcentration Driver = "customerConcentration"
	DriverManagementTeam        Driver = "managementTeam"
	DriverCompetitivePosition   Driver = "competitivePosition"
	DriverGrowthProspects       Driver = "growthProspects"
	DriverSystemsProcesses      Driver = "systemsProcesses"
	DriverAssetQuality          Driver = "assetQuality"
	DriverIndustryOutlook       Driver = "industryOutlook"
	DriverRiskFactors           Driver = "riskFactors"
	DriverOwnerDependency       Driver = "ownerDependency"
)

// Drivers is the fixed driver set in canonical order.
var Drivers = []Driver{
	DriverFinancialPerformance,
	DriverCustomerConcentration,
	DriverManagementTeam,
	DriverCompetitivePosition,
	DriverGrowthProspects,
	DriverSystemsProcesses,
	DriverAssetQuality,
	DriverIndustryOutlook,
	DriverRiskFactors,
	DriverOwnerDependency,
}

var driverLookup = func() map[string]Driver {
	m := make(map[string]Driver, len(Drivers))
	for _, d := range Drivers {
		m[foldDriverName(string(d))] = d
	}
	return m
}()

func foldDriverName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
}

// ParseDriver accepts camelCase or snake_case driver names.
func ParseDriver(name string) (Driver, bool) {
	d, ok := driverLookup[foldDriverName(name)]
	return d, ok
}

// InputShape tags which form the driver ratings arrived in.
type InputShape int

const (
	ShapeUnknown InputShape = iota
	ShapeLetterGrade
	ShapeWeightedAnswer
)

func (s InputShape) String() string {
	switch s {
	case ShapeLetterGrade:
		return "letter_grade"
	case ShapeWeightedAnswer:
		return "weighted_answer"
	default:
		return "unknown"
	}
}

// MaxAnswerIndex is the best option of every weighted question (options 0..4).
const MaxAnswerIndex = 4

// DriverRatings is the tagged union of the two accepted rating shapes.
// Exactly one of Grades or Answers is meaningful, selected by Shape.
type DriverRatings struct {
	Shape   InputShape
	Grades  map[Driver]Grade
	Answers map[Driver]int
}

// LetterGrades wraps per-driver letter grades.
func LetterGrades(g map[Driver]Grade) DriverRatings {
	return DriverRatings{Shape: ShapeLetterGrade, Grades: g}
}

// WeightedAnswers wraps per-driver selected option indices.
func WeightedAnswers(a map[Driver]int) DriverRatings {
	return DriverRatings{Shape: ShapeWeightedAnswer, Answers: a}
}

// DriverScores holds one score in [1,5] per present driver.
type DriverScores map[Driver]float64

// NormalizeDrivers resolves either rating shape into driver scores.
func NormalizeDrivers(r DriverRatings, scale GradeScale) (DriverScores, error) {
	switch r.Shape {
	case ShapeLetterGrade:
		out := make(DriverScores, len(r.Grades))
		for d, g := range r.Grades {
			out[d] = scale.Score(g)
		}
		return out, nil
	case ShapeWeightedAnswer:
		out := make(DriverScores, len(r.Answers))
		for d, idx := range r.Answers {
			out[d] = float64(clampAnswer(idx) + 1)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unrecognised driver rating shape %s", ErrMalformedInput, r.Shape)
	}
}

func clampAnswer(idx int) int {
	return max(0, min(MaxAnswerIndex, idx))
}

// AverageScore is the mean over present drivers, or neutral when none are.
// Summation follows the canonical driver order so results are bit-identical
// across calls.
func AverageScore(s DriverScores, neutral float64) float64 {
	var sum float64
	var n int
	for _, d := range Drivers {
		if v, ok := s[d]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return neutral
	}
	return sum / float64(n)
}

// OutputRatings produces the letter-grade map stored on the assessment.
// Weighted-answer submissions carry no per-driver detail: every driver is
// stamped with the overall grade.
func OutputRatings(r DriverRatings, s DriverScores, overall Grade, scale GradeScale) map[Driver]Grade {
	out := make(map[Driver]Grade, len(Drivers))
	if r.Shape == ShapeWeightedAnswer {
		for _, d := range Drivers {
			out[d] = overall
		}
		return out
	}
	for d, v := range s {
		out[d] = scale.GradeFor(v)
	}
	return out
}

func roundAnswer(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return clampAnswer(int(math.Round(v))), true
}
