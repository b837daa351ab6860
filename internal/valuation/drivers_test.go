package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDriver(t *testing.T) {
	for _, name := range []string{"customerConcentration", "customer_concentration", "CUSTOMER_CONCENTRATION", " customerconcentration "} {
		d, ok := ParseDriver(name)
		assert.True(t, ok, name)
		assert.Equal(t, DriverCustomerConcentration, d)
	}

	_, ok := ParseDriver("vibes")
	assert.False(t, ok)
}

func TestNormalizeDrivers(t *testing.T) {
	scale := DefaultGradeScale()

	t.Run("letter grades", func(t *testing.T) {
		scores, err := NormalizeDrivers(LetterGrades(map[Driver]Grade{
			DriverManagementTeam:  GradeA,
			DriverRiskFactors:     GradeD,
			DriverOwnerDependency: "Q",
		}), scale)

		require.NoError(t, err)
		assert.Equal(t, DriverScores{
			DriverManagementTeam:  5,
			DriverRiskFactors:     2,
			DriverOwnerDependency: 3,
		}, scores)
	})

	t.Run("weighted answers", func(t *testing.T) {
		scores, err := NormalizeDrivers(WeightedAnswers(map[Driver]int{
			DriverGrowthProspects: 0,
			DriverAssetQuality:    4,
			DriverIndustryOutlook: 9,
			DriverRiskFactors:     -2,
		}), scale)

		require.NoError(t, err)
		assert.Equal(t, DriverScores{
			DriverGrowthProspects: 1,
			DriverAssetQuality:    5,
			DriverIndustryOutlook: 5,
			DriverRiskFactors:     1,
		}, scores)
	})

	t.Run("scores stay within 1..5", func(t *testing.T) {
		answers := map[Driver]int{}
		for i, d := range Drivers {
			answers[d] = i - 3
		}
		scores, err := NormalizeDrivers(WeightedAnswers(answers), scale)
		require.NoError(t, err)
		for d, v := range scores {
			assert.GreaterOrEqual(t, v, 1.0, d)
			assert.LessOrEqual(t, v, 5.0, d)
		}
	})

	t.Run("unknown shape", func(t *testing.T) {
		_, err := NormalizeDrivers(DriverRatings{}, scale)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})
}

func TestAverageScore(t *testing.T) {
	assert.Equal(t, 3.0, AverageScore(nil, 3))
	assert.Equal(t, 3.0, AverageScore(DriverScores{}, 3))
	assert.Equal(t, 4.0, AverageScore(DriverScores{DriverManagementTeam: 5, DriverRiskFactors: 3}, 3))
	assert.InDelta(t, 3.6667, AverageScore(DriverScores{DriverManagementTeam: 5, DriverRiskFactors: 3, DriverAssetQuality: 3}, 3), 1e-4)
}

func TestOutputRatings(t *testing.T) {
	scale := DefaultGradeScale()

	t.Run("letter shape keeps per-driver grades", func(t *testing.T) {
		r := LetterGrades(map[Driver]Grade{DriverManagementTeam: "a", DriverRiskFactors: "Z"})
		scores, err := NormalizeDrivers(r, scale)
		require.NoError(t, err)

		out := OutputRatings(r, scores, GradeB, scale)

		assert.Equal(t, map[Driver]Grade{DriverManagementTeam: GradeA, DriverRiskFactors: GradeC}, out)
	})

	t.Run("weighted shape stamps overall grade on every driver", func(t *testing.T) {
		r := WeightedAnswers(map[Driver]int{DriverManagementTeam: 4, DriverRiskFactors: 0})
		scores, err := NormalizeDrivers(r, scale)
		require.NoError(t, err)

		out := OutputRatings(r, scores, GradeC, scale)

		assert.Len(t, out, len(Drivers))
		for _, d := range Drivers {
			assert.Equal(t, GradeC, out[d], d)
		}
	})
}
