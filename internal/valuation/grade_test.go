package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeScale_Score(t *testing.T) {
	s := DefaultGradeScale()

	cases := []struct {
		in   Grade
		want float64
	}{
		{GradeA, 5},
		{GradeB, 4},
		{GradeC, 3},
		{GradeD, 2},
		{GradeF, 1},
		{"b", 4},
		{" a ", 5},
		{"E", 3},
		{"", 3},
		{"excellent", 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, s.Score(tc.in), "grade %q", tc.in)
	}
}

func TestGradeScale_GradeFor(t *testing.T) {
	s := DefaultGradeScale()

	cases := []struct {
		avg  float64
		want Grade
	}{
		{5.0, GradeA},
		{4.5, GradeA},
		{4.49, GradeB},
		{4.0, GradeB},
		{3.99, GradeC},
		{3.0, GradeC},
		{2.99, GradeD},
		{2.0, GradeD},
		{1.99, GradeF},
		{1.0, GradeF},
		{0, GradeF},
		{math.Inf(-1), GradeF},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, s.GradeFor(tc.avg), "avg %.2f", tc.avg)
	}
}

func TestGradeScale_RoundTrip(t *testing.T) {
	s := DefaultGradeScale()

	for _, g := range Grades {
		assert.Equal(t, g, s.GradeFor(s.Score(g)), "grade %s", g)
		assert.Equal(t, g, s.GradeFor(math.Round(s.Score(g))), "grade %s", g)
	}
}

func TestNewGradeScale_Synthetic(t *testing.T) {
	s := NewGradeScale(
		map[Grade]float64{"P": 10, "X": 0},
		5,
		[]Cutoff{{Min: 1, Grade: "X"}, {Min: 7, Grade: "P"}},
		"Z",
	)

	assert.Equal(t, 10.0, s.Score("p"))
	assert.Equal(t, 5.0, s.Score("Q"))
	assert.Equal(t, 5.0, s.Neutral())
	assert.Equal(t, Grade("P"), s.GradeFor(8))
	assert.Equal(t, Grade("X"), s.GradeFor(6.9))
	assert.Equal(t, Grade("Z"), s.GradeFor(0.5))
}
