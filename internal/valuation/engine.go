// Package valuation turns financial inputs and value-driver ratings into an
// adjusted EBITDA, a resolved multiple, a valuation range and a letter grade.
//
// Everything here is pure: an Engine holds only read-only reference data and
// may be shared by any number of goroutines.
package valuation

import (
	"errors"

	"github.com/godilite/valuation-server/internal/industry"
)

// ErrMalformedInput marks integrity problems with a submission, as opposed
// to missing fields, which are defaulted.
var ErrMalformedInput = errors.New("malformed assessment input")

// MultipleResolver picks a valuation multiple for an industry and score.
type MultipleResolver interface {
	Resolve(c industry.Context, score float64) industry.Resolution
}

// ValuationResult is the engine output for one submission.
type ValuationResult struct {
	BaseEBITDA       float64           `json:"base_ebitda"`
	AdjustedEBITDA   float64           `json:"adjusted_ebitda"`
	ResolvedMultiple float64           `json:"resolved_multiple"`
	LowEstimate      float64           `json:"low_estimate"`
	MidEstimate      float64           `json:"mid_estimate"`
	HighEstimate     float64           `json:"high_estimate"`
	OverallGrade     Grade             `json:"overall_grade"`
	AverageScore     float64           `json:"average_score"`
	MultipleSource   industry.Source   `json:"multiple_source"`
	MatchedKey       string            `json:"matched_key,omitempty"`
	Band             industry.BandKind `json:"band,omitempty"`
}

// Evaluation is a ValuationResult together with the normalized inputs it
// was derived from, ready for BuildAssessment.
type Evaluation struct {
	Result       ValuationResult
	Tier         Tier
	Shape        InputShape
	Financials   FinancialInputs
	Adjustments  Adjustments
	ValueDrivers map[Driver]Grade
	Industry     industry.Context
}

// Engine runs the valuation pipeline.
type Engine struct {
	grades    GradeScale
	multiples MultipleResolver
}

// Option configures an Engine.
type Option func(*Engine)

// WithGradeScale replaces the default A..F scale.
func WithGradeScale(s GradeScale) Option {
	return func(e *Engine) { e.grades = s }
}

// NewEngine creates an Engine over the given multiple resolver.
func NewEngine(multiples MultipleResolver, opts ...Option) *Engine {
	if multiples == nil {
		panic("nil MultipleResolver provided to NewEngine")
	}
	e := &Engine{multiples: multiples}
	for _, opt := range opts {
		opt(e)
	}
	if e.grades.isZero() {
		e.grades = DefaultGradeScale()
	}
	return e
}

// GradeScale returns the scale the engine grades with.
func (e *Engine) GradeScale() GradeScale { return e.grades }

// Evaluate runs the full pipeline over a raw submission.
func (e *Engine) Evaluate(in RawAssessmentInput) (Evaluation, error) {
	ratings, err := in.DriverRatings()
	if err != nil {
		return Evaluation{}, err
	}
	return e.EvaluateNormalized(
		in.FinancialInputs(),
		in.AdjustmentInputs(),
		ratings,
		in.Industry,
		ParseTier(in.Tier),
	)
}

// EvaluateNormalized runs the pipeline over already-coerced inputs. An empty
// tier is derived from the rating shape.
func (e *Engine) EvaluateNormalized(fin FinancialInputs, adj Adjustments, ratings DriverRatings, ind industry.Context, tier Tier) (Evaluation, error) {
	scores, err := NormalizeDrivers(ratings, e.grades)
	if err != nil {
		return Evaluation{}, err
	}

	base := BaseEBITDA(fin)
	adjusted := AdjustedEBITDA(base, adj)
	avg := AverageScore(scores, e.grades.Neutral())
	overall := e.grades.GradeFor(avg)
	res := e.multiples.Resolve(ind, avg)
	rng := ComputeRange(adjusted, res.Multiple)

	if tier == "" {
		tier = TierFree
		if ratings.Shape == ShapeWeightedAnswer {
			tier = TierGrowth
		}
	}

	return Evaluation{
		Result: ValuationResult{
			BaseEBITDA:       base,
			AdjustedEBITDA:   adjusted,
			ResolvedMultiple: res.Multiple,
			LowEstimate:      rng.Low,
			MidEstimate:      rng.Mid,
			HighEstimate:     rng.High,
			OverallGrade:     overall,
			AverageScore:     avg,
			MultipleSource:   res.Source,
			MatchedKey:       res.MatchedKey,
			Band:             res.Band,
		},
		Tier:         tier,
		Shape:        ratings.Shape,
		Financials:   fin,
		Adjustments:  adj,
		ValueDrivers: OutputRatings(ratings, scores, overall, e.grades),
		Industry:     ind,
	}, nil
}
