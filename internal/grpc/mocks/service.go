package mocks

import (
	"context"
	"errors"

	"github.com/godilite/valuation-server/internal/valuation"
)

// MockAssessmentService is a mock implementation of the AssessmentService
// interface for testing the handler layer. It uses function-based mocking
// for flexibility.
type MockAssessmentService struct {
	EvaluateFunc      func(ctx context.Context, in valuation.RawAssessmentInput) (valuation.Evaluation, error)
	SubmitFunc        func(ctx context.Context, in valuation.RawAssessmentInput) (valuation.Assessment, error)
	ResubmitFunc      func(ctx context.Context, priorID string, in valuation.RawAssessmentInput) (valuation.Assessment, error)
	GetAssessmentFunc func(ctx context.Context, id string) (valuation.Assessment, error)
	ListVersionsFunc  func(ctx context.Context, id string) ([]valuation.Assessment, error)
}

// Evaluate implements the AssessmentService interface
func (m *MockAssessmentService) Evaluate(ctx context.Context, in valuation.RawAssessmentInput) (valuation.Evaluation, error) {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, in)
	}
	return valuation.Evaluation{}, errors.New("EvaluateFunc not implemented")
}

// Submit implements the AssessmentService interface
func (m *MockAssessmentService) Submit(ctx context.Context, in valuation.RawAssessmentInput) (valuation.Assessment, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, in)
	}
	return valuation.Assessment{}, errors.New("SubmitFunc not implemented")
}

// Resubmit implements the AssessmentService interface
func (m *MockAssessmentService) Resubmit(ctx context.Context, priorID string, in valuation.RawAssessmentInput) (valuation.Assessment, error) {
	if m.ResubmitFunc != nil {
		return m.ResubmitFunc(ctx, priorID, in)
	}
	return valuation.Assessment{}, errors.New("ResubmitFunc not implemented")
}

// GetAssessment implements the AssessmentService interface
func (m *MockAssessmentService) GetAssessment(ctx context.Context, id string) (valuation.Assessment, error) {
	if m.GetAssessmentFunc != nil {
		return m.GetAssessmentFunc(ctx, id)
	}
	return valuation.Assessment{}, errors.New("GetAssessmentFunc not implemented")
}

// ListVersions implements the AssessmentService interface
func (m *MockAssessmentService) ListVersions(ctx context.Context, id string) ([]valuation.Assessment, error) {
	if m.ListVersionsFunc != nil {
		return m.ListVersionsFunc(ctx, id)
	}
	return nil, errors.New("ListVersionsFunc not implemented")
}
