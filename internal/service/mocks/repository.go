package mocks

import (
	"context"
	"errors"

	"github.com/godilite/valuation-server/internal/repository/models"
	"github.com/godilite/valuation-server/internal/valuation"
)

// MockAssessmentRepository is a mock implementation of the AssessmentRepository
// interface for testing the service layer.
type MockAssessmentRepository struct {
	CreateFunc       func(ctx context.Context, rec models.AssessmentRecord) (models.AssessmentRecord, error)
	GetByIDFunc      func(ctx context.Context, id string) (models.AssessmentRecord, error)
	ListVersionsFunc func(ctx context.Context, id string) ([]models.AssessmentRecord, error)
}

// Create implements the AssessmentRepository interface
func (m *MockAssessmentRepository) Create(ctx context.Context, rec models.AssessmentRecord) (models.AssessmentRecord, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return models.AssessmentRecord{}, errors.New("CreateFunc not implemented")
}

// GetByID implements the AssessmentRepository interface
func (m *MockAssessmentRepository) GetByID(ctx context.Context, id string) (models.AssessmentRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return models.AssessmentRecord{}, errors.New("GetByIDFunc not implemented")
}

// ListVersions implements the AssessmentRepository interface
func (m *MockAssessmentRepository) ListVersions(ctx context.Context, id string) ([]models.AssessmentRecord, error) {
	if m.ListVersionsFunc != nil {
		return m.ListVersionsFunc(ctx, id)
	}
	return nil, errors.New("ListVersionsFunc not implemented")
}

// MockEvaluator is a mock implementation of the Evaluator interface.
type MockEvaluator struct {
	EvaluateFunc func(in valuation.RawAssessmentInput) (valuation.Evaluation, error)
}

// Evaluate implements the Evaluator interface
func (m *MockEvaluator) Evaluate(in valuation.RawAssessmentInput) (valuation.Evaluation, error) {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(in)
	}
	return valuation.Evaluation{}, errors.New("EvaluateFunc not implemented")
}
