package service

import (
	"context"

	"github.com/godilite/valuation-server/internal/repository/models"
	"github.com/godilite/valuation-server/internal/valuation"
)

// AssessmentRepository defines the storage operations the service needs.
type AssessmentRepository interface {
	Create(ctx context.Context, rec models.AssessmentRecord) (models.AssessmentRecord, error)
	GetByID(ctx context.Context, id string) (models.AssessmentRecord, error)
	ListVersions(ctx context.Context, id string) ([]models.AssessmentRecord, error)
}

// Evaluator runs the valuation engine over a raw submission.
type Evaluator interface {
	Evaluate(in valuation.RawAssessmentInput) (valuation.Evaluation, error)
}
