package grpc

import (
	"context"
	"time"

	"github.com/godilite/valuation-server/internal/valuation"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// AssessmentService is the service API the handlers expose.
type AssessmentService interface {
	Evaluate(ctx context.Context, in valuation.RawAssessmentInput) (valuation.Evaluation, error)
	Submit(ctx context.Context, in valuation.RawAssessmentInput) (valuation.Assessment, error)
	Resubmit(ctx context.Context, priorID string, in valuation.RawAssessmentInput) (valuation.Assessment, error)
	GetAssessment(ctx context.Context, id string) (valuation.Assessment, error)
	ListVersions(ctx context.Context, id string) ([]valuation.Assessment, error)
}
