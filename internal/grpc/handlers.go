package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/godilite/valuation-server/internal/industry"
	"github.com/godilite/valuation-server/internal/service"
	"github.com/godilite/valuation-server/internal/valuation"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeyEvaluation CacheKeyType = "grpc:evaluation"
	cacheKeyAssessment CacheKeyType = "grpc:assessment"
)

// Resubmit request fields.
const (
	fieldPriorID = "prior_id"
	fieldInput   = "input"
)

type GRPCHandlers struct {
	assessments AssessmentService
	cache       Cacher
	logger      *zap.Logger
	sfGroup     singleflight.Group
	cacheTTL    time.Duration
	refVersion  string
}

type HandlerOption func(*GRPCHandlers)

// WithReferenceVersion scopes cached evaluations to one version of the
// industry reference table.
func WithReferenceVersion(version string) HandlerOption {
	return func(h *GRPCHandlers) { h.refVersion = version }
}

var _ ValuationServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers. cache may be nil.
func NewGRPCHandlers(assessments AssessmentService, cache Cacher, logger *zap.Logger, ttl time.Duration, opts ...HandlerOption) *GRPCHandlers {
	if assessments == nil {
		panic("nil AssessmentService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	h := &GRPCHandlers{
		assessments: assessments,
		cache:       cache,
		logger:      logger.Named("grpc-handler"),
		cacheTTL:    ttl,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func cacheKey(prefix CacheKeyType, id string) string {
	return string(prefix) + ":" + id
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, valuation.ErrMalformedInput):
		s.logger.Info("invalid assessment input", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrAssessmentNotFound):
		s.logger.Info("assessment not found", zap.String("op", op))
		return status.Error(codes.NotFound, "assessment not found")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	case errors.Is(err, industry.ErrReferenceData):
		s.logger.Error("reference data unavailable", zap.String("op", op), zap.Error(err))
		return status.Error(codes.FailedPrecondition, "industry reference data unavailable")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func requireID(req *wrapperspb.StringValue) (string, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "assessment id is required")
	}
	return id, nil
}

// Evaluate runs the engine without persisting. Results are cached by input
// fingerprint.
func (s *GRPCHandlers) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	in, err := decodeInput(req)
	if err != nil {
		return nil, s.handleError(ctx, "Evaluate", err)
	}
	fp, err := fingerprint(in, s.refVersion)
	if err != nil {
		return nil, s.handleError(ctx, "Evaluate", err)
	}

	view, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey(cacheKeyEvaluation, fp), s.cacheTTL, s.logger, func(fetchCtx context.Context) (EvaluationView, error) {
		ev, err := s.assessments.Evaluate(fetchCtx, in)
		if err != nil {
			return EvaluationView{}, err
		}
		return newEvaluationView(ev), nil
	})
	if err != nil {
		return nil, s.handleError(ctx, "Evaluate", err)
	}

	return s.respond(ctx, "Evaluate", view)
}

// Submit evaluates and stores a new assessment.
func (s *GRPCHandlers) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	in, err := decodeInput(req)
	if err != nil {
		return nil, s.handleError(ctx, "Submit", err)
	}

	a, err := s.assessments.Submit(ctx, in)
	if err != nil {
		return nil, s.handleError(ctx, "Submit", err)
	}
	s.warm(a)

	return s.respond(ctx, "Submit", a)
}

// Resubmit stores a new version of an existing assessment. The request
// carries {"prior_id": "...", "input": {...}}.
func (s *GRPCHandlers) Resubmit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	fields := req.GetFields()
	priorID := strings.TrimSpace(fields[fieldPriorID].GetStringValue())
	if priorID == "" {
		return nil, status.Error(codes.InvalidArgument, "prior_id is required")
	}

	doc := fields[fieldInput].GetStructValue()
	if doc == nil {
		return nil, status.Error(codes.InvalidArgument, "input is required")
	}
	in, err := decodeInput(doc)
	if err != nil {
		return nil, s.handleError(ctx, "Resubmit", err)
	}

	a, err := s.assessments.Resubmit(ctx, priorID, in)
	if err != nil {
		return nil, s.handleError(ctx, "Resubmit", err)
	}
	s.warm(a)

	return s.respond(ctx, "Resubmit", a)
}

// GetAssessment reads a stored assessment through the cache.
func (s *GRPCHandlers) GetAssessment(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	a, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey(cacheKeyAssessment, id), s.cacheTTL, s.logger, func(fetchCtx context.Context) (valuation.Assessment, error) {
		return s.assessments.GetAssessment(fetchCtx, id)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetAssessment", err)
	}

	return s.respond(ctx, "GetAssessment", a)
}

// ListVersions returns {"versions": [...]} newest first. Chains grow, so
// this is never cached.
func (s *GRPCHandlers) ListVersions(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	versions, err := s.assessments.ListVersions(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, "ListVersions", err)
	}

	return s.respond(ctx, "ListVersions", map[string]any{"versions": versions})
}

func (s *GRPCHandlers) respond(ctx context.Context, op string, v any) (*structpb.Struct, error) {
	out, err := encodeDocument(v)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

// warm stores a freshly written assessment so the first read is a hit.
func (s *GRPCHandlers) warm(a valuation.Assessment) {
	if s.cache == nil {
		return
	}
	storeInBackground(s.cache, cacheKey(cacheKeyAssessment, a.ID), a, s.cacheTTL, s.logger)
}
