package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/godilite/valuation-server/internal/repository"
	"github.com/godilite/valuation-server/internal/repository/models"
	"github.com/godilite/valuation-server/internal/valuation"
)

const (
	dbTimeout = 2 * time.Second
)

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrStorageFailure     = errors.New("storage failure")
)

// AssessmentService evaluates submissions and keeps the resulting records.
type AssessmentService struct {
	engine  Evaluator
	storage AssessmentRepository
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures an AssessmentService.
type Option func(*AssessmentService)

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *AssessmentService) { s.now = now }
}

// WithIDGenerator overrides the assessment id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *AssessmentService) { s.newID = gen }
}

// NewAssessmentService creates a new AssessmentService instance.
func NewAssessmentService(engine Evaluator, storage AssessmentRepository, logger *zap.Logger, opts ...Option) *AssessmentService {
	if engine == nil {
		panic("engine must not be nil")
	}
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &AssessmentService{
		engine:  engine,
		storage: storage,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate runs the engine without persisting anything.
func (s *AssessmentService) Evaluate(ctx context.Context, in valuation.RawAssessmentInput) (valuation.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return valuation.Evaluation{}, err
	}

	ev, err := s.engine.Evaluate(in)
	if err != nil {
		if errors.Is(err, valuation.ErrMalformedInput) {
			s.logger.Warn("rejected assessment input",
				zap.String("error_class", "input_integrity"),
				zap.Error(err))
		} else {
			s.logger.Error("valuation failed",
				zap.String("error_class", "reference_data"),
				zap.Error(err))
		}
		return valuation.Evaluation{}, err
	}

	s.logger.Debug("evaluated assessment input",
		zap.Int("defaulted_fields", defaultedFields(ev)),
		zap.Stringer("shape", ev.Shape))
	return ev, nil
}

// Submit evaluates in and stores it as a new assessment.
func (s *AssessmentService) Submit(ctx context.Context, in valuation.RawAssessmentInput) (valuation.Assessment, error) {
	return s.submit(ctx, "", in)
}

// Resubmit evaluates in as a new version of priorID. The prior record is
// left as it was.
func (s *AssessmentService) Resubmit(ctx context.Context, priorID string, in valuation.RawAssessmentInput) (valuation.Assessment, error) {
	if _, err := s.GetAssessment(ctx, priorID); err != nil {
		return valuation.Assessment{}, err
	}
	return s.submit(ctx, priorID, in)
}

func (s *AssessmentService) submit(ctx context.Context, priorID string, in valuation.RawAssessmentInput) (valuation.Assessment, error) {
	ev, err := s.Evaluate(ctx, in)
	if err != nil {
		return valuation.Assessment{}, err
	}

	a := valuation.BuildAssessment(in, ev, valuation.RecordMeta{
		ID:           s.newID(),
		SupersedesID: priorID,
		CreatedAt:    s.now(),
	})

	rec, err := toRecord(a)
	if err != nil {
		return valuation.Assessment{}, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	stored, err := s.storage.Create(dbCtx, rec)
	if err != nil {
		s.logger.Error("failed to store assessment", zap.String("id", a.ID), zap.Error(err))
		return valuation.Assessment{}, storageError(err)
	}
	a.Version = stored.Version

	s.logger.Info("processed assessment",
		zap.String("id", a.ID),
		zap.String("supersedes_id", a.SupersedesID),
		zap.Int("version", a.Version),
		zap.String("tier", string(a.Tier)),
		zap.String("grade", string(a.Result.OverallGrade)),
		zap.String("multiple_source", string(a.Result.MultipleSource)),
		zap.Float64("mid_estimate", a.Result.MidEstimate))

	return a, nil
}

// GetAssessment fetches a stored assessment by id.
func (s *AssessmentService) GetAssessment(ctx context.Context, id string) (valuation.Assessment, error) {
	if strings.TrimSpace(id) == "" {
		return valuation.Assessment{}, fmt.Errorf("%w: empty id", ErrAssessmentNotFound)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rec, err := s.storage.GetByID(dbCtx, id)
	if err != nil {
		return valuation.Assessment{}, storageError(err)
	}
	return fromRecord(rec)
}

// ListVersions returns the resubmission chain containing id, newest first.
func (s *AssessmentService) ListVersions(ctx context.Context, id string) ([]valuation.Assessment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrAssessmentNotFound)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	recs, err := s.storage.ListVersions(dbCtx, id)
	if err != nil {
		return nil, storageError(err)
	}

	out := make([]valuation.Assessment, 0, len(recs))
	for _, rec := range recs {
		a, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func storageError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrAssessmentNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

func toRecord(a valuation.Assessment) (models.AssessmentRecord, error) {
	doc, err := json.Marshal(a)
	if err != nil {
		return models.AssessmentRecord{}, fmt.Errorf("encode assessment %s: %w", a.ID, err)
	}
	return models.AssessmentRecord{
		ID:           a.ID,
		SupersedesID: a.SupersedesID,
		Tier:         string(a.Tier),
		Status:       string(a.Status),
		OverallGrade: string(a.Result.OverallGrade),
		MidEstimate:  a.Result.MidEstimate,
		CreatedAt:    a.CreatedAt,
		Document:     doc,
	}, nil
}

func fromRecord(rec models.AssessmentRecord) (valuation.Assessment, error) {
	var a valuation.Assessment
	if err := json.Unmarshal(rec.Document, &a); err != nil {
		return valuation.Assessment{}, fmt.Errorf("%w: decode assessment %s: %v", ErrStorageFailure, rec.ID, err)
	}
	a.Version = rec.Version
	return a, nil
}

// defaultedFields counts financial lines left at zero and drivers with no
// rating.
func defaultedFields(ev valuation.Evaluation) int {
	f, adj := ev.Financials, ev.Adjustments
	n := 0
	for _, v := range []float64{
		f.NetIncome, f.InterestExpense, f.TaxExpense, f.Depreciation, f.Amortization,
		adj.OwnerSalaryAddback, adj.PersonalExpenses, adj.OneTimeExpenses, adj.OtherAdjustments,
	} {
		if v == 0 {
			n++
		}
	}
	return n + len(valuation.Drivers) - len(ev.ValueDrivers)
}
