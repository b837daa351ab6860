package service

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/valuation-server/internal/repository"
	"github.com/godilite/valuation-server/internal/valuation"
	dbbuilder "github.com/godilite/valuation-server/pkg/database"
)

func setupRealRepo(tb testing.TB) *repository.AssessmentRepository {
	tb.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
	)
	if err != nil {
		tb.Fatalf("failed to create db pool via builder: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	repo := repository.NewAssessmentRepository(db, "sqlite3")
	if err := repo.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate db: %v", err)
	}
	return repo
}

func TestAssessmentService_ResubmissionChain(t *testing.T) {
	ctx := context.Background()
	clock := fixedNow
	svc := NewAssessmentService(newEngine(t), setupRealRepo(t), zap.NewNop(),
		WithIDGenerator(sequentialIDs()),
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}))

	first, err := svc.Submit(ctx, healthyInput(t))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	revised := healthyInput(t)
	revised.Adjustments.OwnerSalaryAddback = 40000
	second, err := svc.Resubmit(ctx, first.ID, revised)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.SupersedesID)
	assert.Equal(t, 2, second.Version)
	assert.Equal(t, 200000.0, second.Result.AdjustedEBITDA)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))

	// The original stays as it was.
	got, err := svc.GetAssessment(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.Equal(t, 160000.0, got.Result.AdjustedEBITDA)

	versions, err := svc.ListVersions(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, second.ID, versions[0].ID)
	assert.Equal(t, first.ID, versions[1].ID)
}

func TestAssessmentService_GetAssessment_NotFound(t *testing.T) {
	svc := NewAssessmentService(newEngine(t), setupRealRepo(t), zap.NewNop())

	_, err := svc.GetAssessment(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	_, err = svc.ListVersions(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestAssessmentService_WeightedSubmission(t *testing.T) {
	svc := NewAssessmentService(newEngine(t), setupRealRepo(t), zap.NewNop())
	in, err := valuation.ParseRawInput([]byte(`{
		"tier": "growth",
		"financials": {"net_income": "250,000"},
		"value_drivers": {"financialPerformance": 4, "riskFactors": "2", "managementTeam": 3},
		"industry": {"code": "238220"}
	}`))
	require.NoError(t, err)

	a, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	got, err := svc.GetAssessment(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, valuation.TierGrowth, got.Tier)
	assert.Len(t, got.ValueDrivers, len(valuation.Drivers))
	for _, g := range got.ValueDrivers {
		assert.Equal(t, got.Result.OverallGrade, g)
	}
}

func BenchmarkSubmit(b *testing.B) {
	svc := NewAssessmentService(newEngine(b), setupRealRepo(b), zap.NewNop())
	in := healthyInput(b)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := svc.Submit(context.Background(), in); err != nil {
			b.Fatal(err)
		}
	}
}
