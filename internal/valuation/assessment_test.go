package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/valuation-server/internal/industry"
)

func TestBuildAssessment(t *testing.T) {
	e := NewEngine(&stubResolver{res: industry.Resolution{Multiple: 3, Source: industry.SourceExact, MatchedKey: "2382", Band: industry.BandBase}})

	in, err := ParseRawInput([]byte(`{
		"tier": "free",
		"contact": {"name": "Sam Lee", "email": "sam@example.com"},
		"company": {"name": "Lee HVAC", "employee_count": 14},
		"financials": {"net_income": 90000, "depreciation": 10000},
		"adjustments": {"owner_salary_addback": 20000, "adjustment_notes": "market salary 80k"},
		"value_drivers": {"managementTeam": "A", "ownerDependency": "D"},
		"industry": {"code": "238220", "description": "HVAC"},
		"narrative": {"business_description": "Residential HVAC installs", "challenges": "hiring"}
	}`))
	require.NoError(t, err)

	ev, err := e.Evaluate(in)
	require.NoError(t, err)

	loc := time.FixedZone("EST", -5*3600)
	created := time.Date(2026, 3, 4, 9, 30, 0, 0, loc)
	a := BuildAssessment(in, ev, RecordMeta{ID: "a-2", SupersedesID: "a-1", CreatedAt: created})

	assert.Equal(t, "a-2", a.ID)
	assert.Equal(t, "a-1", a.SupersedesID)
	assert.Equal(t, time.UTC, a.CreatedAt.Location())
	assert.True(t, a.CreatedAt.Equal(created))
	assert.Equal(t, StatusProcessed, a.Status)
	assert.True(t, a.Processed)
	assert.Equal(t, TierFree, a.Tier)
	assert.Equal(t, in.Contact, a.Contact)
	assert.Equal(t, "Lee HVAC", a.Company.Name)
	assert.Equal(t, "hiring", a.Narrative.Challenges)
	assert.Equal(t, "market salary 80k", a.Adjustments.Notes)
	assert.Equal(t, industry.Context{Code: "238220", Description: "HVAC"}, a.Industry)

	// Result is carried over verbatim.
	assert.Equal(t, ev.Result, a.Result)
	assert.Equal(t, 120000.0, a.Result.AdjustedEBITDA)
	assert.InDelta(t, 360000, a.Result.MidEstimate, 1e-9)

	// The record owns its driver map.
	ev.ValueDrivers[DriverManagementTeam] = GradeF
	assert.Equal(t, GradeA, a.ValueDrivers[DriverManagementTeam])
}
