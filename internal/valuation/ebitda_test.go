package valuation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseEBITDA(t *testing.T) {
	in := FinancialInputs{
		NetIncome:       100000,
		InterestExpense: 20000,
		TaxExpense:      30000,
		Depreciation:    10000,
		Amortization:    0,
	}

	assert.Equal(t, 160000.0, BaseEBITDA(in))
	assert.Equal(t, BaseEBITDA(in), BaseEBITDA(in))
	assert.Equal(t, 0.0, BaseEBITDA(FinancialInputs{}))
}

func TestBaseEBITDA_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		// Whole-dollar amounts keep float addition exact.
		v := [5]float64{}
		for j := range v {
			v[j] = float64(rng.Intn(10_000_000))
		}

		a := BaseEBITDA(FinancialInputs{v[0], v[1], v[2], v[3], v[4]})
		b := BaseEBITDA(FinancialInputs{v[4], v[3], v[2], v[1], v[0]})
		c := BaseEBITDA(FinancialInputs{v[2], v[0], v[4], v[1], v[3]})

		assert.Equal(t, v[0]+v[1]+v[2]+v[3]+v[4], a)
		assert.Equal(t, a, b)
		assert.Equal(t, a, c)
	}
}

func TestAdjustedEBITDA(t *testing.T) {
	t.Run("sums add-backs", func(t *testing.T) {
		adj := Adjustments{OwnerSalaryAddback: 50000, PersonalExpenses: 5000, OneTimeExpenses: 12000, OtherAdjustments: -2000}
		assert.Equal(t, 225000.0, AdjustedEBITDA(160000, adj))
	})

	t.Run("zero adjustments leave base unchanged", func(t *testing.T) {
		assert.Equal(t, -40000.0, AdjustedEBITDA(-40000, Adjustments{}))
	})

	t.Run("non-negative add-backs never reduce base", func(t *testing.T) {
		rng := rand.New(rand.NewSource(11))
		for i := 0; i < 200; i++ {
			base := float64(rng.Intn(2_000_000) - 1_000_000)
			adj := Adjustments{
				OwnerSalaryAddback: float64(rng.Intn(200_000)),
				PersonalExpenses:   float64(rng.Intn(50_000)),
				OneTimeExpenses:    float64(rng.Intn(50_000)),
				OtherAdjustments:   float64(rng.Intn(50_000)),
			}
			assert.GreaterOrEqual(t, AdjustedEBITDA(base, adj), base)
		}
	})

	t.Run("may go negative", func(t *testing.T) {
		assert.Less(t, AdjustedEBITDA(-300000, Adjustments{OwnerSalaryAddback: 100000}), 0.0)
	})
}

func TestComputeRange(t *testing.T) {
	t.Run("positive earnings", func(t *testing.T) {
		r := ComputeRange(160000, 5)

		assert.InDelta(t, 800000, r.Mid, 1e-6)
		assert.InDelta(t, 640000, r.Low, 1e-6)
		assert.InDelta(t, 960000, r.High, 1e-6)
		assert.LessOrEqual(t, r.Low, r.Mid)
		assert.LessOrEqual(t, r.Mid, r.High)
	})

	t.Run("negative earnings pass through", func(t *testing.T) {
		r := ComputeRange(-100000, 3)

		assert.InDelta(t, -300000, r.Mid, 1e-6)
		assert.InDelta(t, -240000, r.Low, 1e-6)
		assert.InDelta(t, -360000, r.High, 1e-6)
		assert.GreaterOrEqual(t, r.Low, r.Mid)
		assert.GreaterOrEqual(t, r.Mid, r.High)
	})

	t.Run("zero earnings", func(t *testing.T) {
		assert.Equal(t, Range{}, ComputeRange(0, 4.2))
	})
}
