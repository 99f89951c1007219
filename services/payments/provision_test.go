package payments

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProvision(t *testing.T) {
	cases := []struct {
		total  float64
		cents  int64
		amount float64
	}{
		{1000.00, 5000, 50.00},
		{199.99, 1000, 10.00},
		{12.34, 62, 0.62},
		{0.10, 1, 0.01},
		{2500.50, 12503, 125.03},
	}
	for _, tc := range cases {
		p, err := ComputeProvision(tc.total, 0.05)
		require.NoError(t, err, tc.total)
		assert.Equal(t, tc.cents, p.Cents, tc.total)
		assert.InDelta(t, tc.amount, p.AmountFloat(), 0.0001, tc.total)
		assert.Equal(t, 0.05, p.RateFloat())
	}
}

func TestComputeProvisionRejects(t *testing.T) {
	// 0.05 rounds to zero; the large totals exceed the maximum charge or int64.
	for _, total := range []float64{0, -10, 0.05, 20_000_000, 1e20, math.Inf(1), math.NaN()} {
		_, err := ComputeProvision(total, 0.05)
		assert.Error(t, err, total)
	}
	_, err := ComputeProvision(100, 0)
	assert.Error(t, err)
	_, err = ComputeProvision(100, 1)
	assert.Error(t, err)
}

func TestComputeProvisionMaximumCharge(t *testing.T) {
	p, err := ComputeProvision(19_999_999.80, 0.05)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxChargeCents), p.Cents)

	_, err = ComputeProvision(19_999_999.90, 0.05)
	assert.Error(t, err)
}
