package rates

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLookup_PrintTierBreakpoints(t *testing.T) {
	tiers := Default().PrintTiers
	cases := []struct {
		qty  int
		want string
	}{
		{0, "0.8"},
		{99, "0.8"},
		{100, "0.8"},
		{499, "0.8"},
		{500, "0.75"},
		{999, "0.75"},
		{1000, "0.7"},
		{2999, "0.7"},
		{3000, "0.65"},
		{5000, "0.6"},
		{25000, "0.6"},
	}
	for _, tc := range cases {
		got, err := tiers.Lookup(tc.qty)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec(tc.want)), "qty %d: got %s want %s", tc.qty, got, tc.want)
	}
}

func TestLookup_UnorderedInputMatchesHighestBreakpoint(t *testing.T) {
	tiers := Tiers{
		{MinQty: 0, Price: dec("3.75")},
		{MinQty: 1000, Price: dec("3.25")},
		{MinQty: 100, Price: dec("3.75")},
		{MinQty: 10000, Price: dec("2.50")},
	}

	got, err := tiers.Lookup(2000)
	require.NoError(t, err)
	assert.Equal(t, "3.25", got.StringFixed(2))
}

func TestLookup_MissingFallback(t *testing.T) {
	tiers := Tiers{{MinQty: 100, Price: dec("1")}}

	_, err := tiers.Lookup(50)
	assert.ErrorIs(t, err, ErrMissingFallbackTier)
	assert.ErrorIs(t, tiers.Validate(), ErrMissingFallbackTier)
	assert.ErrorIs(t, Tiers{}.Validate(), ErrMissingFallbackTier)
}

func TestTierMonotonicity(t *testing.T) {
	tables := map[string]Tiers{
		"print":  Default().PrintTiers,
		"markup": Default().DeviceMarkups.Apply(dec("2.05")),
	}
	for name, tiers := range tables {
		prev, err := tiers.Lookup(0)
		require.NoError(t, err)
		for q := 1; q <= 12000; q += 37 {
			price, err := tiers.Lookup(q)
			require.NoError(t, err)
			assert.True(t, price.LessThanOrEqual(prev), "%s: price rose at %d", name, q)
			prev = price
		}
	}
}

func TestValidate_RejectsBadTiers(t *testing.T) {
	cases := map[string]struct {
		tiers Tiers
		want  error
	}{
		"negative min":  {Tiers{{MinQty: 0, Price: dec("1")}, {MinQty: -5, Price: dec("1")}}, ErrInvalidTier},
		"negative cost": {Tiers{{MinQty: 0, Price: dec("-1")}}, ErrInvalidTier},
		"duplicate":     {Tiers{{MinQty: 0, Price: dec("1")}, {MinQty: 0, Price: dec("2")}}, ErrInvalidTier},
		"rising price":  {Tiers{{MinQty: 0, Price: dec("1")}, {MinQty: 100, Price: dec("2")}}, ErrNonMonotonicTiers},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, tc.tiers.Validate(), tc.want)
		})
	}
}

func TestLabel(t *testing.T) {
	tiers := Default().PrintTiers
	assert.Equal(t, "below 100 units", tiers.Label(50))
	assert.Equal(t, "500-999 units", tiers.Label(750))
	assert.Equal(t, "1,000-2,999 units", tiers.Label(1000))
	assert.Equal(t, "10,000+ units", tiers.Label(40000))
}

func TestMarkupTiersApply(t *testing.T) {
	got := Default().DeviceMarkups.Apply(dec("2.05"))

	require.Len(t, got, 6)
	assert.Equal(t, 10000, got[0].MinQty)
	assert.Equal(t, "2.50", got[0].Price.StringFixed(2))
	assert.Equal(t, "2.87", got[5].Price.StringFixed(2))
}

func TestShippingStaging(t *testing.T) {
	got := Default().Costs.ShippingStaging()
	assert.Equal(t, "13.33", got.StringFixed(2))
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	content := []byte(`{"version":"2025-01","fees":{"setup_fee":"175","setup_fee_threshold":1000,"extra_design_fee":"35","sample_run_fee":"65","sample_run_free_threshold":5000,"units_per_included_design":1000}}`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	rt, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-01", rt.Version)
	assert.True(t, rt.Fees.SetupFee.Equal(decimal.NewFromInt(175)))
	assert.True(t, rt.AddOns.DoubleSided.Equal(dec("0.35")))
}

func TestLoad_RejectsInvalidTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	content := []byte(`{"print_tiers":[{"min_qty":100,"price":"0.8"}]}`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFallbackTier))
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	rt, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Version, rt.Version)
}
