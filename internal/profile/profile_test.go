package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinRegistry(t *testing.T) {
	reg, err := Builtin()
	require.NoError(t, err)

	t.Run("generic always present with no identifiers", func(t *testing.T) {
		gen := reg.Generic()
		require.NotNil(t, gen)
		assert.Empty(t, gen.Identifiers)
	})

	t.Run("generic excluded from identifier scan", func(t *testing.T) {
		for _, p := range reg.Scannable() {
			assert.NotEqual(t, GenericKey, p.Key)
			assert.NotEmpty(t, p.Identifiers, "scannable profile %s must carry identifiers", p.Key)
		}
	})

	t.Run("registration order is stable", func(t *testing.T) {
		keys := reg.Keys()
		require.NotEmpty(t, keys)
		assert.Equal(t, "morgan_stanley", keys[0])
		assert.Equal(t, GenericKey, keys[len(keys)-1])
	})

	t.Run("quarterly dialects annualize by 4", func(t *testing.T) {
		barc, ok := reg.Get("barclays")
		require.True(t, ok)
		rules := barc.CouponResolvers()
		require.NotEmpty(t, rules)
		assert.Equal(t, 4, rules[0].Annualize)
		// The final-coupon fallback is not annualized.
		assert.Equal(t, 1, rules[len(rules)-1].Annualize)
	})

	t.Run("snowball dialect flagged", func(t *testing.T) {
		citi, ok := reg.Get("citigroup")
		require.True(t, ok)
		assert.Equal(t, CouponSnowballMax, citi.CouponMode())
	})

	t.Run("barrier defaults carried per issuer", func(t *testing.T) {
		mbl, _ := reg.Get("macquarie")
		assert.Equal(t, 0.60, mbl.KnockInDefault)
		assert.Equal(t, 0.90, mbl.KnockOutDefault)

		ms, _ := reg.Get("morgan_stanley")
		assert.Zero(t, ms.KnockInDefault)
		assert.Equal(t, 0.95, ms.KnockOutDefault)
	})

	t.Run("catalog baskets load from embedded data", func(t *testing.T) {
		citi, _ := reg.Get("citigroup")
		require.Len(t, citi.Basket, 3)
		assert.Equal(t, "Coles Group Ltd", citi.Basket[0].Name)
		assert.Equal(t, "COL", citi.Basket[0].Ticker)

		gs, _ := reg.Get("goldman_sachs")
		assert.Empty(t, gs.Basket)
	})
}

func TestNewRegistryValidation(t *testing.T) {
	t.Run("unknown category is a configuration error", func(t *testing.T) {
		_, err := NewRegistry([]Spec{
			{Key: GenericKey},
			{Key: "bad", Identifiers: []string{"BAD"}, Patterns: map[Category][]string{"nonsense": {`x`}}},
		}, nil)
		assert.ErrorIs(t, err, ErrBadProfile)
	})

	t.Run("invalid regex is a configuration error", func(t *testing.T) {
		_, err := NewRegistry([]Spec{
			{Key: GenericKey},
			{Key: "bad", Identifiers: []string{"BAD"}, Patterns: map[Category][]string{CategoryISIN: {`([`}}},
		}, nil)
		assert.ErrorIs(t, err, ErrBadProfile)
	})

	t.Run("missing generic is a configuration error", func(t *testing.T) {
		_, err := NewRegistry([]Spec{{Key: "solo", Identifiers: []string{"SOLO"}}}, nil)
		assert.ErrorIs(t, err, ErrBadProfile)
	})

	t.Run("generic with identifiers is a configuration error", func(t *testing.T) {
		_, err := NewRegistry([]Spec{{Key: GenericKey, Identifiers: []string{"X"}}}, nil)
		assert.ErrorIs(t, err, ErrBadProfile)
	})

	t.Run("duplicate keys rejected", func(t *testing.T) {
		_, err := NewRegistry([]Spec{
			{Key: GenericKey},
			{Key: "dup", Identifiers: []string{"A"}},
			{Key: "dup", Identifiers: []string{"B"}},
		}, nil)
		assert.ErrorIs(t, err, ErrBadProfile)
	})
}
