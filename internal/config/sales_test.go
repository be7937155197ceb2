package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSalesConfig(t *testing.T) {
	require.NoError(t, validateSalesConfig(DefaultSalesConfig()))

	bad := DefaultSalesConfig()
	bad.DefaultLowStockThreshold = -1
	assert.Error(t, validateSalesConfig(bad))

	bad = DefaultSalesConfig()
	bad.WalkInCustomerName = "  "
	assert.Error(t, validateSalesConfig(bad))

	bad = DefaultSalesConfig()
	bad.PaymentMethods = nil
	assert.Error(t, validateSalesConfig(bad))
}

func TestAllowsPaymentMethod(t *testing.T) {
	cfg := DefaultSalesConfig()

	assert.True(t, cfg.AllowsPaymentMethod("cash"))
	assert.True(t, cfg.AllowsPaymentMethod(" Card "), "matching is case and whitespace insensitive")
	assert.False(t, cfg.AllowsPaymentMethod("barter"))
	assert.False(t, cfg.AllowsPaymentMethod(""))
}

func TestStaticHolderReturnsStoredConfig(t *testing.T) {
	cfg := DefaultSalesConfig()
	cfg.WalkInCustomerName = "Guest"

	holder := NewStaticSalesConfigHolder(cfg)
	assert.Equal(t, "Guest", holder.Get().WalkInCustomerName)
}
