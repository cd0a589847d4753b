package roas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeTakesMaxOfGMVMaxCosts(t *testing.T) {
	r := Compose(1000, 100, 250, 50)

	assert.Equal(t, 250.0, r.GMVMaxCost, "live vs product cost must reconcile by max, not sum")
	assert.Equal(t, 300.0, r.TotalAdsSpend)
	assert.Equal(t, 24.0, r.SST)
	assert.Equal(t, 24.0, r.WHT)
	assert.Equal(t, 348.0, r.TotalCostWithTaxes)
	assert.InDelta(t, 1000.0/300.0, r.ROAS, 1e-9)
	assert.InDelta(t, 1000.0/348.0, r.ActualROAS, 1e-9)
}

func TestComposeLiveDominates(t *testing.T) {
	r := Compose(500, 400, 100, 0)
	assert.Equal(t, 400.0, r.GMVMaxCost)
	assert.Equal(t, 400.0, r.TotalAdsSpend)
}

func TestComposeZeroSpend(t *testing.T) {
	r := Compose(500, 0, 0, 0)
	assert.Equal(t, 0.0, r.ROAS, "zero spend must not divide")
	assert.Equal(t, 0.0, r.ActualROAS)
	assert.Equal(t, 0.0, r.TotalCostWithTaxes)
}

func TestComposeZeroGMV(t *testing.T) {
	r := Compose(0, 100, 50, 25)
	assert.Equal(t, 0.0, r.ROAS)
	assert.Equal(t, 0.0, r.ActualROAS)
	assert.Equal(t, 125.0, r.TotalAdsSpend)
}
