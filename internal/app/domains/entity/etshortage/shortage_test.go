package etshortage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() Spec {
	target := decimal.NewFromInt(5000)
	return Spec{
		MedicineName:   "Amoxicillin 500mg",
		QuantityNeeded: 200,
		Unit:           "capsules",
		Urgency:        "high",
		FundingTarget:  &target,
	}
}

func TestNewShortage_Valid(t *testing.T) {
	s, err := NewShortage("s-1", "CGH_001", validSpec())
	require.NoError(t, err)

	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, UrgencyHigh, s.Urgency)
	assert.Equal(t, DefaultCurrency, s.FundingCurrency)
	assert.True(t, s.HasFundingTarget())
	assert.False(t, s.CreatedAt.IsZero())
}

func TestNewShortage_Invalid(t *testing.T) {
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name   string
		mutate func(*Spec)
		field  string
		want   error
	}{
		{"missing medicine", func(s *Spec) { s.MedicineName = "  " }, "medicine_name", ErrMissingMedicineName},
		{"zero quantity", func(s *Spec) { s.QuantityNeeded = 0 }, "quantity_needed", ErrInvalidQuantity},
		{"missing unit", func(s *Spec) { s.Unit = "" }, "unit", ErrMissingUnit},
		{"missing urgency", func(s *Spec) { s.Urgency = "" }, "urgency_level", ErrMissingUrgency},
		{"bad urgency", func(s *Spec) { s.Urgency = "URGENT" }, "urgency_level", ErrInvalidUrgency},
		{"negative target", func(s *Spec) { s.FundingTarget = &negative }, "estimated_funding", ErrNegativeFunding},
		{"negative cost", func(s *Spec) { s.CostPerUnit = &negative }, "cost_per_unit", ErrNegativeCostPerUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)

			_, err := NewShortage("s-1", "CGH_001", spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestUrgencyOrdering(t *testing.T) {
	assert.True(t, UrgencyLow.Less(UrgencyMedium))
	assert.True(t, UrgencyMedium.Less(UrgencyHigh))
	assert.True(t, UrgencyHigh.Less(UrgencyCritical))
	assert.False(t, UrgencyCritical.Less(UrgencyLow))
}

func TestStatusAcceptsPledges(t *testing.T) {
	assert.True(t, StatusActive.AcceptsPledges())
	assert.True(t, StatusFulfilled.AcceptsPledges())
	assert.False(t, StatusCancelled.AcceptsPledges())
	assert.False(t, StatusExpired.AcceptsPledges())
}

func TestCancelIsIdempotent(t *testing.T) {
	s, err := NewShortage("s-1", "CGH_001", validSpec())
	require.NoError(t, err)

	assert.True(t, s.Cancel("admin@hospital.lk"))
	assert.Equal(t, StatusCancelled, s.Status)
	assert.False(t, s.Cancel("admin@hospital.lk"))
}

func TestLack(t *testing.T) {
	s := &Shortage{QuantityNeeded: 100, QuantityAvailable: 30}
	assert.Equal(t, int64(70), s.Lack())

	s.QuantityAvailable = 150
	assert.Equal(t, int64(0), s.Lack())
}
