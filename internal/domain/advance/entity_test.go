package advance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdvance(remaining, emi int64) AdvancePayment {
	return AdvancePayment{
		ID:              "adv-1",
		EmployeeID:      "emp-1",
		Amount:          decimal.NewFromInt(remaining),
		EMIAmount:       decimal.NewFromInt(emi),
		RemainingAmount: decimal.NewFromInt(remaining),
		Status:          AdvanceStatusApproved,
	}
}

func TestAdvancePayment_Repay_Partial(t *testing.T) {
	adv := newAdvance(5000, 2000)

	got, err := adv.Repay(decimal.NewFromInt(2000))
	require.NoError(t, err)

	assert.True(t, got.RemainingAmount.Equal(decimal.NewFromInt(3000)))
	assert.False(t, got.IsSettled)
	assert.True(t, adv.RemainingAmount.Equal(decimal.NewFromInt(5000)), "receiver must not change")
}

func TestAdvancePayment_Repay_Settles(t *testing.T) {
	adv := newAdvance(1500, 2000)

	got, err := adv.Repay(decimal.NewFromInt(1500))
	require.NoError(t, err)

	assert.True(t, got.RemainingAmount.IsZero())
	assert.True(t, got.IsSettled)
	assert.False(t, got.IsOpen())
}

func TestAdvancePayment_Repay_Rejects(t *testing.T) {
	adv := newAdvance(1000, 500)

	_, err := adv.Repay(decimal.NewFromInt(1001))
	assert.ErrorIs(t, err, ErrInstallmentExceedsBalance)

	_, err = adv.Repay(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidInstallmentAmount)

	settled, err := adv.Repay(decimal.NewFromInt(1000))
	require.NoError(t, err)
	_, err = settled.Repay(decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrAdvanceSettled)
}

func TestSumApplied_IgnoresPending(t *testing.T) {
	installments := []Installment{
		{AmountPaid: decimal.NewFromInt(100), Status: InstallmentStatusPending},
		{AmountPaid: decimal.NewFromInt(200), Status: InstallmentStatusApproved},
		{AmountPaid: decimal.NewFromInt(300), Status: InstallmentStatusPaid},
	}

	assert.True(t, SumApplied(installments).Equal(decimal.NewFromInt(500)))
}
