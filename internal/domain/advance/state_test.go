package advance

import (
	"errors"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

func TestInstallmentStatus_Decide(t *testing.T) {
	tests := []struct {
		name    string
		from    InstallmentStatus
		action  InstallmentAction
		want    InstallmentStatus
		wantErr error
	}{
		{"approve pending", InstallmentStatusPending, InstallmentActionApprove, InstallmentStatusApproved, nil},
		{"reject pending", InstallmentStatusPending, InstallmentActionReject, InstallmentStatusRejected, nil},
		{"approve twice", InstallmentStatusApproved, InstallmentActionApprove, InstallmentStatusApproved, ErrInstallmentAlreadyDecided},
		{"reject approved", InstallmentStatusApproved, InstallmentActionReject, InstallmentStatusApproved, ErrInstallmentAlreadyDecided},
		{"approve paid", InstallmentStatusPaid, InstallmentActionApprove, InstallmentStatusPaid, ErrInstallmentAlreadyDecided},
		{"unknown action", InstallmentStatusPending, InstallmentAction("HOLD"), InstallmentStatusPending, ErrInvalidInstallmentAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Decide(tt.action)
			assert.Equal(t, tt.want, got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestInstallmentStatus_AlreadyDecidedIsStateError(t *testing.T) {
	_, err := InstallmentStatusApproved.Decide(InstallmentActionApprove)
	assert.True(t, errors.Is(err, apperror.ErrInvalidStateTransition))
}

func TestInstallmentStatus_PaidOnlyFromApproved(t *testing.T) {
	assert.True(t, InstallmentStatusApproved.CanTransitionTo(InstallmentStatusPaid))
	assert.False(t, InstallmentStatusPending.CanTransitionTo(InstallmentStatusPaid))
	assert.False(t, InstallmentStatusRejected.CanTransitionTo(InstallmentStatusApproved))
}
