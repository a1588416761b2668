package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vkaravaev/workhub-backend/internal/models"
)

func TestNextProjectStatus(t *testing.T) {
	cases := []struct {
		name    string
		current string
		action  Action
		want    string
		wantErr bool
	}{
		{"оплата из pending_contract", models.ProjectStatusPendingContract, ActionCapturePayment, models.ProjectStatusInProgress, false},
		{"оплата из awaiting_contract", models.ProjectStatusAwaitingContract, ActionCapturePayment, models.ProjectStatusInProgress, false},
		{"оплата из awaiting_payment", models.ProjectStatusAwaitingPayment, ActionCapturePayment, models.ProjectStatusInProgress, false},
		{"повторная оплата в in_progress запрещена", models.ProjectStatusInProgress, ActionCapturePayment, "", true},
		{"оплата завершённого проекта запрещена", models.ProjectStatusCompleted, ActionCapturePayment, "", true},
		{"завершение из in_progress", models.ProjectStatusInProgress, ActionComplete, models.ProjectStatusCompleted, false},
		{"завершение до оплаты запрещено", models.ProjectStatusPendingContract, ActionComplete, "", true},
		{"принятый спор возвращает проект в работу", models.ProjectStatusCompleted, ActionReopenDispute, models.ProjectStatusInProgress, false},
		{"спор по незавершённому проекту запрещён", models.ProjectStatusInProgress, ActionReopenDispute, "", true},
		{"новая версия условий не меняет статус", models.ProjectStatusPendingContract, ActionSubmitScope, models.ProjectStatusPendingContract, false},
		{"неизвестный статус", "cancelled", ActionComplete, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := NextProjectStatus(tc.current, tc.action)
			if tc.wantErr {
				assert.Error(t, err)
				var trErr *ErrTransition
				assert.ErrorAs(t, err, &trErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, next)
		})
	}
}

func TestPaymentEligible(t *testing.T) {
	assert.True(t, PaymentEligible(models.ProjectStatusPendingContract))
	assert.True(t, PaymentEligible(models.ProjectStatusAwaitingContract))
	assert.True(t, PaymentEligible(models.ProjectStatusAwaitingPayment))
	assert.False(t, PaymentEligible(models.ProjectStatusInProgress))
	assert.False(t, PaymentEligible(models.ProjectStatusCompleted))
}

func TestDisputeTerminal(t *testing.T) {
	assert.False(t, DisputeTerminal(models.DisputeStatusPending))
	assert.True(t, DisputeTerminal(models.DisputeStatusResolved))
	assert.True(t, DisputeTerminal(models.DisputeStatusUnresolvable))
}
