// Package lifecycle описывает жизненный цикл проекта и спора в виде явных
// таблиц переходов. Все проверки статусов проходят через этот пакет, а не
// через разрозненные сравнения строк в хэндлерах.
package lifecycle

import (
	"fmt"

	"github.com/vkaravaev/workhub-backend/internal/models"
)

// Action — действие над проектом, инициирующее переход статуса.
type Action string

const (
	ActionSubmitScope    Action = "submit_scope"
	ActionAcceptContract Action = "accept_contract"
	ActionCapturePayment Action = "capture_payment"
	ActionComplete       Action = "complete"
	ActionReopenDispute  Action = "reopen_dispute"
)

// ErrTransition возвращается при недопустимом переходе.
type ErrTransition struct {
	From   string
	Action Action
}

func (e *ErrTransition) Error() string {
	return fmt.Sprintf("lifecycle: действие %q недопустимо в статусе %q", e.Action, e.From)
}

// paymentEligible — статусы, в которых проект может перейти к оплате.
// pending_contract сохранён как легаси-синоним awaiting_contract.
var paymentEligible = map[string]struct{}{
	models.ProjectStatusPendingContract:  {},
	models.ProjectStatusAwaitingContract: {},
	models.ProjectStatusAwaitingPayment:  {},
}

// projectTransitions: (текущий статус, действие) -> следующий статус.
var projectTransitions = map[string]map[Action]string{
	models.ProjectStatusPendingContract: {
		ActionSubmitScope:    models.ProjectStatusPendingContract,
		ActionAcceptContract: models.ProjectStatusPendingContract,
		ActionCapturePayment: models.ProjectStatusInProgress,
	},
	models.ProjectStatusAwaitingContract: {
		ActionSubmitScope:    models.ProjectStatusAwaitingContract,
		ActionAcceptContract: models.ProjectStatusAwaitingContract,
		ActionCapturePayment: models.ProjectStatusInProgress,
	},
	models.ProjectStatusAwaitingPayment: {
		ActionSubmitScope:    models.ProjectStatusAwaitingPayment,
		ActionCapturePayment: models.ProjectStatusInProgress,
	},
	models.ProjectStatusInProgress: {
		ActionSubmitScope: models.ProjectStatusInProgress,
		ActionComplete:    models.ProjectStatusCompleted,
	},
	models.ProjectStatusCompleted: {
		ActionReopenDispute: models.ProjectStatusInProgress,
	},
}

// NextProjectStatus валидирует переход и возвращает следующий статус.
func NextProjectStatus(current string, action Action) (string, error) {
	actions, ok := projectTransitions[current]
	if !ok {
		return "", &ErrTransition{From: current, Action: action}
	}
	next, ok := actions[action]
	if !ok {
		return "", &ErrTransition{From: current, Action: action}
	}
	return next, nil
}

// CanTransition сообщает, допустимо ли действие в текущем статусе.
func CanTransition(current string, action Action) bool {
	_, err := NextProjectStatus(current, action)
	return err == nil
}

// PaymentEligible сообщает, может ли проект в данном статусе перейти к оплате.
func PaymentEligible(status string) bool {
	_, ok := paymentEligible[status]
	return ok
}

// DisputeTerminal сообщает, является ли статус спора терминальным.
func DisputeTerminal(status string) bool {
	return status == models.DisputeStatusResolved || status == models.DisputeStatusUnresolvable
}
