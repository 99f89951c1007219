package transfer

import (
	"taskilo/models"

	"github.com/qmuntal/stateless"
)

const (
	triggerRetryFailed    = "retry_failed"
	triggerRetrySucceeded = "retry_succeeded"
)

// newTransferMachine models a failed transfer record. A record stays in
// pending_retry until a retry succeeds; completed is final.
func newTransferMachine(status string) *stateless.StateMachine {
	machine := stateless.NewStateMachine(status)

	machine.Configure(models.TransferStatusPendingRetry).
		PermitReentry(triggerRetryFailed).
		Permit(triggerRetrySucceeded, models.TransferStatusCompleted)

	machine.Configure(models.TransferStatusCompleted)

	return machine
}

func canRetry(status string) bool {
	ok, err := newTransferMachine(status).CanFire(triggerRetrySucceeded)
	return err == nil && ok
}
