package ledger

import "fmt"

// OverclaimError reports a claim that would push the released amount of a
// vesting account above its total grant. The caller must reject the
// originating request or retry against fresh state.
type OverclaimError struct {
	AccountID int64
	Requested Money
	Claimable Money
}

func (e *OverclaimError) Error() string {
	return fmt.Sprintf("claim of %s exceeds claimable balance %s on vesting account %d",
		e.Requested, e.Claimable, e.AccountID)
}

// InsufficientBalanceError reports a withdrawal that exceeds the current
// principal of a stake account.
type InsufficientBalanceError struct {
	AccountID int64
	Requested Money
	Available Money
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("withdrawal of %s exceeds balance %s on stake account %d",
		e.Requested, e.Available, e.AccountID)
}

// ReconciliationWarning is returned when an external authoritative claim
// exceeds the total locally claimable amount across a recipient's
// schedules. It is a signal, not an error: the external transaction has
// already happened and cannot be rolled back, so the shortfall must be
// recorded for manual reconciliation instead of being dropped.
type ReconciliationWarning struct {
	Requested Money `json:"requested" msgpack:"requested" swaggertype:"string"`
	Allocated Money `json:"allocated" msgpack:"allocated" swaggertype:"string"`
	Shortfall Money `json:"shortfall" msgpack:"shortfall" swaggertype:"string"`
}
