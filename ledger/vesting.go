package ledger

import (
	"fmt"
	"sort"
	"time"
)

// VestingAccount is a snapshot of a single linear vesting grant. The grant
// unlocks continuously between StartTime and StartTime+DurationSeconds;
// ReleasedAmount tracks how much has already been claimed and never
// exceeds TotalAmount.
type VestingAccount struct {
	ID              int64 `json:"id" msgpack:"id"`
	TotalAmount     Money `json:"total_amount" msgpack:"total_amount" swaggertype:"string"`
	ReleasedAmount  Money `json:"released_amount" msgpack:"released_amount" swaggertype:"string"`
	StartTime       int64 `json:"start_time" msgpack:"start_time"`
	DurationSeconds int64 `json:"duration_seconds" msgpack:"duration_seconds"`
}

// NewVestingAccount validates and builds a fresh grant with nothing
// released yet.
func NewVestingAccount(id int64, total Money, startTime, durationSeconds int64) (VestingAccount, error) {
	if total.Sign() < 0 {
		return VestingAccount{}, fmt.Errorf("total amount must be non-negative, got %s", total)
	}
	if durationSeconds <= 0 {
		return VestingAccount{}, fmt.Errorf("duration must be positive, got %d", durationSeconds)
	}
	return VestingAccount{
		ID:              id,
		TotalAmount:     total,
		ReleasedAmount:  NewMoney(0),
		StartTime:       startTime,
		DurationSeconds: durationSeconds,
	}, nil
}

// IsFullyVested reports whether the whole grant has unlocked at now.
func (a VestingAccount) IsFullyVested(now time.Time) bool {
	return now.Unix() >= a.StartTime+a.DurationSeconds
}

// IsFullyClaimed reports whether every unlocked token has been claimed.
func (a VestingAccount) IsFullyClaimed() bool {
	return a.ReleasedAmount.Cmp(a.TotalAmount) == 0
}

// Remaining returns TotalAmount - ReleasedAmount.
func (a VestingAccount) Remaining() Money {
	return a.TotalAmount.Sub(a.ReleasedAmount)
}

// ClaimableAmount returns how much is unlockable at now but not yet
// released. The vested portion is floor(TotalAmount * elapsed / duration)
// in exact integer arithmetic, so cumulative claims can never drift past
// TotalAmount.
func (a VestingAccount) ClaimableAmount(now time.Time) Money {
	ts := now.Unix()
	if ts < a.StartTime {
		return Money{}
	}
	if ts >= a.StartTime+a.DurationSeconds {
		return a.TotalAmount.Sub(a.ReleasedAmount)
	}
	vested := mulDivFloor(a.TotalAmount, ts-a.StartTime, a.DurationSeconds)
	claimable := vested.Sub(a.ReleasedAmount)
	if claimable.Sign() < 0 {
		return Money{}
	}
	return claimable
}

// ProgressPercent returns the elapsed fraction of the vesting window as a
// decimal string with two fractional digits, "0.00" through "100.00",
// rounded half-up. Display only: accounting always goes through
// ClaimableAmount.
func (a VestingAccount) ProgressPercent(now time.Time) string {
	ts := now.Unix()
	if ts <= a.StartTime {
		return "0.00"
	}
	if ts >= a.StartTime+a.DurationSeconds {
		return "100.00"
	}
	elapsed := ts - a.StartTime
	bps := (elapsed*10000 + a.DurationSeconds/2) / a.DurationSeconds
	return fmt.Sprintf("%d.%02d", bps/100, bps%100)
}

// ApplyClaim returns a copy of the account with amount added to
// ReleasedAmount. It is not idempotent; exactly-once application per
// external transaction is the caller's responsibility.
func (a VestingAccount) ApplyClaim(amount Money) (VestingAccount, error) {
	if amount.Sign() <= 0 {
		return a, fmt.Errorf("claim amount must be positive, got %s", amount)
	}
	released := a.ReleasedAmount.Add(amount)
	if released.Cmp(a.TotalAmount) > 0 {
		return a, &OverclaimError{
			AccountID: a.ID,
			Requested: amount,
			Claimable: a.TotalAmount.Sub(a.ReleasedAmount),
		}
	}
	updated := a
	updated.ReleasedAmount = released
	return updated, nil
}

// ClaimAllocation is one schedule's share of a distributed claim: the
// post-claim snapshot and the amount taken from it.
type ClaimAllocation struct {
	Account VestingAccount
	Amount  Money
}

// DistributeClaim spreads an external claim across a recipient's
// schedules oldest-first: accounts are ordered by StartTime ascending
// (ties by ID), each is drained up to its claimable amount, and the walk
// stops once the claim is covered. When the schedules cannot cover the
// claim the remainder comes back as a ReconciliationWarning together with
// the allocations that did apply.
func DistributeClaim(accounts []VestingAccount, total Money, now time.Time) ([]ClaimAllocation, *ReconciliationWarning, error) {
	if total.Sign() <= 0 {
		return nil, nil, fmt.Errorf("claim amount must be positive, got %s", total)
	}

	ordered := make([]VestingAccount, len(accounts))
	copy(ordered, accounts)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].StartTime != ordered[j].StartTime {
			return ordered[i].StartTime < ordered[j].StartTime
		}
		return ordered[i].ID < ordered[j].ID
	})

	remaining := total
	allocations := make([]ClaimAllocation, 0, len(ordered))
	for _, account := range ordered {
		if remaining.IsZero() {
			break
		}
		claimable := account.ClaimableAmount(now)
		if claimable.IsZero() {
			continue
		}
		take := remaining.Min(claimable)
		updated, err := account.ApplyClaim(take)
		if err != nil {
			return nil, nil, err
		}
		allocations = append(allocations, ClaimAllocation{Account: updated, Amount: take})
		remaining = remaining.Sub(take)
	}

	if remaining.Sign() > 0 {
		warning := &ReconciliationWarning{
			Requested: total,
			Allocated: total.Sub(remaining),
			Shortfall: remaining,
		}
		return allocations, warning, nil
	}
	return allocations, nil, nil
}
