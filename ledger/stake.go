package ledger

import (
	"fmt"
	"math/big"
)

// basisPoints is the ratio granularity for share accounting: 10000 = 100.00%.
const basisPoints = 10000

// StakeAccount is a snapshot of a staking position: the deposited
// principal and the proportional share of the pool it represents.
// Amount and Shares are zero together or positive together.
type StakeAccount struct {
	ID     int64 `json:"id" msgpack:"id"`
	Amount Money `json:"amount" msgpack:"amount" swaggertype:"string"`
	Shares Money `json:"shares" msgpack:"shares" swaggertype:"string"`
}

// NewStakeAccount validates and builds a stake position.
func NewStakeAccount(id int64, amount, shares Money) (StakeAccount, error) {
	if amount.Sign() < 0 || shares.Sign() < 0 {
		return StakeAccount{}, fmt.Errorf("amount and shares must be non-negative, got %s, %s", amount, shares)
	}
	if amount.IsZero() != shares.IsZero() {
		return StakeAccount{}, fmt.Errorf("amount and shares must be zero together, got %s, %s", amount, shares)
	}
	return StakeAccount{ID: id, Amount: amount, Shares: shares}, nil
}

// IsDrained reports whether the position has been fully withdrawn.
func (s StakeAccount) IsDrained() bool {
	return s.Amount.IsZero()
}

// Deposit returns a copy of the account with amount and shares increased.
// Shares are computed by the pool on chain and arrive with the deposit.
func (s StakeAccount) Deposit(amount, shares Money) (StakeAccount, error) {
	if amount.Sign() <= 0 || shares.Sign() <= 0 {
		return s, fmt.Errorf("deposit amount and shares must be positive, got %s, %s", amount, shares)
	}
	updated := s
	updated.Amount = s.Amount.Add(amount)
	updated.Shares = s.Shares.Add(shares)
	return updated, nil
}

// PartialWithdraw reduces the position by withdraw and removes the
// proportional share count, computed in basis points:
// floor(withdraw*10000/amount), then floor(shares*ratio/10000). Both
// divisions round down so any residue stays with the pool. A withdrawal
// of the full amount zeroes amount and shares exactly.
func (s StakeAccount) PartialWithdraw(withdraw Money) (StakeAccount, Money, error) {
	if withdraw.Sign() <= 0 {
		return s, Money{}, fmt.Errorf("withdraw amount must be positive, got %s", withdraw)
	}
	if withdraw.Cmp(s.Amount) > 0 {
		return s, Money{}, &InsufficientBalanceError{
			AccountID: s.ID,
			Requested: withdraw,
			Available: s.Amount,
		}
	}

	if withdraw.Cmp(s.Amount) == 0 {
		updated := s
		updated.Amount = NewMoney(0)
		updated.Shares = NewMoney(0)
		return updated, s.Shares, nil
	}

	ratio := bpsRatio(withdraw, s.Amount)
	removed := mulDivFloor(s.Shares, ratio, basisPoints)
	updated := s
	updated.Amount = s.Amount.Sub(withdraw)
	updated.Shares = s.Shares.Sub(removed)
	return updated, removed, nil
}

// bpsRatio returns floor(part * 10000 / whole) in basis points.
func bpsRatio(part, whole Money) int64 {
	r := new(big.Int).Mul(part.big(), big.NewInt(basisPoints))
	r.Quo(r, whole.big())
	return r.Int64()
}
