package index

import (
	"time"

	"github.com/fbtplatform/fbt-ledger-go/ledger"
)

// IndexError is the error carrier for all persistence and request
// validation failures. Code follows HTTP semantics and is mapped by the
// API error handler.
type IndexError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e IndexError) Error() string {
	return e.Message
}

// AccountAddress is an account address in raw form (workchain:HEX).
type AccountAddress string

// HashType is a 32-byte transaction hash in standard base64 form.
type HashType string

// VestingAccount is a stored vesting grant plus its read-side computed
// fields. The embedded ledger snapshot carries the accounting state; the
// computed fields are filled per request at a reference time and never
// persisted or cached.
type VestingAccount struct {
	ledger.VestingAccount
	Recipient    AccountAddress            `json:"recipient" msgpack:"recipient"`
	Category     ledger.AllocationCategory `json:"category" msgpack:"category" swaggertype:"string" enums:"unknown,public_sale,community,advisors,ecosystem,team"`
	FullyClaimed bool                      `json:"fully_claimed" msgpack:"fully_claimed"`
	CreatedAt    int64                     `json:"created_at" msgpack:"created_at"`
	UpdatedAt    int64                     `json:"updated_at" msgpack:"updated_at"`

	Claimable *ledger.Money `json:"claimable_amount,omitempty" msgpack:"-" swaggertype:"string"`
	Progress  *string       `json:"progress_percent,omitempty" msgpack:"-"`
	Vested    *bool         `json:"fully_vested,omitempty" msgpack:"-"`
}

// FillComputed populates the read-side fields at the given time.
func (v *VestingAccount) FillComputed(now time.Time) {
	claimable := v.ClaimableAmount(now)
	progress := v.ProgressPercent(now)
	vested := v.IsFullyVested(now)
	v.Claimable = &claimable
	v.Progress = &progress
	v.Vested = &vested
}

// StakeAccount is a stored staking position.
type StakeAccount struct {
	ledger.StakeAccount
	Staker    AccountAddress `json:"staker" msgpack:"staker"`
	Pool      AccountAddress `json:"pool" msgpack:"pool"`
	Active    bool           `json:"active" msgpack:"active"`
	CreatedAt int64          `json:"created_at" msgpack:"created_at"`
	UpdatedAt int64          `json:"updated_at" msgpack:"updated_at"`
}

// ClaimTransaction is the dedupe record for one external claim: exactly
// one row per observed on-chain transaction, however many schedules the
// amount was spread across.
type ClaimTransaction struct {
	TxHash      HashType       `json:"tx_hash" msgpack:"tx_hash"`
	Recipient   AccountAddress `json:"recipient" msgpack:"recipient"`
	Amount      ledger.Money   `json:"amount" msgpack:"amount" swaggertype:"string"`
	BlockNumber int64          `json:"block_number" msgpack:"block_number"`
	ClaimedAt   int64          `json:"claimed_at" msgpack:"claimed_at"`
	Shortfall   ledger.Money   `json:"shortfall" msgpack:"shortfall" swaggertype:"string"`
	CreatedAt   int64          `json:"created_at" msgpack:"created_at"`
}

// VestingClaim is one schedule's slice of a settled claim.
type VestingClaim struct {
	ID        int64          `json:"id" msgpack:"id"`
	AccountID int64          `json:"account_id" msgpack:"account_id"`
	TxHash    HashType       `json:"tx_hash" msgpack:"tx_hash"`
	Recipient AccountAddress `json:"recipient" msgpack:"recipient"`
	Amount    ledger.Money   `json:"amount" msgpack:"amount" swaggertype:"string"`
	ClaimedAt int64          `json:"claimed_at" msgpack:"claimed_at"`
	CreatedAt int64          `json:"created_at" msgpack:"created_at"`
}

// StakeDeposit is the settlement record of one observed deposit.
type StakeDeposit struct {
	TxHash      HashType       `json:"tx_hash" msgpack:"tx_hash"`
	AccountID   int64          `json:"account_id" msgpack:"account_id"`
	Staker      AccountAddress `json:"staker" msgpack:"staker"`
	Pool        AccountAddress `json:"pool" msgpack:"pool"`
	Amount      ledger.Money   `json:"amount" msgpack:"amount" swaggertype:"string"`
	Shares      ledger.Money   `json:"shares" msgpack:"shares" swaggertype:"string"`
	BlockNumber int64          `json:"block_number" msgpack:"block_number"`
	DepositedAt int64          `json:"deposited_at" msgpack:"deposited_at"`
	CreatedAt   int64          `json:"created_at" msgpack:"created_at"`
}

// StakeWithdrawal is the settlement record of one observed withdrawal.
type StakeWithdrawal struct {
	TxHash        HashType       `json:"tx_hash" msgpack:"tx_hash"`
	AccountID     int64          `json:"account_id" msgpack:"account_id"`
	Staker        AccountAddress `json:"staker" msgpack:"staker"`
	Pool          AccountAddress `json:"pool" msgpack:"pool"`
	Amount        ledger.Money   `json:"amount" msgpack:"amount" swaggertype:"string"`
	SharesRemoved ledger.Money   `json:"shares_removed" msgpack:"shares_removed" swaggertype:"string"`
	BlockNumber   int64          `json:"block_number" msgpack:"block_number"`
	WithdrawnAt   int64          `json:"withdrawn_at" msgpack:"withdrawn_at"`
	CreatedAt     int64          `json:"created_at" msgpack:"created_at"`
}

// ReconciliationEvent records a claim whose authoritative external amount
// exceeded everything locally claimable. Append-only.
type ReconciliationEvent struct {
	ID        int64          `json:"id" msgpack:"id"`
	Recipient AccountAddress `json:"recipient" msgpack:"recipient"`
	TxHash    HashType       `json:"tx_hash" msgpack:"tx_hash"`
	Requested ledger.Money   `json:"requested" msgpack:"requested" swaggertype:"string"`
	Allocated ledger.Money   `json:"allocated" msgpack:"allocated" swaggertype:"string"`
	Shortfall ledger.Money   `json:"shortfall" msgpack:"shortfall" swaggertype:"string"`
	CreatedAt int64          `json:"created_at" msgpack:"created_at"`
}

// VestingSummary aggregates a recipient's schedules at a reference time.
type VestingSummary struct {
	Recipient      AccountAddress   `json:"recipient"`
	TotalGranted   ledger.Money     `json:"total_granted" swaggertype:"string"`
	TotalReleased  ledger.Money     `json:"total_released" swaggertype:"string"`
	TotalClaimable ledger.Money     `json:"total_claimable" swaggertype:"string"`
	Accounts       []VestingAccount `json:"accounts"`
	GeneratedAt    int64            `json:"generated_at"`
}
