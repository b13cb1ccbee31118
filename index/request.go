package index

import (
	"fmt"
	"time"

	"github.com/fbtplatform/fbt-ledger-go/ledger"
)

// settings
type RequestSettings struct {
	Timeout      time.Duration
	DefaultLimit int32
	MaxLimit     int32
}

// read requests
type VestingAccountRequest struct {
	ID            *int64           `query:"id"`
	Recipient     []AccountAddress `query:"recipient"`
	Category      *string          `query:"category"`
	FullyClaimed  *bool            `query:"fully_claimed"`
	FullyVested   *bool            `query:"fully_vested"`
	StartedAfter  *int64           `query:"started_after"`
	StartedBefore *int64           `query:"started_before"`
	At            *int64           `query:"at"`
}

type VestingSummaryRequest struct {
	Recipient AccountAddress `query:"recipient"`
	At        *int64         `query:"at"`
}

type VestingClaimRequest struct {
	Recipient *AccountAddress `query:"recipient"`
	AccountID *int64          `query:"account_id"`
	TxHash    *HashType       `query:"tx_hash"`
}

type ReconciliationRequest struct {
	Recipient *AccountAddress `query:"recipient"`
	TxHash    *HashType       `query:"tx_hash"`
}

type StakeAccountRequest struct {
	ID     *int64           `query:"id"`
	Staker []AccountAddress `query:"staker"`
	Pool   *AccountAddress  `query:"pool"`
	Active *bool            `query:"active"`
}

type StakeDepositRequest struct {
	Staker []AccountAddress `query:"staker"`
	Pool   *AccountAddress  `query:"pool"`
	TxHash *HashType        `query:"tx_hash"`
}

type StakeWithdrawalRequest struct {
	Staker []AccountAddress `query:"staker"`
	Pool   *AccountAddress  `query:"pool"`
	TxHash *HashType        `query:"tx_hash"`
}

type SortType string

const (
	DESC SortType = "desc"
	ASC  SortType = "asc"
)

type LimitRequest struct {
	Limit  *int32    `query:"limit"`
	Offset *int32    `query:"offset"`
	Sort   *SortType `query:"sort"`
}

// settlement requests, posted by the chain watcher

type GrantRequest struct {
	Recipient       AccountAddress `json:"recipient"`
	TotalAmount     ledger.Money   `json:"total_amount" swaggertype:"string"`
	StartTime       int64          `json:"start_time"`
	DurationSeconds int64          `json:"duration_seconds"`
}

// Validate normalizes the recipient address and checks the grant shape.
func (r *GrantRequest) Validate() error {
	recipient, err := ParseAccountAddress(string(r.Recipient))
	if err != nil {
		return IndexError{Code: 422, Message: err.Error()}
	}
	r.Recipient = recipient
	if r.TotalAmount.Sign() < 0 {
		return IndexError{Code: 422, Message: "total_amount is negative"}
	}
	if r.StartTime <= 0 {
		return IndexError{Code: 422, Message: "start_time is required"}
	}
	if r.DurationSeconds <= 0 {
		return IndexError{Code: 422, Message: "duration_seconds must be positive"}
	}
	return nil
}

type ClaimRequest struct {
	Recipient   AccountAddress `json:"recipient"`
	Amount      ledger.Money   `json:"amount" swaggertype:"string"`
	TxHash      HashType       `json:"tx_hash"`
	BlockNumber int64          `json:"block_number"`
	ClaimedAt   int64          `json:"claimed_at"`
}

func (r *ClaimRequest) Validate() error {
	recipient, err := ParseAccountAddress(string(r.Recipient))
	if err != nil {
		return IndexError{Code: 422, Message: err.Error()}
	}
	r.Recipient = recipient
	hash, err := ParseHash(string(r.TxHash))
	if err != nil {
		return IndexError{Code: 422, Message: err.Error()}
	}
	r.TxHash = hash
	if r.Amount.Sign() <= 0 {
		return IndexError{Code: 422, Message: "amount must be positive"}
	}
	if r.ClaimedAt <= 0 {
		return IndexError{Code: 422, Message: "claimed_at is required"}
	}
	if r.BlockNumber < 0 {
		return IndexError{Code: 422, Message: fmt.Sprintf("invalid block_number: %d", r.BlockNumber)}
	}
	return nil
}

type DepositRequest struct {
	Staker      AccountAddress `json:"staker"`
	Pool        AccountAddress `json:"pool"`
	Amount      ledger.Money   `json:"amount" swaggertype:"string"`
	Shares      ledger.Money   `json:"shares" swaggertype:"string"`
	TxHash      HashType       `json:"tx_hash"`
	BlockNumber int64          `json:"block_number"`
	DepositedAt int64          `json:"deposited_at"`
}

func (r *DepositRequest) Validate() error {
	staker, err := ParseAccountAddress(string(r.Staker))
	if err != nil {
		return IndexError{Code: 422, Message: err.Error()}
	}
	r.Staker = staker
	pool, err := ParseAccountAddress(string(r.Pool))
	if err != nil {
		return IndexError{Code: 422, Message: err.Error()}
	}
	r.Pool = pool
	hash, err := ParseHash(string(r.TxHash))
	if err != nil {
		return IndexError{Code: 422, Message: err.Error()}
	}
	r.TxHash = hash
	if r.Amount.Sign() <= 0 {
		return IndexError{Code: 422, Message: "amount must be positive"}
	}
	if r.Shares.Sign() <= 0 {
		return IndexError{Code: 422, Message: "shares must be positive"}
	}
	if r.DepositedAt <= 0 {
		return IndexError{Code: 422, Message: "deposited_at is required"}
	}
	if r.BlockNumber < 0 {
		return IndexError{Code: 422, Message: fmt.Sprintf("invalid block_number: %d", r.BlockNumber)}
	}
	return nil
}

type WithdrawalRequest struct {
	Staker      AccountAddress `json:"staker"`
	Pool        AccountAddress `json:"pool"`
	Amount      ledger.Money   `json:"amount" swaggertype:"string"`
	TxHash      HashType       `json:"tx_hash"`
	BlockNumber int64          `json:"block_number"`
	WithdrawnAt int64          `json:"withdrawn_at"`
}

func (r *WithdrawalRequest) Validate() error {
	staker, err := ParseAccountAddress(string(r.Staker))
	if err != nil {
		return IndexError{Code: 422, Message: err.Error()}
	}
	r.Staker = staker
	pool, err := ParseAccountAddress(string(r.Pool))
	if err != nil {
		return IndexError{Code: 422, Message: err.Error()}
	}
	r.Pool = pool
	hash, err := ParseHash(string(r.TxHash))
	if err != nil {
		return IndexError{Code: 422, Message: err.Error()}
	}
	r.TxHash = hash
	if r.Amount.Sign() <= 0 {
		return IndexError{Code: 422, Message: "amount must be positive"}
	}
	if r.WithdrawnAt <= 0 {
		return IndexError{Code: 422, Message: "withdrawn_at is required"}
	}
	if r.BlockNumber < 0 {
		return IndexError{Code: 422, Message: fmt.Sprintf("invalid block_number: %d", r.BlockNumber)}
	}
	return nil
}
