package eventbus

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/fbtplatform/fbt-ledger-go/ledger"
)

// GrantRecorded is published on TopicVestingGranted when a new vesting
// schedule is inserted.
type GrantRecorded struct {
	AccountID       int64                     `msgpack:"account_id" json:"account_id"`
	Recipient       string                    `msgpack:"recipient" json:"recipient"`
	TotalAmount     ledger.Money              `msgpack:"total_amount" json:"total_amount"`
	StartTime       int64                     `msgpack:"start_time" json:"start_time"`
	DurationSeconds int64                     `msgpack:"duration_seconds" json:"duration_seconds"`
	Category        ledger.AllocationCategory `msgpack:"category" json:"category"`
	CreatedAt       int64                     `msgpack:"created_at" json:"created_at"`
}

// ClaimAllocation is the per-schedule slice of a settled claim.
type ClaimAllocation struct {
	AccountID    int64        `msgpack:"account_id" json:"account_id"`
	Amount       ledger.Money `msgpack:"amount" json:"amount"`
	FullyClaimed bool         `msgpack:"fully_claimed" json:"fully_claimed"`
}

// ClaimSettled is published on TopicVestingClaimed after a claim
// transaction commits. Shortfall is set when the claim could not be
// fully allocated.
type ClaimSettled struct {
	TxHash      string            `msgpack:"tx_hash" json:"tx_hash"`
	Recipient   string            `msgpack:"recipient" json:"recipient"`
	Amount      ledger.Money      `msgpack:"amount" json:"amount"`
	BlockNumber int64             `msgpack:"block_number" json:"block_number"`
	ClaimedAt   int64             `msgpack:"claimed_at" json:"claimed_at"`
	Shortfall   *ledger.Money     `msgpack:"shortfall,omitempty" json:"shortfall,omitempty"`
	Allocations []ClaimAllocation `msgpack:"allocations" json:"allocations"`
}

// ScheduleMatured is published on TopicVestingMatured by the maturity
// tracker once a schedule's full duration has elapsed.
type ScheduleMatured struct {
	AccountID int64  `msgpack:"account_id" json:"account_id"`
	Recipient string `msgpack:"recipient" json:"recipient"`
	MaturedAt int64  `msgpack:"matured_at" json:"matured_at"`
}

// DepositSettled is published on TopicStakeDeposited after a deposit
// transaction commits.
type DepositSettled struct {
	TxHash      string       `msgpack:"tx_hash" json:"tx_hash"`
	AccountID   int64        `msgpack:"account_id" json:"account_id"`
	Staker      string       `msgpack:"staker" json:"staker"`
	Pool        string       `msgpack:"pool" json:"pool"`
	Amount      ledger.Money `msgpack:"amount" json:"amount"`
	Shares      ledger.Money `msgpack:"shares" json:"shares"`
	BlockNumber int64        `msgpack:"block_number" json:"block_number"`
	DepositedAt int64        `msgpack:"deposited_at" json:"deposited_at"`
}

// WithdrawalSettled is published on TopicStakeWithdrawn after a
// withdrawal transaction commits.
type WithdrawalSettled struct {
	TxHash        string       `msgpack:"tx_hash" json:"tx_hash"`
	AccountID     int64        `msgpack:"account_id" json:"account_id"`
	Staker        string       `msgpack:"staker" json:"staker"`
	Pool          string       `msgpack:"pool" json:"pool"`
	Amount        ledger.Money `msgpack:"amount" json:"amount"`
	SharesRemoved ledger.Money `msgpack:"shares_removed" json:"shares_removed"`
	BlockNumber   int64        `msgpack:"block_number" json:"block_number"`
	WithdrawnAt   int64        `msgpack:"withdrawn_at" json:"withdrawn_at"`
}

// ReconciliationAlert is published on TopicReconciliation by the
// replication handler when a reconciliation event row lands.
type ReconciliationAlert struct {
	Recipient string       `msgpack:"recipient" json:"recipient"`
	TxHash    string       `msgpack:"tx_hash" json:"tx_hash"`
	Requested ledger.Money `msgpack:"requested" json:"requested"`
	Allocated ledger.Money `msgpack:"allocated" json:"allocated"`
	Shortfall ledger.Money `msgpack:"shortfall" json:"shortfall"`
	CreatedAt int64        `msgpack:"created_at" json:"created_at"`
}

// DecodePayload unmarshals a message payload into the struct for its
// topic.
func DecodePayload[T any](data []byte) (T, error) {
	var v T
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode event payload: %w", err)
	}
	return v, nil
}
