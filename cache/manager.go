package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fbtplatform/fbt-ledger-go/index"
)

// SnapshotTTL bounds how long a cached snapshot can outlive its last
// reader. Replication keeps entries fresh; the TTL only reaps accounts
// that went quiet.
const SnapshotTTL = 24 * time.Hour

// Manager holds all typed caches for the service.
type Manager struct {
	// VestingAccounts: account id -> stored vesting account snapshot.
	VestingAccounts *Cache[index.VestingAccount]

	// StakeAccounts: account id -> stored staking position snapshot.
	StakeAccounts *Cache[index.StakeAccount]

	// RecipientSchedules: recipient -> sorted set of vesting account ids.
	// Score is start_time, so set order is claim distribution order.
	RecipientSchedules *SortedSetCache

	// StakerPositions: staker -> sorted set of stake account ids,
	// scored by created_at.
	StakerPositions *SortedSetCache
}

// NewManager creates a Manager with all caches configured.
func NewManager(client *redis.Client) *Manager {
	return &Manager{
		VestingAccounts: New(Options[index.VestingAccount]{
			Client:  client,
			Encoder: MsgpackEncoder[index.VestingAccount](),
			Decoder: MsgpackDecoder[index.VestingAccount](),
			Prefix:  "vest",
		}),
		StakeAccounts: New(Options[index.StakeAccount]{
			Client:  client,
			Encoder: MsgpackEncoder[index.StakeAccount](),
			Decoder: MsgpackDecoder[index.StakeAccount](),
			Prefix:  "stake",
		}),
		RecipientSchedules: NewSortedSetCache(client, "sched"),
		StakerPositions:    NewSortedSetCache(client, "pos"),
	}
}

// AccountKey renders an account id in its cache key form.
func AccountKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// PutVestingAccount stores a vesting snapshot and indexes it under its
// recipient.
func (m *Manager) PutVestingAccount(ctx context.Context, acc index.VestingAccount) error {
	if err := m.VestingAccounts.Set(ctx, AccountKey(acc.ID), acc, SnapshotTTL); err != nil {
		return err
	}
	return m.RecipientSchedules.Add(ctx, string(acc.Recipient), float64(acc.StartTime), AccountKey(acc.ID))
}

// DropVestingAccount removes a vesting snapshot and its index entry.
func (m *Manager) DropVestingAccount(ctx context.Context, id int64, recipient index.AccountAddress) error {
	if err := m.VestingAccounts.Delete(ctx, AccountKey(id)); err != nil {
		return err
	}
	return m.RecipientSchedules.Remove(ctx, string(recipient), AccountKey(id))
}

// PutStakeAccount stores a staking snapshot and indexes it under its
// staker.
func (m *Manager) PutStakeAccount(ctx context.Context, acc index.StakeAccount) error {
	if err := m.StakeAccounts.Set(ctx, AccountKey(acc.ID), acc, SnapshotTTL); err != nil {
		return err
	}
	return m.StakerPositions.Add(ctx, string(acc.Staker), float64(acc.CreatedAt), AccountKey(acc.ID))
}

// DropStakeAccount removes a staking snapshot and its index entry.
func (m *Manager) DropStakeAccount(ctx context.Context, id int64, staker index.AccountAddress) error {
	if err := m.StakeAccounts.Delete(ctx, AccountKey(id)); err != nil {
		return err
	}
	return m.StakerPositions.Remove(ctx, string(staker), AccountKey(id))
}

// RecipientAccountIDs returns a recipient's vesting account ids in
// start_time order.
func (m *Manager) RecipientAccountIDs(ctx context.Context, recipient index.AccountAddress) ([]int64, error) {
	members, err := m.RecipientSchedules.GetAll(ctx, string(recipient))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, z := range members {
		s, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
