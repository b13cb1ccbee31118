package main

import (
	"context"
	"fmt"
	"log"

	"github.com/fbtplatform/fbt-ledger-go/cache"
	"github.com/fbtplatform/fbt-ledger-go/eventbus"
	"github.com/fbtplatform/fbt-ledger-go/index"
	"github.com/fbtplatform/fbt-ledger-go/ledger"
	"github.com/fbtplatform/fbt-ledger-go/repl"
)

// Handler applies replicated ledger changes to the cache and publishes
// the bus events the replication side owns. Reconciliation alerts come
// from here and nowhere else, so alerts fire for every settlement path
// that lands a reconciliation row, not only claims settled through this
// process.
type Handler struct {
	cache *cache.Manager
	db    *index.DbClient
	bus   eventbus.Bus
}

func NewHandler(cache *cache.Manager, db *index.DbClient, bus eventbus.Bus) *Handler {
	return &Handler{cache: cache, db: db, bus: bus}
}

// HandleEvents processes events from the replicator channel. Blocks
// until the channel is closed or the context is cancelled.
func (h *Handler) HandleEvents(ctx context.Context, events <-chan repl.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := h.handleEvent(ctx, event); err != nil {
				log.Printf("Error handling %s on %s: %v", event.Operation, event.Table, err)
			}
		}
	}
}

func (h *Handler) handleEvent(ctx context.Context, event repl.ChangeEvent) error {
	switch event.Table {
	case "public.vesting_accounts":
		return h.handleVestingAccounts(ctx, event)
	case "public.stake_accounts":
		return h.handleStakeAccounts(ctx, event)
	case "public.reconciliation_events":
		return h.handleReconciliationEvents(ctx, event)
	default:
		return nil
	}
}

func (h *Handler) handleVestingAccounts(ctx context.Context, event repl.ChangeEvent) error {
	if event.Operation == repl.Delete {
		id := getInt64(event.OldData, "id")
		if id == 0 {
			return fmt.Errorf("missing id")
		}
		return h.cache.DropVestingAccount(ctx, id, h.vestingRecipient(ctx, id, event.OldData))
	}

	account, err := vestingAccountFromRow(event.Data)
	if err != nil {
		// unchanged TOAST columns are not shipped in update tuples
		if event.Operation == repl.Update {
			return h.refreshVestingFromDB(ctx, getInt64(event.Data, "id"))
		}
		return err
	}
	if event.Operation == repl.Update && account.FullyClaimed && !getBool(event.OldData, "fully_claimed") {
		log.Printf("Vesting account %d for %s is fully claimed", account.ID, account.Recipient)
	}
	return h.cache.PutVestingAccount(ctx, account)
}

func (h *Handler) handleStakeAccounts(ctx context.Context, event repl.ChangeEvent) error {
	if event.Operation == repl.Delete {
		id := getInt64(event.OldData, "id")
		if id == 0 {
			return fmt.Errorf("missing id")
		}
		return h.cache.DropStakeAccount(ctx, id, h.stakeStaker(ctx, id, event.OldData))
	}

	account, err := stakeAccountFromRow(event.Data)
	if err != nil {
		if event.Operation == repl.Update {
			return h.refreshStakeFromDB(ctx, getInt64(event.Data, "id"))
		}
		return err
	}
	return h.cache.PutStakeAccount(ctx, account)
}

func (h *Handler) handleReconciliationEvents(ctx context.Context, event repl.ChangeEvent) error {
	if event.Operation != repl.Insert {
		return nil
	}
	requested, err := getMoney(event.Data, "requested")
	if err != nil {
		return err
	}
	allocated, err := getMoney(event.Data, "allocated")
	if err != nil {
		return err
	}
	shortfall, err := getMoney(event.Data, "shortfall")
	if err != nil {
		return err
	}
	alert := eventbus.ReconciliationAlert{
		Recipient: getString(event.Data, "recipient"),
		TxHash:    getString(event.Data, "tx_hash"),
		Requested: requested,
		Allocated: allocated,
		Shortfall: shortfall,
		CreatedAt: getInt64(event.Data, "created_at"),
	}
	return h.bus.Publish(ctx, eventbus.TopicReconciliation, alert)
}

// refreshVestingFromDB reloads one account row and rewrites its
// snapshot, for replicated tuples that arrived incomplete.
func (h *Handler) refreshVestingFromDB(ctx context.Context, id int64) error {
	if id == 0 {
		return fmt.Errorf("missing id")
	}
	var acc index.VestingAccount
	err := h.db.Pool.QueryRow(ctx, `SELECT id, recipient, total_amount, released_amount,
		start_time, duration_seconds, category, fully_claimed, created_at, updated_at
		FROM vesting_accounts WHERE id = $1`, id).Scan(
		&acc.ID, &acc.Recipient, &acc.TotalAmount, &acc.ReleasedAmount,
		&acc.StartTime, &acc.DurationSeconds, &acc.Category, &acc.FullyClaimed,
		&acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return err
	}
	return h.cache.PutVestingAccount(ctx, acc)
}

func (h *Handler) refreshStakeFromDB(ctx context.Context, id int64) error {
	if id == 0 {
		return fmt.Errorf("missing id")
	}
	var acc index.StakeAccount
	err := h.db.Pool.QueryRow(ctx, `SELECT id, staker, pool, amount, shares, active,
		created_at, updated_at FROM stake_accounts WHERE id = $1`, id).Scan(
		&acc.ID, &acc.Staker, &acc.Pool, &acc.Amount, &acc.Shares,
		&acc.Active, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return err
	}
	return h.cache.PutStakeAccount(ctx, acc)
}

// vestingRecipient recovers the recipient for a deleted row. The old
// tuple carries it only under REPLICA IDENTITY FULL; otherwise the
// cached snapshot is the last place it is known.
func (h *Handler) vestingRecipient(ctx context.Context, id int64, old map[string]any) index.AccountAddress {
	if recipient := getString(old, "recipient"); recipient != "" {
		return index.AccountAddress(recipient)
	}
	if cached, err := h.cache.VestingAccounts.Get(ctx, cache.AccountKey(id)); err == nil {
		return cached.Recipient
	}
	return ""
}

func (h *Handler) stakeStaker(ctx context.Context, id int64, old map[string]any) index.AccountAddress {
	if staker := getString(old, "staker"); staker != "" {
		return index.AccountAddress(staker)
	}
	if cached, err := h.cache.StakeAccounts.Get(ctx, cache.AccountKey(id)); err == nil {
		return cached.Staker
	}
	return ""
}

func vestingAccountFromRow(data map[string]any) (index.VestingAccount, error) {
	id := getInt64(data, "id")
	recipient := getString(data, "recipient")
	if id == 0 || recipient == "" {
		return index.VestingAccount{}, fmt.Errorf("missing id or recipient")
	}
	total, err := getMoney(data, "total_amount")
	if err != nil {
		return index.VestingAccount{}, err
	}
	released, err := getMoney(data, "released_amount")
	if err != nil {
		return index.VestingAccount{}, err
	}
	// unrecognized round names degrade to unknown, same as the sql codec
	category, _ := ledger.ParseAllocationCategory(getString(data, "category"))

	account := index.VestingAccount{
		Recipient:    index.AccountAddress(recipient),
		Category:     category,
		FullyClaimed: getBool(data, "fully_claimed"),
		CreatedAt:    getInt64(data, "created_at"),
		UpdatedAt:    getInt64(data, "updated_at"),
	}
	account.ID = id
	account.TotalAmount = total
	account.ReleasedAmount = released
	account.StartTime = getInt64(data, "start_time")
	account.DurationSeconds = getInt64(data, "duration_seconds")
	return account, nil
}

func stakeAccountFromRow(data map[string]any) (index.StakeAccount, error) {
	id := getInt64(data, "id")
	staker := getString(data, "staker")
	pool := getString(data, "pool")
	if id == 0 || staker == "" || pool == "" {
		return index.StakeAccount{}, fmt.Errorf("missing id, staker or pool")
	}
	amount, err := getMoney(data, "amount")
	if err != nil {
		return index.StakeAccount{}, err
	}
	shares, err := getMoney(data, "shares")
	if err != nil {
		return index.StakeAccount{}, err
	}

	account := index.StakeAccount{
		Staker:    index.AccountAddress(staker),
		Pool:      index.AccountAddress(pool),
		Active:    getBool(data, "active"),
		CreatedAt: getInt64(data, "created_at"),
		UpdatedAt: getInt64(data, "updated_at"),
	}
	account.ID = id
	account.Amount = amount
	account.Shares = shares
	return account, nil
}

// helpers for decoded tuple maps

func getString(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func getInt64(data map[string]any, key string) int64 {
	switch v := data[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	}
	return 0
}

func getBool(data map[string]any, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

// getMoney parses a NUMERIC column, which the decoder leaves as its
// decimal string form.
func getMoney(data map[string]any, key string) (ledger.Money, error) {
	v, ok := data[key].(string)
	if !ok {
		return ledger.Money{}, fmt.Errorf("missing %s", key)
	}
	m, err := ledger.MoneyFromString(v)
	if err != nil {
		return ledger.Money{}, fmt.Errorf("bad %s: %w", key, err)
	}
	return m, nil
}
