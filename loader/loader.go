// Package loader fills the Redis snapshot cache from Postgres. It runs
// once at startup (flag-gated) to warm the cache and serves the
// cache-first summary read path with a database fallback.
package loader

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"

	"github.com/fbtplatform/fbt-ledger-go/cache"
	"github.com/fbtplatform/fbt-ledger-go/index"
	"github.com/fbtplatform/fbt-ledger-go/ledger"
)

const (
	pageSize          = 5000
	concurrentFlushes = 4
	progressPages     = 10
)

type Loader struct {
	db    *index.DbClient
	cache *cache.Manager
}

func New(db *index.DbClient, cache *cache.Manager) *Loader {
	return &Loader{db: db, cache: cache}
}

// flusher bounds concurrent cache writes during a preload walk so a
// slow Redis cannot pile up unbounded in-flight batches.
type flusher struct {
	sem *semaphore.Weighted
	mu  sync.Mutex
	err error
}

func newFlusher() *flusher {
	return &flusher{sem: semaphore.NewWeighted(concurrentFlushes)}
}

func (f *flusher) flush(ctx context.Context, fn func() error) error {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer f.sem.Release(1)
		if err := fn(); err != nil {
			f.mu.Lock()
			if f.err == nil {
				f.err = err
			}
			f.mu.Unlock()
		}
	}()
	return nil
}

func (f *flusher) wait(ctx context.Context) error {
	if err := f.sem.Acquire(ctx, concurrentFlushes); err != nil {
		return err
	}
	f.sem.Release(concurrentFlushes)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// LoadAll warms every preloadable cache.
func (l *Loader) LoadAll(ctx context.Context) error {
	if err := l.LoadVestingAccounts(ctx); err != nil {
		return fmt.Errorf("load vesting accounts: %w", err)
	}
	if err := l.LoadStakeAccounts(ctx); err != nil {
		return fmt.Errorf("load stake accounts: %w", err)
	}
	return nil
}

// LoadVestingAccounts walks vesting_accounts with keyset pagination and
// fills the snapshot cache plus the per-recipient schedule index.
func (l *Loader) LoadVestingAccounts(ctx context.Context) error {
	fl := newFlusher()
	schedules := make(map[string][]redis.Z)
	total := 0
	pages := 0
	lastID := int64(0)

	for {
		rows, err := l.db.Pool.Query(ctx, `
			SELECT id, recipient, total_amount, released_amount, start_time, duration_seconds, category, fully_claimed, created_at, updated_at
			FROM vesting_accounts
			WHERE id > $1
			ORDER BY id
			LIMIT $2
		`, lastID, pageSize)
		if err != nil {
			return fmt.Errorf("query vesting_accounts: %w", err)
		}

		batch := make(map[string]index.VestingAccount, pageSize)
		rowCount := 0
		for rows.Next() {
			var acc index.VestingAccount
			if err := rows.Scan(&acc.ID, &acc.Recipient, &acc.TotalAmount, &acc.ReleasedAmount,
				&acc.StartTime, &acc.DurationSeconds, &acc.Category, &acc.FullyClaimed,
				&acc.CreatedAt, &acc.UpdatedAt); err != nil {
				rows.Close()
				return fmt.Errorf("scan vesting account: %w", err)
			}

			key := cache.AccountKey(acc.ID)
			batch[key] = acc
			schedules[string(acc.Recipient)] = append(schedules[string(acc.Recipient)], redis.Z{
				Score:  float64(acc.StartTime),
				Member: key,
			})
			lastID = acc.ID
			rowCount++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate vesting_accounts: %w", err)
		}
		rows.Close()

		if len(batch) > 0 {
			b := batch
			if err := fl.flush(ctx, func() error {
				return l.cache.VestingAccounts.MSet(ctx, b, cache.SnapshotTTL)
			}); err != nil {
				return err
			}
		}

		total += rowCount
		pages++
		if pages%progressPages == 0 {
			log.Printf("preload: %d vesting accounts so far", total)
		}
		if rowCount < pageSize {
			break
		}
	}

	if err := fl.wait(ctx); err != nil {
		return fmt.Errorf("flush vesting snapshots: %w", err)
	}

	for recipient, entries := range schedules {
		if err := l.cache.RecipientSchedules.AddBatch(ctx, recipient, entries); err != nil {
			return fmt.Errorf("index schedules for %s: %w", recipient, err)
		}
	}

	log.Printf("preload: loaded %d vesting accounts, %d recipients indexed", total, len(schedules))
	return nil
}

// LoadStakeAccounts walks stake_accounts and fills the snapshot cache
// plus the per-staker position index.
func (l *Loader) LoadStakeAccounts(ctx context.Context) error {
	fl := newFlusher()
	positions := make(map[string][]redis.Z)
	total := 0
	pages := 0
	lastID := int64(0)

	for {
		rows, err := l.db.Pool.Query(ctx, `
			SELECT id, staker, pool, amount, shares, active, created_at, updated_at
			FROM stake_accounts
			WHERE id > $1
			ORDER BY id
			LIMIT $2
		`, lastID, pageSize)
		if err != nil {
			return fmt.Errorf("query stake_accounts: %w", err)
		}

		batch := make(map[string]index.StakeAccount, pageSize)
		rowCount := 0
		for rows.Next() {
			var acc index.StakeAccount
			if err := rows.Scan(&acc.ID, &acc.Staker, &acc.Pool, &acc.Amount, &acc.Shares,
				&acc.Active, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
				rows.Close()
				return fmt.Errorf("scan stake account: %w", err)
			}

			key := cache.AccountKey(acc.ID)
			batch[key] = acc
			positions[string(acc.Staker)] = append(positions[string(acc.Staker)], redis.Z{
				Score:  float64(acc.CreatedAt),
				Member: key,
			})
			lastID = acc.ID
			rowCount++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate stake_accounts: %w", err)
		}
		rows.Close()

		if len(batch) > 0 {
			b := batch
			if err := fl.flush(ctx, func() error {
				return l.cache.StakeAccounts.MSet(ctx, b, cache.SnapshotTTL)
			}); err != nil {
				return err
			}
		}

		total += rowCount
		pages++
		if pages%progressPages == 0 {
			log.Printf("preload: %d stake accounts so far", total)
		}
		if rowCount < pageSize {
			break
		}
	}

	if err := fl.wait(ctx); err != nil {
		return fmt.Errorf("flush stake snapshots: %w", err)
	}

	for staker, entries := range positions {
		if err := l.cache.StakerPositions.AddBatch(ctx, staker, entries); err != nil {
			return fmt.Errorf("index positions for %s: %w", staker, err)
		}
	}

	log.Printf("preload: loaded %d stake accounts, %d stakers indexed", total, len(positions))
	return nil
}

// VestingSummary serves the summary read path cache-first: schedule ids
// from the sorted set, snapshots via MGet, aggregation at the reference
// time. Any miss falls back to Postgres and back-fills the cache.
func (l *Loader) VestingSummary(ctx context.Context, req index.VestingSummaryRequest, settings index.RequestSettings) (*index.VestingSummary, error) {
	if len(req.Recipient) == 0 {
		return nil, index.IndexError{Code: 422, Message: "recipient is required"}
	}

	ids, err := l.cache.RecipientAccountIDs(ctx, req.Recipient)
	if err != nil || len(ids) == 0 {
		return l.summaryFromDB(ctx, req, settings)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cache.AccountKey(id)
	}
	snapshots, err := l.cache.VestingAccounts.MGet(ctx, keys...)
	if err != nil || len(snapshots) != len(keys) {
		return l.summaryFromDB(ctx, req, settings)
	}

	at := time.Now()
	if req.At != nil {
		at = time.Unix(*req.At, 0)
	}

	accounts := make([]index.VestingAccount, 0, len(keys))
	for _, key := range keys {
		acc := snapshots[key]
		acc.FillComputed(at)
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].StartTime != accounts[j].StartTime {
			return accounts[i].StartTime < accounts[j].StartTime
		}
		return accounts[i].ID < accounts[j].ID
	})

	summary := &index.VestingSummary{
		Recipient:      req.Recipient,
		TotalGranted:   ledger.NewMoney(0),
		TotalReleased:  ledger.NewMoney(0),
		TotalClaimable: ledger.NewMoney(0),
		Accounts:       accounts,
		GeneratedAt:    at.Unix(),
	}
	for _, acc := range accounts {
		summary.TotalGranted = summary.TotalGranted.Add(acc.TotalAmount)
		summary.TotalReleased = summary.TotalReleased.Add(acc.ReleasedAmount)
		summary.TotalClaimable = summary.TotalClaimable.Add(*acc.Claimable)
	}
	return summary, nil
}

func (l *Loader) summaryFromDB(ctx context.Context, req index.VestingSummaryRequest, settings index.RequestSettings) (*index.VestingSummary, error) {
	summary, err := l.db.GetVestingSummary(req, settings)
	if err != nil {
		return nil, err
	}
	for _, acc := range summary.Accounts {
		if err := l.cache.PutVestingAccount(ctx, acc); err != nil {
			log.Printf("Warning: failed to back-fill vesting account %d: %v", acc.ID, err)
			break
		}
	}
	return summary, nil
}
