package loader

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fbtplatform/fbt-ledger-go/cache"
	"github.com/fbtplatform/fbt-ledger-go/index"
	"github.com/fbtplatform/fbt-ledger-go/ledger"
)

var testSettings = index.RequestSettings{
	Timeout:      time.Second,
	DefaultLimit: 100,
	MaxLimit:     1000,
}

func setupTestLoader(t *testing.T) (*Loader, *cache.Manager, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	m := cache.NewManager(client)

	// db stays nil: these tests exercise the primed-cache path only
	return New(nil, m), m, mr
}

func primeVestingAccount(t *testing.T, m *cache.Manager, id int64, recipient string, total, start, duration int64) {
	t.Helper()

	base, err := ledger.NewVestingAccount(id, ledger.NewMoney(total), start, duration)
	if err != nil {
		t.Fatalf("NewVestingAccount: %v", err)
	}
	acc := index.VestingAccount{
		VestingAccount: base,
		Recipient:      index.AccountAddress(recipient),
		Category:       ledger.ClassifyDuration(duration),
		CreatedAt:      start,
		UpdatedAt:      start,
	}
	if err := m.PutVestingAccount(context.Background(), acc); err != nil {
		t.Fatalf("PutVestingAccount: %v", err)
	}
}

func TestVestingSummaryFromCache(t *testing.T) {
	l, m, mr := setupTestLoader(t)
	defer mr.Close()
	ctx := context.Background()

	// same start_time, out-of-order ids: the summary must come back in
	// (start_time, id) order
	primeVestingAccount(t, m, 12, "0:AAAA", 500, 1000, 200)
	primeVestingAccount(t, m, 9, "0:AAAA", 1000, 1000, 100)

	at := int64(1100)
	summary, err := l.VestingSummary(ctx, index.VestingSummaryRequest{
		Recipient: "0:AAAA",
		At:        &at,
	}, testSettings)
	if err != nil {
		t.Fatalf("VestingSummary: %v", err)
	}

	if len(summary.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(summary.Accounts))
	}
	if summary.Accounts[0].ID != 9 || summary.Accounts[1].ID != 12 {
		t.Errorf("wrong account order: %d, %d", summary.Accounts[0].ID, summary.Accounts[1].ID)
	}
	if summary.TotalGranted.Cmp(ledger.NewMoney(1500)) != 0 {
		t.Errorf("total granted mismatch: %s", summary.TotalGranted)
	}
	if summary.TotalReleased.Cmp(ledger.NewMoney(0)) != 0 {
		t.Errorf("total released mismatch: %s", summary.TotalReleased)
	}
	// id 9 fully vested (1000), id 12 halfway (floor(500*100/200) = 250)
	if summary.TotalClaimable.Cmp(ledger.NewMoney(1250)) != 0 {
		t.Errorf("total claimable mismatch: %s", summary.TotalClaimable)
	}
	if summary.GeneratedAt != at {
		t.Errorf("generated_at mismatch: %d", summary.GeneratedAt)
	}
}

func TestVestingSummaryBeforeStart(t *testing.T) {
	l, m, mr := setupTestLoader(t)
	defer mr.Close()
	ctx := context.Background()

	primeVestingAccount(t, m, 1, "0:BBBB", 1000, 2000, 100)

	at := int64(1500)
	summary, err := l.VestingSummary(ctx, index.VestingSummaryRequest{
		Recipient: "0:BBBB",
		At:        &at,
	}, testSettings)
	if err != nil {
		t.Fatalf("VestingSummary: %v", err)
	}
	if summary.TotalClaimable.Sign() != 0 {
		t.Errorf("nothing should be claimable before start, got %s", summary.TotalClaimable)
	}
	if summary.Accounts[0].Progress == nil || *summary.Accounts[0].Progress != "0.00" {
		t.Errorf("progress mismatch: %v", summary.Accounts[0].Progress)
	}
}

func TestVestingSummaryRequiresRecipient(t *testing.T) {
	l, _, mr := setupTestLoader(t)
	defer mr.Close()

	_, err := l.VestingSummary(context.Background(), index.VestingSummaryRequest{}, testSettings)
	var indexErr index.IndexError
	if !errors.As(err, &indexErr) || indexErr.Code != 422 {
		t.Fatalf("expected a 422, got %v", err)
	}
}

func TestFlusherPropagatesFirstError(t *testing.T) {
	fl := newFlusher()
	ctx := context.Background()

	var done atomic.Int32
	for i := 0; i < 10; i++ {
		i := i
		err := fl.flush(ctx, func() error {
			done.Add(1)
			if i%3 == 0 {
				return fmt.Errorf("batch %d failed", i)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("flush: %v", err)
		}
	}

	if err := fl.wait(ctx); err == nil {
		t.Fatal("expected a flush error to surface")
	}
	if done.Load() != 10 {
		t.Errorf("expected all batches to run, got %d", done.Load())
	}
}
