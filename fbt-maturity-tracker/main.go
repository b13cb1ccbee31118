package main

import (
	"container/heap"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fbtplatform/fbt-ledger-go/eventbus"
)

// MaturityEntry is one vesting schedule's maturity instant. The instant
// is fixed at grant time (start_time + duration_seconds) and never moves.
type MaturityEntry struct {
	AccountID int64
	Recipient string
	MaturesAt time.Time
}

// MaturityMinHeap implements a min-heap based on MaturesAt (earliest first).
type MaturityMinHeap []MaturityEntry

// sort.Interface
func (h MaturityMinHeap) Len() int           { return len(h) }
func (h MaturityMinHeap) Less(i, j int) bool { return h[i].MaturesAt.Before(h[j].MaturesAt) }
func (h MaturityMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

// heap.Interface
func (h *MaturityMinHeap) Push(x interface{}) {
	*h = append(*h, x.(MaturityEntry))
}
func (h *MaturityMinHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// MaturitySchedule tracks pending maturities with a min-heap + map so
// schedules drained by claims can be dropped before their instant.
type MaturitySchedule struct {
	mu      sync.Mutex
	heap    MaturityMinHeap
	pending map[int64]MaturityEntry // account id -> pending entry
}

// NewMaturitySchedule creates a MaturitySchedule with empty heap and map.
func NewMaturitySchedule() *MaturitySchedule {
	return &MaturitySchedule{
		heap:    make(MaturityMinHeap, 0),
		pending: make(map[int64]MaturityEntry),
	}
}

// Add inserts an entry into the min-heap and marks it pending.
func (ms *MaturitySchedule) Add(entry MaturityEntry) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.pending[entry.AccountID] = entry
	heap.Push(&ms.heap, entry)
}

// Remove drops a pending schedule. Its heap entry stays behind and is
// skipped when popped (mark-and-skip).
func (ms *MaturitySchedule) Remove(accountID int64) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.pending, accountID)
}

// GetMatured pops entries whose instant has passed, skipping entries
// that were removed or superseded since they were pushed.
func (ms *MaturitySchedule) GetMatured(now time.Time) []MaturityEntry {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var matured []MaturityEntry

	for ms.heap.Len() > 0 {
		top := ms.heap[0] // earliest instant
		if top.MaturesAt.After(now) {
			// Not yet matured
			break
		}

		popped := heap.Pop(&ms.heap).(MaturityEntry)

		if _, exists := ms.pending[popped.AccountID]; !exists {
			// Removed by a claim, or a duplicate push already served.
			continue
		}

		matured = append(matured, popped)
		delete(ms.pending, popped.AccountID)
	}

	return matured
}

// Len returns the number of schedules still pending.
func (ms *MaturitySchedule) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.pending)
}

// MaturityTracker watches open vesting schedules and announces each one
// exactly once after its full duration has elapsed. Schedules arrive from
// a database bootstrap and from grant events; claim events that drain a
// schedule drop it before it matures.
type MaturityTracker struct {
	db       *pgxpool.Pool
	bus      eventbus.Bus
	events   <-chan eventbus.Message
	schedule *MaturitySchedule
	seen     mapset.Set[int64] // ids ever tracked, so bootstrap and live grants do not double-add

	logger *logrus.Logger

	sweepInterval time.Duration
	replayWindow  time.Duration

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration

	wg sync.WaitGroup
}

// NewMaturityTracker initializes the maturity tracker.
func NewMaturityTracker(
	db *pgxpool.Pool,
	bus eventbus.Bus,
	events <-chan eventbus.Message,
	sweepInterval time.Duration,
	replayWindow time.Duration,
	logger *logrus.Logger,
	maxRetries int,
	baseDelay time.Duration,
	maxDelay time.Duration,
) *MaturityTracker {
	return &MaturityTracker{
		db:            db,
		bus:           bus,
		events:        events,
		schedule:      NewMaturitySchedule(),
		seen:          mapset.NewSet[int64](),
		logger:        logger,
		sweepInterval: sweepInterval,
		replayWindow:  replayWindow,
		maxRetries:    maxRetries,
		baseDelay:     baseDelay,
		maxDelay:      maxDelay,
	}
}

// Bootstrap loads open schedules from the database. Schedules that
// matured more than the replay window ago are assumed announced by a
// previous run.
func (t *MaturityTracker) Bootstrap(ctx context.Context) error {
	cutoff := time.Now().Add(-t.replayWindow).Unix()
	rows, err := t.db.Query(ctx, `SELECT id, recipient, start_time, duration_seconds
		FROM vesting_accounts WHERE NOT fully_claimed AND start_time + duration_seconds >= $1`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to query open schedules: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id, startTime, duration int64
		var recipient string
		if err := rows.Scan(&id, &recipient, &startTime, &duration); err != nil {
			return fmt.Errorf("failed to scan schedule row: %w", err)
		}
		t.track(MaturityEntry{
			AccountID: id,
			Recipient: recipient,
			MaturesAt: time.Unix(startTime+duration, 0),
		})
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read schedule rows: %w", err)
	}

	t.logger.WithField("count", count).Info("Loaded open schedules")
	return nil
}

func (t *MaturityTracker) Run(ctx context.Context) {
	t.wg.Add(2)
	go t.listenForEvents(ctx)
	go t.periodicMaturityCheck(ctx)
}

func (t *MaturityTracker) Stop() {
	t.wg.Wait()
}

// track adds a schedule unless it was tracked before.
func (t *MaturityTracker) track(entry MaturityEntry) {
	if !t.seen.Add(entry.AccountID) {
		return
	}
	t.schedule.Add(entry)
}

// listenForEvents follows the ledger event feed to keep the pending set
// current between sweeps.
func (t *MaturityTracker) listenForEvents(ctx context.Context) {
	defer t.wg.Done()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Stopped listening for ledger events (context canceled).")
			return
		case msg, ok := <-t.events:
			if !ok {
				t.logger.Warn("Event channel closed, stopping listener.")
				return
			}
			t.handleBusEvent(msg)
		}
	}
}

func (t *MaturityTracker) handleBusEvent(msg eventbus.Message) {
	switch msg.Topic {
	case eventbus.TopicVestingGranted:
		grant, err := eventbus.DecodePayload[eventbus.GrantRecorded](msg.Payload)
		if err != nil {
			t.logger.WithError(err).Error("Failed to decode grant event")
			return
		}
		maturesAt := time.Unix(grant.StartTime+grant.DurationSeconds, 0)
		t.track(MaturityEntry{
			AccountID: grant.AccountID,
			Recipient: grant.Recipient,
			MaturesAt: maturesAt,
		})
		t.logger.WithFields(logrus.Fields{
			"account":   grant.AccountID,
			"maturesAt": maturesAt.Format(time.RFC3339),
		}).Debug("Tracking granted schedule")

	case eventbus.TopicVestingClaimed:
		claim, err := eventbus.DecodePayload[eventbus.ClaimSettled](msg.Payload)
		if err != nil {
			t.logger.WithError(err).Error("Failed to decode claim event")
			return
		}
		for _, alloc := range claim.Allocations {
			if alloc.FullyClaimed {
				t.schedule.Remove(alloc.AccountID)
				t.logger.WithFields(logrus.Fields{
					"account": alloc.AccountID,
					"tx":      claim.TxHash,
				}).Debug("Dropped drained schedule")
			}
		}
	}
}

// periodicMaturityCheck sweeps the min-heap for matured schedules and
// announces them in batch.
func (t *MaturityTracker) periodicMaturityCheck(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Stopping periodic maturity check (context canceled).")
			return
		case <-ticker.C:
			t.sweep(ctx)
		}
	}
}

// sweep announces every schedule whose instant has passed. Entries whose
// announcement could not be published are requeued for the next sweep.
func (t *MaturityTracker) sweep(ctx context.Context) {
	now := time.Now()
	matured := t.schedule.GetMatured(now)
	if len(matured) == 0 {
		return
	}

	t.logger.WithField("count", len(matured)).
		Infof("Found %d matured schedule(s) at %s", len(matured), now.Format(time.RFC3339))

	for _, entry := range matured {
		if err := t.publishWithRetry(ctx, entry); err != nil {
			t.logger.WithError(err).WithField("account", entry.AccountID).
				Error("Failed to announce maturity, requeueing")
			t.schedule.Add(entry)
			continue
		}
		t.logger.WithFields(logrus.Fields{
			"account":   entry.AccountID,
			"recipient": entry.Recipient,
		}).Info("Announced schedule maturity")
	}
}

// publishWithRetry does a simple exponential backoff for the maturity
// announcement.
func (t *MaturityTracker) publishWithRetry(ctx context.Context, entry MaturityEntry) error {
	event := eventbus.ScheduleMatured{
		AccountID: entry.AccountID,
		Recipient: entry.Recipient,
		MaturedAt: entry.MaturesAt.Unix(),
	}

	var attempt int
	delay := t.baseDelay

	for {
		attempt++
		err := t.bus.Publish(ctx, eventbus.TopicVestingMatured, event)
		if err == nil {
			return nil
		}

		if attempt >= t.maxRetries {
			return fmt.Errorf("exceeded maxRetries; last err: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		t.logger.WithFields(logrus.Fields{
			"account": entry.AccountID,
			"attempt": attempt,
			"error":   err.Error(),
		}).Warnf("Publish failed, retrying in %s", delay)
		time.Sleep(delay)
		delay = minDuration(delay*2, t.maxDelay)
	}
}

// minDuration returns the lesser of two durations.
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func main() {
	pgDsn := flag.String("pg", "postgresql://localhost:5432/fbt_ledger", "PostgreSQL connection string")
	redisDsn := flag.String("redis", "redis://localhost:6379/0", "Redis connection string")

	sweepInterval := flag.Duration("sweep-interval", 10*time.Second, "Interval between maturity sweeps")
	replayWindow := flag.Duration("replay", 24*time.Hour, "Re-announce schedules that matured within this window on startup")

	// Retry configuration
	maxRetries := flag.Int("max-retries", 3, "Maximum number of publish retries")
	baseDelay := flag.Duration("base-delay", 1*time.Second, "Initial delay for exponential backoff")
	maxDelay := flag.Duration("max-delay", 30*time.Second, "Maximum delay for exponential backoff")

	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// ctx for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// sigterm handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received shutdown signal, canceling context...")
		cancel()
	}()

	redisOptions, err := redis.ParseURL(*redisDsn)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse Redis DSN")
	}
	redisClient := redis.NewClient(redisOptions)
	bus := eventbus.NewRedisBus(redisClient)

	db, err := pgxpool.New(ctx, *pgDsn)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}

	// Subscribe before the bootstrap query so grants landing in between
	// are not lost; the seen set absorbs the overlap.
	sub, err := bus.Subscribe(ctx, eventbus.TopicVestingGranted, eventbus.TopicVestingClaimed)
	if err != nil {
		logger.WithError(err).Fatal("Failed to subscribe to ledger events")
	}

	tracker := NewMaturityTracker(
		db,
		bus,
		sub.Events(),
		*sweepInterval,
		*replayWindow,
		logger,
		*maxRetries,
		*baseDelay,
		*maxDelay,
	)
	if err := tracker.Bootstrap(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to load open schedules")
	}
	tracker.Run(ctx)

	<-ctx.Done()

	// Cleanup
	if err := sub.Close(); err != nil {
		logger.WithError(err).Error("Error closing subscription")
	}

	// Stop the tracker's goroutines
	tracker.Stop()
	db.Close()
	logger.Info("Shutdown complete.")
}
