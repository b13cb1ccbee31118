package ledger

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

const testStart = int64(1_700_000_000)

func at(ts int64) time.Time {
	return time.Unix(ts, 0)
}

func mustVestingAccount(t *testing.T, id int64, total int64, start, duration int64) VestingAccount {
	t.Helper()
	account, err := NewVestingAccount(id, NewMoney(total), start, duration)
	if err != nil {
		t.Fatalf("NewVestingAccount: %v", err)
	}
	return account
}

func TestNewVestingAccountValidation(t *testing.T) {
	if _, err := NewVestingAccount(1, NewMoney(100), testStart, 0); err == nil {
		t.Error("expected error for zero duration")
	}
	if _, err := NewVestingAccount(1, NewMoney(100), testStart, -5); err == nil {
		t.Error("expected error for negative duration")
	}
	if _, err := NewVestingAccount(1, NewMoney(-1), testStart, 100); err == nil {
		t.Error("expected error for negative total")
	}
}

func TestClaimableAmountBoundaries(t *testing.T) {
	account := mustVestingAccount(t, 1, 1000, testStart, 3600)

	if got := account.ClaimableAmount(at(testStart - 1)); !got.IsZero() {
		t.Errorf("before start: got %s, want 0", got)
	}
	if got := account.ClaimableAmount(at(testStart)); !got.IsZero() {
		t.Errorf("at start: got %s, want 0", got)
	}
	if got := account.ClaimableAmount(at(testStart + 3600)); got.Cmp(NewMoney(1000)) != 0 {
		t.Errorf("at end: got %s, want 1000", got)
	}
	if got := account.ClaimableAmount(at(testStart + 7200)); got.Cmp(NewMoney(1000)) != 0 {
		t.Errorf("past end: got %s, want 1000", got)
	}

	account.ReleasedAmount = NewMoney(400)
	if got := account.ClaimableAmount(at(testStart + 3600)); got.Cmp(NewMoney(600)) != 0 {
		t.Errorf("at end with 400 released: got %s, want 600", got)
	}
}

func TestClaimableAmountMonotonic(t *testing.T) {
	account := mustVestingAccount(t, 1, 999_999_937, testStart, 86_400)
	account.ReleasedAmount = NewMoney(123_456)

	prev := NewMoney(0)
	for ts := testStart - 10; ts <= testStart+86_400+10; ts += 7 {
		got := account.ClaimableAmount(at(ts))
		if got.Cmp(prev) < 0 {
			t.Fatalf("claimable decreased at %d: %s -> %s", ts, prev, got)
		}
		prev = got
	}
	if want := account.Remaining(); prev.Cmp(want) != 0 {
		t.Errorf("final claimable: got %s, want %s", prev, want)
	}
}

func TestVestingScenario120Days(t *testing.T) {
	const day = int64(86_400)
	account := mustVestingAccount(t, 1, 1200, testStart, 120*day)

	halfway := at(testStart + 60*day)
	if got := account.ClaimableAmount(halfway); got.Cmp(NewMoney(600)) != 0 {
		t.Fatalf("at 60 days: got %s, want 600", got)
	}

	account, err := account.ApplyClaim(NewMoney(600))
	if err != nil {
		t.Fatalf("ApplyClaim: %v", err)
	}
	if got := account.ClaimableAmount(halfway); !got.IsZero() {
		t.Errorf("after claiming 600 at 60 days: got %s, want 0", got)
	}

	if got := account.ClaimableAmount(at(testStart + 120*day)); got.Cmp(NewMoney(600)) != 0 {
		t.Errorf("at 120 days: got %s, want 600", got)
	}
	if !account.IsFullyVested(at(testStart + 120*day)) {
		t.Error("expected fully vested at 120 days")
	}
	if account.IsFullyClaimed() {
		t.Error("account should not be fully claimed with 600 outstanding")
	}
}

func TestApplyClaimOverclaim(t *testing.T) {
	account := mustVestingAccount(t, 7, 100, testStart, 3600)
	account.ReleasedAmount = NewMoney(80)

	if _, err := account.ApplyClaim(NewMoney(0)); err == nil {
		t.Error("expected error for zero claim")
	}

	_, err := account.ApplyClaim(NewMoney(21))
	var overclaim *OverclaimError
	if !errors.As(err, &overclaim) {
		t.Fatalf("expected OverclaimError, got %v", err)
	}
	if overclaim.AccountID != 7 {
		t.Errorf("overclaim account id: got %d, want 7", overclaim.AccountID)
	}
	if overclaim.Claimable.Cmp(NewMoney(20)) != 0 {
		t.Errorf("overclaim claimable: got %s, want 20", overclaim.Claimable)
	}

	updated, err := account.ApplyClaim(NewMoney(20))
	if err != nil {
		t.Fatalf("claiming exactly the remainder: %v", err)
	}
	if !updated.IsFullyClaimed() {
		t.Error("expected fully claimed after claiming the remainder")
	}
	if account.ReleasedAmount.Cmp(NewMoney(80)) != 0 {
		t.Errorf("original snapshot mutated: released = %s", account.ReleasedAmount)
	}
}

func TestConservationUnderRandomClaims(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const duration = int64(100_000)

	for seq := 0; seq < 50; seq++ {
		total := rng.Int63n(1_000_000_000) + 1
		account := mustVestingAccount(t, int64(seq), total, testStart, duration)

		ts := testStart
		for ts < testStart+duration {
			ts += rng.Int63n(duration/10) + 1
			claimable := account.ClaimableAmount(at(ts))
			if claimable.IsZero() {
				continue
			}
			portion := rng.Int63n(2) // sometimes everything, sometimes half
			take := claimable
			if portion == 0 {
				take = mulDivFloor(claimable, 1, 2)
			}
			if take.IsZero() {
				continue
			}
			updated, err := account.ApplyClaim(take)
			if err != nil {
				t.Fatalf("seq %d: ApplyClaim(%s): %v", seq, take, err)
			}
			account = updated
			if account.ReleasedAmount.Cmp(account.TotalAmount) > 0 {
				t.Fatalf("seq %d: released %s exceeds total %s", seq, account.ReleasedAmount, account.TotalAmount)
			}
		}

		remainder := account.ClaimableAmount(at(testStart + duration))
		if !remainder.IsZero() {
			updated, err := account.ApplyClaim(remainder)
			if err != nil {
				t.Fatalf("seq %d: final claim: %v", seq, err)
			}
			account = updated
		}
		if !account.IsFullyClaimed() {
			t.Errorf("seq %d: released %s, want %s", seq, account.ReleasedAmount, account.TotalAmount)
		}
	}
}

func TestClaimableAmountNoDriftOverFullYear(t *testing.T) {
	const duration = int64(31_536_000)
	total := NewMoney(1_000_000_000_000)
	account, err := NewVestingAccount(1, total, 0, duration)
	if err != nil {
		t.Fatalf("NewVestingAccount: %v", err)
	}

	sum := NewMoney(0)
	for ts := int64(1); ts <= duration; ts++ {
		delta := account.ClaimableAmount(at(ts))
		if delta.IsZero() {
			continue
		}
		account, err = account.ApplyClaim(delta)
		if err != nil {
			t.Fatalf("claim at %d: %v", ts, err)
		}
		sum = sum.Add(delta)
	}

	if sum.Cmp(total) != 0 {
		t.Errorf("sum of per-second deltas: got %s, want %s", sum, total)
	}
	if !account.IsFullyClaimed() {
		t.Errorf("released %s, want %s", account.ReleasedAmount, total)
	}
}

func TestProgressPercent(t *testing.T) {
	account := mustVestingAccount(t, 1, 1000, testStart, 20_000)

	cases := []struct {
		ts   int64
		want string
	}{
		{testStart - 100, "0.00"},
		{testStart, "0.00"},
		{testStart + 1, "0.01"}, // 0.005% rounds half-up
		{testStart + 3, "0.02"},
		{testStart + 10_000, "50.00"},
		{testStart + 20_000, "100.00"},
		{testStart + 99_999, "100.00"},
	}
	for _, tc := range cases {
		if got := account.ProgressPercent(at(tc.ts)); got != tc.want {
			t.Errorf("progress at %+d: got %q, want %q", tc.ts-testStart, got, tc.want)
		}
	}

	thirds := mustVestingAccount(t, 2, 1000, testStart, 3)
	if got := thirds.ProgressPercent(at(testStart + 1)); got != "33.33" {
		t.Errorf("one third: got %q, want 33.33", got)
	}
	if got := thirds.ProgressPercent(at(testStart + 2)); got != "66.67" {
		t.Errorf("two thirds: got %q, want 66.67", got)
	}
}

func TestDistributeClaimFIFO(t *testing.T) {
	first := mustVestingAccount(t, 1, 100, testStart, 60)
	second := mustVestingAccount(t, 2, 100, testStart+1, 60)
	now := at(testStart + 3600) // both fully vested

	allocations, warning, err := DistributeClaim([]VestingAccount{second, first}, NewMoney(150), now)
	if err != nil {
		t.Fatalf("DistributeClaim: %v", err)
	}
	if warning != nil {
		t.Fatalf("unexpected warning: %+v", warning)
	}
	if len(allocations) != 2 {
		t.Fatalf("got %d allocations, want 2", len(allocations))
	}

	if allocations[0].Account.ID != 1 || allocations[0].Amount.Cmp(NewMoney(100)) != 0 {
		t.Errorf("first allocation: account %d amount %s, want account 1 amount 100",
			allocations[0].Account.ID, allocations[0].Amount)
	}
	if !allocations[0].Account.IsFullyClaimed() {
		t.Error("oldest schedule should be drained")
	}
	if allocations[1].Account.ID != 2 || allocations[1].Amount.Cmp(NewMoney(50)) != 0 {
		t.Errorf("second allocation: account %d amount %s, want account 2 amount 50",
			allocations[1].Account.ID, allocations[1].Amount)
	}
	if got := allocations[1].Account.ReleasedAmount; got.Cmp(NewMoney(50)) != 0 {
		t.Errorf("second schedule released: got %s, want 50", got)
	}
}

func TestDistributeClaimSkipsUnvestedAndDrained(t *testing.T) {
	drained := mustVestingAccount(t, 1, 100, testStart, 60)
	drained.ReleasedAmount = NewMoney(100)
	unvested := mustVestingAccount(t, 2, 100, testStart+10_000, 60)
	vested := mustVestingAccount(t, 3, 100, testStart+2, 60)
	now := at(testStart + 100)

	allocations, warning, err := DistributeClaim(
		[]VestingAccount{drained, unvested, vested}, NewMoney(70), now)
	if err != nil {
		t.Fatalf("DistributeClaim: %v", err)
	}
	if warning != nil {
		t.Fatalf("unexpected warning: %+v", warning)
	}
	if len(allocations) != 1 {
		t.Fatalf("got %d allocations, want 1", len(allocations))
	}
	if allocations[0].Account.ID != 3 {
		t.Errorf("allocation went to account %d, want 3", allocations[0].Account.ID)
	}
}

func TestDistributeClaimShortfallWarning(t *testing.T) {
	account := mustVestingAccount(t, 1, 100, testStart, 60)
	now := at(testStart + 3600)

	allocations, warning, err := DistributeClaim([]VestingAccount{account}, NewMoney(150), now)
	if err != nil {
		t.Fatalf("DistributeClaim: %v", err)
	}
	if warning == nil {
		t.Fatal("expected a reconciliation warning")
	}
	if warning.Requested.Cmp(NewMoney(150)) != 0 ||
		warning.Allocated.Cmp(NewMoney(100)) != 0 ||
		warning.Shortfall.Cmp(NewMoney(50)) != 0 {
		t.Errorf("warning = %+v, want requested 150 allocated 100 shortfall 50", warning)
	}
	if len(allocations) != 1 || allocations[0].Amount.Cmp(NewMoney(100)) != 0 {
		t.Errorf("allocations = %+v, want the single schedule drained", allocations)
	}
}

func TestDistributeClaimDeterministicOrder(t *testing.T) {
	a := mustVestingAccount(t, 9, 100, testStart, 60)
	b := mustVestingAccount(t, 3, 100, testStart, 60) // same start, lower id wins
	now := at(testStart + 3600)

	allocations, _, err := DistributeClaim([]VestingAccount{a, b}, NewMoney(100), now)
	if err != nil {
		t.Fatalf("DistributeClaim: %v", err)
	}
	if len(allocations) != 1 || allocations[0].Account.ID != 3 {
		t.Errorf("expected account 3 drained first, got %+v", allocations)
	}
}

func TestDistributeClaimRejectsNonPositive(t *testing.T) {
	account := mustVestingAccount(t, 1, 100, testStart, 60)
	if _, _, err := DistributeClaim([]VestingAccount{account}, NewMoney(0), at(testStart)); err == nil {
		t.Error("expected error for zero claim")
	}
	if _, _, err := DistributeClaim([]VestingAccount{account}, NewMoney(-5), at(testStart)); err == nil {
		t.Error("expected error for negative claim")
	}
}
