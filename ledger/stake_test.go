package ledger

import (
	"errors"
	"testing"
)

func mustStakeAccount(t *testing.T, id, amount, shares int64) StakeAccount {
	t.Helper()
	account, err := NewStakeAccount(id, NewMoney(amount), NewMoney(shares))
	if err != nil {
		t.Fatalf("NewStakeAccount: %v", err)
	}
	return account
}

func TestNewStakeAccountValidation(t *testing.T) {
	if _, err := NewStakeAccount(1, NewMoney(100), NewMoney(0)); err == nil {
		t.Error("expected error for positive amount with zero shares")
	}
	if _, err := NewStakeAccount(1, NewMoney(0), NewMoney(100)); err == nil {
		t.Error("expected error for zero amount with positive shares")
	}
	if _, err := NewStakeAccount(1, NewMoney(-1), NewMoney(1)); err == nil {
		t.Error("expected error for negative amount")
	}
	if _, err := NewStakeAccount(1, NewMoney(0), NewMoney(0)); err != nil {
		t.Errorf("empty account should be valid: %v", err)
	}
}

func TestPartialWithdrawProportionality(t *testing.T) {
	account := mustStakeAccount(t, 1, 1000, 500)

	updated, removed, err := account.PartialWithdraw(NewMoney(400))
	if err != nil {
		t.Fatalf("PartialWithdraw: %v", err)
	}
	if removed.Cmp(NewMoney(200)) != 0 {
		t.Errorf("shares removed: got %s, want 200 (ratio 4000 bps)", removed)
	}
	if updated.Amount.Cmp(NewMoney(600)) != 0 {
		t.Errorf("remaining amount: got %s, want 600", updated.Amount)
	}
	if updated.Shares.Cmp(NewMoney(300)) != 0 {
		t.Errorf("remaining shares: got %s, want 300", updated.Shares)
	}
	if account.Amount.Cmp(NewMoney(1000)) != 0 {
		t.Errorf("original snapshot mutated: amount = %s", account.Amount)
	}
}

func TestPartialWithdrawFullZeroesExactly(t *testing.T) {
	// Odd values make the basis-point formula round: the full-withdrawal
	// path must bypass it and zero both fields exactly.
	cases := []struct{ amount, shares int64 }{
		{1000, 500},
		{7, 3},
		{999_999_999, 123_456_789},
		{1, 1},
	}
	for _, tc := range cases {
		account := mustStakeAccount(t, 1, tc.amount, tc.shares)
		updated, removed, err := account.PartialWithdraw(NewMoney(tc.amount))
		if err != nil {
			t.Fatalf("full withdraw %d: %v", tc.amount, err)
		}
		if !updated.Amount.IsZero() || !updated.Shares.IsZero() {
			t.Errorf("full withdraw %d/%d: amount %s shares %s, want exact zeros",
				tc.amount, tc.shares, updated.Amount, updated.Shares)
		}
		if removed.Cmp(NewMoney(tc.shares)) != 0 {
			t.Errorf("full withdraw %d/%d: removed %s, want all %d shares",
				tc.amount, tc.shares, removed, tc.shares)
		}
		if !updated.IsDrained() {
			t.Errorf("full withdraw %d/%d: account should be drained", tc.amount, tc.shares)
		}
	}
}

func TestPartialWithdrawFloorFavorsPool(t *testing.T) {
	account := mustStakeAccount(t, 1, 1000, 3)

	updated, removed, err := account.PartialWithdraw(NewMoney(1))
	if err != nil {
		t.Fatalf("PartialWithdraw: %v", err)
	}
	// ratio = floor(1*10000/1000) = 10 bps; floor(3*10/10000) = 0
	if !removed.IsZero() {
		t.Errorf("shares removed: got %s, want 0 (residue stays with the pool)", removed)
	}
	if updated.Amount.Cmp(NewMoney(999)) != 0 || updated.Shares.Cmp(NewMoney(3)) != 0 {
		t.Errorf("after withdraw: amount %s shares %s, want 999/3", updated.Amount, updated.Shares)
	}
}

func TestPartialWithdrawKeepsInvariant(t *testing.T) {
	// A partial withdrawal must never zero the shares while principal
	// remains, whatever the rounding does.
	account := mustStakeAccount(t, 1, 10_000, 1)

	updated, removed, err := account.PartialWithdraw(NewMoney(9_999))
	if err != nil {
		t.Fatalf("PartialWithdraw: %v", err)
	}
	if !removed.IsZero() {
		t.Errorf("removed %s shares, want 0: ratio 9999 bps floors to zero of one share", removed)
	}
	if updated.Amount.IsZero() != updated.Shares.IsZero() {
		t.Errorf("invariant broken: amount %s shares %s", updated.Amount, updated.Shares)
	}
}

func TestPartialWithdrawInsufficient(t *testing.T) {
	account := mustStakeAccount(t, 5, 100, 100)

	_, _, err := account.PartialWithdraw(NewMoney(101))
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.AccountID != 5 || insufficient.Available.Cmp(NewMoney(100)) != 0 {
		t.Errorf("error detail: %+v", insufficient)
	}

	if _, _, err := account.PartialWithdraw(NewMoney(0)); err == nil {
		t.Error("expected error for zero withdrawal")
	}
}

func TestDeposit(t *testing.T) {
	account := mustStakeAccount(t, 1, 0, 0)

	updated, err := account.Deposit(NewMoney(1000), NewMoney(500))
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if updated.Amount.Cmp(NewMoney(1000)) != 0 || updated.Shares.Cmp(NewMoney(500)) != 0 {
		t.Errorf("after deposit: amount %s shares %s, want 1000/500", updated.Amount, updated.Shares)
	}

	updated, err = updated.Deposit(NewMoney(500), NewMoney(200))
	if err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if updated.Amount.Cmp(NewMoney(1500)) != 0 || updated.Shares.Cmp(NewMoney(700)) != 0 {
		t.Errorf("after second deposit: amount %s shares %s, want 1500/700", updated.Amount, updated.Shares)
	}

	if _, err := account.Deposit(NewMoney(0), NewMoney(5)); err == nil {
		t.Error("expected error for zero deposit amount")
	}
}
