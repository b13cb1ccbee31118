package index

import "github.com/fbtplatform/fbt-ledger-go/ledger"

// responses
type VestingAccountsResponse struct {
	Accounts []VestingAccount `json:"accounts"`
}

type VestingClaimsResponse struct {
	Claims []VestingClaim `json:"claims"`
}

type ReconciliationEventsResponse struct {
	Events []ReconciliationEvent `json:"events"`
}

type StakeAccountsResponse struct {
	Accounts []StakeAccount `json:"accounts"`
}

type StakeDepositsResponse struct {
	Deposits []StakeDeposit `json:"deposits"`
}

type StakeWithdrawalsResponse struct {
	Withdrawals []StakeWithdrawal `json:"withdrawals"`
}

// GrantResult is returned after a vesting grant is recorded.
type GrantResult struct {
	Account VestingAccount `json:"account"`
}

// ClaimResult is returned after a claim transaction settles. Accounts
// holds the post-settlement state of every schedule the claim touched,
// in the order the amount was drawn from them.
type ClaimResult struct {
	Transaction ClaimTransaction              `json:"transaction"`
	Claims      []VestingClaim                `json:"claims"`
	Accounts    []VestingAccount              `json:"accounts"`
	Warning     *ledger.ReconciliationWarning `json:"warning,omitempty"`
}

// DepositResult is returned after a stake deposit settles.
type DepositResult struct {
	Deposit StakeDeposit `json:"deposit"`
	Account StakeAccount `json:"account"`
}

// WithdrawalResult is returned after a stake withdrawal settles.
type WithdrawalResult struct {
	Withdrawal StakeWithdrawal `json:"withdrawal"`
	Account    StakeAccount    `json:"account"`
}
