package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/fbtplatform/fbt-ledger-go/ledger"
)

const vestingAccountColumns = `id, recipient, total_amount, released_amount, start_time, duration_seconds, category, fully_claimed, created_at, updated_at`

func referenceTime(at *int64) time.Time {
	if at != nil {
		return time.Unix(*at, 0)
	}
	return time.Now()
}

func buildVestingAccountsQuery(req VestingAccountRequest, lim_req LimitRequest, settings RequestSettings) (string, []interface{}, error) {
	query := `SELECT ` + vestingAccountColumns + ` FROM vesting_accounts`
	filter_list := []string{}
	args := []interface{}{}
	arg_idx := 1

	if v := req.ID; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("id = $%d", arg_idx))
		args = append(args, *v)
		arg_idx++
	}
	if len(req.Recipient) > 0 {
		addr_list := make([]string, 0, len(req.Recipient))
		for _, addr := range req.Recipient {
			addr_list = append(addr_list, string(addr))
		}
		filter_list = append(filter_list, fmt.Sprintf("recipient = ANY($%d)", arg_idx))
		args = append(args, pq.Array(addr_list))
		arg_idx++
	}
	if v := req.Category; v != nil {
		category, err := ledger.ParseAllocationCategory(*v)
		if err != nil {
			return "", nil, IndexError{Code: 422, Message: err.Error()}
		}
		filter_list = append(filter_list, fmt.Sprintf("category = $%d", arg_idx))
		args = append(args, category.String())
		arg_idx++
	}
	if v := req.FullyClaimed; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("fully_claimed = $%d", arg_idx))
		args = append(args, *v)
		arg_idx++
	}
	if v := req.FullyVested; v != nil {
		at_ts := time.Now().Unix()
		if req.At != nil {
			at_ts = *req.At
		}
		if *v {
			filter_list = append(filter_list, fmt.Sprintf("start_time + duration_seconds <= $%d", arg_idx))
		} else {
			filter_list = append(filter_list, fmt.Sprintf("start_time + duration_seconds > $%d", arg_idx))
		}
		args = append(args, at_ts)
		arg_idx++
	}
	if v := req.StartedAfter; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("start_time >= $%d", arg_idx))
		args = append(args, *v)
		arg_idx++
	}
	if v := req.StartedBefore; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("start_time <= $%d", arg_idx))
		args = append(args, *v)
		arg_idx++
	}

	order, err := sortOrder(lim_req)
	if err != nil {
		return "", nil, err
	}
	limit_query, err := limitQuery(lim_req, settings)
	if err != nil {
		return "", nil, err
	}

	if len(filter_list) > 0 {
		query += ` WHERE ` + strings.Join(filter_list, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY start_time %s, id %s", order, order)
	query += limit_query
	return query, args, nil
}

func queryVestingAccountsImpl(conn *pgxpool.Conn, query string, args []interface{}, at time.Time, settings RequestSettings) ([]VestingAccount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
	defer cancel()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}
	defer rows.Close()

	accounts := []VestingAccount{}
	for rows.Next() {
		var acc VestingAccount
		if err := rows.Scan(&acc.ID, &acc.Recipient, &acc.TotalAmount, &acc.ReleasedAmount,
			&acc.StartTime, &acc.DurationSeconds, &acc.Category, &acc.FullyClaimed,
			&acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		acc.FillComputed(at)
		accounts = append(accounts, acc)
	}
	if rows.Err() != nil {
		return nil, IndexError{Code: 500, Message: rows.Err().Error()}
	}
	return accounts, nil
}

// QueryVestingAccounts returns vesting accounts with computed claimable
// state at the request's reference time (now unless `at` is given).
func (db *DbClient) QueryVestingAccounts(req VestingAccountRequest, lim_req LimitRequest, settings RequestSettings) ([]VestingAccount, error) {
	query, args, err := buildVestingAccountsQuery(req, lim_req, settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
	defer cancel()

	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, IndexError{Code: 500, Message: "failed to acquire connection"}
	}
	defer conn.Release()
	return queryVestingAccountsImpl(conn, query, args, referenceTime(req.At), settings)
}

// GetVestingAccount returns one vesting account by id.
func (db *DbClient) GetVestingAccount(id int64, at *int64, settings RequestSettings) (*VestingAccount, error) {
	limit := int32(1)
	req := VestingAccountRequest{ID: &id, At: at}
	accounts, err := db.QueryVestingAccounts(req, LimitRequest{Limit: &limit}, settings)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, IndexError{Code: 404, Message: fmt.Sprintf("vesting account %d not found", id)}
	}
	return &accounts[0], nil
}

// GetVestingSummary aggregates every schedule of a recipient at the
// request's reference time.
func (db *DbClient) GetVestingSummary(req VestingSummaryRequest, settings RequestSettings) (*VestingSummary, error) {
	if len(req.Recipient) == 0 {
		return nil, IndexError{Code: 422, Message: "recipient is required"}
	}
	at := referenceTime(req.At)

	ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
	defer cancel()

	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, IndexError{Code: 500, Message: "failed to acquire connection"}
	}
	defer conn.Release()

	query := `SELECT ` + vestingAccountColumns + ` FROM vesting_accounts WHERE recipient = $1 ORDER BY start_time, id`
	accounts, err := queryVestingAccountsImpl(conn, query, []interface{}{string(req.Recipient)}, at, settings)
	if err != nil {
		return nil, err
	}

	summary := VestingSummary{
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
	return &summary, nil
}

// InsertVestingAccount records a new vesting grant.
func (db *DbClient) InsertVestingAccount(req GrantRequest, settings RequestSettings) (*VestingAccount, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	base, err := ledger.NewVestingAccount(0, req.TotalAmount, req.StartTime, req.DurationSeconds)
	if err != nil {
		return nil, IndexError{Code: 422, Message: err.Error()}
	}
	category := ledger.ClassifyDuration(req.DurationSeconds)
	now := time.Now().Unix()

	ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
	defer cancel()

	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, IndexError{Code: 500, Message: "failed to acquire connection"}
	}
	defer conn.Release()

	account := VestingAccount{
		VestingAccount: base,
		Recipient:      req.Recipient,
		Category:       category,
		FullyClaimed:   base.IsFullyClaimed(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = conn.QueryRow(ctx, `INSERT INTO vesting_accounts
		(recipient, total_amount, released_amount, start_time, duration_seconds, category, fully_claimed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		string(account.Recipient), account.TotalAmount, account.ReleasedAmount, account.StartTime,
		account.DurationSeconds, account.Category, account.FullyClaimed, now, now).Scan(&account.ID)
	if err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}
	account.FillComputed(time.Now())
	return &account, nil
}

// ProcessClaim settles one observed claim transaction against the
// recipient's open schedules, earliest start first. The transaction hash
// is the dedupe key: a hash seen before settles nothing and returns 409.
// Row locks on the touched accounts serialize concurrent settlements for
// the same recipient.
func (db *DbClient) ProcessClaim(req ClaimRequest, settings RequestSettings) (*ClaimResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	claimed_at := time.Unix(req.ClaimedAt, 0)
	now := time.Now().Unix()

	ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
	defer cancel()

	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, IndexError{Code: 500, Message: "failed to acquire connection"}
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}
	defer tx.Rollback(ctx)

	gate, err := tx.Exec(ctx, `INSERT INTO claim_transactions
		(tx_hash, recipient, amount, block_number, claimed_at, shortfall, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (tx_hash) DO NOTHING`,
		string(req.TxHash), string(req.Recipient), req.Amount, req.BlockNumber,
		req.ClaimedAt, ledger.NewMoney(0), now)
	if err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}
	if gate.RowsAffected() == 0 {
		return nil, IndexError{Code: 409, Message: fmt.Sprintf("claim transaction %s already processed", req.TxHash)}
	}

	rows, err := tx.Query(ctx, `SELECT `+vestingAccountColumns+` FROM vesting_accounts
		WHERE recipient = $1 AND NOT fully_claimed ORDER BY start_time, id FOR UPDATE`,
		string(req.Recipient))
	if err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}
	stored := []VestingAccount{}
	for rows.Next() {
		var acc VestingAccount
		if err := rows.Scan(&acc.ID, &acc.Recipient, &acc.TotalAmount, &acc.ReleasedAmount,
			&acc.StartTime, &acc.DurationSeconds, &acc.Category, &acc.FullyClaimed,
			&acc.CreatedAt, &acc.UpdatedAt); err != nil {
			rows.Close()
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		stored = append(stored, acc)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, IndexError{Code: 500, Message: rows.Err().Error()}
	}

	ledger_accounts := make([]ledger.VestingAccount, 0, len(stored))
	meta := make(map[int64]VestingAccount, len(stored))
	for _, acc := range stored {
		ledger_accounts = append(ledger_accounts, acc.VestingAccount)
		meta[acc.ID] = acc
	}

	allocations, warning, err := ledger.DistributeClaim(ledger_accounts, req.Amount, claimed_at)
	if err != nil {
		var overclaim *ledger.OverclaimError
		if errors.As(err, &overclaim) {
			return nil, overclaim
		}
		return nil, IndexError{Code: 422, Message: err.Error()}
	}

	result := ClaimResult{
		Transaction: ClaimTransaction{
			TxHash:      req.TxHash,
			Recipient:   req.Recipient,
			Amount:      req.Amount,
			BlockNumber: req.BlockNumber,
			ClaimedAt:   req.ClaimedAt,
			Shortfall:   ledger.NewMoney(0),
			CreatedAt:   now,
		},
		Claims:   []VestingClaim{},
		Accounts: []VestingAccount{},
	}
	for _, allocation := range allocations {
		updated := allocation.Account
		fully_claimed := updated.IsFullyClaimed()
		if _, err := tx.Exec(ctx, `UPDATE vesting_accounts
			SET released_amount = $1, fully_claimed = $2, updated_at = $3 WHERE id = $4`,
			updated.ReleasedAmount, fully_claimed, now, updated.ID); err != nil {
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		var claim_id int64
		if err := tx.QueryRow(ctx, `INSERT INTO vesting_claims
			(account_id, tx_hash, recipient, amount, claimed_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			updated.ID, string(req.TxHash), string(req.Recipient), allocation.Amount,
			req.ClaimedAt, now).Scan(&claim_id); err != nil {
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		result.Claims = append(result.Claims, VestingClaim{
			ID:        claim_id,
			AccountID: updated.ID,
			TxHash:    req.TxHash,
			Recipient: req.Recipient,
			Amount:    allocation.Amount,
			ClaimedAt: req.ClaimedAt,
			CreatedAt: now,
		})

		acc := meta[updated.ID]
		acc.VestingAccount = updated
		acc.FullyClaimed = fully_claimed
		acc.UpdatedAt = now
		acc.FillComputed(claimed_at)
		result.Accounts = append(result.Accounts, acc)
	}

	if warning != nil {
		if _, err := tx.Exec(ctx, `UPDATE claim_transactions SET shortfall = $1 WHERE tx_hash = $2`,
			warning.Shortfall, string(req.TxHash)); err != nil {
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		if _, err := tx.Exec(ctx, `INSERT INTO reconciliation_events
			(recipient, tx_hash, requested, allocated, shortfall, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			string(req.Recipient), string(req.TxHash), warning.Requested,
			warning.Allocated, warning.Shortfall, now); err != nil {
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		result.Transaction.Shortfall = warning.Shortfall
		result.Warning = warning
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}
	return &result, nil
}

func buildVestingClaimsQuery(req VestingClaimRequest, lim_req LimitRequest, settings RequestSettings) (string, []interface{}, error) {
	query := `SELECT id, account_id, tx_hash, recipient, amount, claimed_at, created_at FROM vesting_claims`
	filter_list := []string{}
	args := []interface{}{}
	arg_idx := 1

	if v := req.Recipient; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("recipient = $%d", arg_idx))
		args = append(args, string(*v))
		arg_idx++
	}
	if v := req.AccountID; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("account_id = $%d", arg_idx))
		args = append(args, *v)
		arg_idx++
	}
	if v := req.TxHash; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("tx_hash = $%d", arg_idx))
		args = append(args, string(*v))
		arg_idx++
	}

	order, err := sortOrder(lim_req)
	if err != nil {
		return "", nil, err
	}
	limit_query, err := limitQuery(lim_req, settings)
	if err != nil {
		return "", nil, err
	}

	if len(filter_list) > 0 {
		query += ` WHERE ` + strings.Join(filter_list, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY claimed_at %s, id %s", order, order)
	query += limit_query
	return query, args, nil
}

// QueryVestingClaims returns settled per-schedule claim slices.
func (db *DbClient) QueryVestingClaims(req VestingClaimRequest, lim_req LimitRequest, settings RequestSettings) ([]VestingClaim, error) {
	query, args, err := buildVestingClaimsQuery(req, lim_req, settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
	defer cancel()

	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, IndexError{Code: 500, Message: "failed to acquire connection"}
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}
	defer rows.Close()

	claims := []VestingClaim{}
	for rows.Next() {
		var claim VestingClaim
		if err := rows.Scan(&claim.ID, &claim.AccountID, &claim.TxHash, &claim.Recipient,
			&claim.Amount, &claim.ClaimedAt, &claim.CreatedAt); err != nil {
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		claims = append(claims, claim)
	}
	if rows.Err() != nil {
		return nil, IndexError{Code: 500, Message: rows.Err().Error()}
	}
	return claims, nil
}

// QueryReconciliationEvents returns recorded claim shortfalls.
func (db *DbClient) QueryReconciliationEvents(req ReconciliationRequest, lim_req LimitRequest, settings RequestSettings) ([]ReconciliationEvent, error) {
	query := `SELECT id, recipient, tx_hash, requested, allocated, shortfall, created_at FROM reconciliation_events`
	filter_list := []string{}
	args := []interface{}{}
	arg_idx := 1

	if v := req.Recipient; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("recipient = $%d", arg_idx))
		args = append(args, string(*v))
		arg_idx++
	}
	if v := req.TxHash; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("tx_hash = $%d", arg_idx))
		args = append(args, string(*v))
		arg_idx++
	}

	order, err := sortOrder(lim_req)
	if err != nil {
		return nil, err
	}
	limit_query, err := limitQuery(lim_req, settings)
	if err != nil {
		return nil, err
	}

	if len(filter_list) > 0 {
		query += ` WHERE ` + strings.Join(filter_list, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at %s, id %s", order, order)
	query += limit_query

	ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
	defer cancel()

	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, IndexError{Code: 500, Message: "failed to acquire connection"}
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}
	defer rows.Close()

	events := []ReconciliationEvent{}
	for rows.Next() {
		var event ReconciliationEvent
		if err := rows.Scan(&event.ID, &event.Recipient, &event.TxHash, &event.Requested,
			&event.Allocated, &event.Shortfall, &event.CreatedAt); err != nil {
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, IndexError{Code: 500, Message: rows.Err().Error()}
	}
	return events, nil
}
