package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

const stakeAccountColumns = `id, staker, pool, amount, shares, active, created_at, updated_at`

func buildStakeAccountsQuery(req StakeAccountRequest, lim_req LimitRequest, settings RequestSettings) (string, []interface{}, error) {
	query := `SELECT ` + stakeAccountColumns + ` FROM stake_accounts`
	filter_list := []string{}
	args := []interface{}{}
	arg_idx := 1

	if v := req.ID; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("id = $%d", arg_idx))
		args = append(args, *v)
		arg_idx++
	}
	if len(req.Staker) > 0 {
		addr_list := make([]string, 0, len(req.Staker))
		for _, addr := range req.Staker {
			addr_list = append(addr_list, string(addr))
		}
		filter_list = append(filter_list, fmt.Sprintf("staker = ANY($%d)", arg_idx))
		args = append(args, pq.Array(addr_list))
		arg_idx++
	}
	if v := req.Pool; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("pool = $%d", arg_idx))
		args = append(args, string(*v))
		arg_idx++
	}
	if v := req.Active; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("active = $%d", arg_idx))
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
	query += fmt.Sprintf(" ORDER BY id %s", order)
	query += limit_query
	return query, args, nil
}

// QueryStakeAccounts returns staking positions.
func (db *DbClient) QueryStakeAccounts(req StakeAccountRequest, lim_req LimitRequest, settings RequestSettings) ([]StakeAccount, error) {
	query, args, err := buildStakeAccountsQuery(req, lim_req, settings)
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

	accounts := []StakeAccount{}
	for rows.Next() {
		var acc StakeAccount
		if err := rows.Scan(&acc.ID, &acc.Staker, &acc.Pool, &acc.Amount, &acc.Shares,
			&acc.Active, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		accounts = append(accounts, acc)
	}
	if rows.Err() != nil {
		return nil, IndexError{Code: 500, Message: rows.Err().Error()}
	}
	return accounts, nil
}

// GetStakeAccount returns one staking position by id.
func (db *DbClient) GetStakeAccount(id int64, settings RequestSettings) (*StakeAccount, error) {
	limit := int32(1)
	req := StakeAccountRequest{ID: &id}
	accounts, err := db.QueryStakeAccounts(req, LimitRequest{Limit: &limit}, settings)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, IndexError{Code: 404, Message: fmt.Sprintf("stake account %d not found", id)}
	}
	return &accounts[0], nil
}

// ProcessDeposit settles one observed stake deposit. The position row for
// (staker, pool) is created on first deposit and locked for the rest of
// the settlement; the transaction hash dedupes replays.
func (db *DbClient) ProcessDeposit(req DepositRequest, settings RequestSettings) (*DepositResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
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

	if _, err := tx.Exec(ctx, `INSERT INTO stake_accounts
		(staker, pool, amount, shares, active, created_at, updated_at)
		VALUES ($1, $2, 0, 0, TRUE, $3, $3) ON CONFLICT (staker, pool) DO NOTHING`,
		string(req.Staker), string(req.Pool), now); err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}

	var account StakeAccount
	if err := tx.QueryRow(ctx, `SELECT `+stakeAccountColumns+` FROM stake_accounts
		WHERE staker = $1 AND pool = $2 FOR UPDATE`,
		string(req.Staker), string(req.Pool)).Scan(
		&account.ID, &account.Staker, &account.Pool, &account.Amount, &account.Shares,
		&account.Active, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}

	gate, err := tx.Exec(ctx, `INSERT INTO stake_deposits
		(tx_hash, account_id, staker, pool, amount, shares, block_number, deposited_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT (tx_hash) DO NOTHING`,
		string(req.TxHash), account.ID, string(req.Staker), string(req.Pool),
		req.Amount, req.Shares, req.BlockNumber, req.DepositedAt, now)
	if err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}
	if gate.RowsAffected() == 0 {
		return nil, IndexError{Code: 409, Message: fmt.Sprintf("stake deposit %s already processed", req.TxHash)}
	}

	updated, err := account.Deposit(req.Amount, req.Shares)
	if err != nil {
		return nil, IndexError{Code: 422, Message: err.Error()}
	}
	if _, err := tx.Exec(ctx, `UPDATE stake_accounts
		SET amount = $1, shares = $2, active = $3, updated_at = $4 WHERE id = $5`,
		updated.Amount, updated.Shares, !updated.IsDrained(), now, account.ID); err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}

	account.StakeAccount = updated
	account.Active = !updated.IsDrained()
	account.UpdatedAt = now
	return &DepositResult{
		Deposit: StakeDeposit{
			TxHash:      req.TxHash,
			AccountID:   account.ID,
			Staker:      req.Staker,
			Pool:        req.Pool,
			Amount:      req.Amount,
			Shares:      req.Shares,
			BlockNumber: req.BlockNumber,
			DepositedAt: req.DepositedAt,
			CreatedAt:   now,
		},
		Account: account,
	}, nil
}

// ProcessWithdrawal settles one observed stake withdrawal. Shares are
// removed proportionally to the withdrawn principal; a withdrawal of the
// whole principal zeroes the position exactly.
func (db *DbClient) ProcessWithdrawal(req WithdrawalRequest, settings RequestSettings) (*WithdrawalResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
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

	var account StakeAccount
	err = tx.QueryRow(ctx, `SELECT `+stakeAccountColumns+` FROM stake_accounts
		WHERE staker = $1 AND pool = $2 FOR UPDATE`,
		string(req.Staker), string(req.Pool)).Scan(
		&account.ID, &account.Staker, &account.Pool, &account.Amount, &account.Shares,
		&account.Active, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, IndexError{Code: 404, Message: fmt.Sprintf("no stake account for staker %s in pool %s", req.Staker, req.Pool)}
	}
	if err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}

	updated, removed, err := account.PartialWithdraw(req.Amount)
	if err != nil {
		return nil, err
	}

	gate, err := tx.Exec(ctx, `INSERT INTO stake_withdrawals
		(tx_hash, account_id, staker, pool, amount, shares_removed, block_number, withdrawn_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT (tx_hash) DO NOTHING`,
		string(req.TxHash), account.ID, string(req.Staker), string(req.Pool),
		req.Amount, removed, req.BlockNumber, req.WithdrawnAt, now)
	if err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}
	if gate.RowsAffected() == 0 {
		return nil, IndexError{Code: 409, Message: fmt.Sprintf("stake withdrawal %s already processed", req.TxHash)}
	}

	if _, err := tx.Exec(ctx, `UPDATE stake_accounts
		SET amount = $1, shares = $2, active = $3, updated_at = $4 WHERE id = $5`,
		updated.Amount, updated.Shares, !updated.IsDrained(), now, account.ID); err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, IndexError{Code: 500, Message: err.Error()}
	}

	account.StakeAccount = updated
	account.Active = !updated.IsDrained()
	account.UpdatedAt = now
	return &WithdrawalResult{
		Withdrawal: StakeWithdrawal{
			TxHash:        req.TxHash,
			AccountID:     account.ID,
			Staker:        req.Staker,
			Pool:          req.Pool,
			Amount:        req.Amount,
			SharesRemoved: removed,
			BlockNumber:   req.BlockNumber,
			WithdrawnAt:   req.WithdrawnAt,
			CreatedAt:     now,
		},
		Account: account,
	}, nil
}

func buildStakeDepositsQuery(req StakeDepositRequest, lim_req LimitRequest, settings RequestSettings) (string, []interface{}, error) {
	query := `SELECT tx_hash, account_id, staker, pool, amount, shares, block_number, deposited_at, created_at FROM stake_deposits`
	filter_list := []string{}
	args := []interface{}{}
	arg_idx := 1

	if len(req.Staker) > 0 {
		addr_list := make([]string, 0, len(req.Staker))
		for _, addr := range req.Staker {
			addr_list = append(addr_list, string(addr))
		}
		filter_list = append(filter_list, fmt.Sprintf("staker = ANY($%d)", arg_idx))
		args = append(args, pq.Array(addr_list))
		arg_idx++
	}
	if v := req.Pool; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("pool = $%d", arg_idx))
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
		return "", nil, err
	}
	limit_query, err := limitQuery(lim_req, settings)
	if err != nil {
		return "", nil, err
	}

	if len(filter_list) > 0 {
		query += ` WHERE ` + strings.Join(filter_list, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY deposited_at %s, tx_hash %s", order, order)
	query += limit_query
	return query, args, nil
}

// QueryStakeDeposits returns settled deposits.
func (db *DbClient) QueryStakeDeposits(req StakeDepositRequest, lim_req LimitRequest, settings RequestSettings) ([]StakeDeposit, error) {
	query, args, err := buildStakeDepositsQuery(req, lim_req, settings)
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

	deposits := []StakeDeposit{}
	for rows.Next() {
		var dep StakeDeposit
		if err := rows.Scan(&dep.TxHash, &dep.AccountID, &dep.Staker, &dep.Pool, &dep.Amount,
			&dep.Shares, &dep.BlockNumber, &dep.DepositedAt, &dep.CreatedAt); err != nil {
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		deposits = append(deposits, dep)
	}
	if rows.Err() != nil {
		return nil, IndexError{Code: 500, Message: rows.Err().Error()}
	}
	return deposits, nil
}

func buildStakeWithdrawalsQuery(req StakeWithdrawalRequest, lim_req LimitRequest, settings RequestSettings) (string, []interface{}, error) {
	query := `SELECT tx_hash, account_id, staker, pool, amount, shares_removed, block_number, withdrawn_at, created_at FROM stake_withdrawals`
	filter_list := []string{}
	args := []interface{}{}
	arg_idx := 1

	if len(req.Staker) > 0 {
		addr_list := make([]string, 0, len(req.Staker))
		for _, addr := range req.Staker {
			addr_list = append(addr_list, string(addr))
		}
		filter_list = append(filter_list, fmt.Sprintf("staker = ANY($%d)", arg_idx))
		args = append(args, pq.Array(addr_list))
		arg_idx++
	}
	if v := req.Pool; v != nil {
		filter_list = append(filter_list, fmt.Sprintf("pool = $%d", arg_idx))
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
		return "", nil, err
	}
	limit_query, err := limitQuery(lim_req, settings)
	if err != nil {
		return "", nil, err
	}

	if len(filter_list) > 0 {
		query += ` WHERE ` + strings.Join(filter_list, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY withdrawn_at %s, tx_hash %s", order, order)
	query += limit_query
	return query, args, nil
}

// QueryStakeWithdrawals returns settled withdrawals.
func (db *DbClient) QueryStakeWithdrawals(req StakeWithdrawalRequest, lim_req LimitRequest, settings RequestSettings) ([]StakeWithdrawal, error) {
	query, args, err := buildStakeWithdrawalsQuery(req, lim_req, settings)
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

	withdrawals := []StakeWithdrawal{}
	for rows.Next() {
		var wd StakeWithdrawal
		if err := rows.Scan(&wd.TxHash, &wd.AccountID, &wd.Staker, &wd.Pool, &wd.Amount,
			&wd.SharesRemoved, &wd.BlockNumber, &wd.WithdrawnAt, &wd.CreatedAt); err != nil {
			return nil, IndexError{Code: 500, Message: err.Error()}
		}
		withdrawals = append(withdrawals, wd)
	}
	if rows.Err() != nil {
		return nil, IndexError{Code: 500, Message: rows.Err().Error()}
	}
	return withdrawals, nil
}
