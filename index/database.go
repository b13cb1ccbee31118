package index

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DbClient struct {
	Pool *pgxpool.Pool
}

func NewDbClient(dsn string, maxconns int, minconns int) (*DbClient, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxconns > 0 {
		config.MaxConns = int32(maxconns)
	}
	if minconns > 0 {
		config.MinConns = int32(minconns)
	}
	config.HealthCheckPeriod = 60 * time.Second

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}
	return &DbClient{pool}, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS vesting_accounts (
		id BIGSERIAL PRIMARY KEY,
		recipient TEXT NOT NULL,
		total_amount NUMERIC NOT NULL CHECK (total_amount >= 0),
		released_amount NUMERIC NOT NULL DEFAULT 0
			CHECK (released_amount >= 0 AND released_amount <= total_amount),
		start_time BIGINT NOT NULL,
		duration_seconds BIGINT NOT NULL CHECK (duration_seconds > 0),
		category TEXT NOT NULL DEFAULT 'unknown',
		fully_claimed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL)`,
	`CREATE INDEX IF NOT EXISTS vesting_accounts_recipient_idx
		ON vesting_accounts (recipient, start_time, id)`,
	`CREATE TABLE IF NOT EXISTS claim_transactions (
		tx_hash TEXT PRIMARY KEY,
		recipient TEXT NOT NULL,
		amount NUMERIC NOT NULL CHECK (amount > 0),
		block_number BIGINT NOT NULL,
		claimed_at BIGINT NOT NULL,
		shortfall NUMERIC NOT NULL DEFAULT 0 CHECK (shortfall >= 0),
		created_at BIGINT NOT NULL)`,
	`CREATE INDEX IF NOT EXISTS claim_transactions_recipient_idx
		ON claim_transactions (recipient, claimed_at)`,
	`CREATE TABLE IF NOT EXISTS vesting_claims (
		id BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES vesting_accounts (id),
		tx_hash TEXT NOT NULL REFERENCES claim_transactions (tx_hash),
		recipient TEXT NOT NULL,
		amount NUMERIC NOT NULL CHECK (amount > 0),
		claimed_at BIGINT NOT NULL,
		created_at BIGINT NOT NULL)`,
	`CREATE INDEX IF NOT EXISTS vesting_claims_recipient_idx
		ON vesting_claims (recipient, claimed_at)`,
	`CREATE INDEX IF NOT EXISTS vesting_claims_tx_hash_idx
		ON vesting_claims (tx_hash)`,
	`CREATE TABLE IF NOT EXISTS stake_accounts (
		id BIGSERIAL PRIMARY KEY,
		staker TEXT NOT NULL,
		pool TEXT NOT NULL,
		amount NUMERIC NOT NULL CHECK (amount >= 0),
		shares NUMERIC NOT NULL CHECK (shares >= 0),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		UNIQUE (staker, pool),
		CHECK ((amount = 0) = (shares = 0)))`,
	`CREATE TABLE IF NOT EXISTS stake_deposits (
		tx_hash TEXT PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES stake_accounts (id),
		staker TEXT NOT NULL,
		pool TEXT NOT NULL,
		amount NUMERIC NOT NULL CHECK (amount > 0),
		shares NUMERIC NOT NULL CHECK (shares > 0),
		block_number BIGINT NOT NULL,
		deposited_at BIGINT NOT NULL,
		created_at BIGINT NOT NULL)`,
	`CREATE INDEX IF NOT EXISTS stake_deposits_staker_idx
		ON stake_deposits (staker, deposited_at)`,
	`CREATE TABLE IF NOT EXISTS stake_withdrawals (
		tx_hash TEXT PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES stake_accounts (id),
		staker TEXT NOT NULL,
		pool TEXT NOT NULL,
		amount NUMERIC NOT NULL CHECK (amount > 0),
		shares_removed NUMERIC NOT NULL CHECK (shares_removed >= 0),
		block_number BIGINT NOT NULL,
		withdrawn_at BIGINT NOT NULL,
		created_at BIGINT NOT NULL)`,
	`CREATE INDEX IF NOT EXISTS stake_withdrawals_staker_idx
		ON stake_withdrawals (staker, withdrawn_at)`,
	`CREATE TABLE IF NOT EXISTS reconciliation_events (
		id BIGSERIAL PRIMARY KEY,
		recipient TEXT NOT NULL,
		tx_hash TEXT NOT NULL,
		requested NUMERIC NOT NULL CHECK (requested > 0),
		allocated NUMERIC NOT NULL CHECK (allocated >= 0),
		shortfall NUMERIC NOT NULL CHECK (shortfall > 0),
		created_at BIGINT NOT NULL)`,
	`CREATE INDEX IF NOT EXISTS reconciliation_events_recipient_idx
		ON reconciliation_events (recipient, created_at)`,
}

// CreateTables creates the ledger tables and indexes if they do not exist.
func (db *DbClient) CreateTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
