package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/redirect"
	"github.com/gofiber/swagger"
	"github.com/k0kubun/pp/v3"
	"github.com/redis/go-redis/v9"

	"github.com/fbtplatform/fbt-ledger-go/cache"
	_ "github.com/fbtplatform/fbt-ledger-go/docs"
	"github.com/fbtplatform/fbt-ledger-go/eventbus"
	"github.com/fbtplatform/fbt-ledger-go/index"
	"github.com/fbtplatform/fbt-ledger-go/ledger"
	"github.com/fbtplatform/fbt-ledger-go/loader"
	"github.com/fbtplatform/fbt-ledger-go/repl"
)

type Settings struct {
	PgDsn         string
	RedisDsn      string
	ReplDsn       string
	Slot          string
	Publication   string
	TemporarySlot bool
	MaxConns      int
	MinConns      int
	Bind          string
	InstanceName  string
	Prefork       bool
	Debug         bool
	CreateTables  bool
	Preload       bool
	Request       index.RequestSettings
}

var pool *index.DbClient
var redisClient *redis.Client
var caches *cache.Manager
var bus eventbus.Bus
var preloader *loader.Loader
var replicator *repl.Replicator
var settings Settings

//	@title			FBT Ledger API
//	@version		1.0.0
//	@description	FBT Ledger tracks token vesting schedules and staking positions settled on chain and serves read models and settlement endpoints over the indexed ledger.
//  @query.collection.format multi

// @summary Get vesting accounts
// @description Get vesting schedules by specified filters. Claimable amounts and progress are computed at the reference time `at` (defaults to now).
// @id api_v1_get_vesting_accounts
// @tags vesting
// @Accept       json
// @Produce      json
// @success		200	{object}	index.VestingAccountsResponse
// @failure		400	{object}	index.IndexError
// @param	id query int64 false "Vesting account id."
// @param 	recipient	query []string false "List of recipient addresses. Can be sent in raw or friendly form." collectionFormat(multi)
// @param	category query string false "Allocation category." Enums(public_sale, community, advisors, ecosystem, team, unknown)
// @param	fully_claimed query bool false "Only schedules that are (not) fully claimed."
// @param	fully_vested query bool false "Only schedules that are (not) fully vested at the reference time."
// @param	started_after query int64 false "Schedules with `start_time >= started_after`." minimum(0)
// @param	started_before query int64 false "Schedules with `start_time <= started_before`." minimum(0)
// @param	at query int64 false "Reference UNIX time for computed fields. Defaults to now." minimum(0)
// @param limit query int32 false "Limit number of queried rows. Use with *offset* to batch read." minimum(1) maximum(1000) default(100)
// @param offset query int32 false "Skip first N rows. Use with *limit* to batch read." minimum(0) default(0)
// @param sort query string false "Sort by start_time." Enums(asc, desc) default(asc)
// @router			/api/v1/vesting/accounts [get]
func GetVestingAccounts(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	acc_req := index.VestingAccountRequest{}
	lim_req := index.LimitRequest{}

	if err := c.QueryParser(&acc_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}
	if err := c.QueryParser(&lim_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	accounts, err := pool.QueryVestingAccounts(acc_req, lim_req, request_settings)
	if err != nil {
		return err
	}

	return c.JSON(index.VestingAccountsResponse{Accounts: accounts})
}

// @summary Get vesting account
// @description Get a single vesting schedule by id. Computed fields are evaluated at the reference time `at` (defaults to now).
// @id api_v1_get_vesting_account
// @tags vesting
// @Accept       json
// @Produce      json
// @success		200	{object}	index.VestingAccount
// @failure		400	{object}	index.IndexError
// @param	id path int64 true "Vesting account id."
// @param	at query int64 false "Reference UNIX time for computed fields. Defaults to now." minimum(0)
// @router			/api/v1/vesting/accounts/{id} [get]
func GetVestingAccount(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return index.IndexError{Code: 422, Message: fmt.Sprintf("invalid account id: %s", c.Params("id"))}
	}
	acc_req := index.VestingAccountRequest{}
	if err := c.QueryParser(&acc_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	account, err := pool.GetVestingAccount(id, acc_req.At, request_settings)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

// @summary Get vesting summary
// @description Aggregate all schedules of a recipient at a reference time. Served from the cache when the snapshots are warm, from PostgreSQL otherwise.
// @id api_v1_get_vesting_summary
// @tags vesting
// @Accept       json
// @Produce      json
// @success		200	{object}	index.VestingSummary
// @failure		400	{object}	index.IndexError
// @param	recipient query string true "Recipient address. Can be sent in raw or friendly form."
// @param	at query int64 false "Reference UNIX time for computed fields. Defaults to now." minimum(0)
// @router			/api/v1/vesting/summary [get]
func GetVestingSummary(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	sum_req := index.VestingSummaryRequest{}
	if err := c.QueryParser(&sum_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	summary, err := preloader.VestingSummary(c.Context(), sum_req, request_settings)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// @summary Get vesting claims
// @description Get settled per-schedule claim slices by specified filters.
// @id api_v1_get_vesting_claims
// @tags vesting
// @Accept       json
// @Produce      json
// @success		200	{object}	index.VestingClaimsResponse
// @failure		400	{object}	index.IndexError
// @param	recipient query string false "Recipient address."
// @param	account_id query int64 false "Vesting account id."
// @param	tx_hash query string false "Claim transaction hash."
// @param limit query int32 false "Limit number of queried rows. Use with *offset* to batch read." minimum(1) maximum(1000) default(100)
// @param offset query int32 false "Skip first N rows. Use with *limit* to batch read." minimum(0) default(0)
// @param sort query string false "Sort by claimed_at." Enums(asc, desc) default(asc)
// @router			/api/v1/vesting/claims [get]
func GetVestingClaims(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	claim_req := index.VestingClaimRequest{}
	lim_req := index.LimitRequest{}

	if err := c.QueryParser(&claim_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}
	if err := c.QueryParser(&lim_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	claims, err := pool.QueryVestingClaims(claim_req, lim_req, request_settings)
	if err != nil {
		return err
	}
	return c.JSON(index.VestingClaimsResponse{Claims: claims})
}

// @summary Record vesting grant
// @description Record a vesting grant observed on chain. The allocation category is derived from the duration.
// @id api_v1_post_vesting_grant
// @tags vesting
// @Accept       json
// @Produce      json
// @success		200	{object}	index.GrantResult
// @failure		400	{object}	index.IndexError
// @param	request body index.GrantRequest true "Grant to record."
// @router			/api/v1/vesting/grants [post]
func PostVestingGrant(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	req := index.GrantRequest{}
	if err := c.BodyParser(&req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	account, err := pool.InsertVestingAccount(req, request_settings)
	if err != nil {
		return err
	}
	publishGrant(c.Context(), account)
	return c.JSON(index.GrantResult{Account: *account})
}

// @summary Settle vesting claim
// @description Settle a claim transaction observed on chain. The amount is distributed across the recipient's open schedules oldest-first; a transaction hash seen before settles nothing and returns 409. When the schedules cannot cover the claimed amount the response carries a reconciliation warning.
// @id api_v1_post_vesting_claim
// @tags vesting
// @Accept       json
// @Produce      json
// @success		200	{object}	index.ClaimResult
// @failure		400	{object}	index.IndexError
// @param	request body index.ClaimRequest true "Claim to settle."
// @router			/api/v1/vesting/claims [post]
func PostVestingClaim(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	req := index.ClaimRequest{}
	if err := c.BodyParser(&req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	result, err := pool.ProcessClaim(req, request_settings)
	if err != nil {
		return err
	}
	publishClaim(c.Context(), result)
	return c.JSON(result)
}

// @summary Get stake accounts
// @description Get staking positions by specified filters.
// @id api_v1_get_stake_accounts
// @tags staking
// @Accept       json
// @Produce      json
// @success		200	{object}	index.StakeAccountsResponse
// @failure		400	{object}	index.IndexError
// @param	id query int64 false "Stake account id."
// @param 	staker	query []string false "List of staker addresses." collectionFormat(multi)
// @param	pool query string false "Pool address."
// @param	active query bool false "Only positions that are (not) active."
// @param limit query int32 false "Limit number of queried rows. Use with *offset* to batch read." minimum(1) maximum(1000) default(100)
// @param offset query int32 false "Skip first N rows. Use with *limit* to batch read." minimum(0) default(0)
// @param sort query string false "Sort by created_at." Enums(asc, desc) default(asc)
// @router			/api/v1/staking/accounts [get]
func GetStakeAccounts(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	acc_req := index.StakeAccountRequest{}
	lim_req := index.LimitRequest{}

	if err := c.QueryParser(&acc_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}
	if err := c.QueryParser(&lim_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	accounts, err := pool.QueryStakeAccounts(acc_req, lim_req, request_settings)
	if err != nil {
		return err
	}
	return c.JSON(index.StakeAccountsResponse{Accounts: accounts})
}

// @summary Get stake account
// @description Get a single staking position by id.
// @id api_v1_get_stake_account
// @tags staking
// @Accept       json
// @Produce      json
// @success		200	{object}	index.StakeAccount
// @failure		400	{object}	index.IndexError
// @param	id path int64 true "Stake account id."
// @router			/api/v1/staking/accounts/{id} [get]
func GetStakeAccount(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return index.IndexError{Code: 422, Message: fmt.Sprintf("invalid account id: %s", c.Params("id"))}
	}

	account, err := pool.GetStakeAccount(id, request_settings)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

// @summary Get stake deposits
// @description Get settled deposits by specified filters.
// @id api_v1_get_stake_deposits
// @tags staking
// @Accept       json
// @Produce      json
// @success		200	{object}	index.StakeDepositsResponse
// @failure		400	{object}	index.IndexError
// @param 	staker	query []string false "List of staker addresses." collectionFormat(multi)
// @param	pool query string false "Pool address."
// @param	tx_hash query string false "Deposit transaction hash."
// @param limit query int32 false "Limit number of queried rows. Use with *offset* to batch read." minimum(1) maximum(1000) default(100)
// @param offset query int32 false "Skip first N rows. Use with *limit* to batch read." minimum(0) default(0)
// @param sort query string false "Sort by deposited_at." Enums(asc, desc) default(asc)
// @router			/api/v1/staking/deposits [get]
func GetStakeDeposits(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	dep_req := index.StakeDepositRequest{}
	lim_req := index.LimitRequest{}

	if err := c.QueryParser(&dep_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}
	if err := c.QueryParser(&lim_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	deposits, err := pool.QueryStakeDeposits(dep_req, lim_req, request_settings)
	if err != nil {
		return err
	}
	return c.JSON(index.StakeDepositsResponse{Deposits: deposits})
}

// @summary Get stake withdrawals
// @description Get settled withdrawals by specified filters.
// @id api_v1_get_stake_withdrawals
// @tags staking
// @Accept       json
// @Produce      json
// @success		200	{object}	index.StakeWithdrawalsResponse
// @failure		400	{object}	index.IndexError
// @param 	staker	query []string false "List of staker addresses." collectionFormat(multi)
// @param	pool query string false "Pool address."
// @param	tx_hash query string false "Withdrawal transaction hash."
// @param limit query int32 false "Limit number of queried rows. Use with *offset* to batch read." minimum(1) maximum(1000) default(100)
// @param offset query int32 false "Skip first N rows. Use with *limit* to batch read." minimum(0) default(0)
// @param sort query string false "Sort by withdrawn_at." Enums(asc, desc) default(asc)
// @router			/api/v1/staking/withdrawals [get]
func GetStakeWithdrawals(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	wit_req := index.StakeWithdrawalRequest{}
	lim_req := index.LimitRequest{}

	if err := c.QueryParser(&wit_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}
	if err := c.QueryParser(&lim_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	withdrawals, err := pool.QueryStakeWithdrawals(wit_req, lim_req, request_settings)
	if err != nil {
		return err
	}
	return c.JSON(index.StakeWithdrawalsResponse{Withdrawals: withdrawals})
}

// @summary Settle stake deposit
// @description Settle a deposit observed on chain. Creates the staking position on first deposit, accumulates amount and shares otherwise. A transaction hash seen before settles nothing and returns 409.
// @id api_v1_post_stake_deposit
// @tags staking
// @Accept       json
// @Produce      json
// @success		200	{object}	index.DepositResult
// @failure		400	{object}	index.IndexError
// @param	request body index.DepositRequest true "Deposit to settle."
// @router			/api/v1/staking/deposits [post]
func PostStakeDeposit(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	req := index.DepositRequest{}
	if err := c.BodyParser(&req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	result, err := pool.ProcessDeposit(req, request_settings)
	if err != nil {
		return err
	}
	publishDeposit(c.Context(), result)
	return c.JSON(result)
}

// @summary Settle stake withdrawal
// @description Settle a withdrawal observed on chain. Shares are removed proportionally to the withdrawn amount, rounding in favor of the pool; withdrawing more than the position holds returns 409. A transaction hash seen before settles nothing and returns 409.
// @id api_v1_post_stake_withdrawal
// @tags staking
// @Accept       json
// @Produce      json
// @success		200	{object}	index.WithdrawalResult
// @failure		400	{object}	index.IndexError
// @param	request body index.WithdrawalRequest true "Withdrawal to settle."
// @router			/api/v1/staking/withdrawals [post]
func PostStakeWithdrawal(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	req := index.WithdrawalRequest{}
	if err := c.BodyParser(&req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	result, err := pool.ProcessWithdrawal(req, request_settings)
	if err != nil {
		return err
	}
	publishWithdrawal(c.Context(), result)
	return c.JSON(result)
}

// @summary Get reconciliation events
// @description Get claims whose authoritative external amount exceeded everything locally claimable.
// @id api_v1_get_reconciliation_events
// @tags reconciliation
// @Accept       json
// @Produce      json
// @success		200	{object}	index.ReconciliationEventsResponse
// @failure		400	{object}	index.IndexError
// @param	recipient query string false "Recipient address."
// @param	tx_hash query string false "Claim transaction hash."
// @param limit query int32 false "Limit number of queried rows. Use with *offset* to batch read." minimum(1) maximum(1000) default(100)
// @param offset query int32 false "Skip first N rows. Use with *limit* to batch read." minimum(0) default(0)
// @param sort query string false "Sort by created_at." Enums(asc, desc) default(asc)
// @router			/api/v1/reconciliation/events [get]
func GetReconciliationEvents(c *fiber.Ctx) error {
	request_settings := GetRequestSettings(c, &settings)
	rec_req := index.ReconciliationRequest{}
	lim_req := index.LimitRequest{}

	if err := c.QueryParser(&rec_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}
	if err := c.QueryParser(&lim_req); err != nil {
		return index.IndexError{Code: 422, Message: err.Error()}
	}

	events, err := pool.QueryReconciliationEvents(rec_req, lim_req, request_settings)
	if err != nil {
		return err
	}
	return c.JSON(index.ReconciliationEventsResponse{Events: events})
}

func HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	if err := pool.Pool.Ping(ctx); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("database unavailable: " + err.Error())
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("redis unavailable: " + err.Error())
	}
	if replicator != nil && replicator.TimeSinceLastMsg() > 30*time.Second {
		return c.Status(fiber.StatusInternalServerError).SendString("replication is stale")
	}
	return c.Status(200).SendString("OK")
}

// settlement event publishing; failures are logged, never returned, a
// settled mutation stays settled whether or not the bus accepted it
func publishGrant(ctx context.Context, account *index.VestingAccount) {
	event := eventbus.GrantRecorded{
		AccountID:       account.ID,
		Recipient:       string(account.Recipient),
		TotalAmount:     account.TotalAmount,
		StartTime:       account.StartTime,
		DurationSeconds: account.DurationSeconds,
		Category:        account.Category,
		CreatedAt:       account.CreatedAt,
	}
	if err := bus.Publish(ctx, eventbus.TopicVestingGranted, event); err != nil {
		log.Printf("Failed to publish grant for account %d: %s", account.ID, err.Error())
	}
}

func publishClaim(ctx context.Context, result *index.ClaimResult) {
	event := eventbus.ClaimSettled{
		TxHash:      string(result.Transaction.TxHash),
		Recipient:   string(result.Transaction.Recipient),
		Amount:      result.Transaction.Amount,
		BlockNumber: result.Transaction.BlockNumber,
		ClaimedAt:   result.Transaction.ClaimedAt,
		Allocations: make([]eventbus.ClaimAllocation, 0, len(result.Claims)),
	}
	if result.Warning != nil {
		shortfall := result.Warning.Shortfall
		event.Shortfall = &shortfall
	}
	for i, claim := range result.Claims {
		event.Allocations = append(event.Allocations, eventbus.ClaimAllocation{
			AccountID:    claim.AccountID,
			Amount:       claim.Amount,
			FullyClaimed: result.Accounts[i].FullyClaimed,
		})
	}
	if err := bus.Publish(ctx, eventbus.TopicVestingClaimed, event); err != nil {
		log.Printf("Failed to publish claim %s: %s", result.Transaction.TxHash, err.Error())
	}
}

func publishDeposit(ctx context.Context, result *index.DepositResult) {
	event := eventbus.DepositSettled{
		TxHash:      string(result.Deposit.TxHash),
		AccountID:   result.Deposit.AccountID,
		Staker:      string(result.Deposit.Staker),
		Pool:        string(result.Deposit.Pool),
		Amount:      result.Deposit.Amount,
		Shares:      result.Deposit.Shares,
		BlockNumber: result.Deposit.BlockNumber,
		DepositedAt: result.Deposit.DepositedAt,
	}
	if err := bus.Publish(ctx, eventbus.TopicStakeDeposited, event); err != nil {
		log.Printf("Failed to publish deposit %s: %s", result.Deposit.TxHash, err.Error())
	}
}

func publishWithdrawal(ctx context.Context, result *index.WithdrawalResult) {
	event := eventbus.WithdrawalSettled{
		TxHash:        string(result.Withdrawal.TxHash),
		AccountID:     result.Withdrawal.AccountID,
		Staker:        string(result.Withdrawal.Staker),
		Pool:          string(result.Withdrawal.Pool),
		Amount:        result.Withdrawal.Amount,
		SharesRemoved: result.Withdrawal.SharesRemoved,
		BlockNumber:   result.Withdrawal.BlockNumber,
		WithdrawnAt:   result.Withdrawal.WithdrawnAt,
	}
	if err := bus.Publish(ctx, eventbus.TopicStakeWithdrawn, event); err != nil {
		log.Printf("Failed to publish withdrawal %s: %s", result.Withdrawal.TxHash, err.Error())
	}
}

func ExtractParam(ctx *fiber.Ctx, header string, query string) (string, bool) {
	if val := ctx.GetReqHeaders()[header]; len(val) > 0 {
		return val[0], true
	}
	if val, ok := ctx.Queries()[query]; len(query) > 0 && ok {
		return val, true
	}
	return ``, false
}

func GetRequestSettings(c *fiber.Ctx, settings *Settings) index.RequestSettings {
	request_settings := settings.Request
	if value_str, ok := ExtractParam(c, "X-Timeout", "x_timeout"); ok {
		if value, err := strconv.ParseInt(value_str, 10, 32); err == nil {
			value = min(value, 3000)
			request_settings.Timeout = time.Duration(value) * time.Millisecond
		}
	}
	return request_settings
}

func ErrorHandlerFunc(ctx *fiber.Ctx, err error) error {
	ip := ctx.IP()
	if ips := ctx.IPs(); len(ips) > 0 {
		ip = ips[0]
	}

	var overclaim *ledger.OverclaimError
	var insufficient *ledger.InsufficientBalanceError
	switch {
	case errors.As(err, &overclaim):
		return ctx.Status(fiber.StatusConflict).JSON(map[string]string{"error": overclaim.Error()})
	case errors.As(err, &insufficient):
		return ctx.Status(fiber.StatusConflict).JSON(map[string]string{"error": insufficient.Error()})
	}

	switch e := err.(type) {
	case index.IndexError:
		if e.Code != 404 && e.Code != 409 {
			err_msg := strings.ReplaceAll(err.Error(), "\n", "\\n")
			log.Printf("Code: %d Path: %s IP: %s Queries: %v Body: %s Error: %s",
				e.Code, ctx.Path(), ip, ctx.Queries(), string(ctx.Body()), err_msg)
		}
		return ctx.Status(e.Code).JSON(e)
	default:
		log.Printf("Path: %s IP: %s Queries: %v Body: %s Error: %s", ctx.Path(), ip, ctx.Queries(), string(ctx.Body()), err.Error())
		resp := map[string]string{}
		resp["error"] = fmt.Sprintf("internal server error: %s", err.Error())
		return ctx.Status(fiber.StatusInternalServerError).JSON(resp)
	}
}

func main() {
	var timeout_ms int
	var default_limit int
	var max_limit int
	flag.StringVar(&settings.PgDsn, "pg", "postgresql://localhost:5432", "PostgreSQL connection string")
	flag.StringVar(&settings.RedisDsn, "redis", "redis://localhost:6379/0", "Redis connection string")
	flag.StringVar(&settings.ReplDsn, "repl", "", "PostgreSQL replication connection string. Empty disables change streaming")
	flag.StringVar(&settings.Slot, "slot", "", "Replication slot name")
	flag.StringVar(&settings.Publication, "publication", "", "Publication name")
	flag.BoolVar(&settings.TemporarySlot, "temp-slot", false, "Create a temporary replication slot")
	flag.IntVar(&settings.MaxConns, "maxconns", 100, "PostgreSQL max connections")
	flag.IntVar(&settings.MinConns, "minconns", 0, "PostgreSQL min connections")
	flag.StringVar(&settings.Bind, "bind", ":8000", "Bind address")
	flag.StringVar(&settings.InstanceName, "name", "Go", "Instance name to show in Swagger UI")
	flag.BoolVar(&settings.Prefork, "prefork", false, "Prefork workers")
	flag.BoolVar(&settings.Debug, "debug", false, "Run service in debug mode")
	flag.BoolVar(&settings.CreateTables, "create-tables", false, "Create tables on startup")
	flag.BoolVar(&settings.Preload, "preload", false, "Preload ledger snapshots into the cache on startup")
	flag.IntVar(&timeout_ms, "query-timeout", 3000, "Query timeout in milliseconds")
	flag.IntVar(&default_limit, "default-limit", 100, "Default value for limit")
	flag.IntVar(&max_limit, "max-limit", 1000, "Maximum value for limit")
	flag.Parse()
	settings.Request.Timeout = time.Duration(timeout_ms) * time.Millisecond
	settings.Request.DefaultLimit = int32(default_limit)
	settings.Request.MaxLimit = int32(max_limit)

	if settings.Debug {
		pp.Println(settings)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var err error
	pool, err = index.NewDbClient(settings.PgDsn, settings.MaxConns, settings.MinConns)
	if err != nil {
		log.Fatal(err)
		os.Exit(63)
	}

	redis_opts, err := redis.ParseURL(settings.RedisDsn)
	if err != nil {
		log.Fatalf("Failed to parse Redis connection string: %s", err.Error())
	}
	redisClient = redis.NewClient(redis_opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %s", err.Error())
	}

	caches = cache.NewManager(redisClient)
	bus = eventbus.NewRedisBus(redisClient)
	preloader = loader.New(pool, caches)

	// preload and replication run once, in the parent process
	if !fiber.IsChild() {
		if settings.CreateTables {
			if err := pool.CreateTables(ctx); err != nil {
				log.Fatalf("Failed to create tables: %s", err.Error())
			}
		}
		if settings.Preload {
			go func() {
				if err := preloader.LoadAll(ctx); err != nil {
					log.Printf("Warning: cache preload failed: %s", err.Error())
				}
			}()
		}
		if len(settings.ReplDsn) > 0 {
			replicator, err = repl.NewReplicator(repl.Config{
				ConnectionString:  settings.ReplDsn,
				SlotName:          settings.Slot,
				PublicationName:   settings.Publication,
				TemporarySlot:     settings.TemporarySlot,
				CreatePublication: true,
			})
			if err != nil {
				log.Fatalf("Failed to create replicator: %s", err.Error())
			}
			handler := NewHandler(caches, pool, bus)
			go handler.HandleEvents(ctx, replicator.Events())
			go func() {
				if err := replicator.Start(ctx); err != nil {
					log.Fatalf("Replication failed: %s", err.Error())
				}
			}()
		}
	}

	// web server
	config := fiber.Config{
		AppName:        "FBT Ledger API",
		Concurrency:    256 * 1024,
		Prefork:        settings.Prefork,
		ErrorHandler:   ErrorHandlerFunc,
		ReadBufferSize: 1048576,
	}
	app := fiber.New(config)

	// converters
	fiber.SetParserDecoder(fiber.ParserConfig{
		IgnoreUnknownKeys: true,
		ParserType: []fiber.ParserType{
			{Customtype: index.HashType(""), Converter: index.HashConverter},
			{Customtype: index.AccountAddress(""), Converter: index.AccountAddressConverter},
		},
		ZeroEmpty: true,
	})

	// endpoints
	app.Use("/api/v1/", func(c *fiber.Ctx) error {
		c.Accepts("application/json")
		start := time.Now()
		err := c.Next()
		stop := time.Now()
		c.Append("Server-timing", fmt.Sprintf("app;dur=%v", stop.Sub(start).String()))
		return err
	})
	if settings.Debug {
		app.Use(pprof.New())
	}

	// healthcheck
	app.Get("/healthcheck", HealthCheck)

	// vesting
	app.Get("/api/v1/vesting/accounts", GetVestingAccounts)
	app.Get("/api/v1/vesting/accounts/:id", GetVestingAccount)
	app.Get("/api/v1/vesting/summary", GetVestingSummary)
	app.Get("/api/v1/vesting/claims", GetVestingClaims)
	app.Post("/api/v1/vesting/grants", PostVestingGrant)
	app.Post("/api/v1/vesting/claims", PostVestingClaim)

	// staking
	app.Get("/api/v1/staking/accounts", GetStakeAccounts)
	app.Get("/api/v1/staking/accounts/:id", GetStakeAccount)
	app.Get("/api/v1/staking/deposits", GetStakeDeposits)
	app.Get("/api/v1/staking/withdrawals", GetStakeWithdrawals)
	app.Post("/api/v1/staking/deposits", PostStakeDeposit)
	app.Post("/api/v1/staking/withdrawals", PostStakeWithdrawal)

	// reconciliation
	app.Get("/api/v1/reconciliation/events", GetReconciliationEvents)

	// event stream
	app.Use("/api/v1/events/ws", WsUpgrade)
	app.Get("/api/v1/events/ws", WsEvents())

	// redirect
	app.Use(redirect.New(redirect.Config{
		Rules: map[string]string{
			"/": "/api/v1/index.html",
		},
		StatusCode: 301,
	}))

	// swagger
	var swagger_config = swagger.Config{
		Title:           "FBT Ledger (" + settings.InstanceName + ") - Swagger UI",
		Layout:          "BaseLayout",
		DeepLinking:     true,
		TryItOutEnabled: true,
	}
	app.Get("/api/v1/*", swagger.New(swagger_config))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
		if replicator != nil {
			replicator.Close()
		}
		app.Shutdown()
	}()

	err = app.Listen(settings.Bind)
	log.Fatal(err)
}
