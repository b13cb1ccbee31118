// Package repl streams ledger table changes out of Postgres logical
// replication. The root service feeds the resulting ChangeEvents into
// its cache handler.
package repl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pglogrepl"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgproto3"
)

// Replicator owns one replication connection and emits decoded row
// changes on Events until Start returns.
type Replicator struct {
	config   Config
	events   chan ChangeEvent
	tableSet tableSet
	conn     *pgconn.PgConn
	decoder  *decoder
	lastMsg  atomic.Int64
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()

	tables := cfg.buildTableSet()
	r := &Replicator{
		config:   cfg,
		events:   make(chan ChangeEvent, cfg.EventBufferSize),
		tableSet: tables,
		decoder:  newDecoder(tables),
	}
	r.lastMsg.Store(time.Now().UnixMilli())
	return r, nil
}

// Events emits decoded row changes. The channel is closed when Start
// returns.
func (r *Replicator) Events() <-chan ChangeEvent {
	return r.events
}

// TimeSinceLastMsg reports how long the stream has been silent. Health
// checks use it as a staleness probe.
func (r *Replicator) TimeSinceLastMsg() time.Duration {
	return time.Since(time.UnixMilli(r.lastMsg.Load()))
}

// Start connects, ensures the publication and slot exist, then blocks
// consuming the stream until the context is cancelled or the connection
// fails.
func (r *Replicator) Start(ctx context.Context) error {
	defer close(r.events)

	conn, err := pgconn.Connect(ctx, r.config.ConnectionString)
	if err != nil {
		return fmt.Errorf("connect for replication: %w", err)
	}
	r.conn = conn
	defer r.conn.Close(ctx)

	if r.config.CreatePublication {
		if err := r.ensurePublication(ctx); err != nil {
			return err
		}
	}
	if err := r.ensureSlot(ctx); err != nil {
		return err
	}

	sysident, err := pglogrepl.IdentifySystem(ctx, r.conn)
	if err != nil {
		return fmt.Errorf("identify system: %w", err)
	}

	pluginArgs := []string{
		"proto_version '2'",
		fmt.Sprintf("publication_names '%s'", r.config.PublicationName),
		"streaming 'true'",
	}
	err = pglogrepl.StartReplication(ctx, r.conn, r.config.SlotName, sysident.XLogPos,
		pglogrepl.StartReplicationOptions{PluginArgs: pluginArgs})
	if err != nil {
		return fmt.Errorf("start replication: %w", err)
	}
	r.lastMsg.Store(time.Now().UnixMilli())

	return r.consume(ctx, sysident.XLogPos)
}

// Close tears down the replication connection. Safe to call while Start
// is blocked in consume.
func (r *Replicator) Close() error {
	if r.conn != nil {
		return r.conn.Close(context.Background())
	}
	return nil
}

func (r *Replicator) ensurePublication(ctx context.Context) error {
	sql := fmt.Sprintf("CREATE PUBLICATION %s FOR TABLE %s;",
		r.config.PublicationName, strings.Join(r.config.Tables, ", "))
	result := r.conn.Exec(ctx, sql)
	if _, err := result.ReadAll(); err != nil && !isDuplicateObject(err) {
		return fmt.Errorf("create publication: %w", err)
	}
	return nil
}

func (r *Replicator) ensureSlot(ctx context.Context) error {
	_, err := pglogrepl.CreateReplicationSlot(ctx, r.conn, r.config.SlotName, "pgoutput",
		pglogrepl.CreateReplicationSlotOptions{Temporary: r.config.TemporarySlot})
	if err != nil && !isDuplicateObject(err) {
		return fmt.Errorf("create replication slot: %w", err)
	}
	return nil
}

// isDuplicateObject matches SQLSTATE 42710, raised when the publication
// or slot already exists.
func isDuplicateObject(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42710"
}

func (r *Replicator) consume(ctx context.Context, startPos pglogrepl.LSN) error {
	clientXLogPos := startPos
	nextStandbyDeadline := time.Now().Add(r.config.StandbyMessageTimeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if time.Now().After(nextStandbyDeadline) {
			err := pglogrepl.SendStandbyStatusUpdate(ctx, r.conn, pglogrepl.StandbyStatusUpdate{
				WALWritePosition: clientXLogPos,
			})
			if err != nil {
				return fmt.Errorf("send standby status: %w", err)
			}
			nextStandbyDeadline = time.Now().Add(r.config.StandbyMessageTimeout)
		}

		msgCtx, cancel := context.WithDeadline(ctx, nextStandbyDeadline)
		rawMsg, err := r.conn.ReceiveMessage(msgCtx)
		cancel()
		if err != nil {
			if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
				continue
			}
			return fmt.Errorf("receive message: %w", err)
		}

		if errMsg, ok := rawMsg.(*pgproto3.ErrorResponse); ok {
			return fmt.Errorf("postgres error %s: %s", errMsg.Code, errMsg.Message)
		}
		r.lastMsg.Store(time.Now().UnixMilli())

		copyData, ok := rawMsg.(*pgproto3.CopyData)
		if !ok {
			continue
		}

		switch copyData.Data[0] {
		case pglogrepl.PrimaryKeepaliveMessageByteID:
			pkm, err := pglogrepl.ParsePrimaryKeepaliveMessage(copyData.Data[1:])
			if err != nil {
				return fmt.Errorf("parse keepalive: %w", err)
			}
			if pkm.ServerWALEnd > clientXLogPos {
				clientXLogPos = pkm.ServerWALEnd
			}
			if pkm.ReplyRequested {
				nextStandbyDeadline = time.Time{}
			}

		case pglogrepl.XLogDataByteID:
			xld, err := pglogrepl.ParseXLogData(copyData.Data[1:])
			if err != nil {
				return fmt.Errorf("parse xlog data: %w", err)
			}

			event, err := r.decoder.decode(xld.WALData)
			if err != nil {
				return fmt.Errorf("decode wal data: %w", err)
			}
			if event != nil {
				select {
				case r.events <- *event:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			if xld.WALStart > clientXLogPos {
				clientXLogPos = xld.WALStart
			}
		}
	}
}
