package repl

import (
	"errors"
	"time"
)

const (
	defaultSlotName        = "fbt_ledger_slot"
	defaultPublicationName = "fbt_ledger_pub"
	defaultStandbyTimeout  = 10 * time.Second
	defaultEventBuffer     = 100
)

// DefaultTables returns the ledger tables the cache layer follows.
func DefaultTables() []string {
	return []string{
		"public.vesting_accounts",
		"public.stake_accounts",
		"public.reconciliation_events",
	}
}

// Config drives a Replicator. ConnectionString must carry
// replication=database so the connection speaks the replication
// protocol.
type Config struct {
	ConnectionString string

	// SlotName and PublicationName identify the replication slot and
	// publication; both are created on start if missing.
	SlotName        string
	PublicationName string

	// Tables lists watched tables in "schema.table" form. Empty means
	// DefaultTables().
	Tables []string

	// TemporarySlot drops the slot when the connection closes. Useful
	// for ephemeral instances that must not hold back WAL.
	TemporarySlot bool

	// CreatePublication creates the publication on start when it does
	// not exist yet.
	CreatePublication bool

	StandbyMessageTimeout time.Duration
	EventBufferSize       int
}

func (c *Config) Validate() error {
	if c.ConnectionString == "" {
		return errors.New("ConnectionString is required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.SlotName == "" {
		c.SlotName = defaultSlotName
	}
	if c.PublicationName == "" {
		c.PublicationName = defaultPublicationName
	}
	if len(c.Tables) == 0 {
		c.Tables = DefaultTables()
	}
	if c.StandbyMessageTimeout == 0 {
		c.StandbyMessageTimeout = defaultStandbyTimeout
	}
	if c.EventBufferSize == 0 {
		c.EventBufferSize = defaultEventBuffer
	}
}

type tableSet map[string]struct{}

func (c *Config) buildTableSet() tableSet {
	set := make(tableSet, len(c.Tables))
	for _, t := range c.Tables {
		set[t] = struct{}{}
	}
	return set
}

func (ts tableSet) contains(table string) bool {
	_, ok := ts[table]
	return ok
}
