package repl

import (
	"fmt"
	"time"

	"github.com/jackc/pglogrepl"
	"github.com/jackc/pgx/v5/pgtype"
)

// Operation is the kind of row change an event describes.
type Operation string

const (
	Insert Operation = "INSERT"
	Update Operation = "UPDATE"
	Delete Operation = "DELETE"
)

// ChangeEvent is one decoded row change from the replication stream.
// Data holds the new row for inserts and updates; OldData holds the
// previous row for updates and deletes when the table's replica
// identity provides it. NUMERIC columns arrive as decimal strings.
type ChangeEvent struct {
	Table     string
	Operation Operation
	Data      map[string]any
	OldData   map[string]any
	Timestamp time.Time
	Xid       uint32
}

// decoder turns pgoutput protocol V2 messages into ChangeEvents.
type decoder struct {
	relations map[uint32]*pglogrepl.RelationMessageV2
	typeMap   *pgtype.Map
	tableSet  tableSet
	inStream  bool
}

func newDecoder(tables tableSet) *decoder {
	return &decoder{
		relations: make(map[uint32]*pglogrepl.RelationMessageV2),
		typeMap:   pgtype.NewMap(),
		tableSet:  tables,
	}
}

// decode parses one WAL message. It returns nil for messages that carry
// no row change (relation metadata, transaction control, stream
// control) and for tables outside the watch list.
func (d *decoder) decode(walData []byte) (*ChangeEvent, error) {
	logicalMsg, err := pglogrepl.ParseV2(walData, d.inStream)
	if err != nil {
		return nil, fmt.Errorf("parse logical replication message: %w", err)
	}

	switch msg := logicalMsg.(type) {
	case *pglogrepl.RelationMessageV2:
		d.relations[msg.RelationID] = msg
		return nil, nil

	case *pglogrepl.StreamStartMessageV2:
		d.inStream = true
		return nil, nil

	case *pglogrepl.StreamStopMessageV2:
		d.inStream = false
		return nil, nil

	case *pglogrepl.InsertMessageV2:
		return d.rowEvent(msg.RelationID, Insert, msg.Tuple, nil, msg.Xid)

	case *pglogrepl.UpdateMessageV2:
		return d.rowEvent(msg.RelationID, Update, msg.NewTuple, msg.OldTuple, msg.Xid)

	case *pglogrepl.DeleteMessageV2:
		return d.rowEvent(msg.RelationID, Delete, nil, msg.OldTuple, msg.Xid)

	default:
		return nil, nil
	}
}

func (d *decoder) rowEvent(relationID uint32, op Operation, newTuple, oldTuple *pglogrepl.TupleData, xid uint32) (*ChangeEvent, error) {
	rel, ok := d.relations[relationID]
	if !ok {
		return nil, fmt.Errorf("unknown relation ID %d", relationID)
	}

	table := fmt.Sprintf("%s.%s", rel.Namespace, rel.RelationName)
	if !d.tableSet.contains(table) {
		return nil, nil
	}

	data, err := d.decodeTuple(newTuple, rel)
	if err != nil {
		return nil, fmt.Errorf("decode %s tuple for %s: %w", op, table, err)
	}
	oldData, err := d.decodeTuple(oldTuple, rel)
	if err != nil {
		return nil, fmt.Errorf("decode old %s tuple for %s: %w", op, table, err)
	}

	return &ChangeEvent{
		Table:     table,
		Operation: op,
		Data:      data,
		OldData:   oldData,
		Timestamp: time.Now(),
		Xid:       xid,
	}, nil
}

func (d *decoder) decodeTuple(tuple *pglogrepl.TupleData, rel *pglogrepl.RelationMessageV2) (map[string]any, error) {
	if tuple == nil {
		return nil, nil
	}

	values := make(map[string]any, len(tuple.Columns))
	for idx, col := range tuple.Columns {
		if idx >= len(rel.Columns) {
			break
		}
		name := rel.Columns[idx].Name

		switch col.DataType {
		case 'n':
			values[name] = nil
		case 'u':
			// unchanged TOAST value, not present in the stream
			continue
		case 't':
			val, err := d.decodeColumn(col.Data, rel.Columns[idx].DataType)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", name, err)
			}
			values[name] = val
		}
	}

	return values, nil
}

func (d *decoder) decodeColumn(data []byte, dataType uint32) (any, error) {
	// money columns stay textual; consumers parse them into ledger.Money
	if dataType == pgtype.NumericOID {
		return string(data), nil
	}
	if dt, ok := d.typeMap.TypeForOID(dataType); ok {
		return dt.Codec.DecodeValue(d.typeMap, dataType, pgtype.TextFormatCode, data)
	}
	return string(data), nil
}
