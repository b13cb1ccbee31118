package ledger

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

var zeroInt = big.NewInt(0)

// Money is an arbitrary-precision amount in the smallest token unit.
// The zero value is usable and equals 0. Arithmetic methods return new
// values; a Money is never mutated in place, so snapshots holding it can
// be copied freely.
type Money struct {
	i *big.Int
}

// NewMoney returns the Money for the given int64 amount.
func NewMoney(v int64) Money {
	return Money{i: big.NewInt(v)}
}

// MoneyFromString parses a base-10 integer string into Money.
func MoneyFromString(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("empty amount")
	}
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Money{}, fmt.Errorf("invalid amount: %q", s)
	}
	return Money{i: i}, nil
}

// MoneyFromBig copies v into a Money. A nil v yields zero.
func MoneyFromBig(v *big.Int) Money {
	if v == nil {
		return Money{}
	}
	return Money{i: new(big.Int).Set(v)}
}

func (m Money) big() *big.Int {
	if m.i == nil {
		return zeroInt
	}
	return m.i
}

// Add returns m + n.
func (m Money) Add(n Money) Money {
	return Money{i: new(big.Int).Add(m.big(), n.big())}
}

// Sub returns m - n.
func (m Money) Sub(n Money) Money {
	return Money{i: new(big.Int).Sub(m.big(), n.big())}
}

// Cmp compares m and n: -1 if m < n, 0 if equal, +1 if m > n.
func (m Money) Cmp(n Money) int {
	return m.big().Cmp(n.big())
}

// Sign returns -1, 0 or +1 depending on the sign of the amount.
func (m Money) Sign() int {
	return m.big().Sign()
}

// IsZero reports whether the amount is exactly 0.
func (m Money) IsZero() bool {
	return m.big().Sign() == 0
}

// Min returns the smaller of m and n.
func (m Money) Min(n Money) Money {
	if m.Cmp(n) <= 0 {
		return m
	}
	return n
}

// mulDivFloor computes floor(m * mul / div) without leaving integer
// arithmetic. div must be non-zero.
func mulDivFloor(m Money, mul, div int64) Money {
	r := new(big.Int).Mul(m.big(), big.NewInt(mul))
	r.Quo(r, big.NewInt(div))
	return Money{i: r}
}

func (m Money) String() string {
	return m.big().String()
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted decimal strings and bare numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := MoneyFromString(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (m Money) EncodeMsgpack(e *msgpack.Encoder) error {
	return e.EncodeString(m.String())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (m *Money) DecodeMsgpack(d *msgpack.Decoder) error {
	s, err := d.DecodeString()
	if err != nil {
		return err
	}
	v, err := MoneyFromString(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Scan implements sql.Scanner. Postgres NUMERIC columns arrive in text
// form; BIGINT columns arrive as int64.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Money{}
		return nil
	case int64:
		*m = NewMoney(v)
		return nil
	case string:
		parsed, err := MoneyFromString(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case []byte:
		parsed, err := MoneyFromString(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
}

// Value implements driver.Valuer, emitting the decimal string form.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}
