package ledger

import (
	"encoding/json"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestMoneyFromString(t *testing.T) {
	m, err := MoneyFromString("1000000000000000000000000")
	if err != nil {
		t.Fatalf("MoneyFromString: %v", err)
	}
	if m.String() != "1000000000000000000000000" {
		t.Errorf("roundtrip: got %s", m)
	}

	for _, bad := range []string{"", "12.5", "abc", "0x10"} {
		if _, err := MoneyFromString(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestMoneyZeroValue(t *testing.T) {
	var m Money
	if !m.IsZero() {
		t.Error("zero value should equal 0")
	}
	if m.String() != "0" {
		t.Errorf("zero value string: got %q", m.String())
	}
	if got := m.Add(NewMoney(5)); got.Cmp(NewMoney(5)) != 0 {
		t.Errorf("zero value Add: got %s", got)
	}
}

func TestMoneyArithmeticImmutable(t *testing.T) {
	a := NewMoney(100)
	b := NewMoney(30)

	if got := a.Sub(b); got.Cmp(NewMoney(70)) != 0 {
		t.Errorf("Sub: got %s", got)
	}
	if a.Cmp(NewMoney(100)) != 0 {
		t.Errorf("operand mutated: %s", a)
	}
	if got := a.Min(b); got.Cmp(b) != 0 {
		t.Errorf("Min: got %s", got)
	}
	if got := b.Min(a); got.Cmp(b) != 0 {
		t.Errorf("Min reversed: got %s", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(NewMoney(123456789))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"123456789"` {
		t.Errorf("marshal: got %s", data)
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"987654321"`), &fromString); err != nil {
		t.Fatalf("Unmarshal string: %v", err)
	}
	if fromString.Cmp(NewMoney(987654321)) != 0 {
		t.Errorf("unmarshal string: got %s", fromString)
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`42`), &fromNumber); err != nil {
		t.Fatalf("Unmarshal number: %v", err)
	}
	if fromNumber.Cmp(NewMoney(42)) != 0 {
		t.Errorf("unmarshal number: got %s", fromNumber)
	}
}

func TestMoneyMsgpack(t *testing.T) {
	type wrapper struct {
		Amount Money `msgpack:"amount"`
	}

	data, err := msgpack.Marshal(wrapper{Amount: NewMoney(1_000_000_000_000)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded wrapper
	if err := msgpack.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Amount.Cmp(NewMoney(1_000_000_000_000)) != 0 {
		t.Errorf("roundtrip: got %s", decoded.Amount)
	}
}

func TestMoneySQL(t *testing.T) {
	var m Money
	if err := m.Scan("123456"); err != nil {
		t.Fatalf("Scan string: %v", err)
	}
	if m.Cmp(NewMoney(123456)) != 0 {
		t.Errorf("scan string: got %s", m)
	}

	if err := m.Scan(int64(77)); err != nil {
		t.Fatalf("Scan int64: %v", err)
	}
	if m.Cmp(NewMoney(77)) != 0 {
		t.Errorf("scan int64: got %s", m)
	}

	if err := m.Scan([]byte("900")); err != nil {
		t.Fatalf("Scan bytes: %v", err)
	}
	if m.Cmp(NewMoney(900)) != 0 {
		t.Errorf("scan bytes: got %s", m)
	}

	if err := m.Scan(nil); err != nil {
		t.Fatalf("Scan nil: %v", err)
	}
	if !m.IsZero() {
		t.Errorf("scan nil: got %s, want 0", m)
	}

	v, err := NewMoney(55).Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "55" {
		t.Errorf("Value: got %v", v)
	}

	if err := m.Scan(3.14); err == nil {
		t.Error("expected error scanning float64")
	}
}
