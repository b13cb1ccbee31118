package index

import (
	"encoding/base64"
	"encoding/hex"
	"testing"
)

const (
	fundationBounceable = "EQDKbjIcfM6ezt8KjKJJLshZJJSqX7XOA4ff-W72r5gqPrHF"
	fundationRaw        = "0:CA6E321C7CCE9ECEDF0A8CA2492EC8592494AA5FB5CE0387DFF96EF6AF982A3E"
)

func TestParseAccountAddress(t *testing.T) {
	got, err := ParseAccountAddress(fundationBounceable)
	if err != nil {
		t.Fatalf("ParseAccountAddress(%s): %v", fundationBounceable, err)
	}
	if got != AccountAddress(fundationRaw) {
		t.Errorf("ParseAccountAddress(%s) = %s, want %s", fundationBounceable, got, fundationRaw)
	}

	got, err = ParseAccountAddress(fundationRaw)
	if err != nil {
		t.Fatalf("ParseAccountAddress(%s): %v", fundationRaw, err)
	}
	if got != AccountAddress(fundationRaw) {
		t.Errorf("raw form not preserved: got %s", got)
	}

	lower := "0:ca6e321c7cce9ecedf0a8ca2492ec8592494aa5fb5ce0387dff96ef6af982a3e"
	got, err = ParseAccountAddress(lower)
	if err != nil {
		t.Fatalf("ParseAccountAddress(%s): %v", lower, err)
	}
	if got != AccountAddress(fundationRaw) {
		t.Errorf("lowercase raw form not normalized: got %s", got)
	}

	for _, bad := range []string{"", "not-an-address", "0:123", "EQDKbjIcfM6ezt8KjKJJLshZJJSqX7XOA4ff"} {
		if _, err := ParseAccountAddress(bad); err == nil {
			t.Errorf("ParseAccountAddress(%q) expected error", bad)
		}
	}
}

func TestParseHash(t *testing.T) {
	raw, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if err != nil {
		t.Fatal(err)
	}
	std := base64.StdEncoding.EncodeToString(raw)
	url := base64.URLEncoding.EncodeToString(raw)

	got, err := ParseHash("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if err != nil {
		t.Fatalf("ParseHash hex form: %v", err)
	}
	if got != HashType(std) {
		t.Errorf("hex form: got %s, want %s", got, std)
	}

	got, err = ParseHash(std)
	if err != nil {
		t.Fatalf("ParseHash base64 form: %v", err)
	}
	if got != HashType(std) {
		t.Errorf("base64 form: got %s, want %s", got, std)
	}

	got, err = ParseHash(url)
	if err != nil {
		t.Fatalf("ParseHash base64url form: %v", err)
	}
	if got != HashType(std) {
		t.Errorf("base64url form: got %s, want %s", got, std)
	}

	for _, bad := range []string{"", "xyz", "zzzz02030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1exy"} {
		if _, err := ParseHash(bad); err == nil {
			t.Errorf("ParseHash(%q) expected error", bad)
		}
	}
}

func TestConverters(t *testing.T) {
	if v := AccountAddressConverter(fundationBounceable); !v.IsValid() {
		t.Errorf("AccountAddressConverter rejected %s", fundationBounceable)
	} else if v.Interface().(AccountAddress) != AccountAddress(fundationRaw) {
		t.Errorf("AccountAddressConverter returned %v", v.Interface())
	}
	if v := AccountAddressConverter("garbage"); v.IsValid() {
		t.Error("AccountAddressConverter accepted garbage")
	}
	if v := HashConverter("garbage"); v.IsValid() {
		t.Error("HashConverter accepted garbage")
	}
}
