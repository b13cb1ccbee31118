package index

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

func (a AccountAddress) String() string {
	return string(a)
}

func (h HashType) String() string {
	return string(h)
}

// ParseAccountAddress accepts an address in any common form (raw,
// bounceable, URL-safe bounceable) and normalizes it to raw
// workchain:HEX form, which is the canonical form everywhere below the
// API surface.
func ParseAccountAddress(value string) (AccountAddress, error) {
	addr, err := address.ParseAddr(value)
	if err != nil {
		valueURL := strings.ReplaceAll(value, "+", "-")
		valueURL = strings.ReplaceAll(valueURL, "/", "_")
		addr, err = address.ParseAddr(valueURL)
	}
	if err != nil {
		addr, err = address.ParseRawAddr(strings.TrimSpace(value))
	}
	if err != nil {
		return "", fmt.Errorf("invalid account address: '%s'", value)
	}
	res := fmt.Sprintf("%d:%s", addr.Workchain(), strings.ToUpper(hex.EncodeToString(addr.Data())))
	return AccountAddress(res), nil
}

// ParseHash accepts a transaction hash as 64 hex characters or 44 base64
// characters (standard or URL-safe) and normalizes it to standard base64.
func ParseHash(value string) (HashType, error) {
	value = strings.TrimSpace(value)
	if len(value) == 64 {
		if res, err := hex.DecodeString(value); err == nil {
			return HashType(base64.StdEncoding.EncodeToString(res)), nil
		}
	}
	if len(value) == 44 {
		if res, err := base64.StdEncoding.DecodeString(value); err == nil {
			return HashType(base64.StdEncoding.EncodeToString(res)), nil
		}
		if res, err := base64.URLEncoding.DecodeString(value); err == nil {
			return HashType(base64.StdEncoding.EncodeToString(res)), nil
		}
	}
	return "", fmt.Errorf("invalid hash: '%s'", value)
}

// AccountAddressConverter plugs ParseAccountAddress into fiber's query
// parameter parser.
func AccountAddressConverter(value string) reflect.Value {
	res, err := ParseAccountAddress(value)
	if err != nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(res)
}

// HashConverter plugs ParseHash into fiber's query parameter parser.
func HashConverter(value string) reflect.Value {
	res, err := ParseHash(value)
	if err != nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(res)
}
