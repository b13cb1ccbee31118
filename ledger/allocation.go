package ledger

import (
	"database/sql/driver"
	"fmt"
)

// AllocationCategory labels a grant by its allocation round. Rounds are
// identified by their canonical vesting duration.
type AllocationCategory uint8

const (
	AllocationUnknown AllocationCategory = iota
	AllocationPublicSale
	AllocationCommunity
	AllocationAdvisors
	AllocationEcosystem
	AllocationTeam
)

var allocationNames = [...]string{
	"unknown",
	"public_sale",
	"community",
	"advisors",
	"ecosystem",
	"team",
}

const daySeconds = 24 * 60 * 60

var durationCategories = map[int64]AllocationCategory{
	90 * daySeconds:  AllocationPublicSale,
	180 * daySeconds: AllocationCommunity,
	360 * daySeconds: AllocationAdvisors,
	540 * daySeconds: AllocationEcosystem,
	720 * daySeconds: AllocationTeam,
}

// ClassifyDuration maps a vesting duration to its allocation round.
// Durations outside the canonical rounds return AllocationUnknown; they
// are never silently assigned a business category.
func ClassifyDuration(durationSeconds int64) AllocationCategory {
	if c, ok := durationCategories[durationSeconds]; ok {
		return c
	}
	return AllocationUnknown
}

func (c AllocationCategory) String() string {
	if int(c) < len(allocationNames) {
		return allocationNames[c]
	}
	return allocationNames[AllocationUnknown]
}

// ParseAllocationCategory resolves a category name. Unrecognized names
// return AllocationUnknown and an error.
func ParseAllocationCategory(s string) (AllocationCategory, error) {
	for i, name := range allocationNames {
		if name == s {
			return AllocationCategory(i), nil
		}
	}
	return AllocationUnknown, fmt.Errorf("unknown allocation category: %q", s)
}

// MarshalJSON encodes the category as its name.
func (c AllocationCategory) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON decodes a category name. Unrecognized names decode to
// AllocationUnknown without failing, so old readers survive new rounds.
func (c *AllocationCategory) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseAllocationCategory(s)
	if err != nil {
		*c = AllocationUnknown
		return nil
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner for TEXT columns.
func (c *AllocationCategory) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = AllocationUnknown
		return nil
	case string:
		parsed, _ := ParseAllocationCategory(v)
		*c = parsed
		return nil
	case []byte:
		parsed, _ := ParseAllocationCategory(string(v))
		*c = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into AllocationCategory", src)
	}
}

// Value implements driver.Valuer, emitting the category name.
func (c AllocationCategory) Value() (driver.Value, error) {
	return c.String(), nil
}
