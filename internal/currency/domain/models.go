// Package domain holds the static currency table used to convert base-unit rates.
package domain

import (
	"sort"
	"strings"
)

// Currency is one entry of the conversion table.
type Currency struct {
	Code       string  `json:"code"`
	Multiplier float64 `json:"multiplier"`
	IsBase     bool    `json:"is_base,omitempty"`
}

// Table maps a currency code to its multiplier against the base unit.
// A Table never changes after construction; lookups of unknown codes fail
// instead of falling back to a default.
type Table struct {
	base    string
	entries map[string]float64
}

func NewTable(base string, entries map[string]float64) Table {
	copied := make(map[string]float64, len(entries))
	for code, multiplier := range entries {
		copied[NormalizeCode(code)] = multiplier
	}
	return Table{
		base:    NormalizeCode(base),
		entries: copied,
	}
}

func (t Table) Base() string { return t.base }

func (t Table) Lookup(code string) (float64, bool) {
	multiplier, ok := t.entries[NormalizeCode(code)]
	return multiplier, ok
}

// Currencies lists the table sorted by code.
func (t Table) Currencies() []Currency {
	out := make([]Currency, 0, len(t.entries))
	for code, multiplier := range t.entries {
		out = append(out, Currency{
			Code:       code,
			Multiplier: multiplier,
			IsBase:     code == t.base,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
