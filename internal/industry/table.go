// Package industry resolves valuation multiples from industry reference data.
package industry

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"
)

// ErrReferenceData is returned when the multiple reference table cannot be
// read, parsed or validated.
var ErrReferenceData = errors.New("industry reference data unavailable")

// Range is a {min, max} valuation-multiple band.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Entry holds the base and optional premium bands for one reference key.
type Entry struct {
	Base    Range    `yaml:"base_range" json:"base_range"`
	Premium *Range   `yaml:"premium_range,omitempty" json:"premium_range,omitempty"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Spec is the on-disk shape of the reference table.
type Spec struct {
	DefaultMultiple   float64            `yaml:"default_multiple" json:"default_multiple"`
	Multiples         map[string]Entry   `yaml:"multiples" json:"multiples"`
	CompositeSectors  map[string]string  `yaml:"composite_sectors" json:"composite_sectors"`
	SectorMultipliers map[string]float64 `yaml:"sector_multipliers" json:"sector_multipliers"`
}

// Table is the immutable, validated reference table. It is safe for
// concurrent readers; nothing mutates it after NewTable returns.
type Table struct {
	defaultMultiple   float64
	entries           map[string]Entry
	aliases           map[string]string
	compositeSectors  map[string]string
	sectorMultipliers map[string]float64
	version           string
}

// NewTable validates spec and builds a Table from a private copy of it.
func NewTable(spec Spec) (*Table, error) {
	if spec.DefaultMultiple <= 0 {
		return nil, referenceError("default_multiple must be positive, got %v", spec.DefaultMultiple)
	}

	t := &Table{
		defaultMultiple:   spec.DefaultMultiple,
		entries:           make(map[string]Entry, len(spec.Multiples)),
		aliases:           make(map[string]string),
		compositeSectors:  make(map[string]string, len(spec.CompositeSectors)),
		sectorMultipliers: make(map[string]float64, len(spec.SectorMultipliers)),
	}

	for rawKey, e := range spec.Multiples {
		key := tableKey(rawKey)
		if key == "" {
			return nil, referenceError("empty multiple key %q", rawKey)
		}
		if err := validateRange(key, "base_range", e.Base); err != nil {
			return nil, err
		}
		if e.Premium != nil {
			if err := validateRange(key, "premium_range", *e.Premium); err != nil {
				return nil, err
			}
			p := *e.Premium
			e.Premium = &p
		}
		e.Aliases = append([]string(nil), e.Aliases...)
		t.entries[key] = e
	}

	for key, e := range t.entries {
		for _, a := range e.Aliases {
			alias := NormalizeDescription(a)
			if alias == "" {
				continue
			}
			if prev, ok := t.aliases[alias]; ok && prev != key {
				return nil, referenceError("alias %q claimed by both %q and %q", a, prev, key)
			}
			t.aliases[alias] = key
		}
	}

	for prefix, target := range spec.CompositeSectors {
		key := tableKey(target)
		if _, ok := t.entries[key]; !ok {
			return nil, referenceError("composite sector %q points at unknown key %q", prefix, target)
		}
		t.compositeSectors[strings.TrimSpace(prefix)] = key
	}

	for prefix, m := range spec.SectorMultipliers {
		if m <= 0 {
			return nil, referenceError("sector multiplier for %q must be positive, got %v", prefix, m)
		}
		t.sectorMultipliers[strings.TrimSpace(prefix)] = m
	}

	// Map keys marshal sorted, so equal specs share a version.
	data, err := json.Marshal(spec)
	if err != nil {
		return nil, referenceError("encode multiples table: %v", err)
	}
	t.version = fmt.Sprintf("%016x", xxhash.Sum64(data))

	return t, nil
}

func validateRange(key, name string, r Range) error {
	if r.Min <= 0 {
		return referenceError("%s.%s.min must be positive, got %v", key, name, r.Min)
	}
	if r.Max < r.Min {
		return referenceError("%s.%s max %v is below min %v", key, name, r.Max, r.Min)
	}
	return nil
}

// Version identifies the table contents. Any change to the reference data
// yields a different version.
func (t *Table) Version() string { return t.version }

// DefaultMultiple is the fixed multiple used when nothing else resolves.
func (t *Table) DefaultMultiple() float64 { return t.defaultMultiple }

// Lookup returns the entry stored under key. Numeric codes are matched
// verbatim; anything else is matched as a normalized description or alias.
func (t *Table) Lookup(key string) (Entry, string, bool) {
	k := tableKey(key)
	if e, ok := t.entries[k]; ok {
		return e, k, true
	}
	if target, ok := t.aliases[k]; ok {
		return t.entries[target], target, true
	}
	return Entry{}, "", false
}

// CompositeSector returns the sector-default key for a 2-digit prefix.
func (t *Table) CompositeSector(prefix string) (string, bool) {
	key, ok := t.compositeSectors[prefix]
	return key, ok
}

// SectorMultiplier returns the heuristic base multiplier for a 2-digit prefix.
func (t *Table) SectorMultiplier(prefix string) (float64, bool) {
	m, ok := t.sectorMultipliers[prefix]
	return m, ok
}

// Len reports the number of keyed bands.
func (t *Table) Len() int { return len(t.entries) }

var separatorRun = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// NormalizeDescription folds a free-text industry description into a table
// key: case-folded, with every run of non-alphanumerics collapsed to "_".
func NormalizeDescription(s string) string {
	// Casers carry state and are not shared across goroutines.
	s = cases.Fold().String(strings.TrimSpace(s))
	s = separatorRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// NormalizeCode strips whitespace and trailing dashes from a classification
// code ("5221--" -> "5221"). It returns "" when the result is not numeric.
func NormalizeCode(code string) string {
	code = strings.TrimRight(strings.TrimSpace(code), "-")
	if code == "" {
		return ""
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return code
}

func tableKey(k string) string {
	if code := NormalizeCode(k); code != "" {
		return code
	}
	return NormalizeDescription(k)
}
