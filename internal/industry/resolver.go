package industry

import "strings"

// Band selection and interpolation constants. The asymmetric denominators
// and the inclusive 4.0 premium threshold are fixed by existing reports.
const (
	PremiumThreshold   = 4.0
	premiumDenominator = 1.0
	baseDenominator    = 3.9

	sectorPrefixLen    = 2
	truncatedPrefixLen = 4
)

// Context is the industry classification supplied with an assessment.
type Context struct {
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Empty reports whether no usable industry information was supplied.
func (c Context) Empty() bool {
	return strings.TrimSpace(c.Code) == "" && strings.TrimSpace(c.Description) == ""
}

// Source names the resolution step that produced a multiple.
type Source string

const (
	SourceExact           Source = "exact"
	SourceDescription     Source = "description"
	SourcePrefix          Source = "prefix"
	SourceSectorDefault   Source = "sector_default"
	SourceSectorHeuristic Source = "sector_heuristic"
	SourceDefault         Source = "default"
)

// BandKind identifies which band of a matched entry was interpolated.
type BandKind string

const (
	BandPremium BandKind = "premium"
	BandBase    BandKind = "base"
)

// Resolution is the multiple chosen for an industry and performance score.
type Resolution struct {
	Multiple   float64  `json:"multiple"`
	Source     Source   `json:"source"`
	MatchedKey string   `json:"matched_key,omitempty"`
	Band       BandKind `json:"band,omitempty"`
}

// query is the normalized input every strategy sees.
type query struct {
	code        string // numeric classification code, "" if none
	key         string // non-numeric code used as a free-text key
	description string
	score       float64
}

// strategy is one step of the fallback chain. ok=false passes to the next.
type strategy func(t *Table, q query) (Resolution, bool)

// Resolver walks the fallback chain: exact code, free-text key, 4-digit
// prefix, composite-sector default, 2-digit heuristic, fixed default.
type Resolver struct {
	table      *Table
	strategies []strategy
}

// NewResolver builds a Resolver over t.
func NewResolver(t *Table) *Resolver {
	if t == nil {
		panic("nil Table provided to NewResolver")
	}
	return &Resolver{
		table: t,
		strategies: []strategy{
			exactCode,
			freeTextKey,
			truncatedPrefix,
			compositeSectorDefault,
			sectorHeuristic,
		},
	}
}

// Resolve returns the multiple for c at the given average driver score.
func (r *Resolver) Resolve(c Context, score float64) Resolution {
	if c.Empty() {
		return r.fallback()
	}

	q := query{
		code:        NormalizeCode(c.Code),
		description: NormalizeDescription(c.Description),
		score:       score,
	}
	if q.code == "" {
		q.key = NormalizeDescription(c.Code)
	}

	for _, s := range r.strategies {
		if res, ok := s(r.table, q); ok {
			return res
		}
	}
	return r.fallback()
}

func (r *Resolver) fallback() Resolution {
	return Resolution{Multiple: r.table.DefaultMultiple(), Source: SourceDefault}
}

func exactCode(t *Table, q query) (Resolution, bool) {
	for _, k := range []string{q.code, q.key} {
		if k == "" {
			continue
		}
		if e, key, ok := t.Lookup(k); ok {
			return matched(e, key, SourceExact, q.score), true
		}
	}
	return Resolution{}, false
}

func freeTextKey(t *Table, q query) (Resolution, bool) {
	if q.description == "" {
		return Resolution{}, false
	}
	if e, key, ok := t.Lookup(q.description); ok {
		return matched(e, key, SourceDescription, q.score), true
	}
	return Resolution{}, false
}

func truncatedPrefix(t *Table, q query) (Resolution, bool) {
	if len(q.code) <= truncatedPrefixLen {
		return Resolution{}, false
	}
	if e, key, ok := t.Lookup(q.code[:truncatedPrefixLen]); ok {
		return matched(e, key, SourcePrefix, q.score), true
	}
	return Resolution{}, false
}

func compositeSectorDefault(t *Table, q query) (Resolution, bool) {
	if len(q.code) < sectorPrefixLen {
		return Resolution{}, false
	}
	key, ok := t.CompositeSector(q.code[:sectorPrefixLen])
	if !ok {
		return Resolution{}, false
	}
	e, key, ok := t.Lookup(key)
	if !ok {
		return Resolution{}, false
	}
	return matched(e, key, SourceSectorDefault, q.score), true
}

func sectorHeuristic(t *Table, q query) (Resolution, bool) {
	if len(q.code) < sectorPrefixLen {
		return Resolution{}, false
	}
	prefix := q.code[:sectorPrefixLen]
	base, ok := t.SectorMultiplier(prefix)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{
		Multiple:   base * PerformanceMultiplier(q.score),
		Source:     SourceSectorHeuristic,
		MatchedKey: prefix,
	}, true
}

func matched(e Entry, key string, src Source, score float64) Resolution {
	m, band := Interpolate(e, score)
	return Resolution{Multiple: m, Source: src, MatchedKey: key, Band: band}
}

// Interpolate picks the premium band when score >= 4.0 (and the entry has
// one), otherwise the base band, and places the multiple linearly inside it.
func Interpolate(e Entry, score float64) (float64, BandKind) {
	if score >= PremiumThreshold && e.Premium != nil {
		return lerp(*e.Premium, (score-PremiumThreshold)/premiumDenominator), BandPremium
	}
	return lerp(e.Base, score/baseDenominator), BandBase
}

func lerp(r Range, n float64) float64 {
	n = clamp(n, 0, 1)
	return clamp(r.Min+(r.Max-r.Min)*n, r.Min, r.Max)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// PerformanceMultiplier scales a heuristic sector multiple by average score.
func PerformanceMultiplier(score float64) float64 {
	switch {
	case score >= 4.5:
		return 1.5
	case score >= 4.0:
		return 1.3
	case score >= 3.5:
		return 1.1
	case score < 2.5:
		return 0.8
	default:
		return 1.0
	}
}
