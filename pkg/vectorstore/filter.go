// Package vectorstore implements the C9 vector-store contract: CRUD over
// VectorRecords, a metadata filter algebra, and a cosine-similarity search
// returning ScoredRecords in [0,1]. No pack repo carries a from-scratch
// vector store; this package is grounded on the teacher's resource-owner
// conventions (explicit Close, RWMutex-guarded maps as in pkg/registry) and
// enriched with a chromem-go-backed implementation (chromemstore) and a
// relational one (sqlstore) for the persistent layout of spec §6.
package vectorstore

// FilterKind tags the variant of a Filter.
type FilterKind string

const (
	FilterAll      FilterKind = "all"
	FilterEquals   FilterKind = "equals"
	FilterContains FilterKind = "contains"
	FilterHasKey   FilterKind = "has_key"
	FilterIn       FilterKind = "in"
	FilterAnd      FilterKind = "and"
	FilterOr       FilterKind = "or"
	FilterNot      FilterKind = "not"
)

// Filter is the algebraic metadata-filter union of spec §4.6:
// All | Equals(k,v) | Contains(k,sub) | HasKey(k) | In(k,values) | And |
// Or | Not. Construct with the helper functions below rather than filling
// the struct by hand.
type Filter struct {
	Kind FilterKind

	Key    string
	Value  string
	Values []string

	Operands []Filter // And/Or
	Operand  *Filter  // Not
}

// All matches every record.
func All() Filter { return Filter{Kind: FilterAll} }

// Equals matches records whose metadata[key] == value.
func Equals(key, value string) Filter {
	return Filter{Kind: FilterEquals, Key: key, Value: value}
}

// Contains matches records whose metadata[key] contains sub as a substring.
func Contains(key, sub string) Filter {
	return Filter{Kind: FilterContains, Key: key, Value: sub}
}

// HasKey matches records whose metadata has key present, regardless of
// value.
func HasKey(key string) Filter {
	return Filter{Kind: FilterHasKey, Key: key}
}

// In matches records whose metadata[key] is one of values.
func In(key string, values []string) Filter {
	return Filter{Kind: FilterIn, Key: key, Values: values}
}

// And is the conjunction of operands (empty And matches everything).
func And(operands ...Filter) Filter {
	return Filter{Kind: FilterAnd, Operands: operands}
}

// Or is the disjunction of operands (empty Or matches nothing).
func Or(operands ...Filter) Filter {
	return Filter{Kind: FilterOr, Operands: operands}
}

// Not negates operand.
func Not(operand Filter) Filter {
	return Filter{Kind: FilterNot, Operand: &operand}
}

// Matches evaluates the filter against a metadata map. Keys absent from
// metadata are never equal to any value, per spec §4.6.
func (f Filter) Matches(metadata map[string]string) bool {
	switch f.Kind {
	case FilterAll, "":
		return true
	case FilterEquals:
		v, ok := metadata[f.Key]
		return ok && v == f.Value
	case FilterContains:
		v, ok := metadata[f.Key]
		return ok && containsSubstring(v, f.Value)
	case FilterHasKey:
		_, ok := metadata[f.Key]
		return ok
	case FilterIn:
		v, ok := metadata[f.Key]
		if !ok {
			return false
		}
		for _, want := range f.Values {
			if v == want {
				return true
			}
		}
		return false
	case FilterAnd:
		for _, op := range f.Operands {
			if !op.Matches(metadata) {
				return false
			}
		}
		return true
	case FilterOr:
		for _, op := range f.Operands {
			if op.Matches(metadata) {
				return true
			}
		}
		return false
	case FilterNot:
		if f.Operand == nil {
			return true
		}
		return !f.Operand.Matches(metadata)
	default:
		return false
	}
}

func containsSubstring(s, sub string) bool {
	if sub == "" {
		return true
	}
	return indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}
