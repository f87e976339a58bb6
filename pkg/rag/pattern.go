package rag

import "strings"

// PatternKind tags a CollectionPattern variant.
type PatternKind string

const (
	PatternExact             PatternKind = "exact"
	PatternImmediateChildren PatternKind = "immediate_children" // prefix/*
	PatternAllDescendants    PatternKind = "all_descendants"    // prefix/**
	PatternAll               PatternKind = "all"                // *
)

// CollectionPattern matches one or many collections per spec §4.7/glossary:
// Exact, ImmediateChildren (prefix/*), AllDescendants (prefix/**), All (*).
type CollectionPattern struct {
	Kind   PatternKind
	Prefix CollectionPath // unused for PatternAll
}

// ParsePattern parses a raw pattern string into a CollectionPattern.
func ParsePattern(raw string) CollectionPattern {
	switch {
	case raw == "*":
		return CollectionPattern{Kind: PatternAll}
	case strings.HasSuffix(raw, "/**"):
		return CollectionPattern{Kind: PatternAllDescendants, Prefix: CollectionPath(strings.TrimSuffix(raw, "/**"))}
	case strings.HasSuffix(raw, "/*"):
		return CollectionPattern{Kind: PatternImmediateChildren, Prefix: CollectionPath(strings.TrimSuffix(raw, "/*"))}
	default:
		return CollectionPattern{Kind: PatternExact, Prefix: CollectionPath(raw)}
	}
}

// Resolve returns every collection in r matching pat.
func (r *Registry) Resolve(pat CollectionPattern) []Collection {
	var out []Collection
	switch pat.Kind {
	case PatternAll:
		for _, c := range r.byPath {
			out = append(out, c)
		}
	case PatternExact:
		if c, ok := r.byPath[pat.Prefix]; ok {
			out = append(out, c)
		}
	case PatternImmediateChildren:
		prefixSegs := pat.Prefix.Segments()
		for _, c := range r.byPath {
			segs := c.Path.Segments()
			if len(segs) != len(prefixSegs)+1 {
				continue
			}
			if hasPathPrefix(segs, prefixSegs) {
				out = append(out, c)
			}
		}
	case PatternAllDescendants:
		prefixSegs := pat.Prefix.Segments()
		for _, c := range r.byPath {
			segs := c.Path.Segments()
			if len(segs) <= len(prefixSegs) {
				continue
			}
			if hasPathPrefix(segs, prefixSegs) {
				out = append(out, c)
			}
		}
	}
	return out
}

func hasPathPrefix(segs, prefix []string) bool {
	if len(prefix) > len(segs) {
		return false
	}
	for i, p := range prefix {
		if segs[i] != p {
			return false
		}
	}
	return true
}

// Accessible filters collections to those the auth may query (ancestor-AND
// semantics) and that are leaves, per spec §4.7 query-flow step 2.
func (r *Registry) Accessible(pat CollectionPattern, auth UserAuthorization) []Collection {
	var out []Collection
	for _, c := range r.Resolve(pat) {
		if c.IsLeaf && r.CanQueryWithAncestors(c, auth) {
			out = append(out, c)
		}
	}
	return out
}
