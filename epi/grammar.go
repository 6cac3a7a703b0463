package epi

import (
	"fmt"
	"strings"
)

// Query is the typed form of one indexing-grammar string: a mandatory
// selector and an optional transform suffix.
type Query struct {
	Selector  string
	Transform string
}

// ParseQuery parses "<selector>[:<transform>]". Parsing is total over the
// grammar: every malformed input yields a typed error, never a silent no-op.
// Malformed means an empty selector or more than one colon; an empty or
// unrecognized suffix is reported as ErrUnknownTransform at evaluation time.
func ParseQuery(query string) (Query, error) {
	switch strings.Count(query, ":") {
	case 0:
		if query == "" {
			return Query{}, fmt.Errorf("%w: empty query", ErrBadSelector)
		}
		return Query{Selector: query}, nil
	case 1:
		selector, transform, _ := strings.Cut(query, ":")
		if selector == "" {
			return Query{}, fmt.Errorf("%w: empty selector in %q", ErrBadSelector, query)
		}
		if transform == "" {
			return Query{}, fmt.Errorf("%w: empty suffix in %q", ErrUnknownTransform, query)
		}
		return Query{Selector: selector, Transform: transform}, nil
	default:
		return Query{}, fmt.Errorf("%w: %q has more than one colon", ErrBadSelector, query)
	}
}
