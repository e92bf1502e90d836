// Package pairwise parses test parameter definitions and builds all-pairs
// covering sets alongside the full Cartesian product.
package pairwise

import (
	"errors"
	"fmt"
	"strings"
)

// MaxCombinations bounds the full Cartesian product accepted from a single
// message. Larger inputs are rejected at parse time.
const MaxCombinations = 10000

// Parameter is one named axis with its values.
type Parameter struct {
	Name   string
	Values []string
}

// Combination assigns one value per parameter, in declaration order.
type Combination []string

var (
	// ErrTooFewParameters is returned when fewer than two parameters are given.
	ErrTooFewParameters = errors.New("pairwise: at least two parameters are required")
	// ErrTooManyCombinations is returned when the full product exceeds MaxCombinations.
	ErrTooManyCombinations = fmt.Errorf("pairwise: full product exceeds %d combinations", MaxCombinations)
)

// Parse reads the "name: v1, v2; name2: v1, v2" grammar. Parameter entries
// are separated by semicolons or newlines, values by commas.
func Parse(input string) ([]Parameter, error) {
	raw := strings.TrimSpace(input)
	var entries []string
	if strings.Contains(raw, ";") {
		entries = strings.Split(raw, ";")
	} else {
		entries = strings.Split(raw, "\n")
	}

	var params []Parameter
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, rest, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("pairwise: missing ':' in %q", entry)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("pairwise: empty parameter name in %q", entry)
		}

		var values []string
		for _, v := range strings.Split(rest, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("pairwise: parameter %q has no values", name)
		}
		params = append(params, Parameter{Name: name, Values: values})
	}

	if len(params) < 2 {
		return nil, ErrTooFewParameters
	}
	if ProductSize(params) > MaxCombinations {
		return nil, ErrTooManyCombinations
	}
	return params, nil
}

// ProductSize returns the size of the full Cartesian product.
func ProductSize(params []Parameter) int {
	n := 1
	for _, p := range params {
		n *= len(p.Values)
	}
	return n
}

// Product enumerates the full Cartesian product in lexicographic order over
// the declared value order.
func Product(params []Parameter) []Combination {
	total := ProductSize(params)
	out := make([]Combination, 0, total)
	combo := make(Combination, len(params))

	var walk func(i int)
	walk = func(i int) {
		if i == len(params) {
			out = append(out, append(Combination(nil), combo...))
			return
		}
		for _, v := range params[i].Values {
			combo[i] = v
			walk(i + 1)
		}
	}
	walk(0)
	return out
}

type pair struct {
	a, b         int // parameter indexes, a < b
	avIdx, bvIdx int // value indexes
}

// Cover builds a covering set in which every pair of values from any two
// parameters appears in at least one combination. The greedy strategy picks,
// per candidate combination, the assignment covering the most uncovered
// pairs.
func Cover(params []Parameter) []Combination {
	uncovered := make(map[pair]struct{})
	for a := 0; a < len(params); a++ {
		for b := a + 1; b < len(params); b++ {
			for ai := range params[a].Values {
				for bi := range params[b].Values {
					uncovered[pair{a, b, ai, bi}] = struct{}{}
				}
			}
		}
	}

	valueIndex := make([]map[string]int, len(params))
	for i, p := range params {
		valueIndex[i] = make(map[string]int, len(p.Values))
		for vi, v := range p.Values {
			valueIndex[i][v] = vi
		}
	}

	covers := func(combo Combination) int {
		n := 0
		for a := 0; a < len(combo); a++ {
			for b := a + 1; b < len(combo); b++ {
				p := pair{a, b, valueIndex[a][combo[a]], valueIndex[b][combo[b]]}
				if _, ok := uncovered[p]; ok {
					n++
				}
			}
		}
		return n
	}

	markCovered := func(combo Combination) {
		for a := 0; a < len(combo); a++ {
			for b := a + 1; b < len(combo); b++ {
				delete(uncovered, pair{a, b, valueIndex[a][combo[a]], valueIndex[b][combo[b]]})
			}
		}
	}

	product := Product(params)
	var out []Combination
	for len(uncovered) > 0 {
		best := -1
		bestGain := 0
		for i, combo := range product {
			if gain := covers(combo); gain > bestGain {
				best, bestGain = i, gain
			}
		}
		if best < 0 {
			break
		}
		out = append(out, product[best])
		markCovered(product[best])
	}
	return out
}
