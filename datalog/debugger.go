package datalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/biscuit-core/biscuit/symbol"
)

// PrintWorld renders every fact currently in facts as Datalog source
// text, one line per fact terminated with a semicolon, grouped under
// a comment naming the origin that produced them. Origins are printed
// in ascending block-id order with the authorizer's facts last
// (spec.md §9 "PrintWorld / Dump / DumpCode").
func PrintWorld(facts *FactStore, sym *symbol.Table) string {
	byOrigin := make(map[Origin][]Fact)
	var origins []Origin
	for _, f := range facts.All() {
		key := originLabel(f.Origins)
		if _, seen := byOrigin[key]; !seen {
			origins = append(origins, key)
		}
		byOrigin[key] = append(byOrigin[key], f)
	}
	sort.Slice(origins, func(i, j int) bool {
		return originLess(origins[i], origins[j])
	})

	var b strings.Builder
	for _, o := range origins {
		fmt.Fprintf(&b, "// origin: %s\n", originName(o))
		lines := make([]string, len(byOrigin[o]))
		for i, f := range byOrigin[o] {
			lines[i] = f.Predicate.String(sym) + ";"
		}
		sort.Strings(lines)
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// originLabel collapses a fact's multi-origin set to the single
// highest block id it depends on, for grouping purposes; facts
// produced jointly by several blocks are listed under the latest one.
func originLabel(o OriginSet) Origin {
	var max Origin
	found := false
	for _, v := range o {
		if v == AuthorizerOrigin {
			return AuthorizerOrigin
		}
		if !found || v > max {
			max = v
			found = true
		}
	}
	return max
}

func originLess(a, b Origin) bool {
	if a == AuthorizerOrigin {
		return false
	}
	if b == AuthorizerOrigin {
		return true
	}
	return a < b
}

func originName(o Origin) string {
	if o == AuthorizerOrigin {
		return "authorizer"
	}
	return fmt.Sprintf("block[%d]", o)
}

// DumpCode renders facts, then every rule known to w, as Datalog
// source text (spec.md §9). Each rule is printed as its head only,
// after a "// rule from" comment naming its block; bodies, expressions
// and scopes are not printed.
func DumpCode(facts *FactStore, rules []ruleEntry, sym *symbol.Table) string {
	var b strings.Builder
	b.WriteString(PrintWorld(facts, sym))
	sort.Slice(rules, func(i, j int) bool { return originLess(rules[i].BlockID, rules[j].BlockID) })
	for _, r := range rules {
		fmt.Fprintf(&b, "// rule from %s\n%s;\n", originName(r.BlockID), r.Rule.Head.String(sym))
	}
	return b.String()
}
