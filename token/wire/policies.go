package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/term"
)

// AuthorizerPolicies is the wire shape of an authorizer's standalone
// state — facts, rules, checks and policies added directly to it,
// independent of any token — so a host can load and serialize a
// reusable authorization policy set (spec.md §9
// "LoadPolicies/SerializePolicies").
type AuthorizerPolicies struct {
	Version  uint32
	Symbols  []string
	Facts    []term.Predicate
	Rules    []datalog.Rule
	Checks   []datalog.Check
	Policies []datalog.Policy
}

const (
	fieldAPVersion  = protowire.Number(1)
	fieldAPSymbol   = protowire.Number(2)
	fieldAPFact     = protowire.Number(3)
	fieldAPRule     = protowire.Number(4)
	fieldAPCheck    = protowire.Number(5)
	fieldAPPolicy   = protowire.Number(6)
)

// EncodeAuthorizerPolicies serializes an AuthorizerPolicies value.
func EncodeAuthorizerPolicies(ap AuthorizerPolicies) ([]byte, error) {
	var b []byte
	b = appendVarintField(b, fieldAPVersion, uint64(ap.Version))
	for _, s := range ap.Symbols {
		b = appendStringField(b, fieldAPSymbol, s)
	}
	for _, f := range ap.Facts {
		fb, err := EncodePredicate(f)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldAPFact, fb)
	}
	for _, r := range ap.Rules {
		rb, err := EncodeRule(r)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldAPRule, rb)
	}
	for _, c := range ap.Checks {
		cb, err := EncodeCheck(c)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldAPCheck, cb)
	}
	for _, p := range ap.Policies {
		pb, err := EncodePolicy(p)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldAPPolicy, pb)
	}
	return b, nil
}

// DecodeAuthorizerPolicies parses an AuthorizerPolicies value.
func DecodeAuthorizerPolicies(b []byte) (AuthorizerPolicies, error) {
	fields, err := parseFields(b)
	if err != nil {
		return AuthorizerPolicies{}, err
	}
	var ap AuthorizerPolicies
	for _, f := range fields {
		switch f.Num {
		case fieldAPVersion:
			ap.Version = uint32(f.Varint)
		case fieldAPSymbol:
			ap.Symbols = append(ap.Symbols, string(f.Bytes))
		case fieldAPFact:
			p, err := DecodePredicate(f.Bytes)
			if err != nil {
				return AuthorizerPolicies{}, err
			}
			ap.Facts = append(ap.Facts, p)
		case fieldAPRule:
			r, err := DecodeRule(f.Bytes)
			if err != nil {
				return AuthorizerPolicies{}, err
			}
			ap.Rules = append(ap.Rules, r)
		case fieldAPCheck:
			c, err := DecodeCheck(f.Bytes)
			if err != nil {
				return AuthorizerPolicies{}, err
			}
			ap.Checks = append(ap.Checks, c)
		case fieldAPPolicy:
			p, err := DecodePolicy(f.Bytes)
			if err != nil {
				return AuthorizerPolicies{}, err
			}
			ap.Policies = append(ap.Policies, p)
		}
	}
	return ap, nil
}
