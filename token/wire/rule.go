package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/symbol"
)

const (
	fieldRuleHead       = protowire.Number(1)
	fieldRuleBody       = protowire.Number(2)
	fieldRuleExpression = protowire.Number(3)
	fieldRuleScope      = protowire.Number(4)
)

// EncodeRule serializes a datalog.Rule.
func EncodeRule(r datalog.Rule) ([]byte, error) {
	var b []byte
	headB, err := EncodePredicate(r.Head)
	if err != nil {
		return nil, err
	}
	b = appendBytesField(b, fieldRuleHead, headB)

	for _, p := range r.Body {
		pb, err := EncodePredicate(p)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldRuleBody, pb)
	}
	for _, e := range r.Expressions {
		eb, err := EncodeExpression(e)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldRuleExpression, eb)
	}
	for _, s := range r.Scopes {
		sb := EncodeScope(s)
		b = appendBytesField(b, fieldRuleScope, sb)
	}
	return b, nil
}

// DecodeRule parses a datalog.Rule.
func DecodeRule(b []byte) (datalog.Rule, error) {
	fields, err := parseFields(b)
	if err != nil {
		return datalog.Rule{}, err
	}
	var r datalog.Rule
	for _, f := range fields {
		switch f.Num {
		case fieldRuleHead:
			head, err := DecodePredicate(f.Bytes)
			if err != nil {
				return datalog.Rule{}, err
			}
			r.Head = head
		case fieldRuleBody:
			pred, err := DecodePredicate(f.Bytes)
			if err != nil {
				return datalog.Rule{}, err
			}
			r.Body = append(r.Body, pred)
		case fieldRuleExpression:
			e, err := DecodeExpression(f.Bytes)
			if err != nil {
				return datalog.Rule{}, err
			}
			r.Expressions = append(r.Expressions, e)
		case fieldRuleScope:
			s, err := DecodeScope(f.Bytes)
			if err != nil {
				return datalog.Rule{}, err
			}
			r.Scopes = append(r.Scopes, s)
		}
	}
	return r, nil
}

const (
	fieldScopeKind = protowire.Number(1)
	fieldScopeKey  = protowire.Number(2)
)

// EncodeScope serializes a datalog.Scope.
func EncodeScope(s datalog.Scope) []byte {
	var b []byte
	b = appendVarintField(b, fieldScopeKind, uint64(s.Kind))
	if s.Kind == datalog.ScopePublicKey {
		b = appendVarintField(b, fieldScopeKey, uint64(s.PublicKey))
	}
	return b
}

// DecodeScope parses a datalog.Scope.
func DecodeScope(b []byte) (datalog.Scope, error) {
	fields, err := parseFields(b)
	if err != nil {
		return datalog.Scope{}, err
	}
	var s datalog.Scope
	for _, f := range fields {
		switch f.Num {
		case fieldScopeKind:
			s.Kind = datalog.ScopeKind(f.Varint)
		case fieldScopeKey:
			s.PublicKey = symbol.ID(f.Varint)
		}
	}
	return s, nil
}

const (
	fieldCheckKind  = protowire.Number(1)
	fieldCheckQuery = protowire.Number(2)
)

// EncodeCheck serializes a datalog.Check.
func EncodeCheck(c datalog.Check) ([]byte, error) {
	var b []byte
	b = appendVarintField(b, fieldCheckKind, uint64(c.Kind))
	for _, q := range c.Queries {
		qb, err := EncodeRule(q)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldCheckQuery, qb)
	}
	return b, nil
}

// DecodeCheck parses a datalog.Check.
func DecodeCheck(b []byte) (datalog.Check, error) {
	fields, err := parseFields(b)
	if err != nil {
		return datalog.Check{}, err
	}
	var c datalog.Check
	for _, f := range fields {
		switch f.Num {
		case fieldCheckKind:
			c.Kind = datalog.CheckKind(f.Varint)
		case fieldCheckQuery:
			q, err := DecodeRule(f.Bytes)
			if err != nil {
				return datalog.Check{}, err
			}
			c.Queries = append(c.Queries, q)
		}
	}
	return c, nil
}

const (
	fieldPolicyKind  = protowire.Number(1)
	fieldPolicyQuery = protowire.Number(2)
)

// EncodePolicy serializes a datalog.Policy (used by the authorizer's
// policy-set serialization, not by the token's own wire format, which
// never carries policies).
func EncodePolicy(p datalog.Policy) ([]byte, error) {
	var b []byte
	b = appendVarintField(b, fieldPolicyKind, uint64(p.Kind))
	for _, q := range p.Queries {
		qb, err := EncodeRule(q)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldPolicyQuery, qb)
	}
	return b, nil
}

// DecodePolicy parses a datalog.Policy.
func DecodePolicy(b []byte) (datalog.Policy, error) {
	fields, err := parseFields(b)
	if err != nil {
		return datalog.Policy{}, err
	}
	var p datalog.Policy
	for _, f := range fields {
		switch f.Num {
		case fieldPolicyKind:
			p.Kind = datalog.PolicyKind(f.Varint)
		case fieldPolicyQuery:
			q, err := DecodeRule(f.Bytes)
			if err != nil {
				return datalog.Policy{}, err
			}
			p.Queries = append(p.Queries, q)
		}
	}
	return p, nil
}
