// Package filter builds store-neutral query predicates. A Filter renders to a
// MongoDB query document and can also be evaluated against a decoded document,
// which is how the in-memory store answers the same queries.
package filter

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type op int

const (
	opAll op = iota
	opNone
	opEq
	opIn
	opContains
	opGt
	opGte
	opLt
	opOr
	opAnd
)

// Filter is an immutable predicate over document fields.
// The zero value matches every document.
type Filter struct {
	op     op
	field  string
	value  any
	values []any
	parts  []Filter
}

// All matches every document.
func All() Filter { return Filter{op: opAll} }

// None matches no document.
func None() Filter { return Filter{op: opNone} }

// Eq matches documents whose field equals value.
func Eq(field string, value any) Filter {
	return Filter{op: opEq, field: field, value: value}
}

// In matches documents whose field equals any of values. An empty list matches nothing.
func In(field string, values ...any) Filter {
	if len(values) == 0 {
		return None()
	}
	return Filter{op: opIn, field: field, values: values}
}

// Contains matches string fields containing substr, case-insensitively.
func Contains(field, substr string) Filter {
	return Filter{op: opContains, field: field, value: substr}
}

// Gt matches fields ordered strictly after value.
func Gt(field string, value any) Filter {
	return Filter{op: opGt, field: field, value: value}
}

// Gte matches fields ordered at or after value.
func Gte(field string, value any) Filter {
	return Filter{op: opGte, field: field, value: value}
}

// Lt matches fields ordered strictly before value.
func Lt(field string, value any) Filter {
	return Filter{op: opLt, field: field, value: value}
}

// Or matches when any part matches. None parts are dropped; an Or with no
// remaining parts matches nothing.
func Or(parts ...Filter) Filter {
	kept := make([]Filter, 0, len(parts))
	for _, p := range parts {
		switch p.op {
		case opAll:
			return All()
		case opNone:
			continue
		}
		kept = append(kept, p)
	}
	switch len(kept) {
	case 0:
		return None()
	case 1:
		return kept[0]
	}
	return Filter{op: opOr, parts: kept}
}

// And matches when every part matches. All parts are dropped; an And with no
// remaining parts matches everything.
func And(parts ...Filter) Filter {
	kept := make([]Filter, 0, len(parts))
	for _, p := range parts {
		switch p.op {
		case opNone:
			return None()
		case opAll:
			continue
		}
		kept = append(kept, p)
	}
	switch len(kept) {
	case 0:
		return All()
	case 1:
		return kept[0]
	}
	return Filter{op: opAnd, parts: kept}
}

// IsAll reports whether f matches everything.
func (f Filter) IsAll() bool { return f.op == opAll }

// IsNone reports whether f matches nothing.
func (f Filter) IsNone() bool { return f.op == opNone }

// BSON renders f as a MongoDB query document.
func (f Filter) BSON() bson.M {
	switch f.op {
	case opAll:
		return bson.M{}
	case opNone:
		// every stored document has an _id
		return bson.M{"_id": bson.M{"$exists": false}}
	case opEq:
		return bson.M{f.field: f.value}
	case opIn:
		return bson.M{f.field: bson.M{"$in": f.values}}
	case opContains:
		return bson.M{f.field: primitive.Regex{Pattern: regexp.QuoteMeta(f.value.(string)), Options: "i"}}
	case opGt:
		return bson.M{f.field: bson.M{"$gt": f.value}}
	case opGte:
		return bson.M{f.field: bson.M{"$gte": f.value}}
	case opLt:
		return bson.M{f.field: bson.M{"$lt": f.value}}
	case opOr, opAnd:
		key := "$or"
		if f.op == opAnd {
			key = "$and"
		}
		parts := make(bson.A, 0, len(f.parts))
		for _, p := range f.parts {
			parts = append(parts, p.BSON())
		}
		return bson.M{key: parts}
	}
	return bson.M{"_id": bson.M{"$exists": false}}
}

// Match evaluates f against a document.
func (f Filter) Match(doc Document) bool {
	switch f.op {
	case opAll:
		return true
	case opNone:
		return false
	case opEq:
		v, ok := doc.Field(f.field)
		return ok && equal(v, Normalize(f.value))
	case opIn:
		v, ok := doc.Field(f.field)
		if !ok {
			return false
		}
		for _, candidate := range f.values {
			if equal(v, Normalize(candidate)) {
				return true
			}
		}
		return false
	case opContains:
		v, ok := doc.Field(f.field)
		s, isString := v.(string)
		return ok && isString && strings.Contains(strings.ToLower(s), strings.ToLower(f.value.(string)))
	case opGt, opGte, opLt:
		v, ok := doc.Field(f.field)
		if !ok {
			return false
		}
		c, comparable := Compare(v, Normalize(f.value))
		if !comparable {
			return false
		}
		switch f.op {
		case opGt:
			return c > 0
		case opGte:
			return c >= 0
		}
		return c < 0
	case opOr:
		for _, p := range f.parts {
			if p.Match(doc) {
				return true
			}
		}
		return false
	case opAnd:
		for _, p := range f.parts {
			if !p.Match(doc) {
				return false
			}
		}
		return true
	}
	return false
}
