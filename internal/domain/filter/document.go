package filter

import (
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Document exposes named fields of a stored record.
type Document interface {
	Field(name string) (any, bool)
}

// M is a decoded document as the store keeps it.
type M bson.M

// Field looks up a field, following dotted paths into nested documents.
func (m M) Field(name string) (any, bool) {
	var cur any = bson.M(m)
	for _, part := range strings.Split(name, ".") {
		switch node := cur.(type) {
		case bson.M:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case M:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case bson.D:
			found := false
			for _, e := range node {
				if e.Key == part {
					cur, found = e.Value, true
					break
				}
			}
			if !found {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return cur, true
}

// Doc converts any bson-marshalable value (usually an entity struct) into the
// document form filters are evaluated against.
func Doc(v any) (M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return M(m), nil
}

// Normalize converts a Go value into the representation it has once stored,
// e.g. time.Time becomes primitive.DateTime and nil pointers become nil.
func Normalize(v any) any {
	if v == nil {
		return nil
	}
	m, err := Doc(bson.M{"v": v})
	if err != nil {
		return v
	}
	return m["v"]
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}
