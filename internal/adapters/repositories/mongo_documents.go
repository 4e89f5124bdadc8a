package repositories

import (
	"fmt"
	"parcel-service/internal/domain"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseObjectID maps identifiers the driver cannot parse onto domain.ErrNotFound,
// so malformed and absent ids are indistinguishable to callers.
func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid object id %q: %w", id, domain.ErrNotFound)
	}
	return oid, nil
}

func parcelFromDocument(doc bson.M) *domain.Parcel {
	fields := make(map[string]any, len(doc))
	for k, v := range doc {
		fields[k] = normalizeValue(v)
	}
	return domain.ParcelFromFields(fields)
}

// normalizeValue converts driver types into plain Go values that encode cleanly as JSON.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = normalizeValue(e)
		}
		return m
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// setFields drops keys a client must not overwrite through a merge.
func setFields(fields map[string]any) bson.M {
	set := make(bson.M, len(fields))
	for k, v := range fields {
		if k == domain.FieldID || strings.HasPrefix(k, "$") {
			continue
		}
		set[k] = v
	}
	return set
}
