// Package identity normalizes item and customer identifiers coming from the
// backend into canonical keys, and maps raw backend records onto the canonical
// model types. It is the only place that knows about the backend's mixed-case
// field names.
package identity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is a raw JSON object as decoded from a backend response.
type Record map[string]any

// Key lists for canonical identity lookup, in priority order.
var (
	ItemKeys     = []string{"id", "ITEMCODE", "itemcode"}
	CustomerKeys = []string{"code", "CUSTOMERCODE", "customercode"}
)

// Resolve returns the first non-empty value of keys in rec, coerced to string.
// It returns "" when none is present.
func Resolve(rec Record, keys ...string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			if s := Coerce(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// ItemID resolves the canonical item identity of rec.
func ItemID(rec Record) string {
	return Resolve(rec, ItemKeys...)
}

// CustomerCode resolves the canonical customer identity of rec.
func CustomerCode(rec Record) string {
	return Resolve(rec, CustomerKeys...)
}

// Coerce turns a scalar JSON value into its trimmed textual form so that
// numeric and string identities with equal text compare equal.
func Coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return normalizeNumber(t.String())
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// normalizeNumber renders integral numbers such as "1001.0" as "1001"
// without losing digits of long codes.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	if d, err := decimal.NewFromString(s); err == nil {
		return d.String()
	}
	return s
}

// Same reports whether two identities denote the same entity.
func Same(a, b any) bool {
	ca, cb := Coerce(a), Coerce(b)
	return ca != "" && ca == cb
}
