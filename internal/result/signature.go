package result

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Signature computes a content hash of the canonicalized result set. Two sets
// that compare equal under EqualSets always produce the same signature, so
// mismatch diagnostics can name result sets without dumping them.
func Signature(s Set) string {
	h := sha256.New()
	cols := Columns(s)
	for _, col := range cols {
		h.Write([]byte(col))
		h.Write([]byte{0})
	}
	h.Write([]byte{0x1e})
	for _, row := range Canonicalize(s) {
		for _, col := range cols {
			v := row[col]
			h.Write([]byte{byte(v.Kind)})
			h.Write([]byte(canonicalText(v)))
			h.Write([]byte{0})
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalText renders a value so that equal values always render alike.
// Decimal strings keep their declared scale ("1.00"), so trailing fractional
// zeros are stripped before hashing.
func canonicalText(v Value) string {
	if v.Kind != KindNumber {
		return v.String()
	}
	s := v.Number.String()
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
