package demes

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical renders a Tree as canonical JSON text: mapping keys
// sorted, strings NFC-normalized, no extraneous whitespace. This is the
// only serialization used for graph-identity hashing (GraphHash) and for
// the round-trip law in spec.md §8 ("serialize(resolve(parse(text)))").
//
// Ported from the teacher's ir.MarshalCanonical, adapted from the IRValue
// sum type to Tree and relaxed to allow floats (graphs are full of them).
func MarshalCanonical(t Tree) (string, error) {
	var b strings.Builder
	if err := writeCanonical(&b, t); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeCanonical(b *strings.Builder, t Tree) error {
	switch t.Kind {
	case KindNull:
		b.WriteString("null")
		return nil
	case KindScalar:
		return writeCanonicalScalar(b, t.Scalar)
	case KindSequence:
		b.WriteByte('[')
		for i, item := range t.Sequence {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, item); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		b.WriteByte(']')
		return nil
	case KindMapping:
		keys := append([]string(nil), t.Keys...)
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonicalString(b, k); err != nil {
				return err
			}
			b.WriteByte(':')
			if err := writeCanonical(b, t.Mapping[k]); err != nil {
				return fmt.Errorf("[%q]: %w", k, err)
			}
		}
		b.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("unsupported tree kind: %v", t.Kind)
	}
}

func writeCanonicalScalar(b *strings.Builder, v any) error {
	switch val := v.(type) {
	case string:
		return writeCanonicalString(b, val)
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
		return nil
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
		return nil
	case int:
		b.WriteString(strconv.Itoa(val))
		return nil
	case bool:
		if val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
		return nil
	default:
		return fmt.Errorf("unsupported scalar type for canonical JSON: %T", v)
	}
}

func writeCanonicalString(b *strings.Builder, s string) error {
	normalized := norm.NFC.String(s)
	out, err := strconv_quote(normalized)
	if err != nil {
		return err
	}
	b.WriteString(out)
	return nil
}

// strconv_quote quotes a string as JSON without HTML-escaping, matching the
// teacher's RFC 8785-flavored canonicalization (no < > & escaping).
func strconv_quote(s string) (string, error) {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String(), nil
}

// GraphHash computes a stable content-addressed identity for a resolved
// graph's canonical serialization. Ported from ir.hashWithDomain: a domain
// prefix plus a null-byte separator guards against cross-domain hash
// collisions if this hash is ever compared against another content-addressed
// scheme in the same system.
const graphHashDomain = "demes/graph/v1"

func GraphHash(canonical string) string {
	h := sha256.New()
	h.Write([]byte(graphHashDomain))
	h.Write([]byte{0x00})
	h.Write([]byte(canonical))
	return hex.EncodeToString(h.Sum(nil))
}
