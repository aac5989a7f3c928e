package sax

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/google/triemap"
)

// DecodeEntities is a library function, not something the tokenizer
// applies to Text/Attribute values on your behalf — spec.md leaves
// that decision to the caller, since not every consumer wants entities
// expanded. It resolves the five XML predefined entities, numeric/hex
// character references, and the standard HTML named-entity set.
//
// extra supplies additional name -> replacement entities (without the
// surrounding & and ;), checked before the built-in table; pass nil to
// use only the built-ins.
func DecodeEntities(in []byte, extra map[string]string) ([]byte, error) {
	return decodeEntitiesAppend(nil, in, extra)
}

// DecodeEntitiesAppend is DecodeEntities but appends the decoded
// result to dst and returns the grown slice, letting a caller decode
// many fragments into one buffer without an allocation per fragment.
func DecodeEntitiesAppend(dst []byte, in []byte) ([]byte, error) {
	return decodeEntitiesAppend(dst, in, nil)
}

// decodeEntitiesAppend consumes in one entity reference at a time,
// copying literal runs straight through and replacing each `&name;` or
// `&#ref;` in place. On error it returns dst unmodified: a caller that
// reuses a buffer across many fragments never has to worry about a
// half-decoded entity leaking into it.
func decodeEntitiesAppend(dst, in []byte, extra map[string]string) ([]byte, error) {
	out := dst
	remaining := in
	for {
		amp := bytes.IndexByte(remaining, '&')
		if amp == -1 {
			return append(out, remaining...), nil
		}
		out = append(out, remaining[:amp]...)
		remaining = remaining[amp+1:]

		semi := bytes.IndexByte(remaining, ';')
		if semi == -1 {
			return dst, errors.New("unterminated XML entity: missing closing ';'")
		}
		body := remaining[:semi]
		remaining = remaining[semi+1:]

		replacement, err := resolveEntity(body, extra)
		if err != nil {
			return dst, err
		}
		out = append(out, replacement...)
	}
}

// resolveEntity decodes the text between '&' and ';' — either a numeric
// character reference or a named entity, checked against extra first so
// a caller can shadow the built-in table per decode call.
func resolveEntity(body []byte, extra map[string]string) (string, error) {
	if len(body) > 0 && body[0] == '#' {
		return decodeCharRef(body[1:])
	}
	name := String(body)
	if extra != nil {
		if replacement, ok := extra[name]; ok {
			return replacement, nil
		}
	}
	if replacement, ok := lookupEntity(body); ok {
		return replacement, nil
	}
	return "", fmt.Errorf("no such XML entity %q", name)
}

// decodeCharRef decodes a numeric character reference's digits (the
// part after '#'), accepting an 'x'/'X' prefix for hex.
func decodeCharRef(digits []byte) (string, error) {
	base := 10
	if len(digits) > 0 && (digits[0] == 'x' || digits[0] == 'X') {
		base = 16
		digits = digits[1:]
	}
	str := String(digits)
	num, err := strconv.ParseInt(str, base, 32)
	if err != nil {
		return "", fmt.Errorf("invalid numeric character reference %q: %w", str, err)
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], rune(num))
	return string(buf[:n]), nil
}

// RegisterEntity adds name (without & and ;) to the process-wide
// built-in entity table, resolving to replacement. It is intended for
// application-defined entities declared by a DTD the tokenizer itself
// never parses; prefer passing a per-call map to DecodeEntities when
// the entity set varies by document.
func RegisterEntity(name, replacement string) {
	entityTrieOnce.Do(initEntityTrie)
	entityTrieMu.Lock()
	defer entityTrieMu.Unlock()
	entityTrie.Put([]rune(name), replacement)
}

var (
	entityTrieOnce sync.Once
	entityTrieMu   sync.Mutex
	entityTrie     triemap.RuneSliceMap
)

// initEntityTrie seeds entityTrie with the five XML predefined
// entities plus the full HTML named-entity set encoding/xml already
// carries, so RegisterEntity's additions and the built-ins share one
// lookup structure.
func initEntityTrie() {
	for name, value := range map[string]string{
		"lt":   "<",
		"gt":   ">",
		"amp":  "&",
		"apos": "'",
		"quot": `"`,
	} {
		entityTrie.Put([]rune(name), value)
	}
	for name, value := range xml.HTMLEntity {
		entityTrie.Put([]rune(name), value)
	}
}

func lookupEntity(name []byte) (string, bool) {
	entityTrieOnce.Do(initEntityTrie)
	entityTrieMu.Lock()
	defer entityTrieMu.Unlock()
	value, ok := entityTrie.Get([]rune(String(name)))
	if !ok {
		return "", false
	}
	return value.(string), true
}
