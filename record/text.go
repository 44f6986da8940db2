package record

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Text converts strings between Go and a file encoding. A nil Text, or
// one for UTF-8, passes bytes through.
type Text struct {
	name string
	enc  encoding.Encoding
}

// UTF8 is the passthrough text codec.
var UTF8 = &Text{name: "UTF-8"}

// LookupText returns the codec for an IANA encoding name such as
// "windows-1252" or "ISO-8859-1". An empty name means UTF-8.
func LookupText(name string) (*Text, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("text encoding %q: %w", name, err)
	}

	if enc == nil {
		return nil, fmt.Errorf("text encoding %q is not supported", name)
	}

	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}

	return &Text{name: canonical, enc: enc}, nil
}

// Name returns the IANA name of the encoding.
func (t *Text) Name() string {
	if t == nil {
		return UTF8.name
	}

	return t.name
}

// IsUTF8 reports whether t passes bytes through.
func (t *Text) IsUTF8() bool {
	return t == nil || t.enc == nil
}

// Encode converts s to the file encoding.
func (t *Text) Encode(s string) ([]byte, error) {
	if t.IsUTF8() {
		return []byte(s), nil
	}

	b, err := t.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %q as %s: %w", s, t.name, err)
	}

	return b, nil
}

// Decode converts b from the file encoding.
func (t *Text) Decode(b []byte) (string, error) {
	if t.IsUTF8() {
		return string(b), nil
	}

	out, err := t.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode as %s: %w", t.name, err)
	}

	return string(out), nil
}

// EncodedLen returns the length of s in the file encoding.
func (t *Text) EncodedLen(s string) (int, error) {
	if t.IsUTF8() {
		return len(s), nil
	}

	b, err := t.Encode(s)
	if err != nil {
		return 0, err
	}

	return len(b), nil
}

// Clip returns s as it reads back after being stored in n bytes: encoded,
// cut to n bytes and stripped of trailing padding.
func (t *Text) Clip(s string, n int) (string, error) {
	b, err := t.Encode(s)
	if err != nil {
		return "", err
	}

	return t.Decode(bytes.TrimRight(t.truncate(b, n), " \x00"))
}

// truncate cuts b to at most n bytes. For UTF-8 the cut backs off to a
// character boundary.
func (t *Text) truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}

	b = b[:n]
	if !t.IsUTF8() {
		return b
	}

	start := len(b) - 1
	for start > 0 && !utf8.RuneStart(b[start]) {
		start--
	}

	if start >= 0 && !utf8.FullRune(b[start:]) {
		b = b[:start]
	}

	return b
}
