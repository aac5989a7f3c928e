package sax

// GraphemeLen returns the number of bytes in the UTF-8 sequence that
// starts with b. It is a leaf function: it looks only at the leading
// byte's top bits, never at what follows, so it is safe to call before
// the rest of the sequence has arrived over the wire.
func GraphemeLen(b byte) int {
	switch {
	case b&0b1000_0000 == 0:
		return 1
	case b&0b1110_0000 == 0b1100_0000:
		return 2
	case b&0b1111_0000 == 0b1110_0000:
		return 3
	case b&0b1111_1000 == 0b1111_0000:
		return 4
	default:
		// Not a legal UTF-8 leading byte; treat it as a lone byte so
		// the scanner still advances instead of spinning.
		return 1
	}
}

// IsWhitespace reports whether b is XML whitespace: space, tab, LF, CR.
func IsWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// IsQuote reports whether b opens/closes an attribute value.
func IsQuote(b byte) bool {
	return b == '"' || b == '\''
}

// ToCodePoint decodes the leading 1-4 byte UTF-8 sequence in b into its
// code point. The length of b must match GraphemeLen(b[0]). It returns 0
// for an empty b or one longer than 4 bytes; malformed sequences of 1-4
// bytes are not validated and decode to whatever their payload bits give.
func ToCodePoint(b []byte) rune {
	switch len(b) {
	case 1:
		return rune(b[0])
	case 2:
		return rune(b[0]&0x1f)<<6 | rune(b[1]&0x3f)
	case 3:
		return rune(b[0]&0x0f)<<12 | rune(b[1]&0x3f)<<6 | rune(b[2]&0x3f)
	case 4:
		return rune(b[0]&0x07)<<18 | rune(b[1]&0x3f)<<12 | rune(b[2]&0x3f)<<6 | rune(b[3]&0x3f)
	default:
		return 0
	}
}

// IsNameStartChar reports whether cp may begin an XML Name.
func IsNameStartChar(cp rune) bool {
	if cp <= 0x7F {
		return (cp >= 'a' && cp <= 'z') || (cp >= 'A' && cp <= 'Z') || cp == ':' || cp == '_'
	}
	switch {
	case cp >= 0xC0 && cp <= 0xD6,
		cp >= 0xD8 && cp <= 0xF6,
		cp >= 0xF8 && cp <= 0x2FF,
		cp >= 0x370 && cp <= 0x37D,
		cp >= 0x37F && cp <= 0x1FFF,
		cp >= 0x200C && cp <= 0x200D,
		cp >= 0x2070 && cp <= 0x218F,
		cp >= 0x2C00 && cp <= 0x2FEF,
		cp >= 0x3001 && cp <= 0xD7FF,
		cp >= 0xF900 && cp <= 0xFDCF,
		cp >= 0xFDF0 && cp <= 0xFFFD,
		cp >= 0x10000 && cp <= 0xEFFFF:
		return true
	default:
		return false
	}
}

// IsNameChar reports whether cp may continue (but not necessarily start)
// an XML Name.
func IsNameChar(cp rune) bool {
	if cp <= 0x7F {
		return (cp >= 'a' && cp <= 'z') || (cp >= 'A' && cp <= 'Z') ||
			(cp >= '0' && cp <= '9') || cp == '-' || cp == '.' || cp == '_' || cp == ':'
	}
	if IsNameStartChar(cp) {
		return true
	}
	switch {
	case cp == 0xB7,
		cp >= 0x300 && cp <= 0x36F,
		cp >= 0x203F && cp <= 0x2040:
		return true
	default:
		return false
	}
}

// IsNameStartByte is the common fast path used by the tokenizer: it
// decodes the grapheme beginning at b[0] and reports IsNameStartChar for
// it, without requiring the caller to compute the code point first.
func IsNameStartByte(b []byte) bool {
	return IsNameStartChar(ToCodePoint(b[:GraphemeLen(b[0])]))
}

// IsNameByte is IsNameStartByte's IsNameChar counterpart.
func IsNameByte(b []byte) bool {
	return IsNameChar(ToCodePoint(b[:GraphemeLen(b[0])]))
}

// asciiICaseEqual reports whether a and b are equal, comparing ASCII
// letters case-insensitively. Used to recognize case-insensitive XML
// keywords like "DOCTYPE" and "[CDATA[" as they accumulate byte by byte.
func asciiICaseEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
