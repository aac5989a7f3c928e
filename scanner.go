package sax

import (
	"encoding/binary"
	"math/bits"
)

// Position is a (line, character) pair. Line counts '\n' bytes seen so
// far; character counts graphemes within the current line, with a
// 4-byte UTF-8 sequence counting as 2 (matching UTF-16 surrogate-pair
// width) and every other grapheme length counting as 1.
type Position struct {
	Line      uint32
	Character uint32
}

// Less reports whether p sorts strictly before o in document order.
func (p Position) Less(o Position) bool {
	return p.Line < o.Line || (p.Line == o.Line && p.Character < o.Character)
}

// Scanner is a cursor over a borrowed byte slice. It advances one UTF-8
// grapheme at a time (see classify.go's GraphemeLen) and tracks a
// running (line, character) position across an arbitrary number of
// bulk operations. A Scanner never mutates or retains buf beyond the
// lifetime of the call that owns it; the tokenizer is responsible for
// copying anything that must survive past the current Write.
type Scanner struct {
	buf  []byte
	pos  int
	line uint32
	col  uint32
}

// NewScanner wraps buf for scanning, continuing position tracking from
// (line, col) — the end position left by a previous write.
func NewScanner(buf []byte, line, col uint32) *Scanner {
	return &Scanner{buf: buf, line: line, col: col}
}

// Position returns the scanner's current (line, character).
func (s *Scanner) Position() Position {
	return Position{s.line, s.col}
}

// Offset returns the current byte offset into buf.
func (s *Scanner) Offset() int {
	return s.pos
}

// Len returns the length of the underlying buffer.
func (s *Scanner) Len() int {
	return len(s.buf)
}

// AtEnd reports whether the cursor has consumed the entire buffer.
func (s *Scanner) AtEnd() bool {
	return s.pos >= len(s.buf)
}

// Remaining returns the unread tail of buf, used by the tokenizer to
// seed the dangling-bytes handoff at the end of a write.
func (s *Scanner) Remaining() []byte {
	if s.pos >= len(s.buf) {
		return nil
	}
	return s.buf[s.pos:]
}

// bump advances the running position past one grapheme of byte length
// glen whose leading byte is b.
func (s *Scanner) bump(b byte, glen int) {
	if b == '\n' {
		s.line++
		s.col = 0
		return
	}
	if glen == 4 {
		s.col += 2
	} else {
		s.col++
	}
}

// Next reads and consumes one grapheme at the cursor. It reports false
// at end-of-input or when the next grapheme's bytes would extend past
// the end of buf — a partial trailing multi-byte sequence is left
// untouched for the dangling-bytes protocol.
func (s *Scanner) Next() ([]byte, bool) {
	if s.pos >= len(s.buf) {
		return nil, false
	}
	b := s.buf[s.pos]
	glen := GraphemeLen(b)
	end := s.pos + glen
	if end > len(s.buf) {
		return nil, false
	}
	g := s.buf[s.pos:end]
	s.bump(b, glen)
	s.pos = end
	return g, true
}

// TakeUntilByte scans forward for match, tracking (line, character) for
// each whole grapheme consumed along the way (never per raw byte). It
// returns the slice [start, cursor) and whether match was found. When
// include is true and match was found, the matched byte is consumed and
// included in the returned slice; otherwise the cursor stops on it. On
// exhausting buf without a match, the cursor stops at the end of the
// last whole grapheme — a partial trailing sequence is left for the
// next write.
func (s *Scanner) TakeUntilByte(match byte, include bool) ([]byte, bool) {
	return s.TakeUntilAny([]byte{match}, include)
}

// TakeUntilAny is TakeUntilByte generalized to a small set of candidate
// delimiter bytes (the set is expected to be ASCII and at most a
// handful of entries; a linear scan is the fastest approach at that
// size).
func (s *Scanner) TakeUntilAny(set []byte, include bool) ([]byte, bool) {
	start := s.pos
	n := len(s.buf)
	pos := s.pos
	line, col := s.line, s.col
	found := false
	var matched byte

	for pos < n {
		b := s.buf[pos]
		glen := GraphemeLen(b)
		if pos+glen > n {
			break
		}
		if containsByte(set, b) {
			found = true
			matched = b
			break
		}
		if b == '\n' {
			line++
			col = 0
		} else if glen == 4 {
			col += 2
		} else {
			col++
		}
		pos += glen
	}

	if found && include {
		if matched == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		pos++
	}

	s.pos = pos
	s.line, s.col = line, col

	if pos == start {
		return nil, found
	}
	return s.buf[start:pos], found
}

// SkipWhitespace advances the cursor past a run of XML whitespace
// ({0x09, 0x0A, 0x0D, 0x20}). The main loop processes 8 bytes at a time
// using a branch-free SWAR ("SIMD within a register") byte-equality
// test — a portable stand-in for the platform vector intrinsic
// (WASM SIMD128 / SSE2 / NEON) a native build would reach for — and a
// scalar loop finishes any remaining tail shorter than a word. It
// reports whether a non-whitespace byte is still available afterward.
func (s *Scanner) SkipWhitespace() bool {
	n := len(s.buf)
	pos := s.pos
	line, col := s.line, s.col

	for pos+8 <= n {
		word := binary.LittleEndian.Uint64(s.buf[pos : pos+8])
		wsMask := wsLaneMask(word)
		nonWsMask := ^wsMask & laneHighBits

		if nonWsMask == 0 {
			// Every lane in this word is whitespace: bulk-advance by 8
			// and fold in however many newlines this word contained.
			nlMask := eqLaneMask(word, '\n')
			if nlMask == 0 {
				col += 8
			} else {
				line += uint32(bits.OnesCount64(nlMask))
				lastLane := (63 - bits.LeadingZeros64(nlMask)) / 8
				col = uint32(7 - lastLane)
			}
			pos += 8
			continue
		}

		// A non-whitespace byte lives in this word; only the prefix
		// before it is whitespace we need to account for.
		firstLane := bits.TrailingZeros64(nonWsMask) / 8
		prefixBits := uint(firstLane * 8)
		var prefixMask uint64
		if prefixBits > 0 {
			prefixMask = (uint64(1) << prefixBits) - 1
		}
		nlMask := eqLaneMask(word, '\n') & prefixMask
		if nlMask == 0 {
			col += uint32(firstLane)
		} else {
			line += uint32(bits.OnesCount64(nlMask))
			lastLane := (63 - bits.LeadingZeros64(nlMask)) / 8
			col = uint32(firstLane - lastLane - 1)
		}
		pos += firstLane
		s.pos, s.line, s.col = pos, line, col
		return true
	}

	// Scalar tail: fewer than 8 bytes remain, or the word loop above
	// already returned once it located the boundary byte.
	for pos < n {
		b := s.buf[pos]
		if !IsWhitespace(b) {
			s.pos, s.line, s.col = pos, line, col
			return true
		}
		if b == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		pos++
	}
	s.pos, s.line, s.col = pos, line, col
	return false
}

const (
	loLaneBits   uint64 = 0x0101010101010101
	laneHighBits uint64 = 0x8080808080808080
)

// eqLaneMask returns, for each byte lane of word, 0x80 if that lane
// equals b and 0x00 otherwise. It applies a per-lane zero-byte test to
// word XOR broadcast(b): a lane is zero after the XOR exactly when the
// original lane equaled b. Adding 0x7F to each lane's low seven bits
// never carries into the next lane, so the test has no false positives
// for any byte value.
func eqLaneMask(word uint64, b byte) uint64 {
	v := word ^ (loLaneBits * uint64(b))
	t := ((v &^ laneHighBits) + ^laneHighBits) | v
	return ^t & laneHighBits
}

// wsLaneMask ORs together the four eqLaneMask tests for the whitespace
// byte set; since the four target bytes are pairwise distinct, at most
// one test can flag any given lane, so the union is exact.
func wsLaneMask(word uint64) uint64 {
	return eqLaneMask(word, ' ') | eqLaneMask(word, '\t') | eqLaneMask(word, '\n') | eqLaneMask(word, '\r')
}

// consumeDangling advances the scanner past the needed leading bytes of
// a new chunk that complete a grapheme whose other bytes arrived in a
// previous write, and applies the column width the completed grapheme
// contributes (1, or 2 for a 4-byte sequence) — see the dangling-bytes
// protocol in parser.go.
func (s *Scanner) consumeDangling(needed int, colWidth uint32) {
	s.pos += needed
	s.col += colWidth
}

func containsByte(set []byte, b byte) bool {
	for _, s := range set {
		if s == b {
			return true
		}
	}
	return false
}
