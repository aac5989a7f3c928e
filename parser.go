package sax

import "bytes"

var (
	bomBytes         = []byte{0xEF, 0xBB, 0xBF}
	tagNameEnd       = []byte{' ', '\n', '\t', '\r', '>', '/'}
	attributeNameEnd = []byte{' ', '=', '>'}
	jsxBraces        = []byte{'{', '}'}
)

// danglingBytes carries 1-3 leading bytes of a UTF-8 sequence that
// spanned a Write boundary, plus how many more bytes are needed to
// complete it. buf is sized for the full reconstructed grapheme (up to
// 4 bytes), not just the saved portion. See Parser.Write.
type danglingBytes struct {
	buf    [4]byte
	len    int
	needed int
}

// Parser is a streaming, push-mode XML/JSX tokenizer. The zero value is
// not ready to use; construct one with NewParser. A Parser is not safe
// for concurrent use: Write and End must be called from a single
// goroutine, in document order.
type Parser struct {
	// Events selects which event kinds are delivered to the listener,
	// and which corresponding entity fields are populated at all. It
	// may be changed between Write calls.
	Events Event

	listener EventListener

	state state
	tags  []Tag

	tag          Tag
	text         Text
	comment      Text
	cdata        Text
	doctype      Text
	sgmlDecl     Text
	procInst     ProcInst
	attribute    Attribute
	closeTagName []byte
	quote        byte
	braceCt      int

	endPos   Position
	dangling *danglingBytes
}

// NewParser constructs a Parser that delivers events to listener.
// Events starts at zero (nothing subscribed, nothing accumulated) —
// set p.Events before the first Write.
func NewParser(listener EventListener) *Parser {
	return &Parser{listener: listener}
}

// Write feeds the next chunk of the document to the tokenizer,
// synchronously firing callbacks for every event the chunk completes.
// A chunk may end mid-tag, mid-entity, or mid-UTF-8-sequence; the
// tokenizer carries whatever state it needs into the next Write.
func (p *Parser) Write(data []byte) {
	sc := NewScanner(data, p.endPos.Line, p.endPos.Character)

	if p.dangling != nil && len(data) > 0 {
		d := p.dangling
		p.dangling = nil
		needed := d.needed
		if needed > len(data) {
			// Still not enough bytes to complete the grapheme; absorb what
			// arrived and keep waiting for the rest.
			copy(d.buf[d.len:d.len+len(data)], data)
			d.len += len(data)
			d.needed -= len(data)
			p.dangling = d
			return
		}
		copy(d.buf[d.len:d.len+needed], data[:needed])
		glen := d.len + needed
		grapheme := append([]byte(nil), d.buf[:glen]...)

		colWidth := uint32(1)
		if glen == 4 {
			colWidth = 2
		}
		sc.consumeDangling(needed, colWidth)
		p.processGrapheme(sc, grapheme, sc.Position())
	}

	for {
		g, ok := sc.Next()
		if !ok {
			break
		}
		p.processGrapheme(sc, g, sc.Position())
	}

	p.endPos = sc.Position()
	if rem := sc.Remaining(); len(rem) > 0 {
		d := &danglingBytes{len: len(rem), needed: GraphemeLen(rem[0]) - len(rem)}
		copy(d.buf[:], rem)
		p.dangling = d
	}
}

// End flushes any pending text run and resets the tokenizer to its
// initial state, ready to parse a new, unrelated document with the
// same Events subscription. Dangling cross-chunk bytes, if any, are
// discarded: there is no further input to complete them.
func (p *Parser) End() {
	p.flushText(Position{p.endPos.Line, p.endPos.Character + 1})
	p.state = stateBegin
	p.tags = nil
	p.tag = Tag{}
	p.text = Text{}
	p.comment = Text{}
	p.cdata = Text{}
	p.doctype = Text{}
	p.sgmlDecl = Text{}
	p.procInst = ProcInst{}
	p.attribute = Attribute{}
	p.closeTagName = nil
	p.quote = 0
	p.braceCt = 0
	p.endPos = Position{}
	p.dangling = nil
}

func (p *Parser) processGrapheme(sc *Scanner, g []byte, pos Position) {
	switch p.state {
	case stateBegin:
		p.begin(g, pos)
	case stateBeginWhitespace:
		p.beginWhitespace(g, pos)
	case stateText:
		p.text(sc, g, pos)
	case stateOpenWaka:
		p.openWaka(g, pos)
	case stateOpenTag:
		p.openTag(sc, g, pos)
	case stateOpenTagSlash:
		p.openTagSlash(g, pos)
	case stateAttrib:
		p.attrib(sc, g, pos)
	case stateAttribName:
		p.attribName(sc, g, pos)
	case stateAttribNameSawWhite:
		p.attribNameSawWhite(sc, g, pos)
	case stateAttribValue:
		p.attribValue(sc, g, pos)
	case stateAttribValueQuoted:
		p.attribValueQuoted(sc, g, pos)
	case stateAttribValueClosed:
		p.attribValueClosed(g, pos)
	case stateAttribValueUnquoted:
		p.attribValueUnquoted(g, pos)
	case stateCloseTag:
		p.closeTag(sc, g, pos)
	case stateCloseTagSawWhite:
		p.closeTagSawWhite(sc, g, pos)
	case stateSgmlDecl:
		p.sgmlDeclState(sc, g, pos)
	case stateSgmlDeclQuoted:
		p.sgmlDeclQuoted(g, pos)
	case stateDoctype:
		p.doctypeState(g, pos)
	case stateDoctypeQuoted:
		p.doctypeQuoted(g, pos)
	case stateDoctypeDtd:
		p.doctypeDtd(g, pos)
	case stateDoctypeDtdQuoted:
		p.doctypeDtdQuoted(g, pos)
	case stateComment:
		p.commentState(sc, g, pos)
	case stateCommentEnding:
		p.commentEnding(g, pos)
	case stateCommentEnded:
		p.commentEnded(g, pos)
	case stateCdata:
		p.cdataState(sc, g, pos)
	case stateCdataEnding:
		p.cdataEnding(g, pos)
	case stateCdataEnding2:
		p.cdataEnding2(g, pos)
	case stateProcInst:
		p.procInstState(g, pos)
	case stateProcInstValue:
		p.procInstValue(sc, g, pos)
	case stateProcInstEnding:
		p.procInstEnding(g, pos)
	case stateJSXAttributeExpression:
		p.jsxAttributeExpression(sc, g, pos)
	}
}

func isByte(g []byte, c byte) bool {
	return len(g) == 1 && g[0] == c
}

func isWhitespaceGrapheme(g []byte) bool {
	return len(g) == 1 && IsWhitespace(g[0])
}

// begin handles the very first grapheme of a document: a UTF-8 BOM is
// swallowed silently, everything else falls through to beginWhitespace.
func (p *Parser) begin(g []byte, pos Position) {
	p.state = stateBeginWhitespace
	if bytes.Equal(g, bomBytes) {
		return
	}
	p.beginWhitespace(g, pos)
}

func (p *Parser) beginWhitespace(g []byte, pos Position) {
	if isByte(g, '<') {
		p.newTag(pos)
		return
	}
	p.newText(pos)
	p.writeText(g)
}

func (p *Parser) newTag(pos Position) {
	p.tag = newTag(Position{pos.Line, pos.Character - 1})
	p.state = stateOpenWaka
}

func (p *Parser) newText(pos Position) {
	if p.Events&EventText != 0 || p.Events&EventCloseTag != 0 {
		p.text = newText(pos)
	}
	p.state = stateText
}

func (p *Parser) writeText(b []byte) {
	if p.Events&EventText == 0 && p.Events&EventCloseTag == 0 {
		return
	}
	p.text.Value = append(p.text.Value, b...)
}

// flushText closes out the current text run (if it holds anything) and
// fires EventText / attaches it to the innermost open tag's TextNodes.
// pos is the position just past the byte that ended the run, so the
// run's End is the column of its last grapheme, two columns back (held
// at 0 when the ending byte starts a line).
func (p *Parser) flushText(pos Position) {
	if len(p.text.Value) == 0 {
		return
	}
	depth := len(p.tags)
	text := p.text
	p.text = newText(pos)
	end := pos.Character - 1
	if end > 0 {
		end--
	}
	text.End = Position{pos.Line, end}
	if p.Events&EventText != 0 {
		p.listener(EventText, &text)
	}
	if depth != 0 && p.Events&EventCloseTag != 0 {
		p.tags[depth-1].TextNodes = append(p.tags[depth-1].TextNodes, text)
	}
}

func (p *Parser) openWaka(g []byte, pos Position) {
	if IsNameStartByte(g) {
		p.state = stateOpenTag
		p.tag.Name = append([]byte(nil), g...)
		return
	}
	switch {
	case isByte(g, '!'):
		p.state = stateSgmlDecl
		p.sgmlDecl = newText(Position{pos.Line, pos.Character - 1})
	case isByte(g, '/'):
		p.state = stateCloseTag
		p.closeTagName = nil
	case isByte(g, '?'):
		p.state = stateProcInst
		p.procInst = newProcInst()
		p.procInst.Start = Position{pos.Line, pos.Character - 1}
	case isByte(g, '>'):
		p.processOpenTag(false, pos)
	default:
		// Not a legal tag name start: fall back to plain text, including
		// the '<' we already committed to via newTag. Bare JSX fragments
		// like "<>" never get here: the '>' case above opens them as a
		// tag with an empty name.
		p.newText(pos)
		p.writeText([]byte{'<'})
		p.writeText(g)
	}
}

func (p *Parser) openTag(sc *Scanner, g []byte, pos Position) {
	if IsNameByte(g) {
		p.tag.Name = append(p.tag.Name, g...)
		if chunk, _ := sc.TakeUntilAny(tagNameEnd, false); len(chunk) > 0 {
			p.tag.Name = append(p.tag.Name, chunk...)
		}
		return
	}
	if p.Events&EventOpenTagStart != 0 {
		p.listener(EventOpenTagStart, &p.tag)
	}
	switch {
	case isByte(g, '>'):
		p.processOpenTag(false, pos)
	case isByte(g, '/'):
		p.state = stateOpenTagSlash
	default:
		p.state = stateAttrib
	}
}

func (p *Parser) openTagSlash(g []byte, pos Position) {
	if isByte(g, '>') {
		closingName := append([]byte(nil), p.tag.Name...)
		p.processOpenTag(true, pos)
		p.processCloseTag(pos, closingName)
		return
	}
	p.state = stateAttrib
}

func (p *Parser) text(sc *Scanner, g []byte, pos Position) {
	if !isByte(g, '<') {
		p.writeText(g)
		if chunk, _ := sc.TakeUntilByte('<', false); len(chunk) > 0 {
			p.writeText(chunk)
		}
		return
	}
	p.flushText(pos)
	p.newTag(pos)
}

func (p *Parser) sgmlDeclState(sc *Scanner, g []byte, pos Position) {
	isSgmlChar := true
	switch {
	case asciiICaseEqual(p.sgmlDecl.Value, []byte("[cdata[")):
		p.cdata.Start = Position{pos.Line, pos.Character - 8}
		if isByte(g, ']') {
			p.state = stateCdataEnding
		} else {
			p.state = stateCdata
			p.cdata.Value = append(p.cdata.Value, g...)
		}
		isSgmlChar = false
	case bytes.Equal(p.sgmlDecl.Value, []byte("--")):
		p.state = stateComment
		p.comment.Start = Position{pos.Line, pos.Character - 4}
		p.commentState(sc, g, pos)
		isSgmlChar = false
	case asciiICaseEqual(p.sgmlDecl.Value, []byte("doctype")):
		p.state = stateDoctype
		p.doctype.Start = Position{pos.Line, pos.Character - 8}
		isSgmlChar = false
	}

	if isByte(g, '>') {
		sgmlDecl := p.sgmlDecl
		p.sgmlDecl = Text{}
		if p.Events&EventSGMLDeclaration != 0 {
			sgmlDecl.Value = append(sgmlDecl.Value, g...)
			sgmlDecl.End = Position{pos.Line, pos.Character - 1}
			p.listener(EventSGMLDeclaration, &sgmlDecl)
		}
		p.newText(pos)
		return
	}

	if isSgmlChar {
		p.sgmlDecl.Value = append(p.sgmlDecl.Value, g...)
	} else {
		p.sgmlDecl = Text{}
	}

	if len(g) == 1 && IsQuote(g[0]) {
		p.quote = g[0]
		p.state = stateSgmlDeclQuoted
	}
}

func (p *Parser) sgmlDeclQuoted(g []byte, pos Position) {
	if len(g) == 1 && g[0] == p.quote {
		p.quote = 0
		p.state = stateSgmlDecl
	}
	p.sgmlDecl.Value = append(p.sgmlDecl.Value, g...)
}

func (p *Parser) doctypeState(g []byte, pos Position) {
	if isByte(g, '>') {
		p.newText(pos)
		if p.Events&EventDoctype != 0 {
			doctype := p.doctype
			doctype.End = Position{pos.Line, pos.Character - 1}
			p.listener(EventDoctype, &doctype)
		}
		p.doctype = Text{}
		return
	}
	p.doctype.Value = append(p.doctype.Value, g...)
	switch {
	case isByte(g, ']'):
		p.state = stateDoctypeDtd
	case len(g) == 1 && IsQuote(g[0]):
		p.quote = g[0]
		p.state = stateDoctypeQuoted
	}
}

func (p *Parser) doctypeQuoted(g []byte, pos Position) {
	p.doctype.Value = append(p.doctype.Value, g...)
	if len(g) == 1 && g[0] == p.quote {
		p.quote = 0
		p.state = stateDoctype
	}
}

func (p *Parser) doctypeDtd(g []byte, pos Position) {
	p.doctype.Value = append(p.doctype.Value, g...)
	switch {
	case isByte(g, ']'):
		p.state = stateDoctype
	case len(g) == 1 && IsQuote(g[0]):
		p.quote = g[0]
		p.state = stateDoctypeDtdQuoted
	}
}

func (p *Parser) doctypeDtdQuoted(g []byte, pos Position) {
	p.doctype.Value = append(p.doctype.Value, g...)
	if len(g) == 1 && g[0] == p.quote {
		p.quote = 0
		p.state = stateDoctypeDtd
	}
}

func (p *Parser) commentState(sc *Scanner, g []byte, pos Position) {
	if isByte(g, '-') {
		p.state = stateCommentEnding
		return
	}
	if p.Events&EventComment != 0 {
		p.comment.Value = append(p.comment.Value, g...)
	}
	if chunk, _ := sc.TakeUntilByte('-', false); len(chunk) > 0 && p.Events&EventComment != 0 {
		p.comment.Value = append(p.comment.Value, chunk...)
	}
}

func (p *Parser) commentEnding(g []byte, pos Position) {
	if isByte(g, '-') {
		p.state = stateCommentEnded
		return
	}
	if p.Events&EventComment != 0 {
		p.comment.Value = append(p.comment.Value, '-')
		p.comment.Value = append(p.comment.Value, g...)
	}
	p.state = stateComment
}

func (p *Parser) commentEnded(g []byte, pos Position) {
	if isByte(g, '>') {
		if p.Events&EventComment != 0 {
			comment := p.comment
			comment.End = Position{pos.Line, pos.Character - 1}
			p.listener(EventComment, &comment)
		}
		p.comment = Text{}
		p.state = stateBeginWhitespace
		return
	}
	// A "--" that isn't followed by '>' is a fake-out: restore the two
	// literal hyphens we provisionally swallowed and resume scanning the
	// comment body from here.
	if p.Events&EventComment != 0 {
		p.comment.Value = append(p.comment.Value, '-', '-')
		p.comment.Value = append(p.comment.Value, g...)
	}
	p.state = stateComment
}

func (p *Parser) cdataState(sc *Scanner, g []byte, pos Position) {
	if isByte(g, ']') {
		p.state = stateCdataEnding
		return
	}
	p.cdata.Value = append(p.cdata.Value, g...)
	chunk, found := sc.TakeUntilByte(']', false)
	if len(chunk) > 0 {
		p.cdata.Value = append(p.cdata.Value, chunk...)
	}
	if found {
		sc.Next()
		p.state = stateCdataEnding
	}
}

func (p *Parser) cdataEnding(g []byte, pos Position) {
	if isByte(g, ']') {
		p.state = stateCdataEnding2
		return
	}
	p.state = stateCdata
	p.cdata.Value = append(p.cdata.Value, ']')
	p.cdata.Value = append(p.cdata.Value, g...)
}

func (p *Parser) cdataEnding2(g []byte, pos Position) {
	switch {
	case isByte(g, '>'):
		p.newText(pos)
		if p.Events&EventCdata != 0 {
			cdata := p.cdata
			cdata.End = Position{pos.Line, pos.Character - 1}
			p.listener(EventCdata, &cdata)
		}
		p.cdata = Text{}
	case isByte(g, ']'):
		p.cdata.Value = append(p.cdata.Value, g...)
	default:
		p.cdata.Value = append(p.cdata.Value, ']', ']')
		p.cdata.Value = append(p.cdata.Value, g...)
		p.state = stateCdata
	}
}

func (p *Parser) procInstState(g []byte, pos Position) {
	if isByte(g, '>') {
		p.procInstEnding(g, pos)
		return
	}
	if isByte(g, '?') {
		p.state = stateProcInstEnding
		return
	}
	if len(p.procInst.Target.Value) == 0 {
		p.procInst.Target.Start = pos
	} else if isWhitespaceGrapheme(g) {
		p.procInst.Target.End = Position{pos.Line, pos.Character - 1}
		p.state = stateProcInstValue
		return
	}
	p.procInst.Target.Value = append(p.procInst.Target.Value, g...)
}

func (p *Parser) procInstValue(sc *Scanner, g []byte, pos Position) {
	if len(p.procInst.Content.Value) == 0 {
		if isWhitespaceGrapheme(g) {
			sc.SkipWhitespace()
			return
		}
		p.procInst.Content.Start = Position{pos.Line, pos.Character - 1}
	}
	if isByte(g, '?') {
		p.state = stateProcInstEnding
		p.procInst.Content.End = Position{pos.Line, pos.Character - 1}
		return
	}
	p.procInst.Content.Value = append(p.procInst.Content.Value, g...)
}

func (p *Parser) procInstEnding(g []byte, pos Position) {
	if isByte(g, '>') {
		p.newText(pos)
		procInst := p.procInst
		p.procInst = ProcInst{}
		if p.Events&EventProcessingInstruction != 0 {
			procInst.End = pos
			p.listener(EventProcessingInstruction, &procInst)
		}
		return
	}
	p.procInst.Content.Value = append(p.procInst.Content.Value, '?')
	p.procInst.Content.Value = append(p.procInst.Content.Value, g...)
	p.state = stateProcInstValue
}

func (p *Parser) attrib(sc *Scanner, g []byte, pos Position) {
	if isWhitespaceGrapheme(g) {
		sc.SkipWhitespace()
		return
	}
	switch {
	case isByte(g, '>'):
		p.processOpenTag(false, pos)
	case isByte(g, '/'):
		p.state = stateOpenTagSlash
	default:
		p.attribute.Name = Text{Value: append([]byte(nil), g...), Start: Position{pos.Line, pos.Character - 1}}
		p.state = stateAttribName
	}
}

func (p *Parser) attribName(sc *Scanner, g []byte, pos Position) {
	switch {
	case isByte(g, '='):
		p.attribute.Name.End = Position{pos.Line, pos.Character - 1}
		p.state = stateAttribValue
	case isByte(g, '>'):
		p.processAttribute()
		p.processOpenTag(false, pos)
	case isWhitespaceGrapheme(g):
		p.attribute.Name.End = Position{pos.Line, pos.Character - 1}
		p.state = stateAttribNameSawWhite
	default:
		p.attribute.Name.Value = append(p.attribute.Name.Value, g...)
		if chunk, _ := sc.TakeUntilAny(attributeNameEnd, false); len(chunk) > 0 {
			p.attribute.Name.Value = append(p.attribute.Name.Value, chunk...)
		}
	}
}

func (p *Parser) attribNameSawWhite(sc *Scanner, g []byte, pos Position) {
	if isWhitespaceGrapheme(g) {
		sc.SkipWhitespace()
		return
	}
	switch {
	case isByte(g, '='):
		p.state = stateAttribValue
	case isByte(g, '/'):
		p.processAttribute()
		p.state = stateOpenTagSlash
	case isByte(g, '>'):
		p.processAttribute()
		p.processOpenTag(false, pos)
	default:
		p.processAttribute()
		p.attribute.Name = Text{Value: append([]byte(nil), g...), Start: Position{pos.Line, pos.Character - 1}}
		p.state = stateAttribName
	}
}

func (p *Parser) attribValue(sc *Scanner, g []byte, pos Position) {
	if isWhitespaceGrapheme(g) {
		sc.SkipWhitespace()
		return
	}
	p.attribute.Value.Start = pos
	switch {
	case len(g) == 1 && IsQuote(g[0]):
		p.quote = g[0]
		p.state = stateAttribValueQuoted
	case isByte(g, '{'):
		p.state = stateJSXAttributeExpression
		p.attribute.Kind = AttrJSXExpression
		p.braceCt++
	default:
		p.state = stateAttribValueUnquoted
		p.attribute.Value.Value = append(p.attribute.Value.Value, g...)
	}
}

func (p *Parser) attribValueQuoted(sc *Scanner, g []byte, pos Position) {
	if !isByte(g, p.quote) {
		p.attribute.Value.Value = append(p.attribute.Value.Value, g...)
		chunk, found := sc.TakeUntilByte(p.quote, false)
		if len(chunk) > 0 {
			p.attribute.Value.Value = append(p.attribute.Value.Value, chunk...)
		}
		if !found {
			// The closing quote hasn't arrived yet; stay put and pick up
			// where we left off on the next Write.
			return
		}
		p.attribute.Value.End = sc.Position()
		sc.Next() // consume the closing quote
	} else {
		p.attribute.Value.End = Position{pos.Line, pos.Character - 1}
	}
	p.processAttribute()
	p.quote = 0
	p.state = stateAttribValueClosed
}

func (p *Parser) attribValueClosed(g []byte, pos Position) {
	switch {
	case isWhitespaceGrapheme(g):
		p.state = stateAttrib
	case isByte(g, '>'):
		p.processOpenTag(false, pos)
	case isByte(g, '/'):
		p.state = stateOpenTagSlash
	default:
		p.attribute.Name = Text{Value: append([]byte(nil), g...), Start: Position{pos.Line, pos.Character - 1}}
		p.state = stateAttribName
	}
}

func (p *Parser) attribValueUnquoted(g []byte, pos Position) {
	if !isByte(g, '>') && !isWhitespaceGrapheme(g) {
		p.attribute.Value.Value = append(p.attribute.Value.Value, g...)
		return
	}
	p.attribute.Value.End = Position{pos.Line, pos.Character - 1}
	p.processAttribute()
	if isByte(g, '>') {
		p.processOpenTag(false, pos)
	} else {
		p.state = stateAttrib
	}
}

func (p *Parser) jsxAttributeExpression(sc *Scanner, g []byte, pos Position) {
	switch {
	case isByte(g, '}'):
		p.braceCt--
	case isByte(g, '{'):
		p.braceCt++
	}
	if p.braceCt == 0 {
		p.attribute.Value.End = Position{pos.Line, pos.Character - 1}
		p.processAttribute()
		p.state = stateAttribValueClosed
		return
	}
	p.attribute.Value.Value = append(p.attribute.Value.Value, g...)
	if chunk, _ := sc.TakeUntilAny(jsxBraces, false); len(chunk) > 0 {
		p.attribute.Value.Value = append(p.attribute.Value.Value, chunk...)
	}
}

func (p *Parser) closeTag(sc *Scanner, g []byte, pos Position) {
	if isByte(g, '>') {
		depth := len(p.tags)
		if len(p.closeTagName) == 0 && (depth == 0 || len(p.tags[depth-1].Name) != 0) {
			// Bare "</>": treat it as closing a same-position JSX fragment
			// that was never explicitly opened.
			p.processOpenTag(true, pos)
		}
		p.processCloseTag(pos, nil)
		return
	}
	if IsNameByte(g) {
		p.closeTagName = append(p.closeTagName, g...)
		if chunk, _ := sc.TakeUntilByte('>', false); len(chunk) > 0 {
			p.closeTagName = append(p.closeTagName, chunk...)
		}
		return
	}
	p.state = stateCloseTagSawWhite
}

func (p *Parser) closeTagSawWhite(sc *Scanner, g []byte, pos Position) {
	if isWhitespaceGrapheme(g) {
		sc.SkipWhitespace()
		return
	}
	if isByte(g, '>') {
		p.processCloseTag(pos, nil)
	}
}

// processAttribute finalizes the attribute currently being built,
// firing EventAttribute and/or attaching it to the tag being opened.
func (p *Parser) processAttribute() {
	attr := p.attribute
	p.attribute = Attribute{}
	wantsEvent := p.Events&EventAttribute != 0
	if wantsEvent {
		p.listener(EventAttribute, &attr)
	}
	if wantsEvent || p.Events&EventCloseTag != 0 {
		p.tag.Attributes = append(p.tag.Attributes, attr)
	}
}

// processOpenTag finalizes the tag currently being built and pushes it
// onto the open-tag stack. p.tag is then reset to a placeholder whose
// OpenStart tracks the most recently completed '<...>' construct — used
// by processCloseTag for lenient-recovery text positioning.
func (p *Parser) processOpenTag(selfClosing bool, pos Position) {
	tag := p.tag
	tag.SelfClosing = selfClosing
	tag.OpenEnd = pos
	if p.Events&EventOpenTag != 0 {
		p.listener(EventOpenTag, &tag)
	}
	if !selfClosing {
		p.newText(pos)
	}
	p.tags = append(p.tags, tag)
	p.tag = newTag(Position{pos.Line, pos.Character - 1})
}

// processCloseTag matches a closing construct against the open-tag
// stack. name is the explicit name to match (used for the synthetic
// close half of a self-closing tag); when nil, p.closeTagName is used
// and then cleared.
//
// If no open tag matches, the close construct is lenient-recovered as
// literal text. If a match is found at some depth, every tag from the
// top of the stack down through the match is considered closed: when
// CloseTag isn't subscribed the stack is simply truncated below the
// match, otherwise each popped tag (innermost first) is finalized and
// emitted. Auto-closed tags (everything above the match) and the
// matched tag itself all take CloseStart from the position of the
// explicit closing construct and CloseEnd from the current position.
func (p *Parser) processCloseTag(pos Position, name []byte) {
	p.newText(pos)
	if name == nil {
		name = p.closeTagName
	}
	p.closeTagName = nil

	found := -1
	for i := len(p.tags) - 1; i >= 0; i-- {
		if bytes.Equal(p.tags[i].Name, name) {
			found = i
			break
		}
	}
	if found == -1 {
		p.writeText([]byte("</"))
		p.writeText(name)
		p.writeText([]byte(">"))
		p.text.Start = p.tag.OpenStart
		return
	}

	closeStart := p.tag.OpenStart
	if p.Events&EventCloseTag == 0 {
		p.tags = p.tags[:found]
		return
	}

	for len(p.tags) > found {
		last := len(p.tags) - 1
		tag := p.tags[last]
		p.tags = p.tags[:last]
		tag.CloseStart = closeStart
		tag.CloseEnd = pos
		p.listener(EventCloseTag, &tag)
	}
}
