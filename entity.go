package sax

import "encoding/binary"

// AttrKind distinguishes a plain XML attribute value from a JSX
// expression container (`name={ ... }`), which may hold balanced braces
// and arbitrary syntax that the tokenizer never interprets.
type AttrKind uint8

const (
	AttrNormal AttrKind = iota
	AttrJSXExpression
)

// Text is a run of accumulated bytes with a start/end position. It
// backs CharData, comments, CDATA sections, SGML declarations, doctype
// bodies, attribute names and values, and processing-instruction
// targets and contents. Tag names are plain []byte (see Tag.Name).
type Text struct {
	Value []byte
	Start Position
	End   Position
}

func newText(start Position) Text {
	return Text{Start: start}
}

// Encode serializes t per the wire format in SPEC_FULL.md §1 / spec.md
// §6: start(8) | end(8) | value_len(4) | value_bytes, all little-endian.
func (t *Text) Encode() []byte {
	out := make([]byte, 0, 20+len(t.Value))
	out = appendPosition(out, t.Start)
	out = appendPosition(out, t.End)
	out = appendUint32(out, uint32(len(t.Value)))
	out = append(out, t.Value...)
	return out
}

// Attribute is a single name="value" (or JSX {expr}) pair.
type Attribute struct {
	Name  Text
	Value Text
	Kind  AttrKind
}

// Encode serializes a per spec.md §6: kind(1) | name_len(4) | name |
// value (value carries its own length-prefixed encoding via Text.Encode).
func (a *Attribute) Encode() []byte {
	name := a.Name.Encode()
	value := a.Value.Encode()
	out := make([]byte, 0, 5+len(name)+len(value))
	out = append(out, byte(a.Kind))
	out = appendUint32(out, uint32(len(name)))
	out = append(out, name...)
	out = append(out, value...)
	return out
}

// ProcInst is a processing instruction `<?target content?>`.
type ProcInst struct {
	Start   Position
	End     Position
	Target  Text
	Content Text
}

func newProcInst() ProcInst {
	return ProcInst{}
}

// Encode serializes p per spec.md §6: start(8) | end(8) |
// target_encoded_len(4) | target_encoded | content_encoded.
func (p *ProcInst) Encode() []byte {
	target := p.Target.Encode()
	content := p.Content.Encode()
	out := make([]byte, 0, 20+len(target)+len(content))
	out = appendPosition(out, p.Start)
	out = appendPosition(out, p.End)
	out = appendUint32(out, uint32(len(target)))
	out = append(out, target...)
	out = append(out, content...)
	return out
}

// Tag is an XML/JSX element. It is accumulated across several states
// while open, pushed onto the tokenizer's tag stack at '>', and popped
// (and, if subscribed, emitted) at its matching close tag.
type Tag struct {
	Name        []byte
	Attributes  []Attribute
	TextNodes   []Text
	SelfClosing bool
	OpenStart   Position
	OpenEnd     Position
	CloseStart  Position
	CloseEnd    Position
}

func newTag(openStart Position) Tag {
	return Tag{OpenStart: openStart}
}

// Encode serializes t per spec.md §6. The first 8 bytes are a header
// reserved for (attrs_offset, text_nodes_offset); each is patched in
// once the variable-length data before its section (the name, then the
// attributes) has been written, since those lengths aren't known up
// front.
func (t *Tag) Encode() []byte {
	out := make([]byte, 8, 45+len(t.Name))
	out = appendPosition(out, t.OpenStart)
	out = appendPosition(out, t.OpenEnd)
	out = appendPosition(out, t.CloseStart)
	out = appendPosition(out, t.CloseEnd)
	if t.SelfClosing {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = appendUint32(out, uint32(len(t.Name)))
	out = append(out, t.Name...)

	binary.LittleEndian.PutUint32(out[0:4], uint32(len(out)))
	out = appendUint32(out, uint32(len(t.Attributes)))
	for i := range t.Attributes {
		encoded := t.Attributes[i].Encode()
		out = appendUint32(out, uint32(len(encoded)))
		out = append(out, encoded...)
	}

	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)))
	out = appendUint32(out, uint32(len(t.TextNodes)))
	for i := range t.TextNodes {
		encoded := t.TextNodes[i].Encode()
		out = appendUint32(out, uint32(len(encoded)))
		out = append(out, encoded...)
	}
	return out
}

func appendPosition(out []byte, p Position) []byte {
	out = appendUint32(out, p.Line)
	out = appendUint32(out, p.Character)
	return out
}

func appendUint32(out []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(out, b[:]...)
}
