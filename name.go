package sax

import "bytes"

// SplitName splits a Tag or Attribute name on its namespace separator
// (ex: `foo:bar` -> (`foo`, `bar`)). The tokenizer itself never splits
// Tag.Name/Attribute.Name.Value — namespace resolution is a layer above
// tokenization — this is offered as a convenience for callers that want it.
func SplitName(name []byte) (space []byte, local []byte) {
	if idx := bytes.IndexByte(name, ':'); idx != -1 {
		return name[:idx], name[idx+1:]
	}
	return nil, name
}
