package sax

import "unsafe"

// String performs an _unsafe_ no-copy string conversion from buf.
// https://github.com/golang/go/issues/25484 has more info on this.
//
// Used internally wherever a byte slice only needs to be compared or
// parsed as a string (entity names, keyword matches) and is never
// retained past the call, so the no-copy aliasing is safe.
func String(buf []byte) string {
	return *(*string)(unsafe.Pointer(&buf))
}
