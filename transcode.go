package colbind

import (
	"golang.org/x/text/encoding"
)

// Transcoder converts text between the wire protocol's encoding and the
// canonical UTF-8 used in String columns. A nil *Transcoder (or a nil
// underlying encoding) is the identity: the wire already speaks UTF-8.
type Transcoder struct {
	enc encoding.Encoding
}

// NewTranscoder creates a transcoder for a wire text encoding, e.g.
// charmap.ISO8859_1 for Latin-1 backends.
func NewTranscoder(enc encoding.Encoding) *Transcoder {
	return &Transcoder{enc: enc}
}

// Decode converts wire-encoded text to UTF-8 (read path).
func (t *Transcoder) Decode(s string) (string, error) {
	if t == nil || t.enc == nil {
		return s, nil
	}
	return t.enc.NewDecoder().String(s)
}

// Encode converts UTF-8 text to the wire encoding (write path).
func (t *Transcoder) Encode(s string) (string, error) {
	if t == nil || t.enc == nil {
		return s, nil
	}
	return t.enc.NewEncoder().String(s)
}
