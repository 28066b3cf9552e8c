package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Frame wraps a payload in the canonical envelope "kind len\0payload".
// The SHA-1 of these bytes is the object's name.
func Frame(kind Kind, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", kind, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	out = append(out, payload...)
	return out
}

// HashObject computes the SHA-1 of the framed form of payload and
// returns it as a lowercase hex-encoded Hash.
func HashObject(kind Kind, payload []byte) Hash {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", kind, len(payload))
	h.Write(payload)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
