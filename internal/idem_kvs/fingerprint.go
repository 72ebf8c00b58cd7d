package idem_kvs

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Fingerprint returns the dedup cache key for a mutating request.
// The operation is part of the input so a PUT and an APPEND that share
// request id, key and value never collide.
//
// every field is framed as [u64 len][bytes], so "a_b"+"c" and "a"+"b_c"
// hash differently.
func Fingerprint(op CommandType, requestID, key, value string) string {
	h := sha256.New()
	var lenbuf [8]byte

	write := func(s string) {
		binary.BigEndian.PutUint64(lenbuf[:], uint64(len(s)))
		h.Write(lenbuf[:])
		h.Write([]byte(s))
	}

	write(op.String())
	write(requestID)
	write(key)
	write(value)

	return hex.EncodeToString(h.Sum(nil))
}
