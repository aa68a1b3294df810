// Package id generates ULIDs: lexicographically sortable identifiers used as
// primary keys and storage key segments throughout the engine.
package id

import (
	"crypto/rand"
	"time"
)

// Crockford base32 alphabet, excluding I, L, O and U.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// New generates a 26-character ULID: a 48-bit millisecond timestamp followed
// by 80 bits of randomness, both base32 encoded. IDs created later sort after
// IDs created earlier.
func New() string {
	var bin [16]byte

	ms := uint64(time.Now().UnixMilli())
	bin[0] = byte(ms >> 40)
	bin[1] = byte(ms >> 32)
	bin[2] = byte(ms >> 24)
	bin[3] = byte(ms >> 16)
	bin[4] = byte(ms >> 8)
	bin[5] = byte(ms)

	// crypto/rand.Read never fails on supported platforms.
	_, _ = rand.Read(bin[6:])

	// Encode 128 bits as 26 base32 characters, consuming 5 bits at a time
	// from a rolling accumulator. The leading 2 bits are padding.
	var out [26]byte
	var acc uint64
	bits := 2 // pretend two zero bits precede the buffer: 130 = 26*5
	j := 0
	for _, b := range bin {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[j] = alphabet[(acc>>uint(bits))&0x1F]
			j++
		}
	}

	return string(out[:])
}
