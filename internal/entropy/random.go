// Package entropy supplies crypto/rand backed seeds for the load profile
// generator. A seed is drawn once per process, so draw cost does not matter
// here, only that restarts land on fresh curves.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
)

// Seed returns a non-negative random seed for noise generators. The sign
// bit is cleared rather than rejection-sampled; the bias is irrelevant for
// seeding.
func Seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen but return 1 as a safe default.
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63))
}
