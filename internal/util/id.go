// Package util provides small shared utilities for MediLink.
package util

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator provides thread-safe UUIDv7 generation with monotonic
// timestamps. Used for request correlation IDs so log lines for one API
// call can be tied together.
type IDGenerator struct {
	mu       sync.Mutex
	lastTime int64
	counter  uint16
}

// NewIDGenerator creates a new ID generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NewID generates a new UUIDv7 identifier from this generator.
func (g *IDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()

	if now == g.lastTime {
		g.counter++
		if g.counter == 0 {
			for now == g.lastTime {
				time.Sleep(time.Microsecond * 100)
				now = time.Now().UnixMilli()
			}
			g.counter = 0
		}
	} else {
		g.lastTime = now
		g.counter = 0
	}

	return generateUUIDv7(now, g.counter)
}

// generateUUIDv7 creates a UUIDv7 from a timestamp and counter.
func generateUUIDv7(unixMilli int64, counter uint16) string {
	var id [16]byte

	// First 48 bits: Unix timestamp in milliseconds (big endian)
	binary.BigEndian.PutUint32(id[0:4], uint32(unixMilli>>16))
	binary.BigEndian.PutUint16(id[4:6], uint16(unixMilli))

	// Version (4 bits) + counter (12 bits)
	id[6] = 0x70 | (byte(counter>>8) & 0x0F)
	id[7] = byte(counter)

	// Variant (2 bits) + random (62 bits)
	var randomBytes [8]byte
	rand.Read(randomBytes[:])
	copy(id[8:], randomBytes[:])
	id[8] = (id[8] & 0x3F) | 0x80 // Set variant to RFC 4122

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// IsValidID checks if a string is a valid UUID format.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
