// Package taskid maps remote seed ids onto local task identifiers.
package taskid

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// FromInt derives a version-4 shaped UUID from n.
// The big-endian bytes of n fill the last 8 bytes of the UUID; the version
// nibble in byte 6 and the variant bits in byte 8 are then forced. The result
// is deterministic, so importing the same seed id always yields the same task ID.
func FromInt(n int64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], uint64(n))
	id[6] = (id[6] & 0x0F) | 0x40
	id[8] = (id[8] & 0x3F) | 0x80
	return id
}

// Valid reports whether id carries the version 4 and RFC 4122 variant markers.
func Valid(id uuid.UUID) bool {
	return id.Version() == 4 && id.Variant() == uuid.RFC4122
}
