package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/yndnr/artifact-go/internal/core/domain"
)

// Key layout shared by the embedded KV engines:
//
//	token:<NAME> -> flags (uint32, big endian)
const tokenKeyPrefix = "token:"

func tokenKey(name string) []byte {
	return []byte(tokenKeyPrefix + name)
}

func nameFromKey(key []byte) string {
	return string(key[len(tokenKeyPrefix):])
}

func encodeFlags(f domain.Flags) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(f))
	return b
}

func decodeFlags(b []byte) (domain.Flags, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("%w: flags value has %d bytes", ErrCorruptValue, len(b))
	}
	return domain.Flags(binary.BigEndian.Uint32(b)), nil
}

// prefixUpperBound returns the smallest key greater than every key with
// the given prefix, or nil if there is none.
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
