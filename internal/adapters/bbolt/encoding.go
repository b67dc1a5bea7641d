// Counter encoding for stats buckets.
//
// Counters are stored as 8-byte big-endian uint64 values so a bucket of
// counters can be incremented in place without a JSON round-trip. Timestamps
// use the same width as int64 unix nanoseconds.
package bbolt

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const counterSize = 8

func encodeUint64(v uint64) []byte {
	buf := make([]byte, counterSize)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(b []byte) (uint64, error) {
	if len(b) != counterSize {
		return 0, fmt.Errorf("counter: want %d bytes, got %d", counterSize, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// incr adds delta to the counter at key, treating a missing key as zero.
func incr(b *bolt.Bucket, key []byte, delta uint64) error {
	var cur uint64
	if v := b.Get(key); v != nil {
		n, err := decodeUint64(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		cur = n
	}
	return b.Put(key, encodeUint64(cur+delta))
}

// readCounters decodes every counter in b into a map keyed by string.
func readCounters(b *bolt.Bucket) (map[string]uint64, error) {
	out := make(map[string]uint64)
	if b == nil {
		return out, nil
	}
	err := b.ForEach(func(k, v []byte) error {
		n, err := decodeUint64(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		out[string(k)] = n // string() copies out of the transaction
		return nil
	})
	return out, err
}
