// Package pebble provides an embedded-storage Logger sink, grounded
// on UmarFarooq-MP-Loki's infra/wal/exit package: open a pebble.DB in
// a directory, encode a monotonic key, Set. Offered as the
// lowest-overhead durable sink for single-process deployments that
// don't want a Postgres dependency; like the other durable sinks it
// is append-only and never read back by the engine.
package pebble

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Sink appends each logged line to an embedded key-value store, keyed
// by an 8-byte big-endian monotonic sequence so an external reader can
// iterate entries in log order.
type Sink struct {
	db  *pebble.DB
	seq uint64
}

// Open opens (creating if absent) a pebble store at dir. DisableWAL is
// left false: we want durability across a crash, matching the
// exit-WAL's rationale.
func Open(dir string) (*Sink, error) {
	db, err := pebble.Open(dir, &pebble.Options{DisableWAL: false})
	if err != nil {
		return nil, fmt.Errorf("pebble sink: open %s: %w", dir, err)
	}
	return &Sink{db: db}, nil
}

func (s *Sink) Write(line string) error {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, s.seq)
	s.seq++
	if err := s.db.Set(key, []byte(line), pebble.Sync); err != nil {
		return fmt.Errorf("pebble sink: set: %w", err)
	}
	return nil
}

func (s *Sink) Close() error { return s.db.Close() }
