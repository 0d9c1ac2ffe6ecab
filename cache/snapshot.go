package cache

import "time"

// Snapshot captures the exact state of every entry under a set of key
// prefixes immediately before an optimistic write. It exists only for
// rollback and is discarded on success.
type Snapshot struct {
	prefixes []Key
	entries  []snapshotEntry
}

type snapshotEntry struct {
	key        Key
	status     Status
	value      any
	err        error
	fetchedAt  time.Time
	staleAfter time.Duration
	stale      bool
	generation uint64
}

// Snapshot captures all entries under the given prefixes.
func (s *Store) Snapshot(prefixes []Key) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{prefixes: make([]Key, 0, len(prefixes))}
	for _, p := range prefixes {
		snap.prefixes = append(snap.prefixes, p.Clone())
	}
	for _, ent := range s.entries {
		if !underAny(ent.key, snap.prefixes) {
			continue
		}
		snap.entries = append(snap.entries, snapshotEntry{
			key:        ent.key.Clone(),
			status:     ent.status,
			value:      ent.value,
			err:        ent.err,
			fetchedAt:  ent.fetchedAt,
			staleAfter: ent.staleAfter,
			stale:      ent.stale,
			generation: ent.generation,
		})
	}
	return snap
}

// Restore puts every entry under the snapshot's prefixes back to its
// captured state: snapshotted entries are restored and entries created
// after the snapshot are removed. Generations never move backwards and an
// intervening stale flag is preserved, so a restore cannot resurrect
// results from fetches or invalidations it predates.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	captured := make(map[string]bool, len(snap.entries))
	for _, se := range snap.entries {
		captured[se.key.String()] = true
	}

	// Drop entries that appeared under the prefixes after the snapshot.
	for mapKey, ent := range s.entries {
		if underAny(ent.key, snap.prefixes) && !captured[mapKey] {
			delete(s.entries, mapKey)
		}
	}

	for _, se := range snap.entries {
		ent := s.ensure(se.key)
		ent.status = se.status
		ent.value = se.value
		ent.err = se.err
		ent.fetchedAt = se.fetchedAt
		ent.staleAfter = se.staleAfter
		// A stale flag set between snapshot and restore marks an
		// invalidation the restore must not erase.
		ent.stale = ent.stale || se.stale
		if se.generation > ent.generation {
			ent.generation = se.generation
		}
	}
}

func underAny(key Key, prefixes []Key) bool {
	for _, p := range prefixes {
		if key.HasPrefix(p) {
			return true
		}
	}
	return false
}
