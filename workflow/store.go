// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import "sync"

// Store owns all sessions, keyed by operator user ID. Sessions are
// created lazily on first access and live until the process exits;
// there is no eviction. Access is always mediated by Do, which
// serializes work per user — the transport does not guarantee
// serialized delivery, so two events for the same operator may race
// in, but they never interleave inside the store.
type Store struct {
	mutex    sync.Mutex
	sessions map[int64]*storeEntry
}

// storeEntry pairs a session with its per-user lock. The lock is held
// for the full duration of a Do callback, extraction calls included:
// an edit racing a finalize simply waits its turn.
type storeEntry struct {
	mutex   sync.Mutex
	session *Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*storeEntry)}
}

// Do runs fn with exclusive access to the user's session, creating
// the session on first contact. The store-wide lock guards only the
// map lookup; the per-user lock is held across fn, so slow work for
// one operator never blocks another.
func (store *Store) Do(userID int64, fn func(*Session)) {
	store.mutex.Lock()
	entry, ok := store.sessions[userID]
	if !ok {
		entry = &storeEntry{session: NewSession()}
		store.sessions[userID] = entry
	}
	store.mutex.Unlock()

	entry.mutex.Lock()
	defer entry.mutex.Unlock()
	fn(entry.session)
}
