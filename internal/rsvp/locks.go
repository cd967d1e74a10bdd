package rsvp

import "sync"

// LockTable hands out one mutex per event so that the admission and
// promotion sequences (read counts, decide, write) execute as a unit
// for that event while unrelated events proceed in parallel.  Locks are
// created lazily and never discarded; the table grows with the number
// of distinct events touched by the process, which is bounded and
// small.
type LockTable struct {
    mu    sync.Mutex
    locks map[uint64]*sync.Mutex
}

// NewLockTable returns an empty lock table.  The admission engine and
// the waitlist coordinator must share a single table, otherwise a
// submit and a promotion on the same event could interleave.
func NewLockTable() *LockTable {
    return &LockTable{locks: make(map[uint64]*sync.Mutex)}
}

// Acquire returns the mutex guarding the given event, creating it on
// first use.  The caller locks and unlocks it.
func (t *LockTable) Acquire(eventID uint64) *sync.Mutex {
    t.mu.Lock()
    defer t.mu.Unlock()
    m, ok := t.locks[eventID]
    if !ok {
        m = &sync.Mutex{}
        t.locks[eventID] = m
    }
    return m
}
