// Package testutils provides deterministic generators, fixtures and a
// recording oracle for firecrown tests.
package testutils

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// Thread-safe counter for deterministic ID generation
	idCounter uint64
	idMutex   sync.Mutex
)

// GenerateUUID returns a deterministic UUID in test mode and a random one
// otherwise.
// In test mode, returns UUIDs in format: 00000001-0000-4000-8000-000000000001,
// 00000002-0000-4000-8000-000000000002, etc.
func GenerateUUID(testMode bool) uuid.UUID {
	if testMode {
		return deterministicUUID()
	}
	return uuid.New()
}

// deterministicUUID keeps the version 4 layout so the IDs still parse.
func deterministicUUID() uuid.UUID {
	idMutex.Lock()
	defer idMutex.Unlock()

	idCounter++
	return uuid.MustParse(fmt.Sprintf("%08x-0000-4000-8000-%012x", idCounter, idCounter))
}

// ResetTestCounters resets the deterministic counters.
// This should only be called from test code to ensure consistent test runs.
func ResetTestCounters() {
	idMutex.Lock()
	defer idMutex.Unlock()
	idCounter = 0
}
