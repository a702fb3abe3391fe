package business

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two contributions race for the last slot of the pool; serialization per
// project means exactly one lands and the capacity invariant holds.
func TestConcurrentContributionsRespectCapacity(t *testing.T) {
	db := newTestDB(t)
	project := createTestProject(t, db, 10000, 10)
	alice := createTestUser(t, db, "Alice", "investor", nil)
	bob := createTestUser(t, db, "Bob", "investor", nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, investorID := range []uint{alice.ID, bob.ID} {
		wg.Add(1)
		go func(slot int, id uint) {
			defer wg.Done()
			_, errs[slot] = AddContribution(db, project.ID, id, 6000, 0, "2026-08")
		}(i, investorID)
	}
	wg.Wait()

	var succeeded, capacityHits int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, ErrCapacityExceeded)
			capacityHits++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, capacityHits)
}

func TestLockProjectIsPerProject(t *testing.T) {
	unlockA := lockProject(1)
	// A different project's lock must not block
	unlockB := lockProject(2)
	unlockB()
	unlockA()

	// Same project lock is reusable after release
	unlock := lockProject(1)
	unlock()
}

func TestLockProjectEvictsIdleEntries(t *testing.T) {
	unlockA := lockProject(41)
	unlockB := lockProject(42)

	projectLocksMu.Lock()
	_, aLive := projectLocks[41]
	_, bLive := projectLocks[42]
	projectLocksMu.Unlock()
	assert.True(t, aLive)
	assert.True(t, bLive)

	unlockA()
	unlockB()

	// Last holder out drops the entry; the map only tracks in-flight work
	projectLocksMu.Lock()
	_, aLive = projectLocks[41]
	_, bLive = projectLocks[42]
	projectLocksMu.Unlock()
	assert.False(t, aLive)
	assert.False(t, bLive)

	// A waiter keeps the entry alive until it too releases
	unlockA = lockProject(41)
	done := make(chan struct{})
	go func() {
		unlock := lockProject(41)
		unlock()
		close(done)
	}()
	unlockA()
	<-done

	projectLocksMu.Lock()
	_, aLive = projectLocks[41]
	projectLocksMu.Unlock()
	assert.False(t, aLive)
}
