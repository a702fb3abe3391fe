package business

import "sync"

// projectLock serializes mutating ledger operations per project within
// this process: at most one allocation/raise/installment in flight per
// project, so a waterfall never reads a capital or paid-in figure another
// in-flight waterfall is about to move. Cross-process contention is still
// caught by the version check at commit.
type projectLock struct {
	mu   sync.Mutex
	refs int
}

var (
	projectLocksMu sync.Mutex
	projectLocks   = map[uint]*projectLock{}
)

// lockProject blocks until the project is free and returns the unlock.
// Entries are refcounted and dropped once the last holder releases, so
// the map only ever tracks projects with an operation in flight.
func lockProject(projectID uint) func() {
	projectLocksMu.Lock()
	l := projectLocks[projectID]
	if l == nil {
		l = &projectLock{}
		projectLocks[projectID] = l
	}
	l.refs++
	projectLocksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		projectLocksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(projectLocks, projectID)
		}
		projectLocksMu.Unlock()
	}
}
