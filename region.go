// Copyright 2026 The go-rangelock Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package rangelock

import (
	"fmt"
	"sync"
)

// region is the lock state of one fixed-size partition of the address
// space. A region exists in the table exactly while refs > 0: it is
// created on first acquisition and deleted the moment the last holder
// leaves.
type region struct {
	refs uint64 // guarded by regionTable.mu, never by region.mu
	mu   sync.RWMutex
}

// regionTable owns the id -> region mapping. Its mutex guards only the
// O(1) structural bookkeeping (insert, erase, refcount) and is never
// held across a blocking acquisition of a region's own mutex, so
// contention on the table cannot serialize unrelated regions. Because
// refcounts change only under this mutex, a region can never be
// deleted while another goroutine is still registering itself on it.
type regionTable struct {
	mu      sync.Mutex
	regions map[uint64]*region
}

func newRegionTable() *regionTable {
	return &regionTable{regions: make(map[uint64]*region)}
}

// acquire registers the caller as a holder of id, creating the region
// on first reference. Every acquire must eventually be paired with a
// release, after the region's own mutex has been given up.
func (t *regionTable) acquire(id uint64) *region {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.regions[id]
	if !ok {
		r = new(region)
		t.regions[id] = r
	}
	r.refs++
	return r
}

// held returns the region for id, which the caller must already have
// acquired. Looking up an absent or unreferenced region is a bug in
// the caller, not a recoverable condition.
func (t *regionTable) held(id uint64) *region {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.regions[id]
	if !ok || r.refs == 0 {
		panic(fmt.Sprintf("rangelock: region %d is not held", id))
	}
	return r
}

// release drops one reference to id, erasing the entry when the last
// holder leaves.
func (t *regionTable) release(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.regions[id]
	if !ok || r.refs == 0 {
		panic(fmt.Sprintf("rangelock: release of region %d, which is not held", id))
	}
	r.refs--
	if r.refs == 0 {
		delete(t.regions, id)
	}
}

// len reports the number of live regions.
func (t *regionTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.regions)
}
