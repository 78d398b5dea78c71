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

// Package rangelock implements byte-range locking over a linear shared
// resource, such as a file or a buffer.
//
// The resource's address space is virtually divided into fixed-size,
// power-of-two regions; the region is the unit of lock granularity. A
// request for [offset, offset+length) is widened to the region-aligned
// superset of the bytes asked for and takes every covered region's
// mutex, always in ascending region-id order. Since all callers
// acquire regions in that one global order, two requests with
// overlapping coverage contend first on their lowest shared id and
// cyclic waits cannot form — provided every user of the resource
// routes its accesses through the same RangeLock.
//
// Only the regions currently in use are materialized. A region is
// created on its first acquisition and destroyed, by reference
// counting, as soon as its last holder leaves, so memory use is
// proportional to the number of ranges held rather than to the size
// of the resource.
//
// RangeLock performs no I/O itself: the caller acquires a range, does
// its reads or writes, and releases the range.
package rangelock

import (
	"fmt"
	"sync"
)

// RangeLock controls access to byte ranges of a single shared
// resource. The zero value is not usable; construct one with New or
// NewForResource.
//
// Like sync.Mutex, a RangeLock is not reentrant: a goroutine that
// locks a range and, before unlocking it, locks a second range
// covering any of the same regions will deadlock on itself.
type RangeLock struct {
	regionSize uint64
	table      *regionTable
}

// New returns a RangeLock with an explicit region size, which must be
// a positive power of two. Smaller regions give finer-grained locking
// at the cost of more regions per request; if in doubt, use
// NewForResource instead.
func New(regionSize uint64) *RangeLock {
	if regionSize == 0 || regionSize&(regionSize-1) != 0 {
		panic(fmt.Sprintf("rangelock: region size %d is not a positive power of two", regionSize))
	}
	return &RangeLock{
		regionSize: regionSize,
		table:      newRegionTable(),
	}
}

// NewForResource returns a RangeLock whose region size is derived from
// the size of the resource it will protect. To guard a file, pass the
// file's size. Panics if resourceSize is zero.
func NewForResource(resourceSize uint64) *RangeLock {
	return New(regionSizeFor(resourceSize))
}

// RegionSize reports the byte span of one region.
func (l *RangeLock) RegionSize() uint64 {
	return l.regionSize
}

// Lock locks [offset, offset+length) for exclusive ownership, blocking
// until every covered region is held. Distinct ranges that fall into
// the same region serialize on it even when their bytes do not truly
// overlap.
func (l *RangeLock) Lock(offset, length uint64) {
	l.span(offset, length).forEach(func(id uint64) bool {
		l.table.acquire(id).mu.Lock()
		return true
	})
}

// TryLock tries to lock [offset, offset+length) for exclusive
// ownership without blocking. It returns true holding the whole range,
// or false holding none of it; partial acquisition is never observable.
func (l *RangeLock) TryLock(offset, length uint64) bool {
	return l.tryLockSpan(l.span(offset, length),
		func(r *region) bool { return r.mu.TryLock() },
		func(r *region) { r.mu.Unlock() })
}

// Unlock releases exclusive ownership of [offset, offset+length),
// which must be the identical range passed to the matching Lock. It is
// a run-time error if the range is not held.
func (l *RangeLock) Unlock(offset, length uint64) {
	l.span(offset, length).forEach(func(id uint64) bool {
		l.table.held(id).mu.Unlock()
		l.table.release(id)
		return true
	})
}

// RLock locks [offset, offset+length) for shared ownership, blocking
// until every covered region is held. Any number of shared holders may
// cover a region at once; each excludes exclusive holders.
func (l *RangeLock) RLock(offset, length uint64) {
	l.span(offset, length).forEach(func(id uint64) bool {
		l.table.acquire(id).mu.RLock()
		return true
	})
}

// TryRLock tries to lock [offset, offset+length) for shared ownership
// without blocking, with the same all-or-nothing guarantee as TryLock.
func (l *RangeLock) TryRLock(offset, length uint64) bool {
	return l.tryLockSpan(l.span(offset, length),
		func(r *region) bool { return r.mu.TryRLock() },
		func(r *region) { r.mu.RUnlock() })
}

// RUnlock releases shared ownership of [offset, offset+length), which
// must be the identical range passed to the matching RLock.
func (l *RangeLock) RUnlock(offset, length uint64) {
	l.span(offset, length).forEach(func(id uint64) bool {
		l.table.held(id).mu.RUnlock()
		l.table.release(id)
		return true
	})
}

// tryLockSpan attempts tryLock on each covered region in ascending
// order. On the first refusal it unwinds every region this call has
// taken, including the refcount it put on the refusing region, and
// reports failure with nothing held.
func (l *RangeLock) tryLockSpan(s regionSpan, tryLock func(*region) bool, unlock func(*region)) bool {
	taken := s.first
	ok := true
	s.forEach(func(id uint64) bool {
		if !tryLock(l.table.acquire(id)) {
			l.table.release(id)
			ok = false
			return false
		}
		taken = id + 1
		return true
	})
	if !ok {
		for id := s.first; id < taken; id++ {
			unlock(l.table.held(id))
			l.table.release(id)
		}
	}
	return ok
}

// WithLock runs fn with [offset, offset+length) exclusively locked.
// The range is released on every exit path, including a panicking fn,
// and fn's error is returned unchanged.
func (l *RangeLock) WithLock(offset, length uint64, fn func() error) error {
	l.Lock(offset, length)
	defer l.Unlock(offset, length)
	return fn()
}

// WithRLock runs fn with [offset, offset+length) locked for shared
// ownership, releasing on every exit path.
func (l *RangeLock) WithRLock(offset, length uint64, fn func() error) error {
	l.RLock(offset, length)
	defer l.RUnlock(offset, length)
	return fn()
}

// rangeLocker binds one byte range of a RangeLock to the sync.Locker
// interface.
type rangeLocker struct {
	l              *RangeLock
	offset, length uint64
	shared         bool
}

func (rl rangeLocker) Lock() {
	if rl.shared {
		rl.l.RLock(rl.offset, rl.length)
	} else {
		rl.l.Lock(rl.offset, rl.length)
	}
}

func (rl rangeLocker) Unlock() {
	if rl.shared {
		rl.l.RUnlock(rl.offset, rl.length)
	} else {
		rl.l.Unlock(rl.offset, rl.length)
	}
}

// Locker returns a sync.Locker whose Lock and Unlock operate on
// [offset, offset+length) exclusively, for use with APIs such as
// sync.NewCond. The range is validated on each operation, not here.
func (l *RangeLock) Locker(offset, length uint64) sync.Locker {
	return rangeLocker{l: l, offset: offset, length: length}
}

// RLocker is the shared-ownership counterpart of Locker.
func (l *RangeLock) RLocker(offset, length uint64) sync.Locker {
	return rangeLocker{l: l, offset: offset, length: length, shared: true}
}
