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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRegionTableLifecycle(t *testing.T) {
	tab := newRegionTable()
	assert.Equal(t, 0, tab.len())

	r := tab.acquire(7)
	require.NotNil(t, r)
	assert.Equal(t, uint64(1), r.refs)
	assert.Equal(t, 1, tab.len())

	// A second acquire of the same id returns the same entry.
	assert.Same(t, r, tab.acquire(7))
	assert.Equal(t, uint64(2), r.refs)
	assert.Equal(t, 1, tab.len())

	assert.Same(t, r, tab.held(7))

	tab.release(7)
	assert.Equal(t, uint64(1), r.refs)
	assert.Equal(t, 1, tab.len())

	// The entry disappears the moment the last holder leaves.
	tab.release(7)
	assert.Equal(t, 0, tab.len())
}

func TestRegionTableContractViolations(t *testing.T) {
	tab := newRegionTable()

	assert.Panics(t, func() { tab.held(3) }, "held of an absent region")
	assert.Panics(t, func() { tab.release(3) }, "release of an absent region")

	tab.acquire(3)
	tab.release(3)
	assert.Panics(t, func() { tab.held(3) }, "held after the last release")
	assert.Panics(t, func() { tab.release(3) }, "unbalanced release")
}

func TestRegionTableConcurrentChurn(t *testing.T) {
	tab := newRegionTable()

	const goroutines = 16
	const iterations = 2000

	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		i := i
		g.Go(func() error {
			for n := 0; n < iterations; n++ {
				id := uint64((i + n) % 8)
				r := tab.acquire(id)
				r.mu.Lock()
				r.mu.Unlock()
				tab.release(id)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 0, tab.len(), "table must be empty after balanced acquire/release")
}
