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

import "fmt"

// checkRange rejects byte ranges no lock operation may accept: a
// zero-length range, or one whose end offset does not fit in a uint64.
// Both indicate a bug in the caller, so they abort rather than return.
func checkRange(offset, length uint64) {
	if length == 0 {
		panic("rangelock: zero-length range")
	}
	if offset+length < offset {
		panic(fmt.Sprintf("rangelock: range end %d+%d overflows", offset, length))
	}
}

// regionSpan is the region-id coverage of a validated request: count
// consecutive ids starting at first, so the sequence is ascending and
// duplicate-free by construction. It is a plain value; iteration over
// it is lazy, restartable and can stop early.
type regionSpan struct {
	first uint64
	count uint64
}

// span widens [offset, offset+length) to region boundaries and returns
// the ids it covers. Callers therefore lock the conservative superset
// [alignDown(offset), alignUp(offset+length)) of the bytes they asked
// for. The last id comes from the final covered byte rather than the
// aligned end offset, so coverage reaching the top of the address
// space needs no special casing.
func (l *RangeLock) span(offset, length uint64) regionSpan {
	checkRange(offset, length)
	first := offset / l.regionSize
	last := (offset + length - 1) / l.regionSize
	return regionSpan{first: first, count: last - first + 1}
}

// forEach calls f with each covered id in ascending order, stopping as
// soon as f returns false.
func (s regionSpan) forEach(f func(id uint64) bool) {
	for i := uint64(0); i < s.count; i++ {
		if !f(s.first + i) {
			return
		}
	}
}
