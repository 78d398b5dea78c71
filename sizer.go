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

import "math"

// minRegionExp floors the region size at 1 KiB so that small resources
// do not degenerate into per-byte regions.
const minRegionExp = 10

// regionSizeFor derives a region size from the size of the resource to
// be protected. The exponent is half the log2 of the resource size,
// rounded up, so the number of regions grows roughly with the square
// root of the resource size: the region map stays small for huge
// resources, and the 1 KiB floor keeps it small for tiny ones.
func regionSizeFor(resourceSize uint64) uint64 {
	if resourceSize == 0 {
		panic("rangelock: resource size must be greater than zero")
	}
	exp := uint64(math.Ceil(math.Log2(float64(resourceSize)) * 0.5))
	if exp < minRegionExp {
		exp = minRegionExp
	}
	return 1 << exp
}
