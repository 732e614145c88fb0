// Package pattern models a rectangular run of palette indices and the
// orientations (flips) it is willing to match under. Deduplication
// across separate solver runs needs a way to name "the same Pattern
// object" without holding onto the object itself — the original
// implementation used a weak reference for this; here every Pattern is
// assigned a stable numeric ID at construction that survives deep
// copies and repeated solver visits.
package pattern

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Flip is a bitmask of the orientations a Pattern may be matched
// under.
type Flip uint8

const (
	FlipNone      Flip = 0
	FlipHoriz     Flip = 1
	FlipVert      Flip = 2
	FlipHorizVert Flip = FlipHoriz | FlipVert
)

// allFlips enumerates every orientation in a fixed, deterministic
// order.
var allFlips = [4]Flip{FlipNone, FlipHoriz, FlipVert, FlipHorizVert}

// IndexedColorArray is a width x height grid of palette indices in
// row-major order.
type IndexedColorArray struct {
	Width, Height int
	Values        []int
}

// Get returns the palette index at (x, y).
func (a IndexedColorArray) Get(x, y int) int {
	return a.Values[y*a.Width+x]
}

var nextID atomic.Uint64

// Pattern is one tile's pixel content plus the flips it may be
// recognized under. ID is assigned once, at construction, and never
// changes, so a ChangeList produced in one
// SubsetSolver visit still names the right Pattern when replayed or
// compared against results from another visit.
type Pattern struct {
	ID              uint64
	FlipsAllowed    Flip
	PatternSetIndex *int
	Index           IndexedColorArray

	hashes [4]*uint64
}

// New builds a Pattern over index, always hashing the unflipped
// orientation and additionally hashing every orientation flipsAllowed
// permits. patternSetIndex, if non-nil, restricts this pattern to a
// single destination index.
func New(index IndexedColorArray, flipsAllowed Flip, patternSetIndex *int) *Pattern {
	p := &Pattern{
		ID:              nextID.Add(1),
		FlipsAllowed:    flipsAllowed,
		PatternSetIndex: patternSetIndex,
		Index:           index,
	}
	p.hashes[FlipNone] = p.hashForOrientation(FlipNone)
	for _, f := range []Flip{FlipHoriz, FlipVert, FlipHorizVert} {
		if flipsAllowed&f == f {
			p.hashes[f] = p.hashForOrientation(f)
		}
	}
	return p
}

// HashForFlip returns the content hash for the given orientation, and
// whether that orientation is available for this pattern at all.
func (p *Pattern) HashForFlip(flip Flip) (uint64, bool) {
	h := p.hashes[flip]
	if h == nil {
		return 0, false
	}
	return *h, true
}

// NumUniqueHashes counts the distinct content hashes across every
// orientation this pattern supports — a pattern whose flips all
// collapse to the same hash (e.g. a symmetric tile) offers fewer real
// alternatives than one whose orientations are all distinct.
func (p *Pattern) NumUniqueHashes() int {
	seen := map[uint64]struct{}{}
	for _, f := range allFlips {
		if h, ok := p.HashForFlip(f); ok {
			seen[h] = struct{}{}
		}
	}
	return len(seen)
}

// orientedIndexArray returns a new array holding this pattern's pixels
// as seen under the given flip.
func (p *Pattern) orientedIndexArray(flip Flip) IndexedColorArray {
	w, h := p.Index.Width, p.Index.Height
	values := make([]int, 0, w*h)

	xs := ascending(w)
	ys := ascending(h)
	if flip&FlipHoriz == FlipHoriz {
		xs = descending(w)
	}
	if flip&FlipVert == FlipVert {
		ys = descending(h)
	}

	for _, y := range ys {
		for _, x := range xs {
			values = append(values, p.Index.Get(x, y))
		}
	}
	return IndexedColorArray{Width: w, Height: h, Values: values}
}

func (p *Pattern) hashForOrientation(flip Flip) *uint64 {
	oriented := p.orientedIndexArray(flip)
	d := xxhash.New()
	buf := make([]byte, 8)
	for _, v := range oriented.Values {
		putUvarintLE(buf, uint64(v))
		d.Write(buf)
	}
	sum := d.Sum64()
	return &sum
}

func putUvarintLE(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

func ascending(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func descending(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = n - 1 - i
	}
	return out
}
