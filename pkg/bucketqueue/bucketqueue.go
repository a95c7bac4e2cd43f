// Package bucketqueue implements an integer-bucket priority queue over pixel
// indices, the priority structure of the Image Foresting Transform.
//
// Costs are quantized into buckets of width delta. The buckets are used
// circularly, so the queue only needs as many buckets as the largest spread
// between the costs queued at the same time (for IFT: the largest arc cost).
// Within a bucket pixels are served first in, first out, which makes runs with
// ties reproducible.
package bucketqueue

import (
	"fmt"
	"math"
)

const nilIndex = -1

// MaxBuckets bounds the bucket array. Wider cost ranges get wider buckets.
const MaxBuckets = 1 << 16

// Queue is a min (increasing) or max (decreasing) priority bucket queue.
// It is not safe for concurrent use.
type Queue struct {
	increasing bool
	delta      float64

	// head and tail of the doubly linked list in each bucket slot
	head []int
	tail []int

	// per-pixel links and absolute bucket, nilIndex when not queued
	next   []int
	prev   []int
	bucket []int

	// cursor is the absolute bucket removals currently serve; it only moves
	// forward (increasing) or backward (decreasing) once removals started
	cursor  int
	far     int
	started bool
	count   int
}

// New creates a queue for pixels in [0, size). The number of buckets is
// ceil(maxCost/delta)+1; maxCost must bound the spread between any two costs
// queued at the same time. When that exceeds MaxBuckets, delta is widened
// until it fits; Delta reports the width in use.
func New(size int, maxCost, delta float64, increasing bool) *Queue {
	if delta <= 0 || math.IsNaN(delta) {
		delta = 1
	}
	if maxCost < 0 || math.IsNaN(maxCost) {
		maxCost = 0
	}
	if math.IsInf(maxCost, 1) {
		maxCost = math.MaxInt32
	}
	if math.Ceil(maxCost/delta)+1 > MaxBuckets {
		delta = maxCost / (MaxBuckets - 1)
		for math.Ceil(maxCost/delta)+1 > MaxBuckets {
			delta = math.Nextafter(delta, math.Inf(1))
		}
	}
	nbuckets := int(math.Ceil(maxCost/delta)) + 1

	q := &Queue{
		increasing: increasing,
		delta:      delta,
		head:       make([]int, nbuckets),
		tail:       make([]int, nbuckets),
		next:       make([]int, size),
		prev:       make([]int, size),
		bucket:     make([]int, size),
	}
	for i := range q.head {
		q.head[i] = nilIndex
		q.tail[i] = nilIndex
	}
	for i := range q.bucket {
		q.next[i] = nilIndex
		q.prev[i] = nilIndex
		q.bucket[i] = nilIndex
	}
	return q
}

// Buckets returns the number of bucket slots
func (q *Queue) Buckets() int { return len(q.head) }

// Delta returns the bucket width
func (q *Queue) Delta() float64 { return q.delta }

// Len returns the number of queued pixels
func (q *Queue) Len() int { return q.count }

// IsEmpty reports whether no pixel is queued
func (q *Queue) IsEmpty() bool { return q.count == 0 }

// Increasing reports whether the queue serves the lowest cost first
func (q *Queue) Increasing() bool { return q.increasing }

// Contains reports whether pixel is queued
func (q *Queue) Contains(pixel int) bool { return q.bucket[pixel] != nilIndex }

// BucketOf returns the absolute bucket index for a cost
func (q *Queue) BucketOf(cost float64) int {
	return int(math.Floor(cost / q.delta))
}

// Insert places pixel at the tail of the bucket of cost.
//
// Inserting behind the cursor, beyond the bucket range, or a pixel that is
// already queued panics: each means the caller's cost policy is broken.
func (q *Queue) Insert(pixel int, cost float64) {
	if q.bucket[pixel] != nilIndex {
		panic(fmt.Sprintf("bucketqueue: pixel %d inserted twice", pixel))
	}
	b := q.BucketOf(cost)
	q.admit(b, cost)
	q.link(pixel, b)
}

// Remove pops the first pixel of the lowest (or highest) non-empty bucket
func (q *Queue) Remove() (int, bool) {
	if q.count == 0 {
		return nilIndex, false
	}
	q.started = true
	n := len(q.head)
	for q.head[q.slot(q.cursor, n)] == nilIndex {
		if q.increasing {
			q.cursor++
		} else {
			q.cursor--
		}
	}
	pixel := q.head[q.slot(q.cursor, n)]
	q.unlink(pixel)
	return pixel, true
}

// UpdateCost moves a queued pixel from the bucket of oldCost to the bucket of
// newCost. oldCost must be the cost the pixel was queued with.
func (q *Queue) UpdateCost(pixel int, oldCost, newCost float64) {
	b := q.bucket[pixel]
	if b == nilIndex {
		panic(fmt.Sprintf("bucketqueue: update of pixel %d which is not queued", pixel))
	}
	if want := q.BucketOf(oldCost); want != b {
		panic(fmt.Sprintf("bucketqueue: pixel %d is in bucket %d, not %d", pixel, b, want))
	}
	nb := q.BucketOf(newCost)
	q.unlink(pixel)
	q.admit(nb, newCost)
	q.link(pixel, nb)
}

// Delete removes pixel from the queue if it is queued
func (q *Queue) Delete(pixel int) {
	if q.bucket[pixel] != nilIndex {
		q.unlink(pixel)
	}
}

// admit validates bucket b against the cursor and the bucket range
func (q *Queue) admit(b int, cost float64) {
	n := len(q.head)
	if !q.started {
		// before the first removal the cursor tracks the best bucket queued
		// and far the worst one
		if q.count == 0 {
			q.cursor, q.far = b, b
			return
		}
		if q.ahead(q.cursor, b) {
			q.cursor = b
		}
		if q.ahead(b, q.far) {
			q.far = b
		}
		if gap(q.cursor, q.far) >= n {
			panic(fmt.Sprintf("bucketqueue: cost %v exceeds the %d bucket range", cost, n))
		}
		return
	}
	if q.ahead(q.cursor, b) {
		panic(fmt.Sprintf("bucketqueue: cost %v (bucket %d) behind cursor %d", cost, b, q.cursor))
	}
	if gap(q.cursor, b) >= n {
		if q.count == 0 {
			q.cursor = b
			return
		}
		panic(fmt.Sprintf("bucketqueue: cost %v exceeds the %d bucket range from cursor %d", cost, n, q.cursor))
	}
}

// ahead reports whether bucket b is served before bucket a
func (q *Queue) ahead(a, b int) bool {
	if q.increasing {
		return b < a
	}
	return b > a
}

func gap(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func (q *Queue) link(pixel, b int) {
	s := q.slot(b, len(q.head))
	q.bucket[pixel] = b
	q.next[pixel] = nilIndex
	q.prev[pixel] = q.tail[s]
	if q.tail[s] == nilIndex {
		q.head[s] = pixel
	} else {
		q.next[q.tail[s]] = pixel
	}
	q.tail[s] = pixel
	q.count++
}

func (q *Queue) unlink(pixel int) {
	s := q.slot(q.bucket[pixel], len(q.head))
	if q.prev[pixel] == nilIndex {
		q.head[s] = q.next[pixel]
	} else {
		q.next[q.prev[pixel]] = q.next[pixel]
	}
	if q.next[pixel] == nilIndex {
		q.tail[s] = q.prev[pixel]
	} else {
		q.prev[q.next[pixel]] = q.prev[pixel]
	}
	q.next[pixel] = nilIndex
	q.prev[pixel] = nilIndex
	q.bucket[pixel] = nilIndex
	q.count--
}

func (q *Queue) slot(b, n int) int {
	s := b % n
	if s < 0 {
		s += n
	}
	return s
}
