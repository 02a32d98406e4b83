// Package bufpool provides reusable scratch byte buffers for tile and strip
// encoding, decoding and byte swapping.
package bufpool

import (
	"sync"
	"sync/atomic"
)

// sizes are the discrete capacities of pooled buffers. They cover one row
// strip of a small plane up to a 1024x1024 tile of 32-bit RGBA samples.
var sizes = []int{
	4 << 10,   // 4 KB
	16 << 10,  // 16 KB
	64 << 10,  // 64 KB
	256 << 10, // 256 KB
	1 << 20,   // 1 MB
	4 << 20,   // 4 MB
	16 << 20,  // 16 MB
}

// Pool manages reusable byte buffers. It is safe for concurrent use.
type Pool struct {
	pools  []*sync.Pool
	hits   int64 // atomic
	misses int64 // atomic
}

var global = New()

// New returns an empty pool.
func New() *Pool {
	p := &Pool{pools: make([]*sync.Pool, len(sizes))}
	for i := range sizes {
		p.pools[i] = &sync.Pool{}
	}
	return p
}

func class(size int) int {
	for i, s := range sizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// Get returns a buffer of length size. Its contents are unspecified.
func (p *Pool) Get(size int) []byte {
	idx := class(size)
	if idx < 0 {
		atomic.AddInt64(&p.misses, 1)
		return make([]byte, size)
	}
	if v := p.pools[idx].Get(); v != nil {
		atomic.AddInt64(&p.hits, 1)
		return (*v.(*[]byte))[:size]
	}
	atomic.AddInt64(&p.misses, 1)
	return make([]byte, size, sizes[idx])
}

// GetZeroed returns a buffer of length size with every byte cleared.
func (p *Pool) GetZeroed(size int) []byte {
	b := p.Get(size)
	clear(b)
	return b
}

// Put returns buf to the pool. Buffers whose capacity is not one of the
// pool classes are dropped.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	c := cap(buf)
	idx := class(c)
	if idx < 0 || sizes[idx] != c {
		return
	}
	buf = buf[:c]
	p.pools[idx].Put(&buf)
}

// Stats returns the number of pooled and freshly allocated buffers handed
// out so far.
func (p *Pool) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&p.hits), atomic.LoadInt64(&p.misses)
}

// Get returns a buffer from the global pool.
func Get(size int) []byte { return global.Get(size) }

// GetZeroed returns a cleared buffer from the global pool.
func GetZeroed(size int) []byte { return global.GetZeroed(size) }

// Put returns a buffer to the global pool.
func Put(buf []byte) { global.Put(buf) }
