package analysis

import "sync"

// sampleRing is a thread-safe circular buffer of mono samples.
type sampleRing struct {
	buf  []float32
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

func newSampleRing(size int) *sampleRing {
	return &sampleRing{
		buf:  make([]float32, size),
		size: size,
	}
}

// write appends samples, overwriting the oldest when full.
func (r *sampleRing) write(p []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(p) > r.size {
		p = p[len(p)-r.size:]
	}
	for _, s := range p {
		r.buf[r.w] = s
		r.w = (r.w + 1) % r.size
	}
	r.len += len(p)
	if r.len > r.size {
		r.len = r.size
	}
}

// latest copies the newest len(dst) samples into dst in chronological order.
// When fewer samples have been written, the front of dst is zero filled.
func (r *sampleRing) latest(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(dst)
	if n > r.size {
		n = r.size
	}
	have := r.len
	if have > n {
		have = n
	}
	pad := len(dst) - have
	for i := range pad {
		dst[i] = 0
	}
	start := (r.w - have + r.size) % r.size
	for i := range have {
		dst[pad+i] = float64(r.buf[(start+i)%r.size])
	}
}

func (r *sampleRing) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w = 0
	r.len = 0
}
