package archive

import (
	"io"

	"github.com/spaolacci/murmur3"
)

// filler yields a deterministic xorshift stream seeded from the slug, so
// two archives for the same slug carry identical padding.
type filler struct {
	state     uint64
	remaining int64
}

func newFiller(slug string, n int64) io.Reader {
	seed := murmur3.Sum64([]byte(slug))
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &filler{state: seed, remaining: n}
}

func (f *filler) Read(p []byte) (int, error) {
	if f.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > f.remaining {
		p = p[:f.remaining]
	}
	for i := 0; i < len(p); i += 8 {
		f.state ^= f.state << 13
		f.state ^= f.state >> 7
		f.state ^= f.state << 17
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(f.state >> (8 * j))
		}
	}
	f.remaining -= int64(len(p))
	return len(p), nil
}
