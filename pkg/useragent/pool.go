// Package useragent supplies browser User-Agent strings for article
// downloads. Publishers serve stripped or blocked pages to obvious bots.
package useragent

import (
	"math/rand/v2"
	"sync/atomic"
)

// Browsers is the default set: current desktop Chrome, Firefox, Safari and
// Edge.
var Browsers = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.5; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
}

// Pool rotates through a fixed list of User-Agents.
type Pool struct {
	uas    []string
	random bool
	n      atomic.Uint64
}

// NewPool returns a round-robin pool over uas, or over Browsers when uas is
// empty.
func NewPool(uas []string) *Pool {
	if len(uas) == 0 {
		uas = Browsers
	}
	return &Pool{uas: append([]string(nil), uas...)}
}

// NewRandomPool is like NewPool but picks uniformly at random.
func NewRandomPool(uas []string) *Pool {
	p := NewPool(uas)
	p.random = true
	return p
}

// Pick returns the next User-Agent. It is safe for concurrent use.
func (p *Pool) Pick() string {
	if len(p.uas) == 0 {
		return ""
	}
	if p.random {
		return p.uas[rand.IntN(len(p.uas))]
	}
	i := p.n.Add(1) - 1
	return p.uas[i%uint64(len(p.uas))]
}

// Len reports the number of User-Agents in the pool.
func (p *Pool) Len() int { return len(p.uas) }
