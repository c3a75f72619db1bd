// Package proxy rotates outbound proxies for article downloads and benches
// the ones that keep failing.
package proxy

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

type entry struct {
	url      *url.URL
	failures int
	benched  time.Time // zero when usable
}

// Pool hands out proxies round-robin. It is safe for concurrent use.
type Pool struct {
	mu          sync.Mutex
	entries     []*entry
	index       map[string]*entry
	next        int
	maxFailures int
	cooldown    time.Duration
	now         func() time.Time
}

// Config defines settings for the Pool.
type Config struct {
	// MaxFailures in a row before a proxy is benched. Default 3.
	MaxFailures int
	// Cooldown is how long a benched proxy sits out. Default 5m.
	Cooldown time.Duration
}

// NewPool creates an empty pool.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{
		index:       make(map[string]*entry),
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
		now:         time.Now,
	}
}

// LoadFile adds one proxy per line from path. Blank lines and lines
// starting with '#' are skipped.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open proxy file: %w", err)
	}
	defer f.Close()

	var raws []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raws = append(raws, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read proxy file: %w", err)
	}
	return p.Add(raws...)
}

// Add registers proxies. A missing scheme defaults to http; duplicates are
// ignored.
func (p *Pool) Add(raws ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, raw := range raws {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid proxy %q", raw)
		}
		if _, dup := p.index[u.String()]; dup {
			continue
		}
		e := &entry{url: u}
		p.entries = append(p.entries, e)
		p.index[u.String()] = e
	}
	return nil
}

// Len reports how many proxies are registered.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Next returns the next usable proxy, or nil when the pool is empty or
// every proxy is benched.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for range p.entries {
		e := p.entries[p.next]
		p.next = (p.next + 1) % len(p.entries)

		if !e.benched.IsZero() {
			if now.Before(e.benched) {
				continue
			}
			e.benched = time.Time{}
			e.failures = 0
		}
		return e.url
	}
	return nil
}

// Report records the outcome of a request made through u. Unknown proxies
// are ignored.
func (p *Pool) Report(u *url.URL, ok bool) {
	if u == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	e, found := p.index[u.String()]
	if !found {
		return
	}
	if ok {
		e.failures = 0
		return
	}
	e.failures++
	if e.failures >= p.maxFailures {
		e.benched = p.now().Add(p.cooldown)
	}
}
