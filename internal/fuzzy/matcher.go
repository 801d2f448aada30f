package fuzzy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jellydator/ttlcache/v3"
)

// Matcher memoizes MatchWith results keyed by the option universe and the
// query, so repeated keystrokes over a large column list skip re-ranking.
// The option slice is fingerprinted on every call, so a changed universe
// never reads a stale entry. Safe for concurrent use.
type Matcher struct {
	opt   Options
	cache *ttlcache.Cache[uint64, []Option]
}

// NewMatcher returns a Matcher holding at most size results for ttl each.
func NewMatcher(opt Options, size int, ttl time.Duration) *Matcher {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Matcher{
		opt: opt,
		cache: ttlcache.New[uint64, []Option](
			ttlcache.WithTTL[uint64, []Option](ttl),
			ttlcache.WithCapacity[uint64, []Option](uint64(size)),
		),
	}
}

// Match behaves like MatchWith with the matcher's options.
func (m *Matcher) Match(options []Option, query string) []Option {
	if strings.TrimSpace(query) == "" {
		return options
	}
	key := fingerprint(options, query)
	if item := m.cache.Get(key); item != nil {
		return append([]Option(nil), item.Value()...)
	}
	out := MatchWith(options, query, m.opt)
	m.cache.Set(key, out, ttlcache.DefaultTTL)
	return append([]Option(nil), out...)
}

// Len reports how many results are cached.
func (m *Matcher) Len() int { return m.cache.Len() }

func fingerprint(options []Option, query string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(query)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.Itoa(len(options)))
	for _, o := range options {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(o.Label)
		_, _ = d.WriteString("\x01")
		_, _ = d.WriteString(fmt.Sprintf("%T:%v", o.Value, o.Value))
	}
	return d.Sum64()
}
