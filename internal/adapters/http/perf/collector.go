package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind tells apart inbound requests, academy API calls and session store queries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindUpstream
	KindQuery
)

// Entry is one timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // route pattern, "GET /api/groups/{id}/" or "sessions.Get"
	StatusCode int    // 0 for queries and transport failures
	DurationMs float64
	Timestamp  time.Time
}

// Collector keeps the most recent entries in a fixed ring.
// Writers never block on readers; aggregation happens in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   int64
}

// NewCollector creates a collector holding up to size entries.
// PRE: size > 0, otherwise DefaultRingSize is used
// POST: storage is pre-allocated
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record stores e, overwriting the oldest entry when full.
// Safe for concurrent use; a nil collector discards the entry.
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	atomic.AddInt64(&c.count, 1)
}

// TotalRecorded returns how many entries were ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.count)
}

// Snapshot is the aggregated view shown on the perf page.
type Snapshot struct {
	TotalRecorded  int64
	Requests       Percentiles
	Upstream       Percentiles
	UpstreamErrors int
	SlowestPaths   []PathStat
	SlowestCalls   []PathStat
	SlowestQueries []PathStat
}

// Percentiles summarises a latency distribution in milliseconds.
type Percentiles struct {
	Count int
	P50Ms float64
	P95Ms float64
	P99Ms float64
}

// PathStat aggregates timing for one path, upstream route or store method.
type PathStat struct {
	Path    string
	AvgMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
}

type bucket struct {
	durations []float64
	stats     map[string]*PathStat
}

func (b *bucket) add(e Entry) {
	b.durations = append(b.durations, e.DurationMs)
	s, ok := b.stats[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		b.stats[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	if e.DurationMs > s.MaxMs {
		s.MaxMs = e.DurationMs
	}
}

// Snapshot aggregates entries newer than since, listing the topN slowest per kind.
// Sorting makes this expensive; call it from the staff page only.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	buckets := map[EntryKind]*bucket{
		KindRequest:  {stats: map[string]*PathStat{}},
		KindUpstream: {stats: map[string]*PathStat{}},
		KindQuery:    {stats: map[string]*PathStat{}},
	}
	upstreamErrors := 0
	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		b, ok := buckets[e.Kind]
		if !ok {
			continue
		}
		b.add(e)
		if e.Kind == KindUpstream && (e.StatusCode == 0 || e.StatusCode >= 500) {
			upstreamErrors++
		}
	}

	return Snapshot{
		TotalRecorded:  c.TotalRecorded(),
		Requests:       summarize(buckets[KindRequest].durations),
		Upstream:       summarize(buckets[KindUpstream].durations),
		UpstreamErrors: upstreamErrors,
		SlowestPaths:   topByAvg(buckets[KindRequest].stats, topN),
		SlowestCalls:   topByAvg(buckets[KindUpstream].stats, topN),
		SlowestQueries: topByAvg(buckets[KindQuery].stats, topN),
	}
}

func summarize(durations []float64) Percentiles {
	p := Percentiles{Count: len(durations)}
	if len(durations) == 0 {
		return p
	}
	sort.Float64s(durations)
	p.P50Ms = percentile(durations, 50)
	p.P95Ms = percentile(durations, 95)
	p.P99Ms = percentile(durations, 99)
	return p
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the n entries with the highest average, slowest first.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
