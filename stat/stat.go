package stat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type RuleStats struct {
	BytesIn       uint64
	BytesOut      uint64
	ConnCount     int32
	SniffFailures uint64
	RateInKBps    float64
	RateOutKBps   float64
}

type StatsManager struct {
	mu    sync.RWMutex
	stats map[string]*RuleStats
}

type Snapshot struct {
	RuleStats      map[string]RuleStats `json:"ruleStats"`
	LastUpdateTime time.Time            `json:"lastUpdateTime"`
}

var GlobalStats = NewStatsManager()

func NewStatsManager() *StatsManager {
	return &StatsManager{stats: make(map[string]*RuleStats)}
}

func (m *StatsManager) getOrCreateRule(key string) *RuleStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stats[key]; ok {
		return s
	}
	s := &RuleStats{}
	m.stats[key] = s
	return s
}

func (m *StatsManager) AddConn(key string) {
	atomic.AddInt32(&m.getOrCreateRule(key).ConnCount, 1)
}

func (m *StatsManager) RemoveConn(key string) {
	atomic.AddInt32(&m.getOrCreateRule(key).ConnCount, -1)
}

func (m *StatsManager) AddBytes(key string, in, out int64) {
	s := m.getOrCreateRule(key)
	atomic.AddUint64(&s.BytesIn, uint64(in))
	atomic.AddUint64(&s.BytesOut, uint64(out))
}

// AddSniffFailure counts a connection dropped because no host could be read from it.
func (m *StatsManager) AddSniffFailure(key string) {
	atomic.AddUint64(&m.getOrCreateRule(key).SniffFailures, 1)
}

func (m *StatsManager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot := Snapshot{
		RuleStats:      make(map[string]RuleStats, len(m.stats)),
		LastUpdateTime: time.Now(),
	}

	for k, v := range m.stats {
		snapshot.RuleStats[k] = RuleStats{
			BytesIn:       atomic.LoadUint64(&v.BytesIn),
			BytesOut:      atomic.LoadUint64(&v.BytesOut),
			ConnCount:     atomic.LoadInt32(&v.ConnCount),
			SniffFailures: atomic.LoadUint64(&v.SniffFailures),
			RateInKBps:    v.RateInKBps,
			RateOutKBps:   v.RateOutKBps,
		}
	}
	return snapshot
}

// updateRates derives per-second rates from the byte counters of two snapshots.
func (m *StatsManager) updateRates(prev, now Snapshot, elapsed time.Duration) {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, curr := range now.RuleStats {
		last := prev.RuleStats[key]
		s := m.stats[key]
		s.RateInKBps = float64(curr.BytesIn-last.BytesIn) / 1024.0 / secs
		s.RateOutKBps = float64(curr.BytesOut-last.BytesOut) / 1024.0 / secs
	}
}

// Start refreshes the rates every second until ctx is done.
func (m *StatsManager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		prev := m.Snapshot()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := m.Snapshot()
				m.updateRates(prev, now, now.LastUpdateTime.Sub(prev.LastUpdateTime))
				prev = now
			}
		}
	}()
}
