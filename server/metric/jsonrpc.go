package metric

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

const (
	DefaultJsonrpcDurationsSize   = 20000
	DefaultJsonrpcDurationsExpire = 10 * time.Second

	methodOther   = "other"
	resultSuccess = "success"
	resultFailure = "failure"
)

var (
	mkMethod = NewMetricKey("method")
	mkResult = NewMetricKey("result")

	msLatency     = stats.Int64("jsonrpc_latency", "latency of jsonrpc methods", stats.UnitMilliseconds)
	msLatencyAvg  = stats.Int64("jsonrpc_latency_avg", "moving average of jsonrpc latency", "ns")
	latencyMks    = []tag.Key{mkMethod, mkResult}
	latencyAvgMks = []tag.Key{mkMethod}

	knownMethods = map[string]bool{
		"gov_submitVote":         true,
		"gov_isValidSigner":      true,
		"gov_getNonce":           true,
		"gov_resolveProposal":    true,
		"gov_getSigner":          true,
		"gov_getProposal":        true,
		"gov_getVoteMessageHash": true,
	}

	jms    []*JsonrpcMetric
	jmsMtx sync.Mutex
)

func RegisterJsonrpc() {
	err := view.Register(
		NewMetricView(msLatency, view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000), latencyMks),
		NewMetricView(msLatencyAvg, view.LastValue(), latencyAvgMks),
	)
	if err != nil {
		log.Fatalf("Fail RegisterJsonrpc view.Register %+v", err)
	}
	RegisterBeforeExportFunc(func() {
		jmsMtx.Lock()
		l := append([]*JsonrpcMetric(nil), jms...)
		jmsMtx.Unlock()
		for _, jm := range l {
			jm.refresh()
		}
	})
}

// JsonrpcMetric records the latency of each call and the moving average
// of the latency per method over the recent window.
type JsonrpcMetric struct {
	expire     time.Duration
	size       int
	useDefault bool

	lock    sync.Mutex
	windows map[string]*Durations
}

// NewJsonrpcMetric returns the recorder keeping latencies of the last
// expire duration, up to size per method. Unknown methods are recorded
// as "other" if useDefault is set, or ignored.
func NewJsonrpcMetric(expire time.Duration, size int, useDefault bool) *JsonrpcMetric {
	jm := &JsonrpcMetric{
		expire:     expire,
		size:       size,
		useDefault: useDefault,
		windows:    make(map[string]*Durations),
	}
	jmsMtx.Lock()
	defer jmsMtx.Unlock()
	jms = append(jms, jm)
	return jm
}

func (m *JsonrpcMetric) methodName(method string) (string, bool) {
	if knownMethods[method] {
		return method, true
	}
	return methodOther, m.useDefault
}

func (m *JsonrpcMetric) window(method string) *Durations {
	m.lock.Lock()
	defer m.lock.Unlock()
	ds, ok := m.windows[method]
	if !ok {
		ds = NewDurations(m.size)
		m.windows[method] = ds
	}
	return ds
}

// OnHandle records the call of the method started at ts.
func (m *JsonrpcMetric) OnHandle(ctx context.Context, method string, ts time.Time, err error) {
	name, ok := m.methodName(method)
	if !ok {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	ctx = GetMetricContext(ctx, GetMetricTag(&mkMethod, name), GetMetricTag(&mkResult, result))

	ds := m.window(name)
	d := ds.Add(ts)
	ds.Remove(m.expire)
	stats.Record(ctx, msLatency.M(d.Milliseconds()), msLatencyAvg.M(int64(ds.Avg())))
}

// refresh drops expired latencies, so the average of an idle method decays.
func (m *JsonrpcMetric) refresh() {
	m.lock.Lock()
	windows := make(map[string]*Durations, len(m.windows))
	for k, v := range m.windows {
		windows[k] = v
	}
	m.lock.Unlock()

	for method, ds := range windows {
		ds.Remove(m.expire)
		ctx := NewMetricContext(GetMetricTag(&mkMethod, method))
		stats.Record(ctx, msLatencyAvg.M(int64(ds.Avg())))
	}
}

type sample struct {
	at time.Time
	d  time.Duration
}

// Durations is a bounded window of latencies in the order of recording.
type Durations struct {
	lock  sync.Mutex
	limit int
	items []sample
	sum   time.Duration
}

func NewDurations(limit int) *Durations {
	if limit < 1 {
		panic("NonPositiveLimit")
	}
	return &Durations{
		limit: limit,
		items: make([]sample, 0, limit),
	}
}

func (ds *Durations) popFront() {
	ds.sum -= ds.items[0].d
	ds.items = ds.items[1:]
}

// Add records the latency of the call started at ts and returns it. The
// oldest one is dropped if the window is full.
func (ds *Durations) Add(ts time.Time) time.Duration {
	now := time.Now()
	s := sample{at: now, d: now.Sub(ts)}

	ds.lock.Lock()
	defer ds.lock.Unlock()
	if len(ds.items) >= ds.limit {
		ds.popFront()
	}
	ds.items = append(ds.items, s)
	ds.sum += s.d
	return s.d
}

// Remove drops latencies recorded before expire.
func (ds *Durations) Remove(expire time.Duration) {
	now := time.Now()
	ds.lock.Lock()
	defer ds.lock.Unlock()
	for len(ds.items) > 0 && now.Sub(ds.items[0].at) >= expire {
		ds.popFront()
	}
}

func (ds *Durations) Size() int {
	return ds.limit
}

func (ds *Durations) Count() int {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	return len(ds.items)
}

func (ds *Durations) Sum() int64 {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	return int64(ds.sum)
}

func (ds *Durations) Avg() time.Duration {
	ds.lock.Lock()
	defer ds.lock.Unlock()
	if len(ds.items) == 0 {
		return 0
	}
	return ds.sum / time.Duration(len(ds.items))
}
