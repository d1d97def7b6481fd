package metric

import (
	"context"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/icon-project/govote/common"
)

// metric common tag key
var (
	MetricKeyHostname = NewMetricKey("hostname")
	mKeys             = []tag.Key{MetricKeyHostname}
	MetricTagHostname = tag.Insert(MetricKeyHostname, _resolveHostname(nil))
	mTags             = make(map[*tag.Key]map[string]tag.Mutator)
	mtMtx             sync.Mutex
	mtOnce            sync.Once

	beforeExport    []func()
	beforeExportMtx sync.Mutex
)

func NewMetricKey(k string) tag.Key {
	key, err := tag.NewKey(k)
	if err != nil {
		log.Fatalf("Fail tag.NewKey %s %+v", k, err)
	}
	return key
}

var aggTypeName = map[view.AggType]string{
	view.AggTypeNone:         "",
	view.AggTypeCount:        "_cnt",
	view.AggTypeSum:          "_sum",
	view.AggTypeDistribution: "_dist",
	view.AggTypeLastValue:    "",
}

func NewMetricView(m stats.Measure, a *view.Aggregation, tks []tag.Key) *view.View {
	keys := make([]tag.Key, 0, len(mKeys)+len(tks))
	keys = append(keys, mKeys...)
	return &view.View{
		Name:        m.Name() + aggTypeName[a.Type],
		Description: m.Description() + " Aggregated " + a.Type.String(),
		Measure:     m,
		Aggregation: a,
		TagKeys:     append(keys, tks...),
	}
}

func RegisterMetricView(m stats.Measure, a *view.Aggregation, tks []tag.Key) {
	if err := view.Register(NewMetricView(m, a, tks)); err != nil {
		log.Fatalf("Fail RegisterMetricView view.Register %+v", err)
	}
}

// RegisterBeforeExportFunc registers the function called before the
// exporter collects values, for measures which need to be refreshed.
func RegisterBeforeExportFunc(f func()) {
	beforeExportMtx.Lock()
	defer beforeExportMtx.Unlock()
	beforeExport = append(beforeExport, f)
}

func runBeforeExport() {
	beforeExportMtx.Lock()
	fs := append([]func(){}, beforeExport...)
	beforeExportMtx.Unlock()
	for _, f := range fs {
		f()
	}
}

func GetMetricTag(mk *tag.Key, v string) tag.Mutator {
	defer mtMtx.Unlock()
	mtMtx.Lock()

	m, ok := mTags[mk]
	if !ok {
		m = make(map[string]tag.Mutator)
		mTags[mk] = m
	}

	mt, ok := m[v]
	if !ok {
		mt = tag.Upsert(*mk, v)
		m[v] = mt
	}
	return mt
}

func NewMetricContext(mts ...tag.Mutator) context.Context {
	return GetMetricContext(context.Background(), mts...)
}

// GetMetricContext returns the context derived from ctx with the host tag
// and the other mutators applied.
func GetMetricContext(ctx context.Context, mts ...tag.Mutator) context.Context {
	ms := append([]tag.Mutator{MetricTagHostname}, mts...)
	nctx, err := tag.New(ctx, ms...)
	if err != nil {
		log.Fatalf("Fail tag.New %+v", err)
	}
	return nctx
}

func _resolveHostname(owner *common.Address) string {
	nodeName := os.Getenv("NODE_NAME")
	if nodeName == "" {
		if owner == nil {
			nodeName, _ = os.Hostname()
		} else {
			nodeName = owner.String()[:10]
		}
	}
	return nodeName
}

// Initialize sets the host tag. The owner address is used for it if
// NODE_NAME isn't set.
func Initialize(owner *common.Address) {
	mtOnce.Do(func() {
		MetricTagHostname = tag.Insert(MetricKeyHostname, _resolveHostname(owner))
	})
}

// Handler serves the exporter after refreshing measures.
func Handler(pe *prometheus.Exporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runBeforeExport()
		pe.ServeHTTP(w, r)
	})
}

// PrometheusExporter registers views of the service and returns the
// exporter serving them.
func PrometheusExporter() *prometheus.Exporter {
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: "govote",
		OnError: func(err error) {
			log.Printf("Failed to export metrics: %+v", err)
		},
	})
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %+v", err)
		return nil
	}
	view.SetReportingPeriod(1000 * time.Millisecond)

	registerOnce.Do(func() {
		RegisterJsonrpc()
		RegisterVote()
	})
	return pe
}

var registerOnce sync.Once
