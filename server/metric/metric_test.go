package metric

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

func TestDurations(t *testing.T) {
	ds := NewDurations(3)
	assert.Equal(t, 3, ds.Size())
	assert.Equal(t, time.Duration(0), ds.Avg())

	now := time.Now()
	for i := 0; i < 5; i++ {
		ds.Add(now.Add(-time.Second))
	}
	assert.Equal(t, 3, ds.Count())
	assert.True(t, ds.Avg() >= time.Second)

	time.Sleep(20 * time.Millisecond)
	ds.Remove(10 * time.Millisecond)
	assert.Equal(t, 0, ds.Count())
	assert.Equal(t, int64(0), ds.Sum())
}

func TestNewDurations_Invalid(t *testing.T) {
	assert.Panics(t, func() {
		NewDurations(0)
	})
}

func TestGetMetricTag_Cached(t *testing.T) {
	m1 := GetMetricTag(&mkMethod, "gov_getNonce")
	m2 := GetMetricTag(&mkMethod, "gov_getNonce")
	assert.Equal(t, m1, m2)
}

func TestNewMetricView(t *testing.T) {
	v := NewMetricView(msVote, view.Count(), voteMks)
	assert.Equal(t, "vote_submission_cnt", v.Name)
	assert.Equal(t, append([]tag.Key{MetricKeyHostname}, voteMks...), v.TagKeys)
}

func TestJsonrpcMetric_OnHandle(t *testing.T) {
	m := NewJsonrpcMetric(time.Minute, 2, false)
	m.OnHandle(context.Background(), "unknown_method", time.Now(), nil)
	assert.Empty(t, m.windows)

	ts := time.Now().Add(-10 * time.Millisecond)
	m.OnHandle(context.Background(), "gov_getNonce", ts, nil)
	m.OnHandle(context.Background(), "gov_getNonce", ts, errors.New("failure"))
	m.OnHandle(context.Background(), "gov_getNonce", ts, nil)
	ds := m.window("gov_getNonce")
	assert.Equal(t, 2, ds.Count())
	assert.True(t, ds.Avg() >= 10*time.Millisecond)

	m = NewJsonrpcMetric(time.Millisecond, 10, true)
	m.OnHandle(context.Background(), "unknown_method", time.Now(), nil)
	assert.Equal(t, 1, m.window(methodOther).Count())
	time.Sleep(5 * time.Millisecond)
	m.refresh()
	assert.Equal(t, 0, m.window(methodOther).Count())
}
