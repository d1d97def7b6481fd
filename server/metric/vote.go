package metric

import (
	"context"
	"log"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/icon-project/govote/module"
)

var (
	msVote      = stats.Int64("vote_submission", "vote submissions", stats.UnitDimensionless)
	msEvent     = stats.Int64("vote_event", "notified events", stats.UnitDimensionless)
	mkVoteState = NewMetricKey("state")
	mkReason    = NewMetricKey("reason")
	mkEventType = NewMetricKey("event_type")
	voteMks     = []tag.Key{mkVoteState, mkReason}
	eventMks    = []tag.Key{mkEventType}
)

func RegisterVote() {
	err := view.Register(
		NewMetricView(msVote, view.Count(), voteMks),
		NewMetricView(msEvent, view.Count(), eventMks),
	)
	if err != nil {
		log.Fatalf("Fail RegisterVote view.Register %+v", err)
	}
}

// RecordVote counts the submission by its terminal state and the reason.
func RecordVote(state, reason string) {
	ctx := NewMetricContext(
		GetMetricTag(&mkVoteState, state),
		GetMetricTag(&mkReason, reason),
	)
	stats.Record(ctx, msVote.M(1))
}

func RecordEvent(e *module.Event) {
	ctx := NewMetricContext(GetMetricTag(&mkEventType, string(e.Type)))
	stats.Record(ctx, msEvent.M(1))
}

// ObserveEvents counts events from ch until ctx is done or ch is closed.
func ObserveEvents(ctx context.Context, ch <-chan *module.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			RecordEvent(e)
		}
	}
}
