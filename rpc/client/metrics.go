package client

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"github.com/basset-hound/houndctl/rpc/common"
	"io"
	"time"
)

// clientMetrics holds the metrics of one client. Every client has its own
// set, so several clients in one process do not share counters.
type clientMetrics struct {
	set      *metrics.Set
	outcomes map[common.ErrorKind]*metrics.Counter
	latency  *metrics.Histogram
}

func newClientMetrics(pending func() int) *clientMetrics {
	set := metrics.NewSet()
	m := &clientMetrics{
		set:      set,
		outcomes: make(map[common.ErrorKind]*metrics.Counter),
		latency:  set.NewHistogram("hound_client_command_duration_seconds"),
	}

	for _, kind := range []common.ErrorKind{
		common.KindNone,
		common.KindConnection,
		common.KindCommand,
		common.KindTimeout,
		common.KindRemoved,
		common.KindCancelled,
		common.KindOther,
	} {
		m.outcomes[kind] = set.NewCounter(fmt.Sprintf(`hound_client_commands_total{outcome=%q}`, outcomeLabel(kind)))
	}

	set.NewGauge("hound_client_pending_requests", func() float64 {
		return float64(pending())
	})
	return m
}

// observe records one finished invocation
func (m *clientMetrics) observe(start time.Time, err error) {
	m.outcomes[common.KindOf(err)].Inc()
	m.latency.UpdateDuration(start)
}

// count returns how many invocations ended with the given outcome
func (m *clientMetrics) count(kind common.ErrorKind) uint64 {
	return m.outcomes[kind].Get()
}

func (m *clientMetrics) write(w io.Writer) {
	m.set.WritePrometheus(w)
}

func outcomeLabel(kind common.ErrorKind) string {
	if kind == common.KindNone {
		return "success"
	}
	return kind.String()
}
