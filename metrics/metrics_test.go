package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func counterValue(c prometheus.Counter) float64 {
	var m io_prometheus_client.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestObserveRequest(t *testing.T) {
	before := counterValue(RequestsTotal.WithLabelValues(OutcomeOK))
	ObserveRequest(OutcomeOK, 10*time.Millisecond)
	if got := counterValue(RequestsTotal.WithLabelValues(OutcomeOK)); got != before+1 {
		t.Errorf("requests_total{ok} = %v, want %v", got, before+1)
	}
}

func TestObserveBatch(t *testing.T) {
	okBefore := counterValue(BatchesTotal.WithLabelValues("test", "ok"))
	errBefore := counterValue(BatchesTotal.WithLabelValues("test", "error"))

	ObserveBatch("test", time.Millisecond, nil)
	ObserveBatch("test", time.Millisecond, errors.New("boom"))
	ObserveBatch("test", time.Millisecond, nil)

	if got := counterValue(BatchesTotal.WithLabelValues("test", "ok")); got != okBefore+2 {
		t.Errorf("batches_total{ok} = %v, want %v", got, okBefore+2)
	}
	if got := counterValue(BatchesTotal.WithLabelValues("test", "error")); got != errBefore+1 {
		t.Errorf("batches_total{error} = %v, want %v", got, errBefore+1)
	}
}

func TestObserveCandidates(t *testing.T) {
	before := counterValue(CandidatesTotal.WithLabelValues("rejected"))
	ObserveCandidates(3, 4, 0)
	if got := counterValue(CandidatesTotal.WithLabelValues("rejected")); got != before+4 {
		t.Errorf("candidates_total{rejected} = %v, want %v", got, before+4)
	}
}
