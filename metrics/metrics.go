// Package metrics 定义推理链路的 Prometheus 指标。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "seqrec"

var (
	// RequestsTotal 按结果统计推荐请求（ok / invalid / unavailable / error）
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of recommendation requests by outcome",
	}, []string{"outcome"})

	// RequestDuration 推荐请求端到端耗时
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "End-to-end recommendation latency in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// BatchesTotal 已打分的批次数
	BatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_total",
		Help:      "Total number of scored batches by scorer and result",
	}, []string{"scorer", "result"})

	// ScoreDuration 单个批次的打分耗时
	ScoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "score_duration_seconds",
		Help:      "Per-batch scoring latency in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"scorer"})

	// CandidatesTotal 候选数量，按阶段统计（admitted / rejected / filtered）
	CandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidates_total",
		Help:      "Total number of catalog candidates by disposition",
	}, []string{"disposition"})
)

// 请求结果
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// ObserveRequest 记录一次推荐请求
func ObserveRequest(outcome string, d time.Duration) {
	RequestsTotal.WithLabelValues(outcome).Inc()
	RequestDuration.Observe(d.Seconds())
}

// ObserveBatch 记录一次批次打分
func ObserveBatch(scorer string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BatchesTotal.WithLabelValues(scorer, result).Inc()
	ScoreDuration.WithLabelValues(scorer).Observe(d.Seconds())
}

// ObserveCandidates 记录一次请求中候选的去向
func ObserveCandidates(admitted, rejected, filtered int) {
	CandidatesTotal.WithLabelValues("admitted").Add(float64(admitted))
	CandidatesTotal.WithLabelValues("rejected").Add(float64(rejected))
	CandidatesTotal.WithLabelValues("filtered").Add(float64(filtered))
}
