package feature

import (
	"math"

	"github.com/rushteam/seqrec/core"
)

const (
	// SecondsPerDay 是时间间隔的换算单位
	SecondsPerDay = 86400.0

	// MinElapsedDays 是间隔的下限（天）。低于半天的间隔与恰好半天不可区分，
	// 同时保证取对数的参数始终为正。
	MinElapsedDays = 0.5
)

// TemporalFeatures 是由历史时间戳派生的三条等长特征序列，均已取自然对数。
//
//   - TimeDiff：相邻行为的间隔，最后一个元素为最后一次行为到 now 的间隔
//   - TimeFromFirst：t[1:] 到第一次行为的间隔，末尾追加 now 到第一次行为的间隔
//   - TimeToNow：每次行为到 now 的间隔
type TemporalFeatures struct {
	TimeDiff      []float64
	TimeFromFirst []float64
	TimeToNow     []float64
}

// Len 返回序列长度（三条序列等长）。
func (f *TemporalFeatures) Len() int {
	return len(f.TimeDiff)
}

// elapsedDays 返回 from 到 to 的天数，下限为 MinElapsedDays（NaN 同样被截断到下限）。
func elapsedDays(from, to float64) float64 {
	d := (to - from) / SecondsPerDay
	if !(d >= MinElapsedDays) {
		return MinElapsedDays
	}
	return d
}

// logElapsed 返回 log(elapsedDays(from, to))。
func logElapsed(from, to float64) float64 {
	return math.Log(elapsedDays(from, to))
}

// EncodeTemporal 由升序时间戳（Unix 秒）与参考时间 now 计算时间特征。
// 历史为空时返回 core.ErrEmptyHistory。
func EncodeTemporal(timestamps []float64, now float64) (*TemporalFeatures, error) {
	n := len(timestamps)
	if n == 0 {
		return nil, core.ErrEmptyHistory
	}

	f := &TemporalFeatures{
		TimeDiff:      make([]float64, n),
		TimeFromFirst: make([]float64, n),
		TimeToNow:     make([]float64, n),
	}

	for i := 0; i < n-1; i++ {
		f.TimeDiff[i] = logElapsed(timestamps[i], timestamps[i+1])
	}
	f.TimeDiff[n-1] = logElapsed(timestamps[n-1], now)

	first := timestamps[0]
	for i := 1; i < n; i++ {
		f.TimeFromFirst[i-1] = logElapsed(first, timestamps[i])
	}
	f.TimeFromFirst[n-1] = logElapsed(first, now)

	for i, t := range timestamps {
		f.TimeToNow[i] = logElapsed(t, now)
	}
	return f, nil
}
