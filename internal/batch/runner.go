// Package batch drives the research endpoint sequentially to observe how the
// search provider behaves under sustained use.
package batch

import (
	"context"
	"log/slog"
	"math"
	"time"
)

const (
	DefaultCount   = 100
	DefaultDelay   = 100 * time.Millisecond
	DefaultContent = "The abandoned Mars colony stood silent under the red sky"
)

// Caller performs one research call.
type Caller interface {
	Call(ctx context.Context, content string) error
}

// Result is the outcome of one call. Duration is in milliseconds.
type Result struct {
	Index    int    `json:"index"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Duration int64  `json:"duration"`
}

// Report aggregates a run. AvgDuration is the mean call latency in
// milliseconds, rounded.
type Report struct {
	Total       int      `json:"total"`
	Successful  int      `json:"successful"`
	Failed      int      `json:"failed"`
	AvgDuration int64    `json:"avgDuration"`
	Results     []Result `json:"results"`
}

// Runner issues Count calls one after another with Delay between them.
type Runner struct {
	Caller  Caller
	Count   int
	Delay   time.Duration
	Content string
	Logger  *slog.Logger

	// OnResult, when set, is invoked after every call.
	OnResult func(Result)
}

// Run executes the batch. When ctx is cancelled Run stops between calls and
// returns the partial report together with ctx.Err().
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	count := r.Count
	if count <= 0 {
		count = DefaultCount
	}
	content := r.Content
	if content == "" {
		content = DefaultContent
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("starting research batch",
		slog.Int("count", count),
		slog.Duration("delay", r.Delay))

	report := &Report{Results: make([]Result, 0, count)}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return report.finish(), err
		}

		res := r.callOnce(ctx, i, content)
		report.Results = append(report.Results, res)
		if r.OnResult != nil {
			r.OnResult(res)
		}

		if i < count-1 && r.Delay > 0 {
			if err := sleep(ctx, r.Delay); err != nil {
				return report.finish(), err
			}
		}
	}

	report.finish()
	logger.Info("research batch complete",
		slog.Int("successful", report.Successful),
		slog.Int("failed", report.Failed),
		slog.Int64("avg_duration_ms", report.AvgDuration))
	return report, nil
}

func (r *Runner) callOnce(ctx context.Context, index int, content string) Result {
	start := time.Now()
	err := r.Caller.Call(ctx, content)
	res := Result{
		Index:    index,
		Success:  err == nil,
		Duration: time.Since(start).Milliseconds(),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func (rep *Report) finish() *Report {
	rep.Total = len(rep.Results)
	rep.Successful, rep.Failed = 0, 0
	var sum int64
	for _, res := range rep.Results {
		if res.Success {
			rep.Successful++
		} else {
			rep.Failed++
		}
		sum += res.Duration
	}
	if rep.Total > 0 {
		rep.AvgDuration = int64(math.Round(float64(sum) / float64(rep.Total)))
	}
	return rep
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
