package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ppiankov/assertlens/internal/model"
	"github.com/ppiankov/assertlens/internal/table"
)

// Analyzer classifies one input row. Analyze must return promptly once ctx
// is done, reporting the context error in the comment status.
type Analyzer interface {
	Analyze(ctx context.Context, row table.Row) model.ClassificationResult
}

// ProgressFunc is called as rows complete
type ProgressFunc func(done, total int)

// AnalyzeJob analyzes a single row
type AnalyzeJob struct {
	Row      table.Row
	Analyzer Analyzer
	Progress *progressTracker
}

// Execute executes the analyze job
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	defer j.Progress.step()

	return &RowResult{
		Index:  j.Row.Index,
		Result: j.Analyzer.Analyze(ctx, j.Row),
	}
}

// RowResult is the outcome of one row
type RowResult struct {
	Index  int
	Result model.ClassificationResult
}

// GetError returns the comment lookup failure, if any
func (r *RowResult) GetError() error {
	if r.Result.CommentStatus.Kind != model.CommentError {
		return nil
	}
	return errors.New(r.Result.CommentStatus.Message)
}

// BatchProcessor analyzes many rows concurrently
type BatchProcessor struct {
	analyzer      Analyzer
	concurrency   int
	progress      ProgressFunc
	progressEvery int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// OnProgress registers fn to be called every n completed rows and once at the end
func (b *BatchProcessor) OnProgress(n int, fn ProgressFunc) {
	b.progressEvery = n
	b.progress = fn
}

// ProcessRows analyzes rows concurrently and returns results in input order.
// Rows the pool never reached because ctx ended are analyzed inline with the
// finished ctx, so they keep their category.
func (b *BatchProcessor) ProcessRows(ctx context.Context, rows []table.Row) []model.ClassificationResult {
	if len(rows) == 0 {
		return []model.ClassificationResult{}
	}

	tracker := &progressTracker{total: len(rows), every: b.progressEvery, fn: b.progress}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, row := range rows {
		row.Index = i
		job := &AnalyzeJob{
			Row:      row,
			Analyzer: b.analyzer,
			Progress: tracker,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := make([]model.ClassificationResult, len(rows))
	done := make([]bool, len(rows))
	for _, r := range pool.Wait() {
		rr := r.(*RowResult)
		results[rr.Index] = rr.Result
		done[rr.Index] = true
	}

	for i := range results {
		if done[i] {
			continue
		}
		row := rows[i]
		row.Index = i
		job := &AnalyzeJob{Row: row, Analyzer: b.analyzer, Progress: tracker}
		results[i] = job.Execute(ctx).(*RowResult).Result
	}

	return results
}

// ProcessFile reads an assertion table and analyzes every row
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) (*table.Table, []model.ClassificationResult, error) {
	tbl, err := table.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read table: %w", err)
	}

	return tbl, b.ProcessRows(ctx, tbl.Rows), nil
}

// progressTracker serializes progress callbacks across workers
type progressTracker struct {
	mu    sync.Mutex
	done  int
	total int
	every int
	fn    ProgressFunc
}

func (p *progressTracker) step() {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if p.fn == nil {
		return
	}
	if p.done == p.total || (p.every > 0 && p.done%p.every == 0) {
		p.fn(p.done, p.total)
	}
}
