package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/assertlens/internal/cache"
	"github.com/ppiankov/assertlens/internal/classify"
	"github.com/ppiankov/assertlens/internal/comment"
	"github.com/ppiankov/assertlens/internal/model"
	"github.com/ppiankov/assertlens/internal/report"
	"github.com/ppiankov/assertlens/internal/table"
	"github.com/ppiankov/assertlens/internal/worker"
	"go.uber.org/zap"
)

// Pipeline classifies assertions and locates their comments
type Pipeline struct {
	classifier *classify.Classifier
	locator    *comment.Locator
	limiter    *worker.Limiter
	cache      *cache.MemoryCache
	renderer   *Renderer
	config     *model.Config
	logger     *zap.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	var source comment.LineSource = comment.NewFileSource()
	var mem *cache.MemoryCache
	if cfg.Cache.Enabled {
		mem = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
		source = comment.NewCachedSource(mem)
	}

	locator := comment.NewLocator(source, cfg.Analysis.Root, logger)

	var limiter *worker.Limiter
	if cfg.RateLimiting.Throttled() {
		limiter = worker.NewLimiter(cfg.RateLimiting.ReadsPerSecond, cfg.RateLimiting.BurstSize)
		for _, d := range cfg.RateLimiting.Directories {
			limiter.SetDirectoryRate(locator.Resolve(d.Path), d.ReadsPerSecond, d.BurstSize)
		}
	}

	return &Pipeline{
		classifier: classify.NewClassifier(),
		locator:    locator,
		limiter:    limiter,
		cache:      mem,
		renderer:   NewRenderer(os.Stderr),
		config:     cfg,
		logger:     logger,
	}
}

// Analyze classifies one row. The category never depends on the file: a row
// whose line number failed to parse, whose read slot timed out or whose
// context ended still gets one, and its comment status carries the error.
func (p *Pipeline) Analyze(ctx context.Context, row table.Row) model.ClassificationResult {
	result := model.ClassificationResult{
		Category: p.classifier.Classify(row.Record.AssertionCode),
	}

	if row.Err != nil {
		p.logger.Debug("skip comment lookup", zap.Int("row", row.Index+1), zap.Error(row.Err))
		result.CommentStatus = model.ErrorStatus(row.Err)
		return result
	}

	if err := p.waitForRead(ctx, row.Record.FilePath); err != nil {
		p.logger.Warn("comment lookup not run", zap.Int("row", row.Index+1), zap.Error(err))
		result.CommentStatus = model.ErrorStatus(err)
		return result
	}

	result.CommentStatus = p.locator.Locate(row.Record.FilePath, row.Record.LineNumber, row.Record.AssertionCode)
	return result
}

// waitForRead blocks until the file behind path may be read. Throttling is
// keyed on the resolved path so rows are grouped by the directory on disk.
func (p *Pipeline) waitForRead(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.limiter == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx, p.locator.Resolve(path)); err != nil {
		return fmt.Errorf("wait for read slot: %w", err)
	}
	return nil
}

// RunResult contains the outcome of a batch run
type RunResult struct {
	Table   *table.Table
	Results []model.ClassificationResult
	Summary model.Summary
}

// Run reads the input table, analyzes every row and writes the output table
// and, when configured, the summary file
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*RunResult, error) {
	processor := worker.NewBatchProcessor(p, p.config.Concurrency.Workers)
	if p.config.Output.ProgressEvery > 0 {
		processor.OnProgress(p.config.Output.ProgressEvery, p.renderer.RenderProgress)
	}

	tbl, results, err := processor.ProcessFile(ctx, inputPath)
	if err != nil {
		return nil, fmt.Errorf("process input: %w", err)
	}

	if p.cache != nil {
		p.logger.Debug("source cache", zap.Int("files", p.cache.Len()))
	}

	summary := report.Summarize(results)
	summary.Input = inputPath
	summary.Output = p.config.Output.Path

	if err := table.WriteFile(p.config.Output.Path, tbl, results); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	p.logger.Info("wrote output table", zap.String("path", p.config.Output.Path), zap.Int("rows", len(results)))

	if p.config.Output.SummaryPath != "" {
		if err := p.renderer.RenderSummaryFile(summary, p.config.Output.SummaryPath); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
	}

	return &RunResult{
		Table:   tbl,
		Results: results,
		Summary: summary,
	}, nil
}

// Classify exposes the classifier decision for a single snippet
func (p *Pipeline) Classify(code string) classify.Decision {
	return p.classifier.Explain(code)
}

// Locate exposes the comment lookup for a single file position
func (p *Pipeline) Locate(path string, line int) model.CommentStatus {
	return p.locator.Locate(path, line, "")
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}
