package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/assertlens/internal/model"
	"github.com/ppiankov/assertlens/internal/table"
	"github.com/ppiankov/assertlens/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const fifoSource = `module fifo (input clk, input push, output full);
  logic [3:0] count;

  // asserts FIFO never overflows
  assert property (@(posedge clk) push |-> !full);

  always @(posedge clk) count <= count + push;
  assert (count < 4'hf);
endmodule
`

func setup(t *testing.T) (dir string, cfg *model.Config) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "rtl"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rtl", "fifo.sv"), []byte(fifoSource), 0644))

	cfg = model.DefaultConfig()
	cfg.Analysis.Root = dir
	cfg.Output.Path = filepath.Join(dir, "out.csv")
	cfg.Output.ProgressEvery = 0
	return dir, cfg
}

func TestPipeline_Analyze(t *testing.T) {
	_, cfg := setup(t)
	p := NewPipeline(cfg, nil)
	ctx := context.Background()

	tests := []struct {
		record   model.AssertionRecord
		category model.Category
		status   model.CommentKind
	}{
		{model.AssertionRecord{FilePath: "rtl/fifo.sv", LineNumber: 5, AssertionCode: "assert property (@(posedge clk) push |-> !full);"}, model.CategoryConcurrent, model.CommentPresent},
		{model.AssertionRecord{FilePath: "rtl/fifo.sv", LineNumber: 8, AssertionCode: "assert (count < 4'hf);"}, model.CategoryImmediate, model.CommentAbsent},
		{model.AssertionRecord{FilePath: "rtl/fifo.sv", LineNumber: 80, AssertionCode: "$onehot(state)"}, model.CategoryFunctional, model.CommentLineNotFound},
		{model.AssertionRecord{FilePath: "rtl/missing.sv", LineNumber: 1, AssertionCode: ""}, model.CategoryUnknown, model.CommentFileNotFound},
	}

	for _, tt := range tests {
		got := p.Analyze(ctx, table.Row{Record: tt.record})
		assert.Equal(t, tt.category, got.Category, "record %+v", tt.record)
		assert.Equal(t, tt.status, got.CommentStatus.Kind, "record %+v", tt.record)
	}
}

func TestPipeline_Analyze_BadLineNumber(t *testing.T) {
	_, cfg := setup(t)
	p := NewPipeline(cfg, nil)

	row := table.Row{
		Record: model.AssertionRecord{FilePath: "rtl/fifo.sv", AssertionCode: "req ##2 ack"},
		Err:    errors.New(`invalid line_number "x"`),
	}
	got := p.Analyze(context.Background(), row)

	assert.Equal(t, model.CategoryTemporal, got.Category)
	assert.Equal(t, `error: invalid line_number "x"`, got.CommentStatus.String())
}

func TestPipeline_ThrottledRowsKeepCategory(t *testing.T) {
	_, cfg := setup(t)
	cfg.RateLimiting.ReadsPerSecond = 1
	cfg.RateLimiting.BurstSize = 1
	p := NewPipeline(cfg, nil)

	code := "assert property (@(posedge clk) push |-> !full);"
	rows := make([]table.Row, 3)
	for i := range rows {
		rows[i] = table.Row{Record: model.AssertionRecord{FilePath: "rtl/fifo.sv", LineNumber: 5, AssertionCode: code}}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	results := worker.NewBatchProcessor(p, 1).ProcessRows(ctx, rows)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, model.CategoryConcurrent, r.Category, "row %d", i)
	}
	assert.Equal(t, model.CommentPresent, results[0].CommentStatus.Kind)
	for _, r := range results[1:] {
		assert.Equal(t, model.CommentError, r.CommentStatus.Kind)
		assert.Contains(t, r.CommentStatus.Message, "wait for read slot")
	}
}

func TestPipeline_Analyze_CancelledKeepsCategory(t *testing.T) {
	_, cfg := setup(t)
	p := NewPipeline(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := p.Analyze(ctx, table.Row{Record: model.AssertionRecord{FilePath: "rtl/fifo.sv", LineNumber: 5, AssertionCode: "req ##2 ack"}})
	assert.Equal(t, model.CategoryTemporal, got.Category)
	assert.Equal(t, model.CommentError, got.CommentStatus.Kind)
	assert.Equal(t, context.Canceled.Error(), got.CommentStatus.Message)
}

func TestPipeline_DirectoryRateUsesResolvedPaths(t *testing.T) {
	dir, cfg := setup(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tb"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tb", "fifo_tb.sv"), []byte(fifoSource), 0644))
	cfg.RateLimiting.Directories = []model.DirectoryRate{{Path: "rtl", ReadsPerSecond: 0.01, BurstSize: 1}}
	p := NewPipeline(cfg, nil)

	analyze := func(path string) model.CommentStatus {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		return p.Analyze(ctx, table.Row{Record: model.AssertionRecord{FilePath: path, LineNumber: 5}}).CommentStatus
	}

	assert.Equal(t, model.CommentPresent, analyze("rtl/fifo.sv").Kind)

	// Same directory on disk, spelled as an absolute path
	throttled := analyze(filepath.Join(dir, "rtl", "fifo.sv"))
	assert.Equal(t, model.CommentError, throttled.Kind)
	assert.Contains(t, throttled.Message, "wait for read slot")

	for i := 0; i < 3; i++ {
		assert.Equal(t, model.CommentPresent, analyze("tb/fifo_tb.sv").Kind)
	}
}

func TestPipeline_Analyze_CacheDoesNotChangeResults(t *testing.T) {
	_, cfg := setup(t)

	cfg.Cache.Enabled = true
	cached := NewPipeline(cfg, nil)

	uncachedCfg := *cfg
	uncachedCfg.Cache.Enabled = false
	direct := NewPipeline(&uncachedCfg, nil)

	for line := 0; line <= 10; line++ {
		row := table.Row{Record: model.AssertionRecord{FilePath: "rtl/fifo.sv", LineNumber: line}}
		assert.Equal(t, direct.Analyze(context.Background(), row), cached.Analyze(context.Background(), row), "line %d", line)
	}
}

func TestPipeline_Run(t *testing.T) {
	dir, cfg := setup(t)
	cfg.Output.SummaryPath = filepath.Join(dir, "reports", "summary.json")
	cfg.Output.ProgressEvery = 1

	input := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(input, []byte(`file_path,line_number,assertion_code
rtl/fifo.sv,5,assert property (@(posedge clk) push |-> !full);
rtl/fifo.sv,8,assert (count < 4'hf);
rtl/other.sv,3,req ##2 ack
rtl/fifo.sv,n/a,$rose(req)
`), 0644))

	var out bytes.Buffer
	p := NewPipeline(cfg, nil)
	p.SetOutput(&out)

	res, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, res.Results, 4)

	assert.Equal(t, 4, res.Summary.Total)
	assert.Equal(t, 1, res.Summary.Commented)
	assert.Equal(t, 2, res.Summary.CountFor(model.CategoryImmediate)+res.Summary.CountFor(model.CategoryConcurrent))
	assert.Equal(t, 1, res.Summary.StatusCountFor(model.CommentFileNotFound))
	assert.Equal(t, 1, res.Summary.StatusCountFor(model.CommentError))
	assert.Contains(t, out.String(), "Processed 4/4 rows")

	f, err := os.Open(cfg.Output.Path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"file_path", "line_number", "assertion_code", "assertion_category", "has_comment"}, records[0])
	assert.Equal(t, []string{"concurrent", "has_comment"}, records[1][3:])
	assert.Equal(t, []string{"immediate", "no_comment"}, records[2][3:])
	assert.Equal(t, []string{"temporal", "file_not_found"}, records[3][3:])
	assert.Equal(t, "functional", records[4][3])
	assert.True(t, strings.HasPrefix(records[4][4], "error: "))

	data, err := os.ReadFile(cfg.Output.SummaryPath)
	require.NoError(t, err)
	var summary model.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, res.Summary.Total, summary.Total)
	assert.Equal(t, res.Summary.Categories, summary.Categories)
}

func TestPipeline_Run_MissingInput(t *testing.T) {
	dir, cfg := setup(t)
	p := NewPipeline(cfg, nil)

	_, err := p.Run(context.Background(), filepath.Join(dir, "nope.csv"))
	assert.Error(t, err)
}

func TestPipeline_Run_MissingColumn(t *testing.T) {
	dir, cfg := setup(t)
	input := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(input, []byte("path,line\na.sv,1\n"), 0644))

	_, err := NewPipeline(cfg, nil).Run(context.Background(), input)
	require.Error(t, err)
	assert.ErrorIs(t, err, table.ErrMissingColumn)
}

func TestPipeline_ClassifyAndLocate(t *testing.T) {
	dir, cfg := setup(t)
	p := NewPipeline(cfg, nil)

	d := p.Classify("assert (a ##1 b);")
	assert.Equal(t, model.CategoryImmediate, d.Category)
	assert.Equal(t, "pattern", d.Rule)

	assert.Equal(t, model.CommentPresent, p.Locate(filepath.Join(dir, "rtl", "fifo.sv"), 5).Kind)
}

func TestRenderer_RenderSummary(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out)

	r.RenderSummary(model.Summary{
		Total:     3,
		Commented: 1,
		Categories: []model.CategoryCount{
			{Category: model.CategoryImmediate, Count: 2},
			{Category: model.CategoryUnknown, Count: 1},
		},
		Statuses: []model.StatusCount{
			{Kind: model.CommentPresent, Count: 1},
			{Kind: model.CommentFileNotFound, Count: 2},
		},
	})

	text := out.String()
	assert.Contains(t, text, "Total:       3 assertions")
	assert.Contains(t, text, "Commented:   1 (33.3%)")
	assert.Contains(t, text, "immediate:")
	assert.Contains(t, text, "file_not_found:")
	assert.Contains(t, text, "2 rows reference files that could not be found")
}

func TestRenderer_RenderSummaryFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.yaml")
	s := model.Summary{
		Total:      1,
		Categories: []model.CategoryCount{{Category: model.CategoryTemporal, Count: 1}},
		Statuses:   []model.StatusCount{{Kind: model.CommentAbsent, Count: 1}},
	}

	require.NoError(t, NewRenderer(nil).RenderSummaryFile(s, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded model.Summary
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, s, decoded)
}
