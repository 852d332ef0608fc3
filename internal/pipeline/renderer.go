package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/assertlens/internal/model"
	"gopkg.in/yaml.v3"
)

// Renderer prints progress and summaries and writes summary files
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer that prints to out
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = io.Discard
	}
	return &Renderer{out: out}
}

// SetOutput redirects the pipeline's human-readable output
func (p *Pipeline) SetOutput(w io.Writer) {
	p.renderer = NewRenderer(w)
}

// RenderProgress prints a progress line
func (r *Renderer) RenderProgress(done, total int) {
	fmt.Fprintf(r.out, "⚙️  Processed %d/%d rows\n", done, total)
}

// RenderSummary prints the category and comment breakdown
func (r *Renderer) RenderSummary(s model.Summary) {
	fmt.Fprintf(r.out, "\n")
	fmt.Fprintf(r.out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(r.out, "  Assertion Summary\n")
	fmt.Fprintf(r.out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(r.out, "\n")
	fmt.Fprintf(r.out, "  Total:       %d assertions\n", s.Total)
	fmt.Fprintf(r.out, "  Commented:   %d (%.1f%%)\n", s.Commented, s.CommentRatio()*100)
	if s.Output != "" {
		fmt.Fprintf(r.out, "  Output:      %s\n", s.Output)
	}
	fmt.Fprintf(r.out, "\n")

	fmt.Fprintf(r.out, "  Categories:\n")
	for _, cc := range s.Categories {
		fmt.Fprintf(r.out, "    %-12s %d\n", cc.Category+":", cc.Count)
	}
	fmt.Fprintf(r.out, "\n")

	fmt.Fprintf(r.out, "  Comment status:\n")
	for _, sc := range s.Statuses {
		fmt.Fprintf(r.out, "    %-16s %d\n", sc.Kind+":", sc.Count)
	}
	fmt.Fprintf(r.out, "\n")

	if n := s.StatusCountFor(model.CommentFileNotFound); n > 0 {
		fmt.Fprintf(r.out, "✗ %d rows reference files that could not be found (see --root)\n", n)
	}
	if n := s.StatusCountFor(model.CommentError); n > 0 {
		fmt.Fprintf(r.out, "✗ %d rows failed comment lookup (see has_comment column)\n", n)
	}
}

// RenderSummaryFile writes the summary as YAML for .yaml/.yml paths and as
// JSON otherwise
func (r *Renderer) RenderSummaryFile(s model.Summary, path string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create summary directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
