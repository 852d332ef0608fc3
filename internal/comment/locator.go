// Package comment detects explanatory comments placed inline with an
// assertion or on the two lines directly above it.
package comment

import (
	"errors"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/ppiankov/assertlens/internal/model"
	"go.uber.org/zap"
)

// Lookback is the number of lines above the assertion that are inspected
const Lookback = 2

var (
	// commentToken must appear on the assertion line itself before the
	// vocabulary patterns are consulted
	commentToken = regexp.MustCompile(`//|/\*|#`)

	vocabulary = compileAll(
		`//.*assert`,
		`/\*.*assert.*\*/`,
		`//.*cover`,
		`/\*.*cover.*\*/`,
		`//.*assume`,
		`/\*.*assume.*\*/`,
		`#.*assert`,
		`#.*cover`,
		`#.*assume`,
	)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Locator searches source files for comments near assertions
type Locator struct {
	source LineSource
	root   string
	logger *zap.Logger
}

// NewLocator creates a locator. A nil source reads files directly; relative
// paths are resolved against root when root is non-empty.
func NewLocator(source LineSource, root string, logger *zap.Logger) *Locator {
	if source == nil {
		source = NewFileSource()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		source: source,
		root:   root,
		logger: logger,
	}
}

// Locate reports whether the assertion at line (1-based) of path has an
// explanatory comment. Failures are returned as statuses, never as errors.
// The assertion text is not consulted.
func (l *Locator) Locate(path string, line int, code string) model.CommentStatus {
	resolved := l.Resolve(path)

	lines, err := l.source.ReadLines(resolved)
	if err != nil {
		if isNotExist(err) {
			l.logger.Debug("source file not found", zap.String("path", resolved), zap.Int("line", line))
			return model.StatusOf(model.CommentFileNotFound)
		}
		l.logger.Warn("read source file", zap.String("path", resolved), zap.Error(err))
		return model.CommentStatus{Kind: model.CommentError, Message: err.Error()}
	}

	idx := line - 1
	if idx < 0 || idx >= len(lines) {
		l.logger.Debug("line out of range",
			zap.String("path", resolved),
			zap.Int("line", line),
			zap.Int("lines", len(lines)))
		return model.StatusOf(model.CommentLineNotFound)
	}

	current := strings.TrimSpace(lines[idx])
	if commentToken.MatchString(current) && matchesVocabulary(current) {
		return model.StatusOf(model.CommentPresent)
	}

	for offset := 1; offset <= Lookback; offset++ {
		if idx-offset < 0 {
			break
		}
		if matchesVocabulary(strings.TrimSpace(lines[idx-offset])) {
			return model.StatusOf(model.CommentPresent)
		}
	}

	return model.StatusOf(model.CommentAbsent)
}

// Resolve returns the path that Locate reads for a record's file_path
func (l *Locator) Resolve(path string) string {
	if l.root == "" || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.root, path)
}

func matchesVocabulary(line string) bool {
	for _, re := range vocabulary {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// isNotExist treats a missing file and a non-directory path component alike
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
