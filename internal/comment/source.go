package comment

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/assertlens/internal/cache"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LineSource loads the lines of a source file
type LineSource interface {
	ReadLines(path string) ([]string, error)
}

// FileSource reads files from disk on every call
type FileSource struct{}

// NewFileSource creates a new uncached file source
func NewFileSource() *FileSource {
	return &FileSource{}
}

// ReadLines reads and decodes a file and splits it into lines
func (s *FileSource) ReadLines(path string) ([]string, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}
	return splitLines(text), nil
}

// CachedSource keeps decoded file contents in a cache so that records
// sharing a file read it once. Failed reads are not cached.
type CachedSource struct {
	cache cache.Cache
}

// NewCachedSource creates a file source backed by the given cache
func NewCachedSource(c cache.Cache) *CachedSource {
	return &CachedSource{cache: c}
}

// ReadLines returns the lines of path, reading the file on a cache miss
func (s *CachedSource) ReadLines(path string) ([]string, error) {
	key := cache.CacheKey(path)
	if data, found := s.cache.Get(key); found {
		return splitLines(string(data)), nil
	}

	text, err := readText(path)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(key, []byte(text), 0)

	return splitLines(text), nil
}

// readText reads a file as text. Invalid UTF-8 is replaced rather than
// rejected, and a UTF-8 or UTF-16 byte order mark selects the decoding.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
	}

	return string(decoded), nil
}

// splitLines splits text on \n, \r\n and \r. A trailing terminator does not
// start a new line.
func splitLines(text string) []string {
	if text == "" {
		return []string{}
	}

	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}

	if start < len(text) {
		lines = append(lines, text[start:])
	}

	return lines
}
