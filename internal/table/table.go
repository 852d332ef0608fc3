// Package table reads assertion tables and writes enriched results as CSV.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/assertlens/internal/model"
)

// Input and output column names
const (
	ColumnFilePath      = "file_path"
	ColumnLineNumber    = "line_number"
	ColumnAssertionCode = "assertion_code"
	ColumnCategory      = "assertion_category"
	ColumnHasComment    = "has_comment"
)

// ErrMissingColumn is returned when a required input column is absent
var ErrMissingColumn = errors.New("missing required column")

// Table is a parsed input table. Unknown columns are kept for pass-through.
type Table struct {
	Header []string
	Rows   []Row
}

// Row is one input row and the record parsed from it
type Row struct {
	Index  int      // 0-based position in the input
	Values []string // Raw values, one per header column
	Record model.AssertionRecord
	Err    error // Set when line_number could not be parsed
}

// ReadFile reads an assertion table from a CSV file
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}

// Read parses an assertion table. The first row is the header.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: %w: %s", ErrMissingColumn, ColumnFilePath)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	for _, name := range []string{ColumnFilePath, ColumnLineNumber, ColumnAssertionCode} {
		if indexOf(header, name) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	fileCol := indexOf(header, ColumnFilePath)
	lineCol := indexOf(header, ColumnLineNumber)
	codeCol := indexOf(header, ColumnAssertionCode)

	t := &Table{Header: header}
	for {
		values, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}

		values = pad(values, len(header))
		row := Row{
			Index:  len(t.Rows),
			Values: values,
			Record: model.AssertionRecord{
				FilePath:      values[fileCol],
				AssertionCode: values[codeCol],
			},
		}

		line, err := ParseLineNumber(values[lineCol])
		if err != nil {
			row.Err = err
		} else {
			row.Record.LineNumber = line
		}

		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// ParseLineNumber accepts integers and integral floats such as "12.0"
func ParseLineNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid line_number %q", s)
	}
	return int(f), nil
}

// WriteFile writes the enriched table to a CSV file
func WriteFile(path string, t *Table, results []model.ClassificationResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()

	return Write(f, t, results)
}

// Write emits every input column plus assertion_category and has_comment.
// Existing columns with those names are overwritten in place.
func Write(w io.Writer, t *Table, results []model.ClassificationResult) error {
	if len(results) != len(t.Rows) {
		return fmt.Errorf("write table: %d results for %d rows", len(results), len(t.Rows))
	}

	header := append([]string(nil), t.Header...)
	catCol := indexOf(header, ColumnCategory)
	if catCol < 0 {
		header = append(header, ColumnCategory)
		catCol = len(header) - 1
	}
	commentCol := indexOf(header, ColumnHasComment)
	if commentCol < 0 {
		header = append(header, ColumnHasComment)
		commentCol = len(header) - 1
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.Rows {
		values := pad(append([]string(nil), row.Values...), len(header))
		values[catCol] = string(results[i].Category)
		values[commentCol] = results[i].CommentStatus.String()
		if err := writer.Write(values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func pad(values []string, n int) []string {
	for len(values) < n {
		values = append(values, "")
	}
	return values
}
