package model

// AssertionRecord is one assertion occurrence loaded from the input table
type AssertionRecord struct {
	FilePath      string `json:"file_path"`      // Source file containing the assertion
	LineNumber    int    `json:"line_number"`    // 1-based line of the assertion
	AssertionCode string `json:"assertion_code"` // Raw assertion text
}

// Category is the semantic class assigned to an assertion
type Category string

const (
	CategoryImmediate  Category = "immediate"  // Procedural check evaluated at one point in time
	CategoryConcurrent Category = "concurrent" // Clocked property/sequence assertion
	CategoryTemporal   Category = "temporal"   // Uses delay, range or implication operators
	CategoryFunctional Category = "functional" // Built around system functions ($onehot, $past, ...)
	CategoryUnknown    Category = "unknown"    // Nothing matched
)

// Categories lists every category in priority order, unknown last
func Categories() []Category {
	return []Category{
		CategoryImmediate,
		CategoryConcurrent,
		CategoryTemporal,
		CategoryFunctional,
		CategoryUnknown,
	}
}

// Rank returns the category's position in priority order
func (c Category) Rank() int {
	for i, cat := range Categories() {
		if cat == c {
			return i
		}
	}
	return len(Categories())
}

// CommentKind classifies the outcome of a comment lookup
type CommentKind string

const (
	CommentFileNotFound CommentKind = "file_not_found"
	CommentLineNotFound CommentKind = "line_not_found"
	CommentPresent      CommentKind = "has_comment"
	CommentAbsent       CommentKind = "no_comment"
	CommentError        CommentKind = "error"
)

// CommentKinds lists every comment kind in report order
func CommentKinds() []CommentKind {
	return []CommentKind{
		CommentPresent,
		CommentAbsent,
		CommentFileNotFound,
		CommentLineNotFound,
		CommentError,
	}
}

// CommentStatus is the result of a comment proximity search.
// Message is only set for CommentError.
type CommentStatus struct {
	Kind    CommentKind `json:"kind"`
	Message string      `json:"message,omitempty"`
}

// StatusOf returns a status without a message
func StatusOf(kind CommentKind) CommentStatus {
	return CommentStatus{Kind: kind}
}

// ErrorStatus wraps an unexpected failure into a terminal status
func ErrorStatus(err error) CommentStatus {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return CommentStatus{Kind: CommentError, Message: msg}
}

// String renders the status the way it appears in the output table
func (s CommentStatus) String() string {
	if s.Kind == CommentError {
		return "error: " + s.Message
	}
	return string(s.Kind)
}

// HasComment reports whether an explanatory comment was found
func (s CommentStatus) HasComment() bool {
	return s.Kind == CommentPresent
}

// ClassificationResult is the per-record output of the analysis
type ClassificationResult struct {
	Category      Category      `json:"assertion_category"`
	CommentStatus CommentStatus `json:"has_comment"`
}
