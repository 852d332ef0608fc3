package model

// CategoryCount is one line of the category frequency table
type CategoryCount struct {
	Category Category `json:"category" yaml:"category"`
	Count    int      `json:"count" yaml:"count"`
}

// StatusCount is one line of the comment status table
type StatusCount struct {
	Kind  CommentKind `json:"status" yaml:"status"`
	Count int         `json:"count" yaml:"count"`
}

// Summary aggregates the results of one batch
type Summary struct {
	Input      string          `json:"input,omitempty" yaml:"input,omitempty"`   // Input table path
	Output     string          `json:"output,omitempty" yaml:"output,omitempty"` // Output table path
	Total      int             `json:"total" yaml:"total"`                       // Rows processed
	Commented  int             `json:"commented" yaml:"commented"`               // Rows with has_comment
	Categories []CategoryCount `json:"categories" yaml:"categories"`             // Most frequent first
	Statuses   []StatusCount   `json:"statuses" yaml:"statuses"`                 // Comment status breakdown
}

// CommentRatio returns the share of rows that carry a comment
func (s Summary) CommentRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Commented) / float64(s.Total)
}

// CountFor returns the count recorded for a category
func (s Summary) CountFor(c Category) int {
	for _, cc := range s.Categories {
		if cc.Category == c {
			return cc.Count
		}
	}
	return 0
}

// StatusCountFor returns the count recorded for a comment kind
func (s Summary) StatusCountFor(k CommentKind) int {
	for _, sc := range s.Statuses {
		if sc.Kind == k {
			return sc.Count
		}
	}
	return 0
}
