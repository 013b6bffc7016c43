package harness

// CaseResult is what a case produced. Database fields are empty when the
// scenario has no schema.
type CaseResult struct {
	Query   string         `json:"query"`
	SQL     string         `json:"sql,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Columns []string       `json:"columns,omitempty"`
	Rows    [][]any        `json:"rows,omitempty"`
	Count   *int64         `json:"count,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// row returns the i-th row keyed by column.
func (r *CaseResult) row(i int) map[string]any {
	m := make(map[string]any, len(r.Columns))
	for j, col := range r.Columns {
		m[col] = r.Rows[i][j]
	}
	return m
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors is empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
