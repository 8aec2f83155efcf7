package apperror

// ItemError reports a failure of a single item inside a batch operation.
// Batch operations exclude the failed item and continue with the rest.
type ItemError struct {
	Index  int            `json:"index"`
	Number string         `json:"number,omitempty"`
	Code   string         `json:"code"`
	Args   map[string]any `json:"args,omitempty"`
}

// ItemFromError converts err into an ItemError for position i.
// Non-AppError causes are reported as internal errors.
func ItemFromError(i int, number string, err error) ItemError {
	item := ItemError{Index: i, Number: number, Code: CodeInternal}
	if appErr, ok := AsAppError(err); ok {
		item.Code = appErr.Code
		item.Args = appErr.Details
	}
	return item
}

// BatchErrors accumulates per-item failures.
type BatchErrors struct {
	Items []ItemError
}

// Add records err for item i. Nil errors are ignored.
func (b *BatchErrors) Add(i int, number string, err error) {
	if err == nil {
		return
	}
	b.Items = append(b.Items, ItemFromError(i, number, err))
}

// Empty reports whether no failures were recorded.
func (b *BatchErrors) Empty() bool {
	return len(b.Items) == 0
}
