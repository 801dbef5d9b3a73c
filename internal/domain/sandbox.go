package domain

// ExecuteRequest is the body of POST /api/play/execute
type ExecuteRequest struct {
	Source     string `json:"source"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

// ExecutionStatus mirrors the status object clients already understand
type ExecutionStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// ExecuteResult is the output of a sandbox run. It is for display only.
type ExecuteResult struct {
	Stdout        string          `json:"stdout"`
	Stderr        string          `json:"stderr"`
	CompileOutput string          `json:"compile_output"`
	Status        ExecutionStatus `json:"status"`
	Language      string          `json:"language"`
}
