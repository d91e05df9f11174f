package bridge

// Outcome is the success-or-failure result of one bridged task,
// delivered to the submitter exactly once.
type Outcome struct {
	OK     bool           `json:"ok"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
	Trace  string         `json:"trace,omitempty"`
}

// Ok wraps a handler result into a successful outcome.
func Ok(result map[string]any) Outcome {
	return Outcome{OK: true, Result: result}
}

// Failed builds a failure outcome carrying a message.
func Failed(message string) Outcome {
	return Outcome{OK: false, Error: message}
}

// FailedTrace builds a failure outcome carrying a message and a stack trace.
func FailedTrace(message, trace string) Outcome {
	return Outcome{OK: false, Error: message, Trace: trace}
}
