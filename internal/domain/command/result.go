package command

// Result is the outcome of one executed command, ready for the
// presentation layer: a localized message or error plus structured data.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Err     string         `json:"error,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// OK builds a successful result.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// OKData builds a successful result carrying structured data.
func OKData(message string, data map[string]any) Result {
	return Result{Success: true, Message: message, Data: data}
}

// Fail builds a failed result with a localized reason.
func Fail(reason string) Result {
	return Result{Success: false, Err: reason}
}
