package models

// AuthResult is the structured outcome of a session operation. Expected
// failures (bad credentials, expired tokens, network trouble) are reported
// through it rather than as errors, so calling UI code gets a single shape
// to render.
type AuthResult struct {
	ErrorOccurred bool   `json:"errorOccurred"`
	ErrorMessage  string `json:"errorMessage"`
}

// OK is the zero-failure result.
func OK() AuthResult { return AuthResult{} }

// Failure builds a failed result with the given message.
func Failure(msg string) AuthResult {
	return AuthResult{ErrorOccurred: true, ErrorMessage: msg}
}
