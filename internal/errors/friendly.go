package errors

import (
	"fmt"
	"strings"
)

// UserFriendlyError provides actionable error messages for end users
type UserFriendlyError struct {
	Message    string // User-facing message explaining what went wrong
	Suggestion string // Actionable steps to fix the issue
	Details    error  // Original error for debugging/logs
}

func (e *UserFriendlyError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString("How to fix:\n")
		sb.WriteString(e.Suggestion)
	}
	return sb.String()
}

func (e *UserFriendlyError) Unwrap() error {
	return e.Details
}

// NetworkError returns a network-related error with helpful suggestions
func NetworkError(err error) *UserFriendlyError {
	msg := "Network error occurred"
	suggestion := "Check your internet connection and try again"

	if err != nil {
		errStr := err.Error()

		if strings.Contains(errStr, "no such host") || strings.Contains(errStr, "name resolution") {
			msg = "Cannot resolve hostname - DNS lookup failed"
			suggestion = "1. Check your internet connection\n2. Verify the backend address in api.base_url\n3. Try: ping the backend host"
		}

		if strings.Contains(errStr, "connection refused") {
			msg = "Backend refused connection"
			suggestion = "The download service may not be running. Start it with: dowd --config <path>"
		}

		if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
			msg = "Connection timed out"
			suggestion = "Backend is slow or unreachable. Try:\n1. Increase api.timeout_seconds\n2. Check your network\n3. Try again later"
		}

		if strings.Contains(errStr, "certificate") || strings.Contains(errStr, "x509") {
			msg = "SSL/TLS certificate verification failed"
			suggestion = "You may be behind a corporate proxy. Point api.base_url at a plain-HTTP backend or install the proxy CA certificate."
		}
	}

	return &UserFriendlyError{Message: msg, Suggestion: suggestion, Details: err}
}

// ConfigError returns configuration-related errors
func ConfigError(field, issue string) *UserFriendlyError {
	return &UserFriendlyError{
		Message:    fmt.Sprintf("Configuration error in field '%s': %s", field, issue),
		Suggestion: "Run 'dow config validate' to check your configuration",
	}
}

// ToolError reports a missing or failing external tool such as yt-dlp.
func ToolError(tool string, err error) *UserFriendlyError {
	msg := fmt.Sprintf("External tool '%s' failed", tool)
	suggestion := fmt.Sprintf("Check that %s is installed and on PATH", tool)
	if err != nil && strings.Contains(err.Error(), "executable file not found") {
		msg = fmt.Sprintf("External tool '%s' is not installed", tool)
		suggestion = fmt.Sprintf("Install it first, e.g.: pip install %s", tool)
	}
	return &UserFriendlyError{Message: msg, Suggestion: suggestion, Details: err}
}

// DatabaseError returns database-related errors with recovery suggestions
func DatabaseError(err error) *UserFriendlyError {
	msg := "Database error"
	suggestion := "Check that server.data_root is writable"

	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "locked") {
			msg = "Database is locked by another process"
			suggestion = "Close other dowd instances and try again"
		}
		if strings.Contains(errStr, "corrupt") || strings.Contains(errStr, "malformed") {
			msg = "Database is corrupted"
			suggestion = "Back up and remove <data_root>/jobs.db; dowd recreates it on start"
		}
	}

	return &UserFriendlyError{Message: msg, Suggestion: suggestion, Details: err}
}

// PathError returns file/directory path related errors
func PathError(path string, err error) *UserFriendlyError {
	msg := fmt.Sprintf("Path error: %s", path)
	suggestion := "Check that the path exists and you have permission to access it"

	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "permission denied") {
			msg = fmt.Sprintf("Permission denied: %s", path)
			suggestion = fmt.Sprintf("Ensure you have write permission:\n  chmod u+w %s", path)
		}
		if strings.Contains(errStr, "no such file or directory") {
			msg = fmt.Sprintf("Directory does not exist: %s", path)
			suggestion = fmt.Sprintf("Create the directory:\n  mkdir -p %s", path)
		}
	}

	return &UserFriendlyError{Message: msg, Suggestion: suggestion, Details: err}
}
