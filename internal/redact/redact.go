// Package redact removes credentials, SQL and file system details from strings
// before they reach logs or error responses. Database drivers in particular
// tend to echo connection strings and query text in their errors.
package redact

import "regexp"

// Placeholders substituted for redacted content.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	PathPlaceholder       = "[REDACTED_PATH]"
	StackPlaceholder      = "[REDACTED_STACK]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order; earlier rules see the unmodified input.
var rules = []rule{
	// user:password@ part of a connection URL
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|pgx)://[^@\s/]+@`), CredentialPlaceholder},
	// password=..., pwd: ...
	{regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s]+['"]?`), CredentialPlaceholder},
	// statement text up to and including the first table name
	{regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[\s\S]*?\b(FROM|INTO|SET)\b\s+\w+`), SQLPlaceholder},
	{regexp.MustCompile(`goroutine \d+ \[[^\]]*\]:[\s\S]*`), StackPlaceholder},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), PathPlaceholder},
}

// String returns input with every sensitive fragment replaced.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range rules {
		input = r.pattern.ReplaceAllString(input, r.placeholder)
	}
	return input
}

// Error redacts err.Error(). A nil error gives an empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
