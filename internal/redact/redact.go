// Package redact strips credentials and internal details from strings before
// they are logged. Store and driver errors routinely carry connection strings,
// SQL text, contact emails and file paths; none of that belongs in a log line
// or an error response.
package redact

import (
	"regexp"
)

// Placeholders substituted for redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedHashPlaceholder       = "[REDACTED_HASH]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
	// keep is the number of leading submatches copied in front of the
	// placeholder, so "api_key=abc" becomes "api_key=[REDACTED_KEY]".
	keep int
}

// Rules run in order. DSNs go before paths and emails because a DSN contains
// both shapes.
var rules = []rule{
	{
		pattern:     regexp.MustCompile(`(?i)\b((?:postgres(?:ql)?|pgx)://)[^\s@/]+@`),
		placeholder: RedactedCredentialPlaceholder + "@",
		keep:        1,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(password|passwd|pwd)(\s*[=:]\s*['"]?)[^'"&\s]+`),
		placeholder: RedactedCredentialPlaceholder,
		keep:        2,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(x-api-key|api[_ -]?key|apikey|secret|token)(['"]?\s*[:=]\s*['"]?|\s+)[A-Za-z0-9!-~]{8,}`),
		placeholder: RedactedKeyPlaceholder,
		keep:        2,
	},
	{
		pattern:     regexp.MustCompile(`\$2[abxy]?\$\d{2}\$[./A-Za-z0-9]{53}`),
		placeholder: RedactedHashPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		placeholder: RedactedStackPlaceholder,
	},
	{
		pattern: regexp.MustCompile(
			`(?i)\b(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)\b[\s\w,*().$=']+?\b(FROM|INTO|SET|TABLE|INDEX)\b[\s\w,*().$=']*`),
		placeholder: RedactedSQLPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		placeholder: RedactedEmailPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?:file:)?(?:/[\w.-]+){2,}`),
		placeholder: RedactedPathPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(?:\\[^\\\s]+)+`),
		placeholder: RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		if r.keep == 0 {
			result = r.pattern.ReplaceAllLiteralString(result, r.placeholder)
			continue
		}
		result = r.pattern.ReplaceAllStringFunc(result, func(match string) string {
			groups := r.pattern.FindStringSubmatch(match)
			prefix := ""
			for i := 1; i <= r.keep && i < len(groups); i++ {
				prefix += groups[i]
			}
			return prefix + r.placeholder
		})
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
