// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. Errors from the OAuth,
// Discord and database clients routinely embed tokens, codes and connection
// strings; this package strips them.
package redact

import "regexp"

// Placeholders substituted for redacted values.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedGooglePlaceholder     = "[REDACTED_GOOGLE_TOKEN]"
	RedactedDiscordPlaceholder    = "[REDACTED_DISCORD_TOKEN]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
)

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// rules are applied in order. Specific token formats come before the generic
// key=value rule so their placeholders stay descriptive.
var rules = []rule{
	{
		re:          regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		replacement: RedactedJWTPlaceholder,
	},
	// Google access tokens
	{
		re:          regexp.MustCompile(`\bya29\.[A-Za-z0-9_\-.]+`),
		replacement: RedactedGooglePlaceholder,
	},
	// Google refresh tokens
	{
		re:          regexp.MustCompile(`\b1//[A-Za-z0-9_\-]+`),
		replacement: RedactedGooglePlaceholder,
	},
	{
		re:          regexp.MustCompile(`\b[MNO][A-Za-z0-9_-]{23,27}\.[A-Za-z0-9_-]{6}\.[A-Za-z0-9_-]{27,40}\b`),
		replacement: RedactedDiscordPlaceholder,
	},
	{
		re:          regexp.MustCompile(`(?i)(postgres(?:ql)?|mysql|mongodb)://[^@\s]+@`),
		replacement: "${1}://" + RedactedCredentialPlaceholder + "@",
	},
	{
		re:          regexp.MustCompile(`(?i)\b(bearer|bot)\s+[A-Za-z0-9_\-.~+/=]{8,}`),
		replacement: "${1} " + RedactedTokenPlaceholder,
	},
	{
		re: regexp.MustCompile(
			`(?i)\b(password|secret|api[_-]?key|refresh_token|access_token|client_secret|code|state)=([^&\s"']+)`,
		),
		replacement: "${1}=" + RedactionPlaceholder,
	},
	{
		re:          regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		replacement: RedactedEmailPlaceholder,
	},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.re.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
