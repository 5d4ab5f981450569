package remote

import (
	"regexp"
	"strings"
)

// validNameRe matches only alphanumeric characters and underscores.
// Database names interpolated into dump commands must match it, which
// rules out shell metacharacters entirely.
var validNameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidName reports whether s is safe to use verbatim as a database or
// identifier name in a remote command.
func ValidName(s string) bool {
	return validNameRe.MatchString(s)
}

// ShellQuote wraps s in single quotes for a POSIX shell, escaping any
// embedded single quotes. Paths from server profiles always pass through
// this before entering a remote command line.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
