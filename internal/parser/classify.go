package parser

import "strings"

// tagToken is the index of the space-separated token that carries the
// bracketed source tag in "<date> <time> <level> [<tag>] <message> <json>".
const tagToken = 3

// IsCandidate reports whether line looks like a structured log line worth
// extracting a JSON context from. It only inspects the token at tagToken, so
// most plain lines are rejected without further work.
func IsCandidate(line string) bool {
	tokens := strings.Split(line, " ")
	if len(tokens) <= tagToken {
		return false
	}
	return strings.ContainsAny(tokens[tagToken], "[]")
}
