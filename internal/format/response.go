package format

import (
	"errors"
	"strings"

	"github.com/gratian-dicu-sv/cleanlogs/internal/parser"
)

// ResponseLoggerTag is the source tag of lines carrying full GraphQL
// responses.
const ResponseLoggerTag = "ResponseLoggerLink"

const (
	responseStart = `"responseData":`
	responseEnd   = `"} {"`
)

// ErrEmptyResponse means the responseData marker was followed by nothing.
var ErrEmptyResponse = errors.New("empty responseData payload")

// ResponseLogger reduces a response log line to its responseData payload.
// Lines without the marker are shown without their context.
func ResponseLogger(_, stripped string) (string, error) {
	_, rest, ok := strings.Cut(stripped, responseStart)
	if !ok {
		return stripped, nil
	}
	rest = strings.TrimLeft(rest, " \t")

	if payload, ok := parser.ScanValue(rest); ok {
		return payload, nil
	}

	// Scalar payload: keep its closing quote, drop the outer object's `}`.
	if i := strings.Index(rest, responseEnd); i >= 0 {
		rest = rest[:i+1]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", ErrEmptyResponse
	}
	return rest, nil
}
