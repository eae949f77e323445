package format

import (
	"errors"
	"strings"
)

// ErrNoTagMarker means a line has no "] " closing its source tag.
var ErrNoTagMarker = errors.New(`no "] " after source tag`)

const tagClose = "] "

// Default drops the "<timestamp> <level> [<tag>]" prefix and keeps the
// message. The JSON context is already gone from stripped, so objects inside
// the message itself are preserved.
func Default(_, stripped string) (string, error) {
	_, msg, ok := strings.Cut(stripped, tagClose)
	if !ok {
		return "", ErrNoTagMarker
	}
	return strings.TrimSpace(msg), nil
}
