package tailer

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
)

// ReadLines emits every line of r, in order, on the returned channel and
// closes it at end of input or when ctx is cancelled. Lines have no length
// limit; a final line without a newline is still emitted.
func ReadLines(ctx context.Context, r io.Reader, source string, logger *slog.Logger) <-chan model.RawLine {
	if logger == nil {
		logger = slog.Default()
	}

	out := make(chan model.RawLine, 512)
	go func() {
		defer close(out)

		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				select {
				case out <- model.RawLine{Text: strings.TrimRight(line, "\r\n"), Source: source}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					logger.Error("read failed", "source", source, "err", err)
				}
				return
			}
		}
	}()
	return out
}
