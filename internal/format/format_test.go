package format

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		stripped string
		want     string
		err      error
	}{
		"keeps json in message": {
			stripped: `2024-05-01 10:00:00 DEBUG [WS-Connection] Event triggering socket close: {"code":1006}`,
			want:     `Event triggering socket close: {"code":1006}`,
		},
		"first marker wins": {
			stripped: `10:00 INFO [A] list [x] done`,
			want:     `list [x] done`,
		},
		"no marker": {
			stripped: `10:00 INFO A] no space`,
			err:      ErrNoTagMarker,
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := Default("", tc.stripped)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResponseLogger(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		stripped string
		want     string
		payload  bool
		err      error
	}{
		"object payload with trailing object": {
			stripped: `10:00 INFO [ResponseLoggerLink] Response: {"operationName":"Me","responseData":{"me":{"id":"1","bio":"} {"}}} {"variables":{}}`,
			want:     `{"me":{"id":"1","bio":"} {"}}`,
			payload:  true,
		},
		"payload ending the line": {
			stripped: `10:00 INFO [ResponseLoggerLink] {"responseData": [1, 2]}`,
			want:     `[1, 2]`,
			payload:  true,
		},
		"scalar payload cut at end marker": {
			stripped: `10:00 INFO [ResponseLoggerLink] {"responseData":"ok"} {"next":1}`,
			want:     `"ok"`,
			payload:  true,
		},
		"stringified object payload": {
			stripped: `10:00 INFO [ResponseLoggerLink] {"responseData":"{\"me\":{\"id\":\"7\"}}"} {"variables":{}}`,
			want:     `"{\"me\":{\"id\":\"7\"}}"`,
			payload:  true,
		},
		"no marker": {
			stripped: `10:00 INFO [ResponseLoggerLink] Request sent`,
			want:     `10:00 INFO [ResponseLoggerLink] Request sent`,
		},
		"empty payload": {
			stripped: `10:00 INFO [ResponseLoggerLink] {"responseData":`,
			err:      ErrEmptyResponse,
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ResponseLogger("", tc.stripped)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			if tc.payload {
				assert.True(t, json.Valid([]byte(got)), "payload is not valid JSON: %s", got)
			}
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil, Builtin())

	_, ok := r.Lookup(ResponseLoggerTag)
	assert.True(t, ok)

	_, ok = r.Lookup("responseloggerlink")
	assert.False(t, ok, "tags are case-sensitive")

	f, ok := r.Lookup("WS-Connection")
	assert.False(t, ok)
	require.NotNil(t, f)
}

func TestRegistryFormat(t *testing.T) {
	t.Parallel()

	failing := func(_, _ string) (string, error) { return "", assert.AnError }
	panicking := func(_, _ string) (string, error) { panic("boom") }

	tcs := map[string]struct {
		tag      string
		stripped string
		want     string
		warns    bool
	}{
		"default formatter": {
			tag:      "Other",
			stripped: "10:00 INFO [Other] hello",
			want:     "hello",
		},
		"default degrades to stripped line": {
			tag:      "Other",
			stripped: "no tag marker here",
			want:     "no tag marker here",
			warns:    true,
		},
		"registered error yields empty": {
			tag:      "Failing",
			stripped: "10:00 INFO [Failing] x",
			want:     "",
			warns:    true,
		},
		"registered panic yields empty": {
			tag:      "Panicking",
			stripped: "10:00 INFO [Panicking] x",
			want:     "",
			warns:    true,
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			r := NewRegistry(logger, map[string]Formatter{
				"Failing":   failing,
				"Panicking": panicking,
			})

			assert.Equal(t, tc.want, r.Format(tc.tag, tc.stripped+" {}", tc.stripped))
			if tc.warns {
				assert.Contains(t, buf.String(), "formatter failed")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestRegistryIsolatedFromSource(t *testing.T) {
	t.Parallel()

	src := Builtin()
	r := NewRegistry(nil, src)
	delete(src, ResponseLoggerTag)

	_, ok := r.Lookup(ResponseLoggerTag)
	assert.True(t, ok)
}
