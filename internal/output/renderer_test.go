package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
)

func testEntry() model.Entry {
	return model.Entry{
		ID:        "id-1",
		Timestamp: time.Date(2024, 5, 1, 14, 3, 9, 0, time.UTC),
		Source:    "stdin",
		Tag:       "WS-Connection",
		Level:     "DEBUG",
		Device:    "pixel",
		Message:   `socket close: {"code":1006}`,
		Raw:       "raw line",
		Context:   `{"buildNumber":"1","deviceName":"pixel","name":"WS-Connection"}`,
	}
}

func TestTextRenderer(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		showLevel bool
		want      string
	}{
		"without level": {
			showLevel: false,
			want:      "14:03:09 | WS-Connection ~ socket close: {\"code\":1006}\n",
		},
		"with level": {
			showLevel: true,
			want:      "14:03:09 | DEBUG | WS-Connection ~ socket close: {\"code\":1006}\n",
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			r := NewTextRenderer(&buf, tc.showLevel)
			r.loc = time.UTC

			require.NoError(t, r.Render(testEntry()))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestTextRendererBanner(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := NewTextRenderer(&buf, false)
	require.NoError(t, r.Banner("pixel"))

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "pixel")
}

func TestJSONRenderer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	renderer := NewJSONRenderer(&buf)
	require.NoError(t, renderer.Render(testEntry()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got), "raw: %s", buf.String())

	assert.Equal(t, "log", got["type"])
	assert.Equal(t, "WS-Connection", got["tag"])
	assert.Equal(t, "pixel", got["device"])
	assert.Equal(t, `socket close: {"code":1006}`, got["message"])

	ctx, ok := got["context"].(map[string]any)
	require.True(t, ok, "context should be embedded as an object")
	assert.Equal(t, "1", ctx["buildNumber"])
}

func TestJSONRendererBanner(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	renderer := NewJSONRenderer(&buf)
	require.NoError(t, renderer.Banner("pixel"))

	assert.JSONEq(t, `{"type":"device","device":"pixel"}`, buf.String())
}
