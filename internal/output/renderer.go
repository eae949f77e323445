package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
)

// Renderer writes recognized entries and device banners to an output stream.
type Renderer interface {
	Render(entry model.Entry) error
	Banner(device string) error
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

// TextRenderer prints "HH:MM:SS | [LEVEL |] tag ~ message" lines with
// severity-based colors.
type TextRenderer struct {
	w         io.Writer
	showLevel bool
	loc       *time.Location

	styleTime   lipgloss.Style
	styleTag    lipgloss.Style
	styleBanner lipgloss.Style
	levels      map[string]lipgloss.Style
	styleInfo   lipgloss.Style
}

// NewTextRenderer returns a Renderer that writes text to w, colorized when w
// is a terminal. showLevel adds the severity column.
func NewTextRenderer(w io.Writer, showLevel bool) *TextRenderer {
	// Bind styles to w so color is only emitted when w is a terminal.
	lr := lipgloss.NewRenderer(w)

	styleDebug := lr.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleWarn := lr.NewStyle().Foreground(lipgloss.Color("220"))             // yellow
	styleError := lr.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleFatal := lr.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("196")).
		Bold(true) // white on red

	return &TextRenderer{
		w:           w,
		showLevel:   showLevel,
		loc:         time.Local,
		styleTime:   lr.NewStyle().Foreground(lipgloss.Color("245")),
		styleTag:    lr.NewStyle().Foreground(lipgloss.Color("39")), // cyan
		styleBanner: lr.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		styleInfo:   lr.NewStyle().Foreground(lipgloss.Color("252")),
		levels: map[string]lipgloss.Style{
			"TRACE":   styleDebug,
			"DEBUG":   styleDebug,
			"WARN":    styleWarn,
			"WARNING": styleWarn,
			"ERROR":   styleError,
			"FATAL":   styleFatal,
		},
	}
}

func (r *TextRenderer) Render(entry model.Entry) error {
	var b strings.Builder

	b.WriteString(r.styleTime.Render(entry.Timestamp.In(r.loc).Format("15:04:05")))
	b.WriteString(" | ")
	if r.showLevel {
		b.WriteString(r.levelStyle(entry.Level).Render(fmt.Sprintf("%-5s", entry.Level)))
		b.WriteString(" | ")
	}
	b.WriteString(r.styleTag.Render(entry.Tag))
	b.WriteString(" ~ ")
	b.WriteString(entry.Message)

	_, err := fmt.Fprintln(r.w, b.String())
	return err
}

// Banner announces that lines now come from a different device.
func (r *TextRenderer) Banner(device string) error {
	_, err := fmt.Fprintln(r.w, r.styleBanner.Render("──── device: "+device+" ────"))
	return err
}

func (r *TextRenderer) levelStyle(level string) lipgloss.Style {
	if s, ok := r.levels[strings.ToUpper(level)]; ok {
		return s
	}
	return r.styleInfo
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each entry as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

type jsonEntry struct {
	Type string `json:"type"`
	model.Entry
	Context json.RawMessage `json:"context,omitempty"`
}

func (r *JSONRenderer) Render(entry model.Entry) error {
	out := jsonEntry{Type: "log", Entry: entry}
	if entry.Context != "" {
		out.Context = json.RawMessage(entry.Context)
	}
	return r.enc.Encode(out)
}

func (r *JSONRenderer) Banner(device string) error {
	return r.enc.Encode(struct {
		Type   string `json:"type"`
		Device string `json:"device"`
	}{Type: "device", Device: device})
}
