package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
)

var (
	// ErrNoContext means the line does not end with a balanced JSON object.
	ErrNoContext = errors.New("no JSON context found")
	// ErrMalformedJSON means the trailing object is not valid JSON.
	ErrMalformedJSON = errors.New("malformed JSON context")
	// ErrMissingField means the context lacks a required field, which marks
	// it as an incidental JSON blob rather than log metadata.
	ErrMissingField = errors.New("missing required context field")
)

// Result is a successfully parsed structured line.
type Result struct {
	Context model.LogContext
	// Stripped is the line with its JSON context removed and trimmed.
	Stripped string
}

// Parser extracts and parses the JSON context of structured log lines.
// It is safe for concurrent use.
type Parser struct {
	pool fastjson.ParserPool
}

func New() *Parser { return &Parser{} }

// Parse locates the trailing JSON object of line and decodes it.
func (p *Parser) Parse(line string) (Result, error) {
	start, end := lastObject(line)
	if start < 0 {
		return Result{}, ErrNoContext
	}

	ctx, err := p.ParseContext(line[start:end])
	if err != nil {
		return Result{}, err
	}

	return Result{
		Context:  ctx,
		Stripped: strings.TrimSpace(line[:start]),
	}, nil
}

// ParseContext decodes an extracted JSON tail into a LogContext.
func (p *Parser) ParseContext(tail string) (model.LogContext, error) {
	fp := p.pool.Get()
	defer p.pool.Put(fp)

	v, err := fp.Parse(tail)
	if err != nil {
		return model.LogContext{}, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	if v.Type() != fastjson.TypeObject {
		return model.LogContext{}, fmt.Errorf("%w: expected object, got %s", ErrMalformedJSON, v.Type())
	}

	build, err := scalarField(v, "buildNumber")
	if err != nil {
		return model.LogContext{}, err
	}
	device, err := stringField(v, "deviceName")
	if err != nil {
		return model.LogContext{}, err
	}
	name, err := stringField(v, "name")
	if err != nil {
		return model.LogContext{}, err
	}

	return model.LogContext{
		DeviceID:    string(v.GetStringBytes("deviceId")),
		DeviceName:  device,
		DeviceModel: string(v.GetStringBytes("deviceModel")),
		Name:        name,
		Level: model.Level{
			Name:  string(v.GetStringBytes("level", "name")),
			Value: v.GetInt("level", "value"),
		},
		BuildNumber: build,
		SessionID:   string(v.GetStringBytes("sessionId")),
		TenantID:    string(v.GetStringBytes("tenantId")),
		UserID:      string(v.GetStringBytes("userId")),
		OSVersion:   string(v.GetStringBytes("osVersion")),
		AppVersion:  string(v.GetStringBytes("version")),
		JSON:        tail,
	}, nil
}

// stringField returns a required string field.
func stringField(v *fastjson.Value, key string) (string, error) {
	f := v.Get(key)
	if f == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	b, err := f.StringBytes()
	if err != nil {
		return "", fmt.Errorf("%w: %s must be a string", ErrMissingField, key)
	}
	return string(b), nil
}

// scalarField returns a required field that may be a string or a number.
func scalarField(v *fastjson.Value, key string) (string, error) {
	f := v.Get(key)
	if f == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	switch f.Type() {
	case fastjson.TypeString:
		return string(f.GetStringBytes()), nil
	case fastjson.TypeNumber:
		return f.String(), nil
	default:
		return "", fmt.Errorf("%w: %s must be a string or number", ErrMissingField, key)
	}
}
