package model

import "time"

// RawLine is one line read from an input source.
type RawLine struct {
	Text   string
	Source string // "stdin" or the followed file path
}

// Level is the severity carried in a line's JSON context.
type Level struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// LogContext is the metadata parsed from the JSON object that trails a
// structured log line.
type LogContext struct {
	DeviceID    string `json:"deviceId,omitempty"`
	DeviceName  string `json:"deviceName"`
	DeviceModel string `json:"deviceModel,omitempty"`
	Name        string `json:"name"` // source tag
	Level       Level  `json:"level"`
	BuildNumber string `json:"buildNumber"`
	SessionID   string `json:"sessionId,omitempty"`
	TenantID    string `json:"tenantId,omitempty"`
	UserID      string `json:"userId,omitempty"`
	OSVersion   string `json:"osVersion,omitempty"`
	AppVersion  string `json:"version,omitempty"`

	// JSON is the exact text of the trailing object.
	JSON string `json:"-"`
}

// Entry is a recognized line, ready for the console and for subscribers.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Tag       string    `json:"tag"`
	Level     string    `json:"level"`
	Device    string    `json:"device"`
	Message   string    `json:"message"` // formatted display text
	Raw       string    `json:"raw"`     // original line text
	Context   string    `json:"-"`       // JSON tail, sent verbatim to subscribers
}
