// Package mqtt defines the messages published on the result topics.
package mqtt

import (
	"strings"
	"time"
)

// Topic suffixes below the configured prefix.
const (
	TopicStatus  = "status"
	TopicPlants  = "plants"
	TopicCeiling = "ceiling"

	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Ceiling is published once per successful setup table row.
type Ceiling struct {
	Label       string  `json:"label"`
	SurfaceType string  `json:"surface_type"`
	Technology  string  `json:"technology"`
	FileName    string  `json:"file_name"`
	CeilingKWp  float64 `json:"installed_cap_kwp"`
	Timestamp   int64   `json:"timestamp"`
}

// Plants announces the plant labels of a run before any ceiling.
type Plants struct {
	Labels    []string `json:"labels"`
	Timestamp int64    `json:"timestamp"`
}

// Topic joins the prefix and the given levels.
func Topic(prefix string, levels ...string) string {
	parts := make([]string, 0, len(levels)+1)
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, levels...)
	return strings.Join(parts, "/")
}

// Now returns the message timestamp in milliseconds.
func Now() int64 { return time.Now().UnixMilli() }
