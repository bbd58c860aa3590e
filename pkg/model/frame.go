package model

import (
	"regexp"
	"strconv"
	"strings"
)

type FrameID string

type CaptureKind string

const (
	CaptureKindPeriodic CaptureKind = "periodic"
	CaptureKindBefore   CaptureKind = "before"
	CaptureKindAfter    CaptureKind = "after"
)

var frameTimestampPattern = regexp.MustCompile(`frame_(\d+)_`)

// FrameMeta is the structural metadata encoded in a frame identifier
type FrameMeta struct {
	Timestamp int64       `json:"timestamp"`
	Kind      CaptureKind `json:"kind"`
}

// ParseFrameID extracts the capture timestamp (milliseconds) and capture kind from a frame ID such as
// "frame_1700000000000_before". Malformed IDs fall back to timestamp 0 and kind periodic.
func ParseFrameID(id FrameID) FrameMeta {
	meta := FrameMeta{Kind: CaptureKindPeriodic}

	if m := frameTimestampPattern.FindStringSubmatch(string(id)); m != nil {
		if ts, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			meta.Timestamp = ts
		}
	}

	switch {
	case strings.HasSuffix(string(id), "_before"):
		meta.Kind = CaptureKindBefore
	case strings.HasSuffix(string(id), "_after"):
		meta.Kind = CaptureKindAfter
	}

	return meta
}
