package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pipetrace/pkg/model"
)

func TestParseFrameID(t *testing.T) {
	testCases := []struct {
		id        model.FrameID
		timestamp int64
		kind      model.CaptureKind
	}{
		{"frame_1700000000000_before", 1700000000000, model.CaptureKindBefore},
		{"frame_1700000000001_after", 1700000000001, model.CaptureKindAfter},
		{"frame_1700000000002_periodic", 1700000000002, model.CaptureKindPeriodic},
		{"frame_1700000000003_unknown", 1700000000003, model.CaptureKindPeriodic},
		{"frame_abc_before", 0, model.CaptureKindBefore},
		{"frame_1700000000004", 0, model.CaptureKindPeriodic},
		{"", 0, model.CaptureKindPeriodic},
		{"garbage", 0, model.CaptureKindPeriodic},
	}

	for _, tc := range testCases {
		t.Run(string(tc.id), func(t *testing.T) {
			meta := model.ParseFrameID(tc.id)
			gt.Equal(t, meta.Timestamp, tc.timestamp)
			gt.Equal(t, meta.Kind, tc.kind)
		})
	}
}
