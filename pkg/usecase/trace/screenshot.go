package trace

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/repository"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
)

var screenshotMIME = map[string]string{
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".jpeg": "image/jpeg",
}

// GetScreenshot returns the frame's screenshot as a base64 data URI. It probes <id>.jpg, <id>.png and
// <id>.jpeg in that order and returns "" when none exists or a read fails. An ID that is not a plain
// file name never resolves.
func (u *UseCase) GetScreenshot(ctx context.Context, frameID model.FrameID) (string, error) {
	if u.stores.Screenshots == nil || frameID == "" {
		return "", nil
	}

	logger := logging.From(ctx)
	if !isPlainName(string(frameID)) {
		logger.Warn("rejected screenshot lookup", "frame_id", frameID)
		return "", nil
	}

	for _, ext := range screenshotExts {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		data, err := u.stores.Screenshots.Get(ctx, string(frameID)+ext)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			logger.Warn("failed to read screenshot", "frame_id", frameID, "ext", ext, "error", err)
			return "", nil
		}

		return "data:" + screenshotMIME[ext] + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	}

	return "", nil
}

func isPlainName(id string) bool {
	return !strings.Contains(id, "..") && !strings.ContainsAny(id, `/\`)
}
