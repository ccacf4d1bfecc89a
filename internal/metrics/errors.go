package metrics

import (
	"context"
	"errors"

	"github.com/ytget/yt-bw/internal/model"
)

// ErrorType maps an error onto a low-cardinality label value
func ErrorType(err error) string {
	var probeErr *model.ProbeError
	var acqErr *model.AcquisitionError
	var convErr *model.ConversionError

	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, model.ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, model.ErrNoFormats), errors.Is(err, model.ErrNoResolutions):
		return "no_formats"
	case errors.Is(err, model.ErrNothingDownloaded), errors.Is(err, model.ErrAmbiguousOutput):
		return "reconcile"
	case errors.As(err, &probeErr):
		return "probe"
	case errors.As(err, &acqErr):
		return "download"
	case errors.As(err, &convErr):
		return "ffmpeg"
	default:
		return "other"
	}
}
