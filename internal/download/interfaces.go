package download

import (
	"context"

	"github.com/ytget/yt-bw/internal/model"
)

// ProgressFunc receives download progress in percent (0-100)
type ProgressFunc func(percent int)

// Engine fetches media for a request and reports the finished files it
// wrote under the request's stem, even when it fails part way.
type Engine interface {
	Download(ctx context.Context, req model.DownloadRequest, onProgress ProgressFunc) ([]string, error)
}

// Muxer combines a separate video and audio stream into one container
type Muxer interface {
	Merge(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// Acquirer drives a job from a URL and resolution to a file ready for conversion
type Acquirer interface {
	Acquire(ctx context.Context, url string, resolution int) (*model.AcquisitionJob, error)
}
