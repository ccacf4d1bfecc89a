package probe

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ytget/yt-bw/internal/model"
)

// Backend names accepted by New
const (
	BackendYTDLP     = "ytdlp"
	BackendInnertube = "innertube"
)

// Prober retrieves format metadata for a single video
type Prober interface {
	Probe(ctx context.Context, rawURL string) (*model.VideoInfo, error)
}

// New creates a prober for the named backend. An empty name selects yt-dlp.
func New(backend, ytdlpPath string, opts model.NetworkOptions) (Prober, error) {
	switch backend {
	case "", BackendYTDLP:
		return NewYTDLP(ytdlpPath, opts), nil
	case BackendInnertube:
		return NewInnertube(opts)
	default:
		return nil, fmt.Errorf("unknown probe backend: %q", backend)
	}
}

// ValidateURL checks that rawURL is an absolute http(s) URL
func ValidateURL(rawURL string) error {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return fmt.Errorf("%w: empty", model.ErrInvalidURL)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", model.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", model.ErrInvalidURL)
	}
	return nil
}

// finish applies the checks shared by every backend to a decoded result
func finish(rawURL string, info *model.VideoInfo, err error) (*model.VideoInfo, error) {
	if err != nil {
		return nil, &model.ProbeError{URL: rawURL, Err: err}
	}
	if info == nil || len(info.Formats) == 0 {
		return nil, &model.ProbeError{URL: rawURL, Err: model.ErrNoFormats}
	}
	return info, nil
}
