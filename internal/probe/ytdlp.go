package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/ytget/yt-bw/internal/model"
	"github.com/ytget/yt-bw/internal/platform"
)

// jsonRunner returns the single-JSON metadata dump for a URL
type jsonRunner func(ctx context.Context, rawURL string) (string, error)

// YTDLP probes metadata with `yt-dlp --dump-single-json --skip-download`
type YTDLP struct {
	run jsonRunner
}

// NewYTDLP creates a prober that shells out to yt-dlp
func NewYTDLP(executable string, opts model.NetworkOptions) *YTDLP {
	return &YTDLP{
		run: func(ctx context.Context, rawURL string) (string, error) {
			cmd := platform.NewYTDLPCommand(executable, opts).
				DumpSingleJSON().
				SkipDownload().
				NoPlaylist().
				Quiet().
				NoWarnings()

			result, err := cmd.Run(ctx, rawURL)
			if err != nil {
				return "", fmt.Errorf("yt-dlp metadata: %w", err)
			}
			return result.Stdout, nil
		},
	}
}

// Probe validates rawURL, runs yt-dlp once and decodes the formats
func (p *YTDLP) Probe(ctx context.Context, rawURL string) (*model.VideoInfo, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, &model.ProbeError{URL: rawURL, Err: err}
	}

	out, err := p.run(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		return finish(rawURL, nil, err)
	}
	info, err := decodeInfo([]byte(out))
	return finish(rawURL, info, err)
}

type rawInfo struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Duration *float64    `json:"duration"`
	Formats  []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID     string   `json:"format_id"`
	VCodec       *string  `json:"vcodec"`
	ACodec       *string  `json:"acodec"`
	Height       *float64 `json:"height"`
	QualityLabel string   `json:"quality_label"`
	FormatNote   string   `json:"format_note"`
	Ext          string   `json:"ext"`
}

// decodeInfo maps yt-dlp's info dict onto model types. Height may arrive as
// a float or null; format_note stands in when quality_label is absent.
func decodeInfo(data []byte) (*model.VideoInfo, error) {
	var raw rawInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	info := &model.VideoInfo{
		ID:      raw.ID,
		Title:   raw.Title,
		Formats: make([]model.FormatDescriptor, 0, len(raw.Formats)),
	}
	if raw.Duration != nil {
		info.Duration = *raw.Duration
	}

	for _, f := range raw.Formats {
		d := model.FormatDescriptor{
			FormatID:     f.FormatID,
			VCodec:       deref(f.VCodec),
			ACodec:       deref(f.ACodec),
			QualityLabel: f.QualityLabel,
			Ext:          f.Ext,
		}
		if d.QualityLabel == "" {
			d.QualityLabel = f.FormatNote
		}
		if f.Height != nil && *f.Height > 0 {
			d.Height = model.IntPtr(int(math.Round(*f.Height)))
		}
		info.Formats = append(info.Formats, d)
	}
	return info, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
