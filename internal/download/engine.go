package download

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-bw/internal/model"
	"github.com/ytget/yt-bw/internal/platform"
)

// Engine settings
const (
	// OutputExtTemplate lets yt-dlp append the real container extension
	OutputExtTemplate = ".%(ext)s"
	ProgressInterval  = 500 * time.Millisecond
)

// YTDLPEngine downloads with the yt-dlp executable
type YTDLPEngine struct {
	executable string
}

// NewYTDLPEngine creates an engine; an empty executable uses yt-dlp from PATH
func NewYTDLPEngine(executable string) *YTDLPEngine {
	return &YTDLPEngine{executable: executable}
}

// Download runs yt-dlp once and lists the finished files it left for the stem
func (e *YTDLPEngine) Download(ctx context.Context, req model.DownloadRequest, onProgress ProgressFunc) ([]string, error) {
	dir, stem := splitTemplate(req.OutputTemplate)

	dl := platform.NewYTDLPCommand(e.executable, req.NetworkOptions).
		ForceOverwrites().
		NoPlaylist().
		Format(req.Format).
		Output(req.OutputTemplate)

	if req.MergeOutputFormat != "" {
		dl = dl.MergeOutputFormat(req.MergeOutputFormat)
	}
	if req.Quiet {
		dl = dl.Quiet()
	}
	if req.NoWarnings {
		dl = dl.NoWarnings()
	}

	if onProgress != nil {
		// --progress keeps progress lines flowing in quiet mode
		dl = dl.Progress()
		dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
			if update.TotalBytes > 0 {
				percent := float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
				onProgress(min(int(percent), 100))
			}
		})
	}

	_, runErr := dl.Run(ctx, req.URL)

	files, listErr := platform.ListByStem(dir, stem)
	if runErr != nil {
		log.Printf("yt-dlp failed for %s: %v", stem, runErr)
		return files, fmt.Errorf("yt-dlp download: %w", runErr)
	}
	if listErr != nil {
		return nil, fmt.Errorf("list downloaded files: %w", listErr)
	}
	return files, nil
}

// splitTemplate returns the directory and file stem of an output template
func splitTemplate(tmpl string) (dir, stem string) {
	return filepath.Dir(tmpl), strings.TrimSuffix(filepath.Base(tmpl), OutputExtTemplate)
}
