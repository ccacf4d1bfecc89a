package convert

import (
	"context"

	"github.com/ytget/yt-bw/internal/model"
)

// Converter turns a Ready job's input file into its black-and-white output
type Converter interface {
	SetProgressFunc(func(job *model.AcquisitionJob, percent int))
	Convert(ctx context.Context, job *model.AcquisitionJob) error
	Merge(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// commandRunner executes external tools; tests replace it
type commandRunner interface {
	// Run streams stderr lines to onLine until the process exits
	Run(ctx context.Context, name string, args []string, onLine func(string)) error
	// Output returns stdout of a short-lived command
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}
