package ui

import (
	"fmt"

	"github.com/ytget/yt-bw/internal/config"
	"github.com/ytget/yt-bw/internal/convert"
	"github.com/ytget/yt-bw/internal/download"
	"github.com/ytget/yt-bw/internal/model"
	"github.com/ytget/yt-bw/internal/platform"
	"github.com/ytget/yt-bw/internal/probe"
	"github.com/ytget/yt-bw/internal/session"
)

// Backend is the pipeline the window drives, built from desktop settings
type Backend struct {
	Flow    *session.Flow
	WorkDir string

	planner   *download.Planner
	converter *convert.Service
}

// NewBackend wires probe, planner, converter and playlist expansion into a
// single-user flow
func NewBackend(settings *config.Settings) (*Backend, error) {
	network := settings.NetworkOptions()
	workDir := settings.GetWorkDirectory()
	if err := platform.CreateDirectoryIfNotExists(workDir); err != nil {
		return nil, fmt.Errorf("failed to ensure work dir %s: %w", workDir, err)
	}

	prober, err := probe.New(settings.GetProbeBackend(), "", network)
	if err != nil {
		return nil, err
	}

	converter := convert.NewService(convert.Options{Threads: settings.GetConvertThreads()})
	planner := download.NewPlanner(download.NewYTDLPEngine(""), converter, workDir, network)

	flow := session.NewFlow(session.Deps{
		Prober:    prober,
		Acquirer:  planner,
		Converter: converter,
		Store:     session.NewMemoryStore(0),
		Expander:  platform.NewPlaylistExpander(),
	}, 0)

	return &Backend{Flow: flow, WorkDir: workDir, planner: planner, converter: converter}, nil
}

// SetProgressFunc routes download and conversion progress to callback
func (b *Backend) SetProgressFunc(callback func(stage model.JobState, percent int)) {
	b.planner.SetProgressFunc(func(_ *model.AcquisitionJob, percent int) {
		callback(model.JobStateDownloading, percent)
	})
	b.converter.SetProgressFunc(func(_ *model.AcquisitionJob, percent int) {
		callback(model.JobStateConverting, percent)
	})
}
