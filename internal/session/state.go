package session

import (
	"time"

	"github.com/ytget/yt-bw/internal/model"
)

// Artifact is a converted file waiting to be handed to the user
type Artifact struct {
	JobID      string    `json:"job_id"`
	Resolution int       `json:"resolution"`
	Path       string    `json:"path,omitempty"`       // local file, empty once published
	RemoteURL  string    `json:"remote_url,omitempty"` // presigned link when published
	Size       int64     `json:"size"`
	HumanSize  string    `json:"human_size"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsRemote reports whether the artifact lives in object storage
func (a *Artifact) IsRemote() bool {
	return a.RemoteURL != ""
}

// State is everything one session knows. A nil Resolutions means no
// picker may be offered.
type State struct {
	ID          string              `json:"id"`
	URL         string              `json:"url,omitempty"`
	Title       string              `json:"title,omitempty"`
	Duration    float64             `json:"duration,omitempty"`
	Resolutions model.ResolutionSet `json:"resolutions,omitempty"`
	Selected    int                 `json:"selected,omitempty"`
	Playlist    *model.Playlist     `json:"playlist,omitempty"`
	Processed   *Artifact           `json:"processed,omitempty"`
	LastError   string              `json:"last_error,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewState creates an empty state for id
func NewState(id string) *State {
	return &State{ID: id, UpdatedAt: time.Now()}
}

// HasResolutions reports whether a resolution picker can be shown
func (s *State) HasResolutions() bool {
	return !s.Resolutions.IsEmpty()
}

// Clone returns a deep copy so stores never hand out shared pointers
func (s *State) Clone() *State {
	c := *s
	if s.Resolutions != nil {
		c.Resolutions = append(model.ResolutionSet(nil), s.Resolutions...)
	}
	if s.Processed != nil {
		p := *s.Processed
		c.Processed = &p
	}
	if s.Playlist != nil {
		pl := *s.Playlist
		pl.Entries = append([]model.PlaylistEntry(nil), s.Playlist.Entries...)
		c.Playlist = &pl
	}
	return &c
}

// clearSource forgets everything derived from the previous URL
func (s *State) clearSource() {
	s.URL = ""
	s.Title = ""
	s.Duration = 0
	s.Resolutions = nil
	s.Selected = 0
	s.Playlist = nil
	s.LastError = ""
}
