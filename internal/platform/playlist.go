package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/yt-bw/internal/model"
)

// Timeout constants
const (
	DefaultPlaylistTimeout = 60 * time.Second
)

// URL parameters
const (
	PlaylistQueryParam = "list"
	VideoQueryParam    = "v"
)

// Default values
const (
	DefaultPlaylistTitle = "Untitled Playlist"
	PlaylistSuffix       = " Playlist"
	MinPrefixLength      = 10
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// PlaylistLister fetches the items of a playlist by ID
type PlaylistLister interface {
	List(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error)
}

// libraryLister lists playlist items with the ytdlp library
type libraryLister struct{}

func (libraryLister) List(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}
	entries := make([]model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, model.PlaylistEntry{
			VideoID: it.VideoID,
			Title:   it.Title,
			URL:     fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	return entries, nil
}

// PlaylistExpander turns a playlist URL into a list of single-video URLs
type PlaylistExpander struct {
	lister  PlaylistLister
	timeout time.Duration
}

// NewPlaylistExpander creates an expander backed by the ytdlp library
func NewPlaylistExpander() *PlaylistExpander {
	return NewPlaylistExpanderWithLister(libraryLister{})
}

// NewPlaylistExpanderWithLister creates an expander with a custom lister
func NewPlaylistExpanderWithLister(lister PlaylistLister) *PlaylistExpander {
	return &PlaylistExpander{lister: lister, timeout: DefaultPlaylistTimeout}
}

// SetTimeout sets the timeout for listing operations
func (p *PlaylistExpander) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// Expand lists the videos of the playlist behind rawURL
func (p *PlaylistExpander) Expand(ctx context.Context, rawURL string) (*model.Playlist, error) {
	playlistID := ExtractPlaylistID(rawURL)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", rawURL)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	entries, err := p.lister.List(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	playlist := model.NewPlaylist(playlistID, rawURL)
	for _, e := range entries {
		playlist.AddEntry(e)
	}
	playlist.Title = playlistTitle(entries)
	return playlist, nil
}

// IsPlaylistURL reports whether rawURL points at a playlist rather than a
// single video. A watch URL that also carries a list parameter is a video.
func IsPlaylistURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	q := u.Query()
	return q.Get(PlaylistQueryParam) != "" && q.Get(VideoQueryParam) == ""
}

// ExtractPlaylistID returns the list parameter of rawURL, or ""
func ExtractPlaylistID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Query().Get(PlaylistQueryParam)
}

// playlistTitle guesses a title from the common prefix of the first two videos
func playlistTitle(entries []model.PlaylistEntry) string {
	if len(entries) == 0 {
		return DefaultPlaylistTitle
	}
	if len(entries) > 1 {
		prefix := commonPrefix(entries[0].Title, entries[1].Title)
		if len(prefix) > MinPrefixLength {
			return strings.TrimSpace(prefix) + PlaylistSuffix
		}
	}
	return entries[0].Title + PlaylistSuffix
}

func commonPrefix(s1, s2 string) string {
	n := min(len(s1), len(s2))
	for i := 0; i < n; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:n]
}
