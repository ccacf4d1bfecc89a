package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/ytget/yt-bw/internal/model"
)

type fakeLister struct {
	entries []model.PlaylistEntry
	err     error
	gotID   string
}

func (f *fakeLister) List(_ context.Context, playlistID string) ([]model.PlaylistEntry, error) {
	f.gotID = playlistID
	return f.entries, f.err
}

func TestIsPlaylistURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"playlist page", "https://www.youtube.com/playlist?list=PL123", true},
		{"watch with list", "https://www.youtube.com/watch?v=abc&list=PL123", false},
		{"plain watch", "https://www.youtube.com/watch?v=abc", false},
		{"short link", "https://youtu.be/abc", false},
		{"garbage", "::not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPlaylistURL(tt.url); got != tt.expected {
				t.Errorf("IsPlaylistURL(%q) = %v, expected %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.youtube.com/playlist?list=PL123", "PL123"},
		{"https://www.youtube.com/watch?v=abc&list=PL456&index=2", "PL456"},
		{"https://www.youtube.com/watch?v=abc", ""},
	}

	for _, tt := range tests {
		if got := ExtractPlaylistID(tt.url); got != tt.expected {
			t.Errorf("ExtractPlaylistID(%q) = %q, expected %q", tt.url, got, tt.expected)
		}
	}
}

func TestPlaylistExpander_Expand(t *testing.T) {
	lister := &fakeLister{entries: []model.PlaylistEntry{
		{VideoID: "a", Title: "Lecture Series - Part 1", URL: "https://www.youtube.com/watch?v=a"},
		{VideoID: "b", Title: "Lecture Series - Part 2", URL: "https://www.youtube.com/watch?v=b"},
	}}
	expander := NewPlaylistExpanderWithLister(lister)

	playlist, err := expander.Expand(context.Background(), "https://www.youtube.com/playlist?list=PL123")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	if lister.gotID != "PL123" {
		t.Errorf("Expected lister to receive PL123, got %q", lister.gotID)
	}
	if playlist.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", playlist.Len())
	}
	if playlist.Title != "Lecture Series - Part Playlist" {
		t.Errorf("Unexpected title %q", playlist.Title)
	}
}

func TestPlaylistExpander_Errors(t *testing.T) {
	expander := NewPlaylistExpanderWithLister(&fakeLister{err: errors.New("boom")})

	if _, err := expander.Expand(context.Background(), "https://youtu.be/abc"); err == nil {
		t.Error("Expected error for URL without playlist ID")
	}
	if _, err := expander.Expand(context.Background(), "https://www.youtube.com/playlist?list=PL1"); err == nil {
		t.Error("Expected lister error to propagate")
	}
}

func TestPlaylistTitle(t *testing.T) {
	if got := playlistTitle(nil); got != DefaultPlaylistTitle {
		t.Errorf("Expected default title, got %q", got)
	}
	single := []model.PlaylistEntry{{Title: "Only"}}
	if got := playlistTitle(single); got != "Only Playlist" {
		t.Errorf("Expected 'Only Playlist', got %q", got)
	}
}
