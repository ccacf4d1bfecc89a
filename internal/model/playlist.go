package model

import "time"

// PlaylistEntry is a single video listed by a playlist
type PlaylistEntry struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// Playlist is the result of expanding a playlist URL into pickable videos
type Playlist struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	Entries   []PlaylistEntry `json:"entries"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewPlaylist creates an empty playlist for url
func NewPlaylist(id, url string) *Playlist {
	return &Playlist{
		ID:        id,
		URL:       url,
		Entries:   make([]PlaylistEntry, 0),
		CreatedAt: time.Now(),
	}
}

// AddEntry appends a video to the playlist
func (p *Playlist) AddEntry(entry PlaylistEntry) {
	p.Entries = append(p.Entries, entry)
}

// Len returns the number of entries
func (p *Playlist) Len() int {
	return len(p.Entries)
}
