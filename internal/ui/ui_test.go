package ui

import (
	"strings"
	"testing"

	"fyne.io/fyne/v2/test"

	"github.com/ytget/yt-bw/internal/model"
	"github.com/ytget/yt-bw/internal/session"
)

func TestLocalization(t *testing.T) {
	l := NewLocalization()

	if got := l.GetText(KeyConvert); got != "Convert to black & white" {
		t.Errorf("Unexpected English text: %q", got)
	}

	l.SetLanguage("ru")
	if l.GetCurrentLanguage() != "ru" {
		t.Errorf("Expected ru, got %s", l.GetCurrentLanguage())
	}
	if got := l.GetText(KeyFetch); got != "Получить качества" {
		t.Errorf("Unexpected Russian text: %q", got)
	}

	// Unknown languages are ignored, "system" maps to English
	l.SetLanguage("xx")
	if l.GetCurrentLanguage() != "ru" {
		t.Errorf("Unknown language should be ignored, got %s", l.GetCurrentLanguage())
	}
	l.SetLanguage("system")
	if l.GetCurrentLanguage() != "en" {
		t.Errorf("Expected system to map to en, got %s", l.GetCurrentLanguage())
	}

	if got := l.GetText("no_such_key"); got != "no_such_key" {
		t.Errorf("Expected key fallback, got %q", got)
	}
}

func TestLocalization_AllLanguagesComplete(t *testing.T) {
	l := NewLocalization()
	for lang := range l.GetAvailableLanguages() {
		for key := range l.texts["en"] {
			if _, ok := l.texts[lang][key]; !ok {
				t.Errorf("Language %s is missing %s", lang, key)
			}
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"https://www.youtube.com/watch?v=abc", false},
		{"http://youtu.be/abc", false},
		{"ftp://example.com/video", true},
		{"youtube.com/watch?v=abc", true},
	}
	for _, tt := range tests {
		if err := validateURL(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("validateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestCleanURL(t *testing.T) {
	if got := cleanURL("  https://youtu.be/abc\r\n\t"); got != "https://youtu.be/abc" {
		t.Errorf("Unexpected cleaned URL %q", got)
	}
}

func TestParseResolutionLabel(t *testing.T) {
	if h, err := parseResolutionLabel("720p"); err != nil || h != 720 {
		t.Errorf("Expected 720, got %d, %v", h, err)
	}
	for _, bad := range []string{"", "p", "hd", "-5p"} {
		if _, err := parseResolutionLabel(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestJobRow(t *testing.T) {
	test.NewApp()
	l := NewLocalization()
	row := NewJobRow(l)

	if row.CanSave() {
		t.Error("Fresh row should not offer saving")
	}

	row.ShowWorking(l.GetText(KeyFetching))
	if row.Status() != l.GetText(KeyFetching) {
		t.Errorf("Unexpected status %q", row.Status())
	}

	row.SetProgress(model.JobStateConverting, 150)
	if row.Status() != l.GetText(KeyConverting) {
		t.Errorf("Expected converting status, got %q", row.Status())
	}
	if row.percentLabel.Text != "100%" {
		t.Errorf("Expected percent clamped to 100%%, got %q", row.percentLabel.Text)
	}

	row.ShowResult(&session.Artifact{Resolution: 480, HumanSize: "1.2 MB"})
	if !row.CanSave() {
		t.Error("Result should offer saving")
	}
	if !strings.Contains(row.sizeLabel.Text, "480p") || !strings.Contains(row.sizeLabel.Text, "1.2 MB") {
		t.Errorf("Unexpected size label %q", row.sizeLabel.Text)
	}

	saved := false
	row.SetCallbacks(func() { saved = true }, nil)
	test.Tap(row.saveBtn)
	if !saved {
		t.Error("Save callback was not called")
	}

	row.ShowError("boom")
	if row.CanSave() || !strings.Contains(row.Status(), "boom") {
		t.Errorf("Error state should hide actions, status %q", row.Status())
	}
}

func TestPlaylistGroup(t *testing.T) {
	test.NewApp()
	pg := NewPlaylistGroup(NewLocalization())

	if pg.Container().Visible() {
		t.Error("Picker should start hidden")
	}

	playlist := model.NewPlaylist("PL1", "https://www.youtube.com/playlist?list=PL1")
	playlist.Title = "Mix Playlist"
	playlist.AddEntry(model.PlaylistEntry{VideoID: "a", Title: "First", URL: "https://www.youtube.com/watch?v=a"})
	playlist.AddEntry(model.PlaylistEntry{VideoID: "b", Title: "Second", URL: "https://www.youtube.com/watch?v=b"})

	var picked model.PlaylistEntry
	pg.SetOnSelect(func(e model.PlaylistEntry) { picked = e })
	pg.SetPlaylist(playlist)

	if !pg.Container().Visible() || pg.Len() != 2 {
		t.Fatalf("Expected visible picker with 2 entries, got %d", pg.Len())
	}

	pg.list.Select(1)
	if picked.VideoID != "b" {
		t.Errorf("Expected second entry to be picked, got %+v", picked)
	}

	pg.SetPlaylist(nil)
	if pg.Container().Visible() || pg.Len() != 0 {
		t.Error("Nil playlist should clear the picker")
	}
}
