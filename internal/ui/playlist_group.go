package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-bw/internal/model"
)

// PlaylistGroup lists the videos of an expanded playlist so one can be picked
type PlaylistGroup struct {
	localization *Localization

	playlist *model.Playlist

	container *fyne.Container
	header    *widget.Label
	hint      *widget.Label
	list      *widget.List

	onSelect func(model.PlaylistEntry)
}

// NewPlaylistGroup creates a hidden playlist picker
func NewPlaylistGroup(localization *Localization) *PlaylistGroup {
	pg := &PlaylistGroup{localization: localization}
	pg.createUI()
	pg.Clear()
	return pg
}

func (pg *PlaylistGroup) createUI() {
	pg.header = widget.NewLabel("")
	pg.header.TextStyle = fyne.TextStyle{Bold: true}
	pg.header.Truncation = fyne.TextTruncateEllipsis
	pg.hint = widget.NewLabel(pg.localization.GetText(KeyPickFromPlaylist))

	pg.list = widget.NewList(
		func() int {
			return pg.Len()
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if label, ok := obj.(*widget.Label); ok && id < pg.Len() {
				label.SetText(pg.playlist.Entries[id].Title)
			}
		},
	)
	pg.list.OnSelected = func(id widget.ListItemID) {
		pg.list.UnselectAll()
		if id < pg.Len() && pg.onSelect != nil {
			pg.onSelect(pg.playlist.Entries[id])
		}
	}

	pg.container = container.NewBorder(
		container.NewVBox(pg.header, pg.hint),
		nil,
		nil,
		nil,
		pg.list,
	)
}

// Container returns the widget tree of the picker
func (pg *PlaylistGroup) Container() *fyne.Container {
	return pg.container
}

// SetOnSelect sets the callback fired when a video is picked
func (pg *PlaylistGroup) SetOnSelect(callback func(model.PlaylistEntry)) {
	pg.onSelect = callback
}

// SetPlaylist shows playlist, or hides the picker for nil
func (pg *PlaylistGroup) SetPlaylist(playlist *model.Playlist) {
	if playlist == nil {
		pg.Clear()
		return
	}
	pg.playlist = playlist
	pg.header.SetText(playlist.Title)
	pg.list.Refresh()
	pg.container.Show()
}

// Clear forgets the playlist and hides the picker
func (pg *PlaylistGroup) Clear() {
	pg.playlist = nil
	pg.header.SetText("")
	pg.list.Refresh()
	pg.container.Hide()
}

// Len returns the number of listed videos
func (pg *PlaylistGroup) Len() int {
	if pg.playlist == nil {
		return 0
	}
	return pg.playlist.Len()
}

// RefreshTexts re-reads labels after a language change
func (pg *PlaylistGroup) RefreshTexts() {
	pg.hint.SetText(pg.localization.GetText(KeyPickFromPlaylist))
}
