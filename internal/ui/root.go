package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-bw/internal/config"
	"github.com/ytget/yt-bw/internal/model"
	"github.com/ytget/yt-bw/internal/platform"
	"github.com/ytget/yt-bw/internal/session"
	"github.com/ytget/yt-bw/internal/storage"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	settings     *config.Settings
	localization *Localization
	backend      *Backend

	urlEntry         *widget.Entry
	fetchBtn         *widget.Button
	titleLabel       *widget.Label
	resolutionSelect *widget.Select
	convertBtn       *widget.Button
	resetBtn         *widget.Button
	jobRow           *JobRow
	playlistGroup    *PlaylistGroup

	busyMu sync.Mutex
	busy   bool
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App) *RootUI {
	settings := config.NewSettings(app)

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		settings:     settings,
		localization: localization,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	ui.setupUI()
	ui.rebuildBackend()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()
	text := ui.localization.GetText

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(text(KeyEnterURL))
	ui.urlEntry.Validator = validateURL
	ui.urlEntry.OnSubmitted = func(string) {
		ui.onFetchClick()
	}

	ui.fetchBtn = widget.NewButton(text(KeyFetch), ui.onFetchClick)
	ui.fetchBtn.Importance = widget.HighImportance

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	left := container.NewHBox(settingsBtn)
	if logo, err := LoadLogoResource(); err == nil {
		logoImage := canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(LogoSize, LogoSize))
		logoImage.FillMode = canvas.ImageFillContain
		left = container.NewHBox(logoImage, settingsBtn)
	}
	topPanel := container.NewBorder(nil, nil, left, ui.fetchBtn, ui.urlEntry)

	ui.titleLabel = widget.NewLabel("")
	ui.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	ui.titleLabel.Truncation = fyne.TextTruncateEllipsis

	ui.resolutionSelect = widget.NewSelect(nil, nil)
	ui.resolutionSelect.PlaceHolder = text(KeyChooseResolution)
	ui.convertBtn = widget.NewButton(text(KeyConvert), ui.onConvertClick)
	ui.convertBtn.Importance = widget.HighImportance
	ui.resetBtn = widget.NewButton(IconReset+" "+text(KeyStartOver), ui.onResetClick)
	ui.resetBtn.Importance = widget.LowImportance

	ui.jobRow = NewJobRow(ui.localization)
	ui.jobRow.SetCallbacks(ui.onSaveClick, ui.onOpenClick)

	ui.playlistGroup = NewPlaylistGroup(ui.localization)
	ui.playlistGroup.SetOnSelect(func(entry model.PlaylistEntry) {
		ui.urlEntry.SetText(entry.URL)
		ui.onFetchClick()
	})

	ui.hidePicker()

	top := container.NewVBox(
		topPanel,
		ui.titleLabel,
		container.NewBorder(nil, nil, nil, ui.convertBtn, ui.resolutionSelect),
		ui.jobRow,
		container.NewHBox(ui.resetBtn),
	)
	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, ui.playlistGroup.Container()))
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	text := ui.localization.GetText
	ui.window.SetTitle(text(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(text(KeyEnterURL))
	ui.fetchBtn.SetText(text(KeyFetch))
	ui.resolutionSelect.PlaceHolder = text(KeyChooseResolution)
	ui.resolutionSelect.Refresh()
	ui.convertBtn.SetText(text(KeyConvert))
	ui.resetBtn.SetText(IconReset + " " + text(KeyStartOver))
	ui.jobRow.RefreshTexts()
	ui.playlistGroup.RefreshTexts()
}

// rebuildBackend applies the current settings to the pipeline
func (ui *RootUI) rebuildBackend() {
	backend, err := NewBackend(ui.settings)
	if err != nil {
		log.Printf("ERROR: Failed to build pipeline: %v", err)
		ui.jobRow.ShowError(err.Error())
		return
	}
	backend.SetProgressFunc(func(stage model.JobState, percent int) {
		fyne.Do(func() { ui.jobRow.SetProgress(stage, percent) })
	})

	// The desktop session is process local; a new backend starts clean
	if ui.backend != nil {
		if err := ui.backend.Flow.Reset(context.Background(), DesktopSessionID); err != nil {
			log.Printf("WARN: Failed to reset session: %v", err)
		}
	}
	ui.backend = backend
	ui.clearResult()
	log.Printf("INFO: Pipeline ready (work dir %s, backend %s)", backend.WorkDir, ui.settings.GetProbeBackend())
}

// validateURL validates the entered URL
func validateURL(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	parsedURL, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}

// cleanURL strips whitespace a paste may bring along
func cleanURL(raw string) string {
	cleaned := strings.NewReplacer("\n", "", "\r", "", "\t", "").Replace(raw)
	return strings.TrimSpace(cleaned)
}

// onFetchClick probes the URL and offers its resolutions
func (ui *RootUI) onFetchClick() {
	urlText := cleanURL(ui.urlEntry.Text)
	if urlText == "" {
		ui.jobRow.ShowError(ui.localization.GetText(KeyPleaseEnterURL))
		return
	}
	if err := validateURL(urlText); err != nil {
		ui.jobRow.ShowError(ui.localization.GetText(KeyInvalidURL) + ": " + err.Error())
		return
	}
	if ui.backend == nil || !ui.startWork() {
		ui.jobRow.ShowError(ui.localization.GetText(KeyBusy))
		return
	}

	log.Printf("INFO: Fetching qualities for %s", urlText)
	ui.hidePicker()
	ui.jobRow.ShowWorking(ui.localization.GetText(KeyFetching))

	flow := ui.backend.Flow
	go func() {
		defer ui.endWork()
		state, err := flow.Fetch(context.Background(), DesktopSessionID, urlText)
		fyne.Do(func() { ui.applyFetch(state, err) })
	}()
}

func (ui *RootUI) applyFetch(state *session.State, err error) {
	if err != nil {
		log.Printf("ERROR: Fetch failed: %v", err)
		ui.jobRow.ShowError(err.Error())
		return
	}
	ui.jobRow.Clear()

	if state.Playlist != nil {
		ui.playlistGroup.SetPlaylist(state.Playlist)
		return
	}
	ui.playlistGroup.Clear()
	ui.showPicker(state)
}

// onConvertClick downloads the chosen resolution and converts it
func (ui *RootUI) onConvertClick() {
	resolution, err := parseResolutionLabel(ui.resolutionSelect.Selected)
	if err != nil {
		ui.jobRow.ShowError(ui.localization.GetText(KeyChooseResolution))
		return
	}
	if ui.backend == nil || !ui.startWork() {
		ui.jobRow.ShowError(ui.localization.GetText(KeyBusy))
		return
	}

	log.Printf("INFO: Converting at %dp", resolution)
	ui.setControlsEnabled(false)
	ui.jobRow.ShowWorking(ui.localization.GetText(KeyDownloading))

	flow := ui.backend.Flow
	go func() {
		defer ui.endWork()
		state, err := flow.Convert(context.Background(), DesktopSessionID, resolution)
		fyne.Do(func() { ui.applyConvert(state, err) })
	}()
}

func (ui *RootUI) applyConvert(state *session.State, err error) {
	ui.setControlsEnabled(true)
	if err != nil {
		log.Printf("ERROR: Conversion failed: %v", err)
		ui.jobRow.ShowError(err.Error())
		return
	}
	ui.jobRow.ShowResult(state.Processed)

	fyne.CurrentApp().SendNotification(&fyne.Notification{
		Title:   ui.localization.GetText(KeyProcessed),
		Content: state.Title,
	})
	ui.showToastNotification(state.Title)
}

// onSaveClick lets the user pick a destination and streams the result there
func (ui *RootUI) onSaveClick() {
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			ui.jobRow.ShowError(err.Error())
			return
		}
		if writer == nil {
			return
		}
		ui.deliverTo(writer)
	}, ui.window)
	save.SetFileName(storage.DownloadFileName)
	save.Show()
}

func (ui *RootUI) deliverTo(writer fyne.URIWriteCloser) {
	flow := ui.backend.Flow
	dest := writer.URI().Path()
	ui.jobRow.ShowWorking(ui.localization.GetText(KeySaveVideo))

	go func() {
		n, err := flow.Deliver(context.Background(), DesktopSessionID, writer)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		fyne.Do(func() {
			if err != nil {
				log.Printf("ERROR: Failed to save %s: %v", dest, err)
				ui.jobRow.ShowError(err.Error())
				ui.restoreResult()
				return
			}
			log.Printf("INFO: Saved %d bytes to %s", n, dest)
			ui.jobRow.ShowMessage(ui.localization.GetText(KeySavedTo) + " " + dest)
			if ui.settings.GetRevealOnSave() {
				if err := platform.OpenFileInManager(dest); err != nil {
					log.Printf("WARN: Failed to reveal %s: %v", dest, err)
				}
			}
		})
	}()
}

// onOpenClick opens the converted file with the default player
func (ui *RootUI) onOpenClick() {
	state, err := ui.backend.Flow.State(context.Background(), DesktopSessionID)
	if err != nil || state.Processed == nil {
		ui.jobRow.ShowError(session.ErrNothingToDeliver.Error())
		return
	}
	if err := platform.OpenFileWithDefaultApp(state.Processed.Path); err != nil {
		log.Printf("ERROR: Failed to open %s: %v", state.Processed.Path, err)
		dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFile), err), ui.window)
	}
}

// onResetClick discards the result and returns to the empty form
func (ui *RootUI) onResetClick() {
	if ui.backend == nil {
		return
	}
	if err := ui.backend.Flow.Reset(context.Background(), DesktopSessionID); err != nil {
		if errors.Is(err, session.ErrBusy) {
			ui.jobRow.ShowError(ui.localization.GetText(KeyBusy))
			return
		}
		log.Printf("WARN: Reset failed: %v", err)
	}
	ui.urlEntry.SetText("")
	ui.playlistGroup.Clear()
	ui.clearResult()
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func() {
		ui.localization.SetLanguage(ui.settings.GetLanguage())
		ui.refreshUITexts()
		ui.createMenu()
		if ui.isBusy() {
			log.Printf("WARN: Settings saved while a job runs; they apply on next start")
			return
		}
		ui.rebuildBackend()
	})
}

// restoreResult shows the processed file again, e.g. after a failed save
func (ui *RootUI) restoreResult() {
	state, err := ui.backend.Flow.State(context.Background(), DesktopSessionID)
	if err == nil && state.Processed != nil {
		ui.jobRow.ShowResult(state.Processed)
	}
}

func (ui *RootUI) clearResult() {
	ui.hidePicker()
	ui.jobRow.Clear()
}

func (ui *RootUI) showPicker(state *session.State) {
	if !state.HasResolutions() {
		ui.hidePicker()
		return
	}
	options := make([]string, 0, len(state.Resolutions))
	for _, height := range state.Resolutions {
		options = append(options, fmt.Sprintf(ResolutionLabelFormat, height))
	}
	ui.titleLabel.SetText(state.Title)
	ui.titleLabel.Show()
	ui.resolutionSelect.SetOptions(options)
	ui.resolutionSelect.SetSelectedIndex(0)
	ui.resolutionSelect.Show()
	ui.convertBtn.Show()
}

func (ui *RootUI) hidePicker() {
	ui.titleLabel.SetText("")
	ui.titleLabel.Hide()
	ui.resolutionSelect.ClearSelected()
	ui.resolutionSelect.SetOptions(nil)
	ui.resolutionSelect.Hide()
	ui.convertBtn.Hide()
}

func (ui *RootUI) setControlsEnabled(enabled bool) {
	for _, w := range []fyne.Disableable{ui.fetchBtn, ui.convertBtn, ui.resolutionSelect, ui.resetBtn} {
		if enabled {
			w.Enable()
		} else {
			w.Disable()
		}
	}
}

func (ui *RootUI) startWork() bool {
	ui.busyMu.Lock()
	defer ui.busyMu.Unlock()
	if ui.busy {
		return false
	}
	ui.busy = true
	return true
}

func (ui *RootUI) endWork() {
	ui.busyMu.Lock()
	ui.busy = false
	ui.busyMu.Unlock()
}

func (ui *RootUI) isBusy() bool {
	ui.busyMu.Lock()
	defer ui.busyMu.Unlock()
	return ui.busy
}

// parseResolutionLabel turns "720p" back into 720
func parseResolutionLabel(label string) (int, error) {
	height, err := strconv.Atoi(strings.TrimSuffix(label, "p"))
	if err != nil || height <= 0 {
		return 0, fmt.Errorf("invalid resolution %q", label)
	}
	return height, nil
}

// showToastNotification shows a short-lived in-app notice in the top-right corner
func (ui *RootUI) showToastNotification(title string) {
	titleLabel := widget.NewLabel(ui.localization.GetText(KeyProcessed))
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	messageLabel := widget.NewLabel(title)
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	var toast *widget.PopUp
	saveBtn := widget.NewButton(ui.localization.GetText(KeySaveVideo), func() {
		toast.Hide()
		ui.onSaveClick()
	})
	saveBtn.Importance = widget.HighImportance

	toast = widget.NewPopUp(container.NewVBox(titleLabel, messageLabel, saveBtn), ui.window.Canvas())

	canvasSize := ui.window.Canvas().Size()
	toastSize := fyne.NewSize(ToastWidth, ToastHeight)
	toast.Resize(toastSize)
	toast.Move(fyne.NewPos(canvasSize.Width-toastSize.Width-ToastMargin, ToastMargin))
	toast.Show()

	go func() {
		time.Sleep(ToastAutoHide)
		fyne.Do(toast.Hide)
	}()
}
