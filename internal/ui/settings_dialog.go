package ui

import (
	"sort"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-bw/internal/config"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	// UI components
	workDirEntry    *widget.Entry
	cookieFileEntry *widget.Entry
	userAgentEntry  *widget.Entry
	forceIPv4Check  *widget.Check
	backendSelect   *widget.Select
	threadsEntry    *widget.Entry
	revealCheck     *widget.Check
	languageSelect  *widget.Select
}

// ShowSettingsDialog opens the settings dialog; onSaved runs after a save
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, localization *Localization, onSaved func()) {
	NewSettingsDialog(settings, localization, window, onSaved).Show()
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onSaved func()) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
		onSaved:      onSaved,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	text := sd.localization.GetText

	sd.workDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(text(KeyBrowse), sd.onBrowseDirectory)
	workDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.workDirEntry)

	sd.cookieFileEntry = widget.NewEntry()
	sd.cookieFileEntry.SetPlaceHolder("cookies.txt")
	browseCookieBtn := widget.NewButton(text(KeyBrowse), sd.onBrowseCookieFile)
	cookieRow := container.NewBorder(nil, nil, nil, browseCookieBtn, sd.cookieFileEntry)

	sd.userAgentEntry = widget.NewEntry()
	sd.userAgentEntry.SetPlaceHolder("Mozilla/5.0 ...")

	sd.forceIPv4Check = widget.NewCheck(text(KeyForceIPv4), nil)
	sd.backendSelect = widget.NewSelect(sd.settings.GetProbeBackendOptions(), nil)

	sd.threadsEntry = widget.NewEntry()
	sd.threadsEntry.SetPlaceHolder("1-" + strconv.Itoa(config.MaxConvertThreads))

	sd.revealCheck = widget.NewCheck(text(KeyRevealOnSave), nil)

	languageOptions := make([]string, 0)
	for code := range sd.settings.GetLanguageOptions() {
		languageOptions = append(languageOptions, code)
	}
	sort.Strings(languageOptions)
	sd.languageSelect = widget.NewSelect(languageOptions, nil)

	form := container.NewVBox(
		widget.NewLabel(text(KeyWorkDirectory)+":"),
		workDirRow,

		widget.NewLabel(text(KeyCookieFile)+":"),
		cookieRow,

		widget.NewLabel(text(KeyUserAgent)+":"),
		sd.userAgentEntry,
		sd.forceIPv4Check,

		widget.NewLabel(text(KeyProbeBackend)+":"),
		sd.backendSelect,

		widget.NewLabel(text(KeyConvertThreads)+":"),
		sd.threadsEntry,

		widget.NewSeparator(),
		sd.revealCheck,

		widget.NewLabel(text(KeyLanguage)+":"),
		sd.languageSelect,
	)

	sd.dialog = dialog.NewCustomConfirm(
		text(KeySettings),
		text(KeySave),
		text(KeyCancel),
		container.NewVScroll(form),
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.workDirEntry.SetText(sd.settings.GetWorkDirectory())
	sd.cookieFileEntry.SetText(sd.settings.GetCookieFile())
	sd.userAgentEntry.SetText(sd.settings.GetUserAgent())
	sd.forceIPv4Check.SetChecked(sd.settings.GetForceIPv4())
	sd.backendSelect.SetSelected(sd.settings.GetProbeBackend())
	sd.threadsEntry.SetText(strconv.Itoa(sd.settings.GetConvertThreads()))
	sd.revealCheck.SetChecked(sd.settings.GetRevealOnSave())
	sd.languageSelect.SetSelected(sd.settings.GetLanguage())
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.workDirEntry.SetText(uri.Path())
	}, sd.window)
}

func (sd *SettingsDialog) onBrowseCookieFile() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		sd.cookieFileEntry.SetText(reader.URI().Path())
	}, sd.window)
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	sd.apply()

	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
	if sd.onSaved != nil {
		sd.onSaved()
	}
}

// apply writes the form into settings. Empty or invalid fields keep the stored value,
// except cookie file and user agent where empty means "not set".
func (sd *SettingsDialog) apply() {
	if dir := sd.workDirEntry.Text; dir != "" {
		sd.settings.SetWorkDirectory(dir)
	}
	sd.settings.SetCookieFile(sd.cookieFileEntry.Text)
	sd.settings.SetUserAgent(sd.userAgentEntry.Text)
	sd.settings.SetForceIPv4(sd.forceIPv4Check.Checked)

	if sd.backendSelect.Selected != "" {
		sd.settings.SetProbeBackend(sd.backendSelect.Selected)
	}
	if threads, err := strconv.Atoi(sd.threadsEntry.Text); err == nil {
		sd.settings.SetConvertThreads(threads)
	}
	sd.settings.SetRevealOnSave(sd.revealCheck.Checked)

	if sd.languageSelect.Selected != "" {
		sd.settings.SetLanguage(sd.languageSelect.Selected)
	}
}
