package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-bw/internal/model"
	"github.com/ytget/yt-bw/internal/session"
)

// JobRow shows the state of the current job: what is running, how far it
// got, and the actions available on the result
type JobRow struct {
	widget.BaseWidget

	localization *Localization

	statusLabel  *widget.Label
	percentLabel *widget.Label
	sizeLabel    *widget.Label
	progress     *widget.ProgressBarInfinite

	saveBtn *widget.Button
	openBtn *widget.Button

	onSave func()
	onOpen func()
}

// NewJobRow creates an empty job row
func NewJobRow(localization *Localization) *JobRow {
	jr := &JobRow{localization: localization}
	jr.ExtendBaseWidget(jr)
	jr.createUI()
	jr.Clear()
	return jr
}

// SetCallbacks sets the action callbacks
func (jr *JobRow) SetCallbacks(onSave, onOpen func()) {
	jr.onSave = onSave
	jr.onOpen = onOpen
}

func (jr *JobRow) createUI() {
	jr.statusLabel = widget.NewLabel("")
	jr.statusLabel.Wrapping = fyne.TextWrapWord
	jr.percentLabel = widget.NewLabel("")
	jr.percentLabel.Alignment = fyne.TextAlignTrailing
	jr.sizeLabel = widget.NewLabel("")
	jr.sizeLabel.TextStyle = fyne.TextStyle{Monospace: true}

	jr.progress = widget.NewProgressBarInfinite()

	jr.saveBtn = widget.NewButton(jr.localization.GetText(KeySaveVideo), func() {
		if jr.onSave != nil {
			jr.onSave()
		}
	})
	jr.saveBtn.Importance = widget.HighImportance

	jr.openBtn = widget.NewButton(jr.localization.GetText(KeyOpen), func() {
		if jr.onOpen != nil {
			jr.onOpen()
		}
	})
	jr.openBtn.Importance = widget.MediumImportance
}

// Clear hides everything; used before the first step and after reset
func (jr *JobRow) Clear() {
	jr.statusLabel.Importance = widget.MediumImportance
	jr.statusLabel.SetText("")
	jr.percentLabel.SetText("")
	jr.sizeLabel.SetText("")
	jr.stopProgress()
	jr.saveBtn.Hide()
	jr.openBtn.Hide()
}

// ShowWorking shows an activity message with the infinite progress bar
func (jr *JobRow) ShowWorking(message string) {
	jr.Clear()
	jr.statusLabel.SetText(message)
	jr.progress.Show()
	jr.progress.Start()
}

// SetProgress updates the running stage and its percentage
func (jr *JobRow) SetProgress(stage model.JobState, percent int) {
	switch stage {
	case model.JobStateConverting:
		jr.statusLabel.SetText(jr.localization.GetText(KeyConverting))
	default:
		jr.statusLabel.SetText(jr.localization.GetText(KeyDownloading))
	}
	jr.percentLabel.SetText(fmt.Sprintf(ProgressLabelFormat, clampPercent(percent)))
}

// ShowError shows a failed step
func (jr *JobRow) ShowError(message string) {
	jr.Clear()
	jr.statusLabel.Importance = widget.DangerImportance
	jr.statusLabel.SetText(IconError + " " + message)
}

// ShowResult shows a finished conversion with its actions
func (jr *JobRow) ShowResult(artifact *session.Artifact) {
	jr.Clear()
	if artifact == nil {
		return
	}
	jr.statusLabel.Importance = widget.SuccessImportance
	jr.statusLabel.SetText(IconDone + " " + jr.localization.GetText(KeyProcessed))
	jr.sizeLabel.SetText(fmt.Sprintf(ResolutionLabelFormat, artifact.Resolution) + MiddleDotSeparator + artifact.HumanSize)
	jr.saveBtn.Show()
	jr.openBtn.Show()
}

// ShowMessage shows a plain message, e.g. where a file was saved
func (jr *JobRow) ShowMessage(message string) {
	jr.Clear()
	jr.statusLabel.SetText(message)
}

// RefreshTexts re-reads button labels after a language change
func (jr *JobRow) RefreshTexts() {
	jr.saveBtn.SetText(jr.localization.GetText(KeySaveVideo))
	jr.openBtn.SetText(jr.localization.GetText(KeyOpen))
}

// Status returns the text of the status label
func (jr *JobRow) Status() string {
	return jr.statusLabel.Text
}

// CanSave reports whether a result is on offer
func (jr *JobRow) CanSave() bool {
	return jr.saveBtn.Visible()
}

func (jr *JobRow) stopProgress() {
	jr.progress.Stop()
	jr.progress.Hide()
}

// CreateRenderer creates the widget renderer
func (jr *JobRow) CreateRenderer() fyne.WidgetRenderer {
	// Fixed width keeps the status text from jumping as the percent changes
	spacer := canvas.NewRectangle(color.Transparent)
	spacer.SetMinSize(fyne.NewSize(PercentLabelWidth, 0))
	percent := container.NewStack(spacer, jr.percentLabel)

	info := container.NewBorder(nil, nil, nil, percent, jr.statusLabel)
	actions := container.NewHBox(jr.saveBtn, jr.openBtn)
	content := container.NewVBox(
		info,
		jr.progress,
		container.NewBorder(nil, nil, nil, actions, jr.sizeLabel),
	)
	return widget.NewSimpleRenderer(content)
}

// MinSize keeps the row readable in narrow windows
func (jr *JobRow) MinSize() fyne.Size {
	size := jr.BaseWidget.MinSize()
	if size.Width < RowMinWidth {
		size.Width = RowMinWidth
	}
	return size
}

func clampPercent(percent int) int {
	return max(0, min(percent, 100))
}
