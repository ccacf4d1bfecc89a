package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconError    = "❌"
	IconDone     = "✔"
	IconReset    = "↺"
)

// Text fragments
const (
	MiddleDotSeparator    = " · "
	ProgressLabelFormat   = "%d%%"
	ResolutionLabelFormat = "%dp"
)

// Layout sizing
const (
	LogoSize          float32 = 32
	PercentLabelWidth float32 = 48
	RowMinWidth       float32 = 400

	SettingsDialogWidth  float32 = 500
	SettingsDialogHeight float32 = 420
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 300
	ToastHeight   float32 = 110
	ToastMargin   float32 = 20
	ToastAutoHide         = 5 * time.Second
)

// DesktopSessionID is the only session the desktop window drives
const DesktopSessionID = "desktop"
