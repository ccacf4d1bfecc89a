// Package ui contains the Fyne-based desktop user interface for the application.
// It wires user interactions to session.Flow: fetch qualities, pick a resolution,
// convert to black and white, then save or open the result. All UI strings are
// localized via Localization.
package ui
