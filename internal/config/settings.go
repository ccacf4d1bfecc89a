package config

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"

	"github.com/ytget/yt-bw/internal/model"
)

// Settings keys for Fyne preferences
const (
	KeyWorkDir        = "work_directory"
	KeyCookieFile     = "cookie_file"
	KeyUserAgent      = "http_user_agent"
	KeyForceIPv4      = "force_ipv4"
	KeyProbeBackend   = "probe_backend"
	KeyConvertThreads = "convert_threads"
	KeyLanguage       = "app_language"
	KeyRevealOnSave   = "reveal_on_save"
)

// Default values
const (
	DefaultLanguage     = "system"
	DefaultRevealOnSave = true
	DesktopWorkDirName  = "ytbw"
	MaxConvertThreads   = 32
)

// Settings manages desktop application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetWorkDirectory returns the directory temporary and converted files go to
func (s *Settings) GetWorkDirectory() string {
	dir := s.app.Preferences().String(KeyWorkDir)
	if dir == "" {
		defaultDir := filepath.Join(os.TempDir(), DesktopWorkDirName)
		s.SetWorkDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetWorkDirectory sets the working directory
func (s *Settings) SetWorkDirectory(dir string) {
	s.app.Preferences().SetString(KeyWorkDir, dir)
}

// GetCookieFile returns the Netscape cookie file path, or ""
func (s *Settings) GetCookieFile() string {
	return s.app.Preferences().String(KeyCookieFile)
}

// SetCookieFile sets the cookie file path
func (s *Settings) SetCookieFile(path string) {
	s.app.Preferences().SetString(KeyCookieFile, path)
}

// GetUserAgent returns the User-Agent override, or ""
func (s *Settings) GetUserAgent() string {
	return s.app.Preferences().String(KeyUserAgent)
}

// SetUserAgent sets the User-Agent override
func (s *Settings) SetUserAgent(ua string) {
	s.app.Preferences().SetString(KeyUserAgent, ua)
}

// GetForceIPv4 returns whether connections are pinned to IPv4
func (s *Settings) GetForceIPv4() bool {
	return s.app.Preferences().BoolWithFallback(KeyForceIPv4, false)
}

// SetForceIPv4 sets the IPv4 pin
func (s *Settings) SetForceIPv4(force bool) {
	s.app.Preferences().SetBool(KeyForceIPv4, force)
}

// GetProbeBackend returns the metadata backend
func (s *Settings) GetProbeBackend() string {
	backend := s.app.Preferences().String(KeyProbeBackend)
	if backend != ProbeBackendYTDLP && backend != ProbeBackendInnertube {
		s.SetProbeBackend(DefaultProbeBackend)
		return DefaultProbeBackend
	}
	return backend
}

// SetProbeBackend sets the metadata backend
func (s *Settings) SetProbeBackend(backend string) {
	s.app.Preferences().SetString(KeyProbeBackend, backend)
}

// GetProbeBackendOptions returns available metadata backends
func (s *Settings) GetProbeBackendOptions() []string {
	return []string{ProbeBackendYTDLP, ProbeBackendInnertube}
}

// GetConvertThreads returns the ffmpeg thread count
func (s *Settings) GetConvertThreads() int {
	value := s.app.Preferences().Int(KeyConvertThreads)
	if value <= 0 {
		s.SetConvertThreads(DefaultThreads)
		return DefaultThreads
	}
	return value
}

// SetConvertThreads sets the ffmpeg thread count, clamped to 1..MaxConvertThreads
func (s *Settings) SetConvertThreads(count int) {
	if count < 1 {
		count = 1
	}
	if count > MaxConvertThreads {
		count = MaxConvertThreads
	}
	s.app.Preferences().SetInt(KeyConvertThreads, count)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}

// GetRevealOnSave returns whether to show saved videos in the file manager
func (s *Settings) GetRevealOnSave() bool {
	return s.app.Preferences().BoolWithFallback(KeyRevealOnSave, DefaultRevealOnSave)
}

// SetRevealOnSave sets whether to show saved videos in the file manager
func (s *Settings) SetRevealOnSave(reveal bool) {
	s.app.Preferences().SetBool(KeyRevealOnSave, reveal)
}

// NetworkOptions returns the options shared by probe and download
func (s *Settings) NetworkOptions() model.NetworkOptions {
	return networkOptions(s.GetCookieFile(), s.GetUserAgent(), "", s.GetForceIPv4())
}
