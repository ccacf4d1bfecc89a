package config

import (
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
)

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.app != app {
		t.Error("Settings app reference should match provided app")
	}
}

func TestWorkDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	dir := settings.GetWorkDirectory()
	if filepath.Base(dir) != DesktopWorkDirName {
		t.Errorf("Expected default work directory to end in %s, got %s", DesktopWorkDirName, dir)
	}

	// Test setting custom value
	customDir := "/custom/work"
	settings.SetWorkDirectory(customDir)

	if got := settings.GetWorkDirectory(); got != customDir {
		t.Errorf("Expected work directory %s, got %s", customDir, got)
	}
}

func TestConvertThreads(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	if threads := settings.GetConvertThreads(); threads != DefaultThreads {
		t.Errorf("Expected default threads %d, got %d", DefaultThreads, threads)
	}

	settings.SetConvertThreads(8)
	if threads := settings.GetConvertThreads(); threads != 8 {
		t.Errorf("Expected threads 8, got %d", threads)
	}

	// Test boundary values
	settings.SetConvertThreads(0) // Should be clamped to 1
	if settings.GetConvertThreads() != 1 {
		t.Error("Threads should be clamped to minimum 1")
	}

	settings.SetConvertThreads(100) // Should be clamped to max
	if settings.GetConvertThreads() != MaxConvertThreads {
		t.Errorf("Threads should be clamped to maximum %d", MaxConvertThreads)
	}
}

func TestProbeBackend(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if backend := settings.GetProbeBackend(); backend != DefaultProbeBackend {
		t.Errorf("Expected default backend %s, got %s", DefaultProbeBackend, backend)
	}

	settings.SetProbeBackend(ProbeBackendInnertube)
	if backend := settings.GetProbeBackend(); backend != ProbeBackendInnertube {
		t.Errorf("Expected backend %s, got %s", ProbeBackendInnertube, backend)
	}

	// Unknown values fall back to the default
	settings.SetProbeBackend("curl")
	if backend := settings.GetProbeBackend(); backend != DefaultProbeBackend {
		t.Errorf("Unknown backend should fall back to %s, got %s", DefaultProbeBackend, backend)
	}

	if len(settings.GetProbeBackendOptions()) != 2 {
		t.Error("Expected two probe backend options")
	}
}

func TestNetworkSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	opts := settings.NetworkOptions()
	if opts.CookieFile != "" || opts.ForceIPv4 || opts.HTTPHeaders != nil {
		t.Errorf("Expected empty network options by default, got %+v", opts)
	}

	settings.SetCookieFile("/home/user/cookies.txt")
	settings.SetForceIPv4(true)
	settings.SetUserAgent("Mozilla/5.0")

	opts = settings.NetworkOptions()
	if opts.CookieFile != "/home/user/cookies.txt" {
		t.Errorf("Expected cookie file, got %s", opts.CookieFile)
	}
	if !opts.ForceIPv4 {
		t.Error("Expected ForceIPv4 to be true")
	}
	if opts.HTTPHeaders["User-Agent"] != "Mozilla/5.0" {
		t.Errorf("Expected User-Agent header, got %v", opts.HTTPHeaders)
	}
}

func TestLanguage(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	lang := settings.GetLanguage()
	if lang != DefaultLanguage {
		t.Errorf("Expected default language %s, got %s", DefaultLanguage, lang)
	}

	// Test setting custom value
	settings.SetLanguage("en")

	retrievedLang := settings.GetLanguage()
	if retrievedLang != "en" {
		t.Errorf("Expected language 'en', got %s", retrievedLang)
	}
}

func TestRevealOnSave(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if !settings.GetRevealOnSave() {
		t.Error("Expected reveal on save to default to true")
	}
	settings.SetRevealOnSave(false)
	if settings.GetRevealOnSave() {
		t.Error("Expected reveal on save to be false")
	}
}

func TestGetLanguageOptions(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	options := settings.GetLanguageOptions()

	expectedLangs := []string{"system", "en", "ru", "pt"}
	for _, lang := range expectedLangs {
		if _, exists := options[lang]; !exists {
			t.Errorf("Expected language option '%s' to exist", lang)
		}
	}

	if len(options) != len(expectedLangs) {
		t.Errorf("Expected %d language options, got %d", len(expectedLangs), len(options))
	}
}
