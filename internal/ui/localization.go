package ui

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle         = "app_title"
	KeyEnterURL         = "enter_url"
	KeyFetch            = "fetch"
	KeyChooseResolution = "choose_resolution"
	KeyConvert          = "convert"
	KeySaveVideo        = "save_video"
	KeyOpen             = "open"
	KeyStartOver        = "start_over"
	KeySettings         = "settings"
	KeyFile             = "file"
	KeyLanguage         = "language"
	KeyWorkDirectory    = "work_directory"
	KeyCookieFile       = "cookie_file"
	KeyUserAgent        = "user_agent"
	KeyForceIPv4        = "force_ipv4"
	KeyProbeBackend     = "probe_backend"
	KeyConvertThreads   = "convert_threads"
	KeyRevealOnSave     = "reveal_on_save"
	KeySave             = "save"
	KeyCancel           = "cancel"
	KeyBrowse           = "browse"
	KeySettingsSaved    = "settings_saved"
	KeyFetching         = "fetching"
	KeyDownloading      = "downloading"
	KeyConverting       = "converting"
	KeyProcessed        = "processed"
	KeySavedTo          = "saved_to"
	KeyPickFromPlaylist = "pick_from_playlist"
	KeyInvalidURL       = "invalid_url"
	KeyPleaseEnterURL   = "please_enter_url"
	KeyErrorOpeningFile = "error_opening_file"
	KeyBusy             = "busy"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:         "YouTube to Black & White",
		KeyEnterURL:         "Enter YouTube URL (https://youtube.com/watch?v=...)",
		KeyFetch:            "Fetch qualities",
		KeyChooseResolution: "Choose resolution",
		KeyConvert:          "Convert to black & white",
		KeySaveVideo:        "Save video",
		KeyOpen:             "Open",
		KeyStartOver:        "Start over",
		KeySettings:         "Settings",
		KeyFile:             "File",
		KeyLanguage:         "Language",
		KeyWorkDirectory:    "Working Directory",
		KeyCookieFile:       "Cookie File (Netscape format)",
		KeyUserAgent:        "HTTP User-Agent",
		KeyForceIPv4:        "Force IPv4",
		KeyProbeBackend:     "Metadata Backend",
		KeyConvertThreads:   "Conversion Threads",
		KeyRevealOnSave:     "Show saved video in file manager",
		KeySave:             "Save",
		KeyCancel:           "Cancel",
		KeyBrowse:           "Browse",
		KeySettingsSaved:    "Settings saved successfully!",
		KeyFetching:         "Fetching available qualities...",
		KeyDownloading:      "Downloading",
		KeyConverting:       "Converting",
		KeyProcessed:        "Video processed successfully",
		KeySavedTo:          "Saved to",
		KeyPickFromPlaylist: "This link is a playlist. Pick one video:",
		KeyInvalidURL:       "Invalid URL",
		KeyPleaseEnterURL:   "Please enter a URL",
		KeyErrorOpeningFile: "Error opening file",
		KeyBusy:             "Please wait for the current job to finish",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:         "YouTube в чёрно-белое",
		KeyEnterURL:         "Введите URL YouTube (https://youtube.com/watch?v=...)",
		KeyFetch:            "Получить качества",
		KeyChooseResolution: "Выберите разрешение",
		KeyConvert:          "Сделать чёрно-белым",
		KeySaveVideo:        "Сохранить видео",
		KeyOpen:             "Открыть",
		KeyStartOver:        "Начать заново",
		KeySettings:         "Настройки",
		KeyFile:             "Файл",
		KeyLanguage:         "Язык",
		KeyWorkDirectory:    "Рабочая папка",
		KeyCookieFile:       "Файл cookies (формат Netscape)",
		KeyUserAgent:        "HTTP User-Agent",
		KeyForceIPv4:        "Только IPv4",
		KeyProbeBackend:     "Источник метаданных",
		KeyConvertThreads:   "Потоки конвертации",
		KeyRevealOnSave:     "Показать сохранённое видео в файловом менеджере",
		KeySave:             "Сохранить",
		KeyCancel:           "Отмена",
		KeyBrowse:           "Обзор",
		KeySettingsSaved:    "Настройки успешно сохранены!",
		KeyFetching:         "Получение доступных качеств...",
		KeyDownloading:      "Загрузка",
		KeyConverting:       "Конвертация",
		KeyProcessed:        "Видео успешно обработано",
		KeySavedTo:          "Сохранено в",
		KeyPickFromPlaylist: "Это плейлист. Выберите одно видео:",
		KeyInvalidURL:       "Неверный URL",
		KeyPleaseEnterURL:   "Пожалуйста, введите URL",
		KeyErrorOpeningFile: "Ошибка открытия файла",
		KeyBusy:             "Дождитесь завершения текущей задачи",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:         "YouTube para Preto e Branco",
		KeyEnterURL:         "Digite URL do YouTube (https://youtube.com/watch?v=...)",
		KeyFetch:            "Buscar qualidades",
		KeyChooseResolution: "Escolha a resolução",
		KeyConvert:          "Converter para preto e branco",
		KeySaveVideo:        "Salvar vídeo",
		KeyOpen:             "Abrir",
		KeyStartOver:        "Recomeçar",
		KeySettings:         "Configurações",
		KeyFile:             "Arquivo",
		KeyLanguage:         "Idioma",
		KeyWorkDirectory:    "Diretório de Trabalho",
		KeyCookieFile:       "Arquivo de Cookies (formato Netscape)",
		KeyUserAgent:        "HTTP User-Agent",
		KeyForceIPv4:        "Forçar IPv4",
		KeyProbeBackend:     "Fonte de Metadados",
		KeyConvertThreads:   "Threads de Conversão",
		KeyRevealOnSave:     "Mostrar vídeo salvo no gerenciador de arquivos",
		KeySave:             "Salvar",
		KeyCancel:           "Cancelar",
		KeyBrowse:           "Navegar",
		KeySettingsSaved:    "Configurações salvas com sucesso!",
		KeyFetching:         "Buscando qualidades disponíveis...",
		KeyDownloading:      "Baixando",
		KeyConverting:       "Convertendo",
		KeyProcessed:        "Vídeo processado com sucesso",
		KeySavedTo:          "Salvo em",
		KeyPickFromPlaylist: "Este link é uma playlist. Escolha um vídeo:",
		KeyInvalidURL:       "URL inválida",
		KeyPleaseEnterURL:   "Por favor, digite uma URL",
		KeyErrorOpeningFile: "Erro ao abrir arquivo",
		KeyBusy:             "Aguarde a tarefa atual terminar",
	}
}
