package model

// NetworkOptions are the transport overrides shared by the probe and the download engine
type NetworkOptions struct {
	CookieFile  string            `json:"cookie_file,omitempty"`  // Netscape cookies.txt
	HTTPHeaders map[string]string `json:"http_headers,omitempty"` // e.g. User-Agent, Accept-Language
	ForceIPv4   bool              `json:"force_ipv4,omitempty"`
}

// DownloadRequest is the configuration handed to the download engine
type DownloadRequest struct {
	URL               string
	Format            string // yt-dlp format selector
	OutputTemplate    string // destination without extension, the engine appends it
	MergeOutputFormat string // container used when video and audio get muxed
	Quiet             bool
	NoWarnings        bool
	NetworkOptions
}
