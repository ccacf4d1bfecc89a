// Package probe retrieves video metadata and the list of available formats
// for a source URL without downloading any media.
//
// Two backends implement Prober: the yt-dlp executable (default) and a pure
// Go innertube client. Both honour the same model.NetworkOptions.
package probe
