package platform

// Package platform contains OS integration and external tooling glue: the
// shared working directory, job file listing and cleanup, playlist expansion
// via the ytdlp library, and OS open/reveal.
