// Package convert runs ffmpeg for the two media transforms the app needs:
// the monochrome re-encode of a ready job and the stream-copy merge of a
// separate video and audio download.
package convert
