package model

// CodecNone is the codec value probes report for streams without that track
const CodecNone = "none"

// FormatDescriptor describes one encoded stream available for a source video
type FormatDescriptor struct {
	FormatID     string `json:"format_id,omitempty"`
	VCodec       string `json:"vcodec,omitempty"`
	ACodec       string `json:"acodec,omitempty"`
	Height       *int   `json:"height,omitempty"`        // nil when the probe did not report it
	QualityLabel string `json:"quality_label,omitempty"` // e.g. "720p60", used when Height is nil
	Ext          string `json:"ext,omitempty"`
}

// HasVideo reports whether the stream carries a video track.
// An empty codec is unknown and counts as video, only "none" excludes it.
func (f FormatDescriptor) HasVideo() bool {
	return f.VCodec != CodecNone
}

// HasAudio reports whether the stream carries an audio track
func (f FormatDescriptor) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != CodecNone
}

// IntPtr returns a pointer to v, handy for building descriptors
func IntPtr(v int) *int {
	return &v
}

// VideoInfo is the probe result for a single source URL
type VideoInfo struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Duration float64            `json:"duration"` // seconds
	Formats  []FormatDescriptor `json:"formats"`
}

// ResolutionSet is a list of distinct heights in strictly descending order
type ResolutionSet []int

// Contains reports whether height is one of the selectable resolutions
func (r ResolutionSet) Contains(height int) bool {
	for _, h := range r {
		if h == height {
			return true
		}
	}
	return false
}

// IsEmpty reports whether there is nothing to offer in a resolution picker
func (r ResolutionSet) IsEmpty() bool {
	return len(r) == 0
}
