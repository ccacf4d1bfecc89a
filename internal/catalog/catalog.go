// Package catalog derives the selectable resolutions from probed formats.
package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ytget/yt-bw/internal/model"
)

// Resolutions returns the distinct heights of all video-bearing formats,
// highest first. The explicit height wins; otherwise the leading integer of a
// "<N>p..." quality label is used. Formats with neither are skipped.
func Resolutions(formats []model.FormatDescriptor) model.ResolutionSet {
	seen := make(map[int]struct{})
	for _, f := range formats {
		if !f.HasVideo() {
			continue
		}
		height, ok := heightOf(f)
		if !ok {
			continue
		}
		seen[height] = struct{}{}
	}

	out := make(model.ResolutionSet, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func heightOf(f model.FormatDescriptor) (int, bool) {
	if f.Height != nil {
		return *f.Height, *f.Height > 0
	}
	return ParseQualityLabel(f.QualityLabel)
}

// ParseQualityLabel extracts N from labels such as "1080p" or "480p60".
func ParseQualityLabel(label string) (int, bool) {
	idx := strings.IndexByte(label, 'p')
	if idx <= 0 {
		return 0, false
	}
	n, err := strconv.Atoi(label[:idx])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
