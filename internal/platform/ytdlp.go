package platform

import (
	"fmt"
	"sort"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-bw/internal/model"
)

// NewYTDLPCommand creates a yt-dlp command with the executable override and
// network options applied. Probe and download share it so both hit the
// source the same way.
func NewYTDLPCommand(executable string, opts model.NetworkOptions) *ytdlp.Command {
	cmd := ytdlp.New()
	if executable != "" {
		cmd = cmd.SetExecutable(executable)
	}
	if opts.CookieFile != "" {
		cmd = cmd.Cookies(opts.CookieFile)
	}
	for _, h := range HeaderPairs(opts.HTTPHeaders) {
		cmd = cmd.AddHeaders(h)
	}
	if opts.ForceIPv4 {
		cmd = cmd.ForceIPv4()
	}
	return cmd
}

// HeaderPairs renders headers as sorted "Name:Value" pairs
func HeaderPairs(headers map[string]string) []string {
	pairs := make([]string, 0, len(headers))
	for name, value := range headers {
		if name == "" {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%s:%s", name, value))
	}
	sort.Strings(pairs)
	return pairs
}
