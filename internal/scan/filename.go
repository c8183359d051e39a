package scan

import (
	"path/filepath"
	"regexp"
	"strings"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".avi":  {},
	".mov":  {},
	".wmv":  {},
	".webm": {},
	".m4v":  {},
}

var (
	separatorPattern = regexp.MustCompile(`[._]+`)
	releaseNoise     = regexp.MustCompile(`(?i)\b(1080p|720p|2160p|4k|x264|x265|h264|h265|hevc|bluray|brrip|web[- ]?dl|webrip|dvdrip|hdtv|remux|proper|extended)\b`)
	multiSpace       = regexp.MustCompile(`\s{2,}`)
)

// IsVideoFile reports whether the path has a recognized video extension.
func IsVideoFile(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// CleanFilename extracts a lookup title from a release-style filename:
// dots and underscores become spaces, quality and rip tokens are dropped,
// and whitespace is collapsed.
func CleanFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	title := separatorPattern.ReplaceAllString(base, " ")
	title = releaseNoise.ReplaceAllString(title, "")
	title = multiSpace.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}
