package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,20}$`)

// VideoID extracts the video identifier from a YouTube link. It recognizes
// watch pages, youtu.be short links, shorts and embed URLs.
func VideoID(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	path := strings.Trim(u.Path, "/")

	var id string
	switch host {
	case "youtu.be":
		id, _, _ = strings.Cut(path, "/")
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case path == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"), strings.HasPrefix(path, "embed/"), strings.HasPrefix(path, "live/"):
			_, rest, _ := strings.Cut(path, "/")
			id, _, _ = strings.Cut(rest, "/")
		}
	default:
		return "", false
	}

	if !videoIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// EmbedURL returns the canonical embeddable player URL for a video.
func EmbedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}

// WatchURL returns the canonical watch page URL for a video.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// ThumbnailURL returns the high quality still image for a video.
func ThumbnailURL(id string) string {
	return "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
}
