// Package display provides terminal output formatting for redditview.
package display

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gauthierbraillon/redditview/internal/media"
	"github.com/gauthierbraillon/redditview/internal/reddit"
)

const separator = " • "

// TerminalFormatter formats feed posts for terminal display.
type TerminalFormatter struct {
	now func() time.Time
}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{now: time.Now}
}

// FormatItem formats a single post for display.
func (f *TerminalFormatter) FormatItem(post media.Post) string {
	var lines []string

	// Header: [KIND] Title
	header := fmt.Sprintf("[%s] %s", strings.ToUpper(string(post.Kind)), post.Title)
	lines = append(lines, header)

	author := post.Author
	if author == "" {
		author = "[deleted]"
	}
	meta := fmt.Sprintf("  by u/%s%s%s", author, separator, f.FormatTimestamp(post.CreatedAt()))
	if post.Over18 {
		meta += separator + "NSFW"
	}
	lines = append(lines, meta)

	lines = append(lines, "  "+f.formatEngagement(post))

	if post.PrimaryURL != "" {
		lines = append(lines, "  "+post.PrimaryURL)
	}
	if n := len(post.DisplayURLs); n > 1 {
		lines = append(lines, fmt.Sprintf("  +%d more images", n-1))
	}
	if link := post.PermalinkURL(); link != "" {
		lines = append(lines, "  "+link)
	}

	return strings.Join(lines, "\n") + "\n"
}

func (f *TerminalFormatter) formatEngagement(p media.Post) string {
	comments := fmt.Sprintf("%d comments", p.NumComments)
	if p.NumComments == 1 {
		comments = "1 comment"
	}
	return fmt.Sprintf("↑ %d%s%s", p.Score, separator, comments)
}

// FormatFeed formats multiple posts for display.
func (f *TerminalFormatter) FormatFeed(posts []media.Post) string {
	if len(posts) == 0 {
		return "No media posts to display.\n"
	}

	var formatted []string
	for _, p := range posts {
		formatted = append(formatted, f.FormatItem(p))
	}

	return strings.Join(formatted, "\n---\n\n")
}

// FormatError renders a feed failure for the user. A subreddit without media
// reads as a notice, everything else as an error.
func (f *TerminalFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	if reddit.KindOf(err).Soft() {
		return fmt.Sprintf("Nothing to show: %v. Try another category or subreddit.\n", err)
	}
	return fmt.Sprintf("Error: %v\n", err)
}

// FormatTimestamp formats a timestamp as relative time.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	diff := f.now().Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// pluralize returns "N unit ago" or "N units ago" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}

// jsonPost is the machine-readable shape of a feed post.
type jsonPost struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	Permalink   string    `json:"permalink"`
	PrimaryURL  string    `json:"primary_url"`
	DisplayURLs []string  `json:"display_urls,omitempty"`
	VideoID     string    `json:"video_id,omitempty"`
	Thumbnail   string    `json:"thumbnail_url,omitempty"`
}

// FormatJSON encodes posts as an indented JSON array.
func (f *TerminalFormatter) FormatJSON(posts []media.Post) ([]byte, error) {
	out := make([]jsonPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, jsonPost{
			ID:          p.ID,
			Kind:        string(p.Kind),
			Title:       p.Title,
			Author:      p.Author,
			CreatedAt:   p.CreatedAt(),
			Score:       p.Score,
			NumComments: p.NumComments,
			Permalink:   p.PermalinkURL(),
			PrimaryURL:  p.PrimaryURL,
			DisplayURLs: p.DisplayURLs,
			VideoID:     p.VideoID,
			Thumbnail:   p.ThumbnailURL,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}
	return append(data, '\n'), nil
}
