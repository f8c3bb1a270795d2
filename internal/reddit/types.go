// Package reddit provides a client for paginated subreddit listings.
//
// This package enables redditview to:
// - Normalize a subreddit + sort category into a feed query
// - Fetch one listing page at a time with an opaque "after" cursor
// - Translate upstream failures into a small error taxonomy
package reddit

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
)

const permalinkBase = "https://www.reddit.com"

// Category is the upstream ranking mode of a listing.
type Category string

const (
	CategoryHot    Category = "hot"
	CategoryTop    Category = "top"
	CategoryNew    Category = "new"
	CategoryRising Category = "rising"
	CategoryBest   Category = "best"
)

// Categories returns every supported category in display order.
func Categories() []Category {
	return []Category{CategoryHot, CategoryNew, CategoryTop, CategoryRising, CategoryBest}
}

// ParseCategory validates a category name. Empty input means hot.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryHot, nil
	}
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q: must be one of hot, new, top, rising, best", s)
}

var (
	// ErrEmptySubreddit is returned when the subreddit input is blank.
	ErrEmptySubreddit = errors.New("please enter a subreddit name")
	// ErrInvalidSubreddit is returned for names upstream can never serve.
	ErrInvalidSubreddit = errors.New("invalid subreddit name")
)

var subredditName = regexp.MustCompile(`^[a-z0-9][a-z0-9_]{1,20}$`)

// Query identifies a logical feed. Two queries are equal when both fields match.
type Query struct {
	Subreddit string
	Category  Category
}

// NewQuery normalizes user input into a Query.
func NewQuery(subreddit string, category string) (Query, error) {
	name := strings.ToLower(strings.TrimSpace(subreddit))
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "r/")
	name = strings.TrimSuffix(name, "/")
	if name == "" {
		return Query{}, ErrEmptySubreddit
	}
	if !subredditName.MatchString(name) {
		return Query{}, fmt.Errorf("%w: %q", ErrInvalidSubreddit, name)
	}

	cat, err := ParseCategory(category)
	if err != nil {
		return Query{}, err
	}
	return Query{Subreddit: name, Category: cat}, nil
}

// WithCategory returns a copy of q ranked by c.
func (q Query) WithCategory(c Category) Query {
	q.Category = c
	return q
}

// IsZero reports whether no subreddit has been chosen.
func (q Query) IsZero() bool {
	return q.Subreddit == ""
}

// Path renders the shareable navigation path for the query.
func (q Query) Path() string {
	return fmt.Sprintf("/r/%s/%s", q.Subreddit, q.Category)
}

func (q Query) String() string {
	return "r/" + q.Subreddit + "/" + string(q.Category)
}

// Page is one fetched listing page. Posts keep the upstream order.
// After is empty when upstream reports no further page.
type Page struct {
	Posts     []Post
	After     string
	Requested int
}

// RawCount is the number of posts upstream returned, before any filtering.
func (p *Page) RawCount() int {
	return len(p.Posts)
}

// Post is a listing child as delivered by upstream. Every field is optional.
type Post struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Domain      string  `json:"domain"`
	PostHint    string  `json:"post_hint"`
	Thumbnail   string  `json:"thumbnail"`
	IsVideo     bool    `json:"is_video"`
	IsGallery   bool    `json:"is_gallery"`
	Over18      bool    `json:"over_18"`

	GalleryData   *GalleryData             `json:"gallery_data"`
	MediaMetadata map[string]MediaMetadata `json:"media_metadata"`
	Media         *Media                   `json:"media"`
	SecureMedia   *Media                   `json:"secure_media"`
	Preview       *Preview                 `json:"preview"`

	CrosspostParents []Post `json:"crosspost_parent_list"`
}

// GalleryData is the ordered manifest of a gallery post.
type GalleryData struct {
	Items []GalleryItem `json:"items"`
}

// GalleryItem references one entry of Post.MediaMetadata.
type GalleryItem struct {
	MediaID string `json:"media_id"`
	Caption string `json:"caption"`
}

// MediaMetadata holds the renditions of one gallery image.
// S is the full size source, P the ascending preview sizes.
type MediaMetadata struct {
	Status string         `json:"status"`
	E      string         `json:"e"`
	S      *MediaVariant  `json:"s"`
	P      []MediaVariant `json:"p"`
}

// MediaVariant is a single rendition. Animated images carry GIF or MP4 instead of U.
type MediaVariant struct {
	U   string `json:"u"`
	GIF string `json:"gif"`
	MP4 string `json:"mp4"`
	X   int    `json:"x"`
	Y   int    `json:"y"`
}

// Media describes hosted video or an oEmbed provider payload.
type Media struct {
	Type        string       `json:"type"`
	RedditVideo *RedditVideo `json:"reddit_video"`
	OEmbed      *OEmbed      `json:"oembed"`
}

// RedditVideo is a natively hosted video.
type RedditVideo struct {
	FallbackURL string `json:"fallback_url"`
	HLSURL      string `json:"hls_url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Duration    int    `json:"duration"`
	IsGIF       bool   `json:"is_gif"`
}

// OEmbed is the embed description of a third-party media link.
type OEmbed struct {
	ProviderName string `json:"provider_name"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Preview carries upstream-generated preview images.
type Preview struct {
	Images []PreviewImage `json:"images"`
}

// PreviewImage is one preview with its source resolution.
type PreviewImage struct {
	Source *ImageSource `json:"source"`
}

// ImageSource is a single preview rendition.
type ImageSource struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CreatedAt returns the creation time, or the zero time when absent.
func (p Post) CreatedAt() time.Time {
	if p.CreatedUTC <= 0 {
		return time.Time{}
	}
	sec := int64(p.CreatedUTC)
	return time.Unix(sec, 0).UTC()
}

// PermalinkURL returns the absolute link to the post's comment page.
func (p Post) PermalinkURL() string {
	if p.Permalink == "" {
		return ""
	}
	if strings.HasPrefix(p.Permalink, "http") {
		return p.Permalink
	}
	return permalinkBase + p.Permalink
}

// LinkURL returns the post's primary link, unescaped.
func (p Post) LinkURL() string {
	return unescapeURL(p.URL)
}

// VideoFallbackURL returns the progressive download URL of a hosted video.
func (p Post) VideoFallbackURL() string {
	for _, m := range []*Media{p.Media, p.SecureMedia} {
		if m != nil && m.RedditVideo != nil && m.RedditVideo.FallbackURL != "" {
			return unescapeURL(m.RedditVideo.FallbackURL)
		}
	}
	return ""
}

// PreviewImageURL returns the first preview source URL.
func (p Post) PreviewImageURL() string {
	if p.Preview == nil {
		return ""
	}
	for _, img := range p.Preview.Images {
		if img.Source != nil && img.Source.URL != "" {
			return unescapeURL(img.Source.URL)
		}
	}
	return ""
}

// YouTubeThumbnailURL returns the oEmbed thumbnail of an embedded link.
func (p Post) YouTubeThumbnailURL() string {
	for _, m := range []*Media{p.SecureMedia, p.Media} {
		if m != nil && m.OEmbed != nil && m.OEmbed.ThumbnailURL != "" {
			return unescapeURL(m.OEmbed.ThumbnailURL)
		}
	}
	return ""
}

// GalleryMediaIDs returns the gallery manifest ids in order, skipping blanks.
func (p Post) GalleryMediaIDs() []string {
	if p.GalleryData == nil {
		return nil
	}
	ids := make([]string, 0, len(p.GalleryData.Items))
	for _, item := range p.GalleryData.Items {
		if item.MediaID != "" {
			ids = append(ids, item.MediaID)
		}
	}
	return ids
}

// GalleryURL resolves one gallery media id to a display URL, preferring the
// full size source and falling back to the first preview.
func (p Post) GalleryURL(mediaID string) string {
	meta, ok := p.MediaMetadata[mediaID]
	if !ok {
		return ""
	}
	if meta.S != nil {
		if meta.S.U != "" {
			return unescapeURL(meta.S.U)
		}
		if meta.S.GIF != "" {
			return unescapeURL(meta.S.GIF)
		}
	}
	if len(meta.P) > 0 && meta.P[0].U != "" {
		return unescapeURL(meta.P[0].U)
	}
	return ""
}

func unescapeURL(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return html.UnescapeString(s)
}
