// Package media decides which posts are renderable media and how to play them.
//
// Classification is a pure function of the post payload: no network access,
// no shared state. Posts that are not media are filtered silently.
package media

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/gauthierbraillon/redditview/internal/reddit"
	"github.com/gauthierbraillon/redditview/internal/youtube"
)

// Kind identifies how a post renders.
type Kind string

const (
	KindImage       Kind = "image"
	KindGallery     Kind = "gallery"
	KindNativeVideo Kind = "video"
	KindYouTube     Kind = "youtube"
	KindUnsupported Kind = "unsupported"
)

// Post is a classified post: the untouched upstream record plus how to render it.
type Post struct {
	reddit.Post

	Kind         Kind
	PrimaryURL   string
	DisplayURLs  []string // gallery images, in manifest order
	VideoID      string   // YouTube only
	ThumbnailURL string
}

var (
	imageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
		".avif": true, ".gif": true, ".svg": true,
	}
	videoExtensions = map[string]bool{".mp4": true, ".webm": true}

	imgurPage = regexp.MustCompile(`^(?:i\.|m\.)?imgur\.com$`)
	imgurID   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// Classify decides whether p is renderable media. The boolean is false for
// unsupported posts, which must not enter a feed.
func Classify(p reddit.Post) (Post, bool) {
	if p.ID == "" {
		return Post{Post: p, Kind: KindUnsupported}, false
	}

	out, ok := classify(p)
	if !ok && len(p.CrosspostParents) > 0 {
		parent := p.CrosspostParents[0]
		if parent.ID == "" {
			parent.ID = p.ID
		}
		if borrowed, found := classify(parent); found {
			borrowed.Post = p
			out, ok = borrowed, true
		}
	}
	if !ok {
		return Post{Post: p, Kind: KindUnsupported}, false
	}
	if out.ThumbnailURL == "" {
		out.ThumbnailURL = p.PreviewImageURL()
	}
	return out, true
}

func classify(p reddit.Post) (Post, bool) {
	if p.IsGallery {
		return classifyGallery(p)
	}

	link := p.LinkURL()
	if link == "" {
		if preview := p.PreviewImageURL(); preview != "" {
			return Post{Post: p, Kind: KindImage, PrimaryURL: preview}, true
		}
		return Post{}, false
	}

	u, err := url.Parse(link)
	if err != nil {
		return Post{}, false
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	ext := strings.ToLower(path.Ext(u.Path))

	switch {
	case imageExtensions[ext]:
		return Post{Post: p, Kind: KindImage, PrimaryURL: link}, true
	case videoExtensions[ext]:
		return Post{Post: p, Kind: KindNativeVideo, PrimaryURL: link}, true
	case ext == ".gifv":
		mp4 := *u
		mp4.Path = strings.TrimSuffix(u.Path, path.Ext(u.Path)) + ".mp4"
		return Post{Post: p, Kind: KindNativeVideo, PrimaryURL: mp4.String()}, true
	case host == "v.redd.it" || p.IsVideo:
		fallback := p.VideoFallbackURL()
		if fallback == "" {
			return Post{}, false
		}
		return Post{Post: p, Kind: KindNativeVideo, PrimaryURL: fallback}, true
	}

	if id, ok := youtube.VideoID(link); ok {
		thumb := p.YouTubeThumbnailURL()
		if thumb == "" {
			thumb = youtube.ThumbnailURL(id)
		}
		return Post{Post: p, Kind: KindYouTube, PrimaryURL: youtube.EmbedURL(id), VideoID: id, ThumbnailURL: thumb}, true
	}

	if imgurPage.MatchString(host) {
		id := strings.Trim(u.Path, "/")
		if imgurID.MatchString(id) {
			return Post{Post: p, Kind: KindImage, PrimaryURL: "https://i.imgur.com/" + id + ".jpg"}, true
		}
	}

	if p.PostHint == "image" {
		return Post{Post: p, Kind: KindImage, PrimaryURL: link}, true
	}

	return Post{}, false
}

func classifyGallery(p reddit.Post) (Post, bool) {
	ids := p.GalleryMediaIDs()
	urls := make([]string, 0, len(ids))
	for _, id := range ids {
		if u := p.GalleryURL(id); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return Post{}, false
	}
	return Post{Post: p, Kind: KindGallery, PrimaryURL: urls[0], DisplayURLs: urls}, true
}
