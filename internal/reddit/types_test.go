package reddit

import (
	"errors"
	"testing"
)

func TestNewQuery_NormalizesSubredditInput(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"pics", "pics"},
		{"  EarthPorn ", "earthporn"},
		{"r/aww", "aww"},
		{"/r/aww/", "aww"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			q, err := NewQuery(tc.input, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Subreddit != tc.want {
				t.Errorf("expected %q, got %q", tc.want, q.Subreddit)
			}
			if q.Category != CategoryHot {
				t.Errorf("empty category should default to hot, got %q", q.Category)
			}
		})
	}
}

func TestNewQuery_RejectsBlankAndInvalidNames(t *testing.T) {
	if _, err := NewQuery("   ", "hot"); !errors.Is(err, ErrEmptySubreddit) {
		t.Errorf("blank input should be ErrEmptySubreddit, got %v", err)
	}
	for _, name := range []string{"a", "has space", "semi;colon", "waytoolongsubredditname123"} {
		if _, err := NewQuery(name, "hot"); !errors.Is(err, ErrInvalidSubreddit) {
			t.Errorf("%q should be ErrInvalidSubreddit, got %v", name, err)
		}
	}
}

func TestParseCategory_AcceptsOnlyKnownSorts(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	if got, _ := ParseCategory(" TOP "); got != CategoryTop {
		t.Errorf("category parsing should be case and space insensitive, got %q", got)
	}
	if _, err := ParseCategory("controversial"); err == nil {
		t.Error("unsupported category should be rejected")
	}
}

func TestQuery_PathAndCategorySwap(t *testing.T) {
	q, _ := NewQuery("pics", "hot")
	next := q.WithCategory(CategoryNew)

	if next.Path() != "/r/pics/new" {
		t.Errorf("expected /r/pics/new, got %s", next.Path())
	}
	if q.Category != CategoryHot {
		t.Error("WithCategory must not modify the receiver")
	}
	if q == next {
		t.Error("queries with different categories must not be equal")
	}
}

func TestPost_GalleryURLPrefersFullSizeThenPreview(t *testing.T) {
	p := Post{
		MediaMetadata: map[string]MediaMetadata{
			"m1": {S: &MediaVariant{U: "https://i.redd.it/a.jpg?a=1&amp;b=2"}},
			"m2": {P: []MediaVariant{{U: "b"}, {U: "b-large"}}},
			"m3": {S: &MediaVariant{GIF: "c.gif"}},
			"m4": {},
		},
	}

	testCases := map[string]string{
		"m1":      "https://i.redd.it/a.jpg?a=1&b=2",
		"m2":      "b",
		"m3":      "c.gif",
		"m4":      "",
		"missing": "",
	}
	for id, want := range testCases {
		if got := p.GalleryURL(id); got != want {
			t.Errorf("GalleryURL(%s) = %q, want %q", id, got, want)
		}
	}
}

func TestPost_OptionalHelpersTolerateAbsentFields(t *testing.T) {
	var p Post

	if !p.CreatedAt().IsZero() {
		t.Error("absent created_utc should give zero time")
	}
	if p.PermalinkURL() != "" || p.VideoFallbackURL() != "" || p.PreviewImageURL() != "" || p.YouTubeThumbnailURL() != "" {
		t.Error("helpers on an empty post should return empty strings")
	}
	if ids := p.GalleryMediaIDs(); len(ids) != 0 {
		t.Errorf("expected no gallery ids, got %v", ids)
	}
}

func TestPost_VideoFallbackFallsBackToSecureMedia(t *testing.T) {
	p := Post{
		Media:       &Media{},
		SecureMedia: &Media{RedditVideo: &RedditVideo{FallbackURL: "https://v.redd.it/x/DASH_720.mp4"}},
	}
	if got := p.VideoFallbackURL(); got != "https://v.redd.it/x/DASH_720.mp4" {
		t.Errorf("expected secure media fallback, got %q", got)
	}
}

func TestPost_PermalinkURLIsAbsolute(t *testing.T) {
	p := Post{Permalink: "/r/pics/comments/abc/title/"}
	if got := p.PermalinkURL(); got != "https://www.reddit.com/r/pics/comments/abc/title/" {
		t.Errorf("unexpected permalink %q", got)
	}
}

func TestErrorKind_OnlyNoMediaFoundIsSoft(t *testing.T) {
	kinds := []ErrorKind{KindSubredditNotFound, KindAccessForbidden, KindUpstream, KindInvalidResponseShape, KindCancelled}
	for _, k := range kinds {
		if k.Soft() {
			t.Errorf("%s should be a hard error", k)
		}
	}
	if !KindNoMediaFound.Soft() {
		t.Error("no media found should be a soft error")
	}
	if got := NoMediaFound("pics").Error(); got != `no media posts found in "pics"` {
		t.Errorf("unexpected soft error message %q", got)
	}
}
