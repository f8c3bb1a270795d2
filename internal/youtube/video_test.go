package youtube

import "testing"

func TestVideoID_RecognizesYouTubeLinkForms(t *testing.T) {
	testCases := []struct {
		name string
		url  string
		want string
	}{
		{"watch page", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch with timestamp", "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"no scheme", "youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/aqz-KE-bpKQ", "aqz-KE-bpKQ"},
		{"embed", "https://www.youtube.com/embed/aqz-KE-bpKQ", "aqz-KE-bpKQ"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := VideoID(tc.url)
			if !ok {
				t.Fatalf("expected %q to be recognized", tc.url)
			}
			if got != tc.want {
				t.Errorf("expected id %q, got %q", tc.want, got)
			}
		})
	}
}

func TestVideoID_RejectsNonYouTubeLinks(t *testing.T) {
	urls := []string{
		"",
		"https://vimeo.com/12345678",
		"https://www.youtube.com/channel/UC123",
		"https://www.youtube.com/watch",
		"https://notyoutube.com/watch?v=dQw4w9WgXcQ",
		"https://i.redd.it/abc.jpg",
	}
	for _, u := range urls {
		if id, ok := VideoID(u); ok {
			t.Errorf("%q should not be recognized, got id %q", u, id)
		}
	}
}

func TestCanonicalURLs(t *testing.T) {
	if got := EmbedURL("abc123"); got != "https://www.youtube.com/embed/abc123" {
		t.Errorf("unexpected embed URL %q", got)
	}
	if got := WatchURL("abc123"); got != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("unexpected watch URL %q", got)
	}
	if got := ThumbnailURL("abc123"); got != "https://i.ytimg.com/vi/abc123/hqdefault.jpg" {
		t.Errorf("unexpected thumbnail URL %q", got)
	}
}
