package youtube

import "testing"

func TestVideoIDFrom(t *testing.T) {
	cases := []struct {
		query string
		id    string
		ok    bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", true},
		{"https://music.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"never gonna give you up", "", false},
		{"https://example.com/watch?v=dQw4w9WgXcQ", "", false},
		{"https://www.youtube.com/watch", "", false},
		{"youtube.com/watch?v=dQw4w9WgXcQ", "", false}, // no scheme, treated as search text
	}

	for _, tc := range cases {
		id, ok := VideoIDFrom(tc.query)
		if ok != tc.ok {
			t.Errorf("VideoIDFrom(%q) ok = %v, want %v", tc.query, ok, tc.ok)
			continue
		}
		if ok && id != tc.id {
			t.Errorf("VideoIDFrom(%q) = %q, want %q", tc.query, id, tc.id)
		}
	}
}

func TestPlaylistIDFrom(t *testing.T) {
	id, ok := PlaylistIDFrom("https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc123")
	if !ok || id != "PLabc123" {
		t.Fatalf("got %q %v", id, ok)
	}

	if _, ok := PlaylistIDFrom("https://www.youtube.com/watch?v=dQw4w9WgXcQ"); ok {
		t.Fatal("plain watch URL reported a playlist")
	}

	if _, ok := PlaylistIDFrom("my favorite playlist"); ok {
		t.Fatal("search text reported a playlist")
	}
}

func TestParseISODurationMS(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"PT3M20S", 200_000},
		{"PT45S", 45_000},
		{"PT1H2M3S", 3_723_000},
		{"P1DT1S", 86_401_000},
		{"PT0S", 0},
		{"garbage", 0},
		{"", 0},
	}

	for _, tc := range cases {
		if got := ParseISODurationMS(tc.in); got != tc.want {
			t.Errorf("ParseISODurationMS(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
