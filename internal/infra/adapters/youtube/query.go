package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	watchHostRe = regexp.MustCompile(`(?i)^(www\.|m\.|music\.)?(youtube\.com|youtu\.be)$`)
	videoIDRe   = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
)

// PlaylistIDFrom reports the playlist id when the query is a recognized
// video-platform URL carrying a playlist marker.
func PlaylistIDFrom(query string) (string, bool) {
	u, ok := parseVideoURL(query)
	if !ok {
		return "", false
	}

	listID := u.Query().Get("list")
	if listID == "" {
		return "", false
	}

	return listID, true
}

// VideoIDFrom reports the video id when the query is a recognized direct
// video URL (watch, shorts or short-link form).
func VideoIDFrom(query string) (string, bool) {
	u, ok := parseVideoURL(query)
	if !ok {
		return "", false
	}

	if strings.EqualFold(u.Hostname(), "youtu.be") {
		id := strings.Trim(u.Path, "/")
		return id, videoIDRe.MatchString(id)
	}

	switch {
	case strings.HasPrefix(u.Path, "/watch"):
		id := u.Query().Get("v")
		return id, videoIDRe.MatchString(id)
	case strings.HasPrefix(u.Path, "/shorts/"):
		id := strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/")
		return id, videoIDRe.MatchString(id)
	}

	return "", false
}

func parseVideoURL(query string) (*url.URL, bool) {
	query = strings.TrimSpace(query)
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		return nil, false
	}

	u, err := url.Parse(query)
	if err != nil {
		return nil, false
	}

	if !watchHostRe.MatchString(u.Hostname()) {
		return nil, false
	}

	return u, true
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODurationMS converts an ISO-8601 duration as returned by the Data
// API ("PT3M20S") into milliseconds. Unparseable input yields 0.
func ParseISODurationMS(s string) int64 {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	toInt := func(v string) int64 {
		var n int64
		for _, r := range v {
			n = n*10 + int64(r-'0')
		}
		return n
	}

	days := toInt(m[1])
	hours := toInt(m[2])
	minutes := toInt(m[3])
	seconds := toInt(m[4])

	return (((days*24+hours)*60+minutes)*60 + seconds) * 1000
}
