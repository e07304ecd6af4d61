package transcript

import "regexp"

var bareIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// Ordered URL shapes; a real URL matches at most one of them.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID returns the 11-character video ID from a bare ID or a
// watch, embed, youtu.be or /v/ URL. ok is false when nothing matches.
func ExtractVideoID(input string) (id string, ok bool) {
	if input == "" {
		return "", false
	}
	if bareIDRe.MatchString(input) {
		return input, true
	}
	for _, re := range videoURLPatterns {
		if m := re.FindStringSubmatch(input); len(m) == 2 {
			return m[1], true
		}
	}
	return "", false
}
