// Package link derives video identifiers from free-form link text.
package link

import "regexp"

// IDLength is the length of a platform video identifier.
const IDLength = 11

// idPattern accepts short links, /v/, /u/<n>/, /embed/ and watch?v= shapes.
// Group 7 captures the identifier candidate.
var idPattern = regexp.MustCompile(`^.*((youtu.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)

// Resolve returns the video identifier embedded in text, or "" when the
// text carries no identifier of exactly IDLength characters. The match is
// attempted on the raw text without trimming or case folding.
func Resolve(text string) string {
	m := idPattern.FindStringSubmatch(text)
	if m == nil || len(m[7]) != IDLength {
		return ""
	}
	return m[7]
}

// WatchURL returns the canonical watch page for id, which is what the
// player is asked to load.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
