// Package timefmt renders and parses playback positions in the fixed-width
// MM:SS:mmm form shown next to the player.
package timefmt

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidTime = errors.New("invalid time format")

var (
	clockRe   = regexp.MustCompile(`^(\d+):(\d{1,2})(?::(\d{1,3}))?$`)
	secondsRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Format renders seconds as MM:SS:mmm. Minutes are not rolled into hours and
// every field is floored, never rounded. Negative and NaN input render as
// zero.
func Format(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	totalMs := int64(math.Floor(seconds * 1000))
	ms := totalMs % 1000
	minutes := totalMs / 60000
	secs := (totalMs - minutes*60000) / 1000
	return fmt.Sprintf("%02d:%02d:%03d", minutes, secs, ms)
}

// Parse accepts MM:SS:mmm, MM:SS or plain (fractional) seconds.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidTime
	}

	if secondsRe.MatchString(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, ErrInvalidTime
		}
		return v, nil
	}

	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrInvalidTime
	}

	minutes, _ := strconv.Atoi(m[1])
	secs, _ := strconv.Atoi(m[2])
	if secs > 59 {
		return 0, ErrInvalidTime
	}
	ms := 0
	if m[3] != "" {
		// "5" and "500" are different values; pad to milliseconds.
		ms, _ = strconv.Atoi(m[3] + strings.Repeat("0", 3-len(m[3])))
	}

	totalMs := int64(minutes)*60000 + int64(secs)*1000 + int64(ms)
	return float64(totalMs) / 1000, nil
}
