package export

import "errors"

// DefaultFrameRate is used when the source frame rate is unknown, which is
// always the case for a remote video.
const DefaultFrameRate = 30.0

var ErrEmptySelection = errors.New("selection is empty")

// Selection is a marked range of one video.
type Selection struct {
	VideoID string  `json:"video_id"`
	Link    string  `json:"link"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

func (s Selection) Valid() bool {
	return s.VideoID != "" && s.End != 0 && s.Start < s.End
}

func (s Selection) startMs() int {
	return secondsToMs(s.Start)
}

func (s Selection) endMs() int {
	return secondsToMs(s.End)
}
