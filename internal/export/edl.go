package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/clipmark/clipmark-agent/internal/timefmt"
)

// SelectionEDL renders the selection as a single-event CMX3600 EDL so the
// range can be handed to an editor that pulls the source itself.
func SelectionEDL(sel Selection, frameRate float64) (string, error) {
	if !sel.Valid() {
		return "", ErrEmptySelection
	}

	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = int(DefaultFrameRate)
	}
	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", SanitizeName(sel.VideoID, 70))}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	srcIn := msToTimecode(sel.startMs(), fps)
	srcOut := msToTimecode(sel.endMs(), fps)
	recIn := msToTimecode(0, fps)
	recOut := msToTimecode(sel.endMs()-sel.startMs(), fps)

	clipName := fmt.Sprintf("%s %s-%s", sel.VideoID, timefmt.Format(sel.Start), timefmt.Format(sel.End))
	lines = append(lines,
		fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", 1, "AX", "V", srcIn, srcOut, recIn, recOut),
		fmt.Sprintf("* FROM CLIP NAME:  %s", clipName),
		fmt.Sprintf("* SOURCE URL:  %s", sel.Link),
		"",
	)
	return strings.Join(lines, "\n"), nil
}

func secondsToMs(s float64) int {
	return int(math.Floor(s*1000 + 1e-6))
}

func msToTimecode(ms int, fps int) string {
	totalFrames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
