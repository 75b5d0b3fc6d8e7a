package export

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/clipmark/clipmark-agent/internal/backend"
)

const maxFilenameLen = 120

func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if isAllowedNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	cleaned := strings.TrimSpace(b.String())
	if maxLen > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxLen {
			cleaned = string(runes[:maxLen])
		}
	}
	return cleaned
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.', ',', '(', ')':
		return true
	default:
		return false
	}
}

// Filename builds a download filename for the selection, <videoID>_<start>-<end><ext>.
// The extension is taken from the result path when it has one.
func Filename(sel Selection, resultPath string) string {
	ext := path.Ext(resultPath)
	if ext == "" || len(ext) > 6 {
		ext = ".mp4"
	}
	base := fmt.Sprintf("%s_%s-%s", sel.VideoID, backend.FormatSeconds(sel.Start), backend.FormatSeconds(sel.End))
	return SanitizeName(base, maxFilenameLen) + SanitizeName(ext, 6)
}

// EDLFilename is Filename with an .edl extension.
func EDLFilename(sel Selection) string {
	return Filename(sel, "x.edl")
}
