package ui

import (
	"github.com/clipmark/clipmark-agent/internal/trim"
)

// menuView is what the tray shows for one controller state.
type menuView struct {
	Title         string
	Video         string
	Time          string
	Start         string
	End           string
	ShowControls  bool
	MarkEnabled   bool
	PreviewLabel  string
	ExportLabel   string
	ExportEnabled bool
}

func menuModel(s trim.State) menuView {
	if !s.HasVideo() {
		// Preview can still be left after the link was cleared.
		return menuView{
			Title:        "Clipmark",
			Video:        "No video",
			ShowControls: s.Preview == trim.Previewing,
			PreviewLabel: s.PreviewLabel,
			ExportLabel:  s.ExportLabel,
		}
	}

	v := menuView{
		Title:         s.ElapsedText,
		Video:         "Video: " + s.VideoID,
		Time:          s.ElapsedText + " / " + s.DurationText,
		Start:         "Start: " + s.StartText,
		End:           "End: " + s.EndText,
		ShowControls:  true,
		MarkEnabled:   s.Preview != trim.Previewing,
		PreviewLabel:  s.PreviewLabel,
		ExportLabel:   s.ExportLabel,
		ExportEnabled: s.ExportEnabled,
	}
	if s.ExportStatus == trim.ExportSucceeded {
		// The item turns into a download link.
		v.ExportEnabled = true
	}
	return v
}
