package export

import (
	"errors"
	"strings"
	"testing"
)

func TestSelectionEDL_SingleEvent(t *testing.T) {
	sel := Selection{VideoID: "abcdefghijk", Link: "https://youtu.be/abcdefghijk", Start: 10, End: 20}

	edl, err := SelectionEDL(sel, 30.0)
	if err != nil {
		t.Fatalf("SelectionEDL() error = %v", err)
	}
	if !strings.Contains(edl, "TITLE: abcdefghijk") {
		t.Fatalf("missing title in EDL: %q", edl)
	}
	if !strings.Contains(edl, "FCM: NON-DROP FRAME") {
		t.Fatalf("missing non-drop-frame FCM: %q", edl)
	}
	if !strings.Contains(edl, "001  AX       V     C        00:00:10:00 00:00:20:00 00:00:00:00 00:00:10:00") {
		t.Fatalf("missing event line: %q", edl)
	}
	if !strings.Contains(edl, "* FROM CLIP NAME:  abcdefghijk 00:10:000-00:20:000") {
		t.Fatalf("missing clip name comment: %q", edl)
	}
	if !strings.Contains(edl, "* SOURCE URL:  https://youtu.be/abcdefghijk") {
		t.Fatalf("missing source url comment: %q", edl)
	}
	if strings.Count(edl, "AX") != 1 {
		t.Fatalf("expected exactly one event: %q", edl)
	}
}

func TestSelectionEDL_FractionalSeconds(t *testing.T) {
	sel := Selection{VideoID: "abcdefghijk", Start: 1.5, End: 62.25}

	edl, err := SelectionEDL(sel, 0)
	if err != nil {
		t.Fatalf("SelectionEDL() error = %v", err)
	}
	if !strings.Contains(edl, "00:00:01:15 00:01:02:08 00:00:00:00 00:01:00:23") {
		t.Fatalf("event timecodes mismatch: %q", edl)
	}
}

func TestSelectionEDL_DropFrame(t *testing.T) {
	sel := Selection{VideoID: "abcdefghijk", Start: 0, End: 1}
	edl, err := SelectionEDL(sel, 29.97)
	if err != nil {
		t.Fatalf("SelectionEDL() error = %v", err)
	}
	if !strings.Contains(edl, "FCM: DROP FRAME") {
		t.Fatalf("expected drop frame FCM, got: %q", edl)
	}
}

func TestSelectionEDL_EmptySelection(t *testing.T) {
	tests := []Selection{
		{VideoID: "", Start: 0, End: 10},
		{VideoID: "abcdefghijk", Start: 0, End: 0},
		{VideoID: "abcdefghijk", Start: 10, End: 10},
		{VideoID: "abcdefghijk", Start: 20, End: 10},
	}
	for _, sel := range tests {
		if _, err := SelectionEDL(sel, 30); !errors.Is(err, ErrEmptySelection) {
			t.Errorf("SelectionEDL(%+v) error = %v, want ErrEmptySelection", sel, err)
		}
	}
}

func TestMsToTimecode(t *testing.T) {
	tests := []struct {
		name string
		ms   int
		fps  int
		want string
	}{
		{name: "zero", ms: 0, fps: 30, want: "00:00:00:00"},
		{name: "one second", ms: 1000, fps: 30, want: "00:00:01:00"},
		{name: "fractional second", ms: 500, fps: 30, want: "00:00:00:15"},
		{name: "one minute", ms: 60000, fps: 30, want: "00:01:00:00"},
		{name: "one hour", ms: 3600000, fps: 30, want: "01:00:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := msToTimecode(tc.ms, tc.fps)
			if got != tc.want {
				t.Fatalf("msToTimecode(%d, %d) = %q, want %q", tc.ms, tc.fps, got, tc.want)
			}
		})
	}
}
