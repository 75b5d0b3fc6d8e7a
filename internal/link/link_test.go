package link

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short link", "https://youtu.be/abcdefghijk", "abcdefghijk"},
		{"short link with time", "https://youtu.be/abcdefghijk?t=42", "abcdefghijk"},
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch with params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL1&index=2", "dQw4w9WgXcQ"},
		{"watch with fragment", "https://www.youtube.com/watch?v=dQw4w9WgXcQ#t=30", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"v path", "https://www.youtube.com/v/dQw4w9WgXcQ?version=3", "dQw4w9WgXcQ"},
		{"user upload path", "https://www.youtube.com/user/someone#p/u/1/1p3vcRhsYGo", "1p3vcRhsYGo"},
		{"identifier with dash and underscore", "https://youtu.be/a-b_c-d_e-f", "a-b_c-d_e-f"},

		{"empty", "", ""},
		{"plain text", "not a link at all", ""},
		{"bare identifier", "dQw4w9WgXcQ", ""},
		{"too short", "https://www.youtube.com/watch?v=abc", ""},
		{"too long", "https://youtu.be/abcdefghijkl", ""},
		{"surrounding whitespace not trimmed", " https://youtu.be/abcdefghijk ", ""},
		{"missing id", "https://www.youtube.com/watch?", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.text); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestResolve_CaseIsPreserved(t *testing.T) {
	if got := Resolve("https://youtu.be/ABCdefGHIjk"); got != "ABCdefGHIjk" {
		t.Fatalf("Resolve() = %q, want case preserved", got)
	}
}

func TestWatchURL(t *testing.T) {
	got := WatchURL("dQw4w9WgXcQ")
	if got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("WatchURL() = %q", got)
	}
}
