package internal

import (
	"errors"
	"testing"
)

func TestParseTask(t *testing.T) {
	tests := []struct {
		in      string
		want    Task
		wantErr bool
	}{
		{"summarize", TaskSummarize, false},
		{"summarise", TaskSummarize, false},
		{"Summary", TaskSummarize, false},
		{"generate_ideas", TaskIdeate, false},
		{"ideas", TaskIdeate, false},
		{" ideate ", TaskIdeate, false},
		{"translate", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTask(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("ParseTask(%q) error = %v, want ErrInvalidInput", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseTask(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestTaskStringRoundTrip(t *testing.T) {
	for _, task := range Tasks {
		got, err := ParseTask(task.String())
		if err != nil || got != task {
			t.Errorf("ParseTask(%q) = %v, %v", task.String(), got, err)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		arg      string
		wantType ContentType
		wantID   string
	}{
		{"dQw4w9WgXcQ", ContentTypeVideo, "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", ContentTypeVideo, "dQw4w9WgXcQ"},
		{"youtu.be/dQw4w9WgXcQ", ContentTypeVideo, "dQw4w9WgXcQ"},
		{"https://www.youtube.com/playlist?list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", ContentTypePlaylist, "PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf"},
		{"sumarize", ContentTypeCommand, ""},
		{"https://example.com/watch?v=dQw4w9WgXcQ", ContentTypeUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			p := Classify(tt.arg)
			if p.ContentType != tt.wantType {
				t.Errorf("ContentType = %s, want %s (%s)", p.ContentType, tt.wantType, p)
			}
			if tt.wantID != "" && p.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", p.ID, tt.wantID)
			}
			if p.IsValid() != (tt.wantType == ContentTypeVideo || tt.wantType == ContentTypePlaylist) {
				t.Errorf("IsValid() = %v for %s", p.IsValid(), p)
			}
		})
	}
}

func TestSuggestCorrection(t *testing.T) {
	p := Classify("idea")
	got := p.SuggestCorrection([]string{"ideas", "summarize"})
	if got != "did you mean: ideas" {
		t.Errorf("SuggestCorrection() = %q", got)
	}
}
