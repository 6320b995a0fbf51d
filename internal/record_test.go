package internal

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFormatUploadDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"20230115", "15/01/23"},
		{"19991231", "31/12/99"},
		{"not-a-date", "not-a-date"},
		{"15/01/23", "15/01/23"},
		{"20231345", "20231345"},
		{"", ""},
		{" 20230115 ", "15/01/23"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatUploadDate(tt.in); got != tt.want {
				t.Errorf("FormatUploadDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// Formatting twice is a no-op
			if got := FormatUploadDate(FormatUploadDate(tt.in)); got != tt.want {
				t.Errorf("FormatUploadDate twice = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord(videoA, &VideoMetadata{
		Title:       "A title",
		Description: "A description",
		Channel:     "Channel name",
		UploadDate:  "20230115",
	})

	want := Record{
		VideoID:     videoA,
		Link:        "https://www.youtube.com/watch?v=" + videoA,
		Title:       "A title",
		Description: "A description",
		Uploader:    "Channel name",
		UploadDate:  "15/01/23",
	}
	if rec != want {
		t.Errorf("NewRecord() = %+v, want %+v", rec, want)
	}
	if rec.Processed || rec.Results != "" {
		t.Error("new record must be unprocessed with empty results")
	}
}

func TestRecordJSONKeys(t *testing.T) {
	rec := Record{
		VideoID:     videoA,
		Link:        CanonicalLink(videoA),
		Title:       "T",
		Description: "D",
		Uploader:    "U",
		UploadDate:  "15/01/23",
		Results:     "R",
		Processed:   true,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"VideoId", "Link", "Title", "Description", "Uploader", "UploadDate", "Results", "Processed"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("serialized record is missing key %q: %s", key, data)
		}
	}
	if len(fields) != 8 {
		t.Errorf("serialized record has %d keys, want 8: %s", len(fields), data)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != rec {
		t.Errorf("round trip = %+v, want %+v", back, rec)
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"valid", Record{VideoID: videoA}, false},
		{"missing", Record{}, true},
		{"blank", Record{VideoID: "   "}, true},
		{"malformed", Record{VideoID: "short"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := (Record{VideoID: videoA, Title: "Hello"}).DisplayTitle(); got != "Hello" {
		t.Errorf("DisplayTitle() = %q", got)
	}
	if got := (Record{VideoID: videoA, Title: " "}).DisplayTitle(); got != videoA {
		t.Errorf("DisplayTitle() = %q, want video ID", got)
	}
}
