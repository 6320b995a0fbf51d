package internal

import (
	"fmt"
	"strings"
	"time"
)

const (
	sourceDateLayout  = "20060102"
	displayDateLayout = "02/01/06"
)

// Record is the per-video data threaded from retrieval through generation to export.
// The JSON keys are consumed by the web client and must keep their casing.
type Record struct {
	VideoID     string `json:"VideoId"`
	Link        string `json:"Link"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Uploader    string `json:"Uploader"`
	UploadDate  string `json:"UploadDate"`
	Results     string `json:"Results"`
	Processed   bool   `json:"Processed"`
}

// NewRecord builds an unprocessed record from fetched metadata
func NewRecord(videoID string, metadata *VideoMetadata) Record {
	rec := Record{
		VideoID: videoID,
		Link:    CanonicalLink(videoID),
	}
	if metadata != nil {
		rec.Title = metadata.Title
		rec.Description = metadata.Description
		rec.Uploader = metadata.Uploader
		if rec.Uploader == "" {
			rec.Uploader = metadata.Channel
		}
		rec.UploadDate = FormatUploadDate(metadata.UploadDate)
	}
	return rec
}

// FormatUploadDate turns a YYYYMMDD date into DD/MM/YY.
// Anything else, including an already formatted date, is returned unchanged.
func FormatUploadDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) != len(sourceDateLayout) {
		return raw
	}
	t, err := time.Parse(sourceDateLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format(displayDateLayout)
}

// Validate checks the fields the processing endpoints rely on
func (r Record) Validate() error {
	if strings.TrimSpace(r.VideoID) == "" {
		return fmt.Errorf("%w: missing VideoId in metadata item", ErrInvalidInput)
	}
	if !IsValidYouTubeID(r.VideoID) {
		return fmt.Errorf("%w: malformed VideoId %q", ErrInvalidInput, r.VideoID)
	}
	return nil
}

// DisplayTitle returns the title, or the video ID when the title is empty
func (r Record) DisplayTitle() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	return r.VideoID
}
