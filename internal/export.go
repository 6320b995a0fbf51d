package internal

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Results"

// resultsHeader are the spreadsheet columns; VideoId and Processed are not exported
var resultsHeader = []any{"S/N", "Link", "Title", "Description", "Uploader", "Upload Date", "Results"}

// ExportEntry is one named file inside an exported archive
type ExportEntry struct {
	Name string
	Data []byte
}

// WriteResultsXLSX writes one spreadsheet row per record, in order
func WriteResultsXLSX(w io.Writer, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("%w: naming sheet: %w", ErrResource, err)
	}

	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return fmt.Errorf("%w: writing header: %w", ErrResource, err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrResource, err)
		}
		row := []any{i + 1, rec.Link, rec.Title, rec.Description, rec.Uploader, rec.UploadDate, rec.Results}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("%w: writing row %d: %w", ErrResource, i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: writing spreadsheet: %w", ErrResource, err)
	}
	return nil
}

// ResultsXLSX renders the results spreadsheet into memory
func ResultsXLSX(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteResultsXLSX(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteZip writes entries into a zip archive; repeated names get " (1)", " (2)" suffixes
func WriteZip(w io.Writer, entries []ExportEntry) error {
	zw := zip.NewWriter(w)
	used := make(map[string]bool, len(entries))

	for _, entry := range entries {
		name := uniqueName(entry.Name, used)
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("%w: adding %s to archive: %w", ErrResource, name, err)
		}
		if _, err := fw.Write(entry.Data); err != nil {
			return fmt.Errorf("%w: writing %s to archive: %w", ErrResource, name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: closing archive: %w", ErrResource, err)
	}
	return nil
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}
	used[candidate] = true
	return candidate
}

// TranscriptEntry names a transcript after its record
func TranscriptEntry(rec Record, transcript string) ExportEntry {
	return ExportEntry{
		Name: TranscriptFileName(rec.Title, rec.VideoID),
		Data: []byte(transcript),
	}
}

// TranscriptFileName returns a filesystem-safe "<title>.txt", falling back to the video ID
func TranscriptFileName(title, videoID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, title)
	name = strings.Trim(strings.TrimSpace(name), ".")

	if runes := []rune(name); len(runes) > 120 {
		name = strings.TrimSpace(string(runes[:120]))
	}
	if name == "" {
		name = videoID
	}
	if name == "" {
		name = "transcript"
	}
	return name + ".txt"
}

// WithTempFile creates a temporary file in dir, passes it to fn and removes it on return
func WithTempFile(dir, pattern string, fn func(f *os.File) error) error {
	if dir != "" {
		if err := EnsureDirs(dir); err != nil {
			return fmt.Errorf("%w: creating temp directory: %w", ErrResource, err)
		}
	}

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrResource, err)
	}
	defer func() {
		f.Close()
		if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", f.Name(), err)
		}
	}()

	return fn(f)
}
