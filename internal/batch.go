package internal

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// linkColumn is the header of the column holding video links in batch files
const linkColumn = "link"

// ReadLinks reads video links from a batch file. CSV and XLSX files need a "Link"
// column; any other file is read as one link per line with # comments.
func ReadLinks(name string, r io.Reader) ([]string, error) {
	var (
		links []string
		err   error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		links, err = readCSVLinks(r)
	case ".xlsx":
		links, err = readXLSXLinks(r)
	case ".xls":
		return nil, fmt.Errorf("%w: legacy .xls files are not supported, save as .xlsx", ErrInvalidInput)
	default:
		links, err = readTextLinks(r)
	}
	if err != nil {
		return nil, err
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("%w: no links found in %s", ErrInvalidInput, name)
	}
	return links, nil
}

func readCSVLinks(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading CSV: %w", ErrInvalidInput, err)
	}
	return linksFromRows(rows)
}

func readXLSXLinks(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading spreadsheet: %w", ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet has no sheets", ErrInvalidInput)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %s: %w", ErrInvalidInput, sheets[0], err)
	}
	return linksFromRows(rows)
}

// linksFromRows finds the link column in the header row and collects non-blank cells below it
func linksFromRows(rows [][]string) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	col := -1
	for i, header := range rows[0] {
		header = strings.TrimPrefix(header, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(header), linkColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: no Link column in header %q", ErrInvalidInput, rows[0])
	}

	var links []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		if link := strings.TrimSpace(row[col]); link != "" {
			links = append(links, link)
		}
	}
	return links, nil
}

func readTextLinks(r io.Reader) ([]string, error) {
	var links []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading links: %w", ErrInvalidInput, err)
	}
	return links, nil
}
