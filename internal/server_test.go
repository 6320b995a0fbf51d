package internal

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T) (*Server, *fakeSource, *fakeGenerators) {
	t.Helper()

	source := newFakeSource()
	source.addVideo(videoA, "Go Tips", "first transcript")
	source.addVideo(videoB, "Rust Tips", "second transcript")
	source.addVideo(videoC, "No Captions", "")
	gens := &fakeGenerators{}

	config := &Config{
		ChunkSize:   7000,
		TempDir:     t.TempDir(),
		CORSOrigins: []string{"http://localhost:5173"},
	}
	app, err := NewApp(config,
		WithVideoSource(source),
		WithGenerator(gens),
		WithTokenCounter(runeCounter),
		WithUI(NewSilentUI()),
	)
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}
	return NewServer(app), source, gens
}

func doJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func doUpload(t *testing.T, s *Server, path, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) metadataResponse {
	t.Helper()
	var resp metadataResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func attachmentName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("parsing Content-Disposition %q: %v", rec.Header().Get("Content-Disposition"), err)
	}
	return params["filename"]
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCORSAllowedOrigin(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestSingleMetadata(t *testing.T) {
	s, _, _ := newTestServer(t)

	tests := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{"video", "https://youtu.be/" + videoA, http.StatusOK},
		{"not a link", "https://example.com/video", http.StatusBadRequest},
		{"empty", "", http.StatusBadRequest},
		{"unavailable video", "zzzzzzzzzzz", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, "/api/single/get_metadata", map[string]string{"url": tt.url})
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			resp := decodeResponse(t, rec)
			if tt.wantStatus != http.StatusOK {
				if resp.Success || resp.Message == "" {
					t.Errorf("error response = %+v", resp)
				}
				return
			}

			if !resp.Success || len(resp.Metadata) != 1 {
				t.Fatalf("response = %+v", resp)
			}
			got := resp.Metadata[0]
			if got.VideoID != videoA || got.Title != "Go Tips" || got.UploadDate != "15/01/23" || got.Processed {
				t.Errorf("record = %+v", got)
			}
		})
	}
}

func TestSingleAction(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{"summarize", "[summarize:whole:1/1]"},
		{"generate_ideas", "[ideate:whole:1/1]"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			s, _, _ := newTestServer(t)
			body := metadataRequest{Metadata: []Record{{VideoID: videoA, Title: "Go Tips", Results: "stale"}}}

			rec := doJSON(t, s, "/api/single/"+tt.action, body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			resp := decodeResponse(t, rec)
			if len(resp.Metadata) != 1 {
				t.Fatalf("response = %+v", resp)
			}
			if got := resp.Metadata[0]; got.Results != tt.want || !got.Processed || got.Title != "Go Tips" {
				t.Errorf("record = %+v", got)
			}
		})
	}
}

func TestSingleActionErrors(t *testing.T) {
	s, _, gens := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
	}{
		{"unknown action", "/api/single/translate", metadataRequest{Metadata: []Record{{VideoID: videoA}}}, http.StatusBadRequest},
		{"missing video id", "/api/single/summarize", metadataRequest{Metadata: []Record{{Title: "x"}}}, http.StatusBadRequest},
		{"no metadata", "/api/single/summarize", metadataRequest{}, http.StatusBadRequest},
		{"malformed body", "/api/single/summarize", "not an object", http.StatusBadRequest},
		{"no transcript", "/api/single/summarize", metadataRequest{Metadata: []Record{{VideoID: videoC}}}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
	if len(gens.calls) != 0 {
		t.Errorf("backend called %d times for rejected requests", len(gens.calls))
	}
}

func TestBatchAction(t *testing.T) {
	s, _, _ := newTestServer(t)
	body := metadataRequest{Metadata: []Record{
		{VideoID: videoA, Title: "Go Tips"},
		{VideoID: videoC, Title: "No Captions"},
		{VideoID: videoB, Title: "Rust Tips"},
	}}

	rec := doJSON(t, s, "/api/batch/summarize", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Errorf("Success = false with partial failures")
	}
	if len(resp.Metadata) != 2 || resp.Metadata[0].VideoID != videoA || resp.Metadata[1].VideoID != videoB {
		t.Fatalf("metadata = %+v", resp.Metadata)
	}
	for _, got := range resp.Metadata {
		if !got.Processed || got.Results == "" {
			t.Errorf("record not processed: %+v", got)
		}
	}
	if len(resp.Failures) != 1 {
		t.Fatalf("failures = %+v", resp.Failures)
	}
	if f := resp.Failures[0]; f.Index != 1 || f.VideoID != videoC || f.Kind != "retrieval" {
		t.Errorf("failure = %+v", f)
	}
}

func TestBatchActionAllFailed(t *testing.T) {
	s, _, _ := newTestServer(t)
	body := metadataRequest{Metadata: []Record{{VideoID: videoC}, {VideoID: "bad"}}}

	rec := doJSON(t, s, "/api/batch/generate_ideas", body)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if resp.Success || len(resp.Failures) != 2 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Failures[1].Kind != "invalid_input" {
		t.Errorf("failure kinds = %+v", resp.Failures)
	}
}

func TestBatchMetadataUpload(t *testing.T) {
	s, _, _ := newTestServer(t)
	csv := "Link\nhttps://www.youtube.com/watch?v=" + videoA + "\nnot-a-link-at-all\n" + videoB + "\n"

	rec := doUpload(t, s, "/api/batch/get_metadata", "links.csv", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if len(resp.Metadata) != 2 || resp.Metadata[0].Title != "Go Tips" || resp.Metadata[1].Title != "Rust Tips" {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
	if len(resp.Failures) != 1 || resp.Failures[0].Index != 1 || resp.Failures[0].Kind != "invalid_input" {
		t.Errorf("failures = %+v", resp.Failures)
	}
}

func TestBatchMetadataUploadErrors(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doUpload(t, s, "/api/batch/get_metadata", "links.csv", "url\n"+videoA+"\n")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing Link column: status = %d", rec.Code)
	}

	rec = doJSON(t, s, "/api/batch/get_metadata", map[string]string{"url": videoA})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no upload: status = %d", rec.Code)
	}
}

func TestBatchDownload(t *testing.T) {
	s, _, _ := newTestServer(t)
	recs := []Record{
		{VideoID: videoA, Link: CanonicalLink(videoA), Title: "Go Tips", Results: "summary A", Processed: true},
		{VideoID: videoB, Link: CanonicalLink(videoB), Title: "Rust Tips", Results: "summary B", Processed: true},
	}

	rec := doJSON(t, s, "/api/batch/download", recs)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != contentTypeXLSX {
		t.Errorf("Content-Type = %q", got)
	}
	if name := attachmentName(t, rec); name != "output.xlsx" {
		t.Errorf("filename = %q", name)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("opening download: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(resultsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[2][6] != "summary B" {
		t.Errorf("rows = %q", rows)
	}
}

func TestSingleDownload(t *testing.T) {
	s, _, _ := newTestServer(t)
	recs := []Record{{VideoID: videoA, Link: CanonicalLink(videoA), Title: "Go Tips", Results: "summary", Processed: true}}

	rec := doJSON(t, s, "/api/single/download", recs)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if name := attachmentName(t, rec); name != "output.zip" {
		t.Errorf("filename = %q", name)
	}

	files := readZip(t, rec.Body.Bytes())
	if _, ok := files["output.xlsx"]; !ok {
		t.Errorf("archive is missing output.xlsx: %v", keys(files))
	}
	if files["Go Tips.txt"] != "first transcript" {
		t.Errorf("archive transcripts = %v", keys(files))
	}
}

func TestTranscriptFile(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s, "/api/single/get_transcript_file", map[string]string{"url": videoB})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if name := attachmentName(t, rec); name != "Rust Tips.txt" {
		t.Errorf("filename = %q", name)
	}
	if rec.Body.String() != "second transcript" {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = doJSON(t, s, "/api/single/get_transcript_file", map[string]string{"url": videoC})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("video without captions: status = %d", rec.Code)
	}
}

func TestTranscriptZip(t *testing.T) {
	s, _, _ := newTestServer(t)
	links := videoA + "\n" + videoC + "\n" + videoB + "\n"

	rec := doUpload(t, s, "/api/batch/get_transcript_zip", "links.txt", links)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if name := attachmentName(t, rec); name != "transcripts.zip" {
		t.Errorf("filename = %q", name)
	}

	files := readZip(t, rec.Body.Bytes())
	want := []string{"Go Tips.txt", "Rust Tips.txt"}
	if got := keys(files); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("archive files = %v, want %v", got, want)
	}

	rec = doUpload(t, s, "/api/batch/get_transcript_zip", "links.txt", videoC+"\n")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("no transcripts: status = %d", rec.Code)
	}
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	files := make(map[string]string)
	for _, file := range zr.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatal(err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		files[file.Name] = string(content)
	}
	return files
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
