package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	maxBodyBytes   = 10 << 20
	maxUploadBytes = 32 << 20

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeZip  = "application/zip"
	contentTypeText = "text/plain; charset=utf-8"
)

// Server exposes the pipeline over HTTP
type Server struct {
	app    *App
	router chi.Router
}

type urlRequest struct {
	URL string `json:"url"`
}

type metadataRequest struct {
	Metadata []Record `json:"metadata"`
}

type metadataResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message,omitempty"`
	Metadata []Record       `json:"metadata"`
	Failures []BatchFailure `json:"failures,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewServer builds the router for the HTTP API
func NewServer(app *App) *Server {
	s := &Server{app: app}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/single", func(r chi.Router) {
		r.Post("/get_metadata", s.handleSingleMetadata)
		r.Post("/download", s.handleSingleDownload)
		r.Post("/get_transcript_file", s.handleTranscriptFile)
		r.Post("/{action}", s.handleSingleAction)
	})

	r.Route("/api/batch", func(r chi.Router) {
		r.Post("/get_metadata", s.handleBatchMetadata)
		r.Post("/download", s.handleBatchDownload)
		r.Post("/get_transcript_zip", s.handleTranscriptZip)
		r.Post("/{action}", s.handleBatchAction)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler of the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logInfo(logAPI, "listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("%w: serving on %s: %w", ErrResource, addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logInfo(logAPI, "shutting down")
	return srv.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logError(logAPI, "encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	logError(logAPI, "%d %s: %v", status, ErrorKind(err), err)
	writeJSON(w, status, errorResponse{Success: false, Message: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %w", ErrInvalidInput, err)
	}
	return nil
}

func decodeRecords(w http.ResponseWriter, r *http.Request) ([]Record, error) {
	var req metadataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if len(req.Metadata) == 0 {
		return nil, fmt.Errorf("%w: no metadata provided", ErrInvalidInput)
	}
	for _, rec := range req.Metadata {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}
	return req.Metadata, nil
}

// uploadedLinks reads the links of the multipart "file" field
func uploadedLinks(w http.ResponseWriter, r *http.Request) ([]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: no file uploaded: %w", ErrInvalidInput, err)
	}
	defer file.Close()

	return ReadLinks(header.Filename, file)
}

// sendFile writes a download into a scoped temp file and serves it as an attachment.
// The temp file is removed when sendFile returns, whether or not the send succeeded.
func (s *Server) sendFile(w http.ResponseWriter, r *http.Request, name, contentType string, write func(io.Writer) error) error {
	return WithTempFile(s.app.config.TempDir, "download-*"+filepath.Ext(name), func(f *os.File) error {
		if err := write(f); err != nil {
			return err
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("%w: rewinding %s: %w", ErrResource, f.Name(), err)
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		http.ServeContent(w, r, name, time.Now(), f)
		return nil
	})
}

func (s *Server) handleSingleMetadata(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := s.app.Record(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, metadataResponse{Success: true, Metadata: []Record{rec}})
}

func (s *Server) handleSingleAction(w http.ResponseWriter, r *http.Request) {
	task, err := ParseTask(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, err)
		return
	}

	recs, err := decodeRecords(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	processed := make([]Record, 0, len(recs))
	for _, rec := range recs {
		out, err := s.app.Process(r.Context(), rec, task)
		if err != nil {
			writeError(w, err)
			return
		}
		processed = append(processed, out)
	}

	writeJSON(w, http.StatusOK, metadataResponse{Success: true, Metadata: processed})
}

func (s *Server) handleSingleDownload(w http.ResponseWriter, r *http.Request) {
	var recs []Record
	if err := decodeJSON(w, r, &recs); err != nil {
		writeError(w, err)
		return
	}
	if len(recs) == 0 {
		writeError(w, fmt.Errorf("%w: no metadata provided", ErrInvalidInput))
		return
	}
	if err := recs[0].Validate(); err != nil {
		writeError(w, err)
		return
	}

	sheet, err := ResultsXLSX(recs)
	if err != nil {
		writeError(w, err)
		return
	}
	transcript, err := s.app.Transcript(r.Context(), recs[0].VideoID)
	if err != nil {
		writeError(w, err)
		return
	}

	entries := []ExportEntry{
		{Name: "output.xlsx", Data: sheet},
		TranscriptEntry(recs[0], transcript),
	}
	err = s.sendFile(w, r, "output.zip", contentTypeZip, func(out io.Writer) error {
		return WriteZip(out, entries)
	})
	if err != nil {
		writeError(w, err)
	}
}

func (s *Server) handleTranscriptFile(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, transcript, err := s.app.TranscriptFile(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	name := TranscriptFileName(rec.Title, rec.VideoID)
	err = s.sendFile(w, r, name, contentTypeText, func(out io.Writer) error {
		if _, err := io.WriteString(out, transcript); err != nil {
			return fmt.Errorf("%w: writing transcript: %w", ErrResource, err)
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
	}
}

// writeBatch answers a batch request; it fails only when no item succeeded
func writeBatch(w http.ResponseWriter, results []BatchResult) {
	recs, failures := SplitBatch(results)
	if len(recs) == 0 && len(failures) > 0 {
		status := HTTPStatus(results[0].Err)
		writeJSON(w, status, metadataResponse{
			Success:  false,
			Message:  fmt.Sprintf("all %d items failed: %s", len(failures), failures[0].Message),
			Metadata: recs,
			Failures: failures,
		})
		return
	}
	writeJSON(w, http.StatusOK, metadataResponse{Success: true, Metadata: recs, Failures: failures})
}

func (s *Server) handleBatchMetadata(w http.ResponseWriter, r *http.Request) {
	links, err := uploadedLinks(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	writeBatch(w, s.app.Records(r.Context(), links))
}

func (s *Server) handleBatchAction(w http.ResponseWriter, r *http.Request) {
	task, err := ParseTask(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req metadataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Metadata) == 0 {
		writeError(w, fmt.Errorf("%w: no metadata provided", ErrInvalidInput))
		return
	}

	writeBatch(w, s.app.ProcessBatch(r.Context(), req.Metadata, task))
}

func (s *Server) handleBatchDownload(w http.ResponseWriter, r *http.Request) {
	var recs []Record
	if err := decodeJSON(w, r, &recs); err != nil {
		writeError(w, err)
		return
	}
	if len(recs) == 0 {
		writeError(w, fmt.Errorf("%w: no metadata provided", ErrInvalidInput))
		return
	}

	err := s.sendFile(w, r, "output.xlsx", contentTypeXLSX, func(out io.Writer) error {
		return WriteResultsXLSX(out, recs)
	})
	if err != nil {
		writeError(w, err)
	}
}

func (s *Server) handleTranscriptZip(w http.ResponseWriter, r *http.Request) {
	links, err := uploadedLinks(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		entries []ExportEntry
		lastErr error
	)
	for _, link := range links {
		rec, transcript, err := s.app.TranscriptFile(r.Context(), link)
		if err != nil {
			logError(logAPI, "skipping %s: %v", link, err)
			lastErr = err
			continue
		}
		entries = append(entries, TranscriptEntry(rec, transcript))
	}
	if len(entries) == 0 {
		writeError(w, fmt.Errorf("no transcripts could be fetched: %w", lastErr))
		return
	}

	err = s.sendFile(w, r, "transcripts.zip", contentTypeZip, func(out io.Writer) error {
		return WriteZip(out, entries)
	})
	if err != nil {
		writeError(w, err)
	}
}
