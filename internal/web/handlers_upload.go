package web

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/csvio"
	"github.com/JonMunkholm/gridkit/internal/logging"
	"github.com/JonMunkholm/gridkit/internal/web/views"
)

// previewRows is how many parsed rows a preview returns.
const previewRows = 10

// multipartOverhead leaves room for form fields around the file part.
const multipartOverhead = 1 << 20

type previewResponse struct {
	Total  int                `json:"total"`
	Valid  int                `json:"valid"`
	Fields []string           `json:"fields"`
	Rows   []core.Row         `json:"rows"`
	Errors []core.ImportError `json:"errors"`
}

type importResponse struct {
	Imported int                `json:"imported"`
	Forced   bool               `json:"forced"`
	Errors   []core.ImportError `json:"errors,omitempty"`
}

// handleImportPreview parses the upload and reports what an import would
// do, without touching the table.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	res, err := s.parseUpload(w, r)
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		views.ImportReport(len(res.Rows), res.ValidCount(), res.Errors).Render(r.Context(), w)
		return
	}

	rows := res.Rows
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	errs := res.Errors
	if errs == nil {
		errs = []core.ImportError{}
	}
	writeJSON(w, http.StatusOK, previewResponse{
		Total:  len(res.Rows),
		Valid:  res.ValidCount(),
		Fields: res.Fields,
		Rows:   rows,
		Errors: errs,
	})
}

// handleImport replaces the table's rows with the upload. Files with
// problems are refused with 422 unless force=true.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	res, err := s.parseUpload(w, r)
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	force, err := parseBoolParam(r, "force", false)
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}

	err = s.session.Write(func(t *core.Table) error {
		return t.ImportRows(res.Rows, res.Errors, force)
	})
	if errors.Is(err, core.ErrImportRejected) {
		writeError(w, r, err, http.StatusUnprocessableEntity, ErrorResponse{Import: res.Errors})
		return
	}
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import applied",
		"rows", len(res.Rows),
		"errors", len(res.Errors),
		"forced", force && len(res.Errors) > 0,
	)
	writeJSON(w, http.StatusOK, importResponse{
		Imported: len(res.Rows),
		Forced:   force && len(res.Errors) > 0,
		Errors:   res.Errors,
	})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.imports.Status())
}

// parseUpload reads the multipart "file" field and parses it as CSV or
// JSON. Form fields: format (csv|json, else by extension), delimiter,
// hasHeader, clean. Parsing holds an import slot and is bounded by the
// configured import timeout.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (csvio.ImportResult, error) {
	if err := s.imports.Acquire(r.Context()); err != nil {
		return csvio.ImportResult{}, err
	}
	defer s.imports.Release()

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return csvio.ImportResult{}, &core.FileError{Reason: "File size must be less than " + csvio.FormatFileSize(maxSize)}
		}
		return csvio.ImportResult{}, &core.FileError{Reason: "no file provided"}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return csvio.ImportResult{}, &core.FileError{Reason: "no file provided"}
	}
	defer file.Close()

	asJSON := strings.EqualFold(r.FormValue("format"), "json") ||
		(r.FormValue("format") == "" && strings.EqualFold(filepath.Ext(header.Filename), ".json"))

	if asJSON {
		if header.Size > maxSize {
			return csvio.ImportResult{}, &core.FileError{Reason: "File size must be less than " + csvio.FormatFileSize(maxSize)}
		}
	} else if err := csvio.CheckFile(header.Filename, header.Header.Get("Content-Type"), header.Size, maxSize); err != nil {
		return csvio.ImportResult{}, err
	}

	opts := csvio.DefaultOptions()
	opts.MaxBytes = maxSize
	if opts.Delimiter, err = csvio.ParseDelimiter(r.FormValue("delimiter")); err != nil {
		return csvio.ImportResult{}, &core.FileError{Reason: err.Error()}
	}
	if opts.HasHeader, err = parseBoolParam(r, "hasHeader", true); err != nil {
		return csvio.ImportResult{}, err
	}
	if opts.Clean, err = parseBoolParam(r, "clean", false); err != nil {
		return csvio.ImportResult{}, err
	}

	ctx := r.Context()
	if s.cfg.Import.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Import.Timeout)
		defer cancel()
	}

	var res csvio.ImportResult
	if asJSON {
		res, err = csvio.ParseJSON(ctx, file, opts)
	} else {
		res, err = csvio.ParseCSV(ctx, file, opts)
	}
	if err != nil {
		return csvio.ImportResult{}, parseFailure(err)
	}

	logging.FromContext(r.Context()).Debug("upload parsed",
		"file", header.Filename,
		"size", header.Size,
		"rows", len(res.Rows),
		"errors", len(res.Errors),
	)
	return res, nil
}

// parseFailure marks file-content problems as client errors. Context
// errors pass through untouched.
func parseFailure(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &core.FileError{Reason: err.Error()}
}
