package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/JonMunkholm/certvault/internal/core"
	"github.com/go-chi/chi/v5"
)

const (
	msgCreated       = "Certificate created successfully"
	msgNothingToAdd  = "No new certificates to add or data was invalid."
	msgAddedTemplate = "Successfully added %d certificates."
)

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type bulkResponse struct {
	Message          string `json:"message"`
	Added            int    `json:"added"`
	SkippedInvalid   int    `json:"skipped_invalid"`
	SkippedDuplicate int    `json:"skipped_duplicate"`
}

// certificateResponse is the lookup body; the surrogate ID stays internal.
type certificateResponse struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	ImageData string `json:"image_data"`
}

// handleAddCertificate stores one certificate.
// POST /api/certificates
func (s *Server) handleAddCertificate(w http.ResponseWriter, r *http.Request) {
	var p core.CertificatePayload
	if err := s.decodeBody(w, r, &p); err != nil {
		respondError(w, r, asDecodeError(err, core.ErrMissingFields))
		return
	}

	id, err := s.service.AddCertificate(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, createdResponse{Message: msgCreated, ID: id})
}

// handleBulkImport stores every acceptable certificate of a list.
// POST /api/certificates/bulk
//
// Items that are missing a field, are not objects, or repeat a known code
// are skipped; that is still a successful request.
func (s *Server) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	items, err := core.DecodeBatch(s.limitBody(w, r))
	if err != nil {
		respondError(w, r, asDecodeError(err, core.ErrMalformedBatch))
		return
	}

	result, err := s.service.ImportCertificates(r.Context(), items)
	if result.ImportID != "" {
		w.Header().Set("X-Import-ID", result.ImportID)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := bulkResponse{
		Added:            result.Added,
		SkippedInvalid:   result.SkippedInvalid,
		SkippedDuplicate: result.SkippedDuplicate,
	}
	if result.Added == 0 {
		resp.Message = msgNothingToAdd
		writeJSON(w, r, http.StatusOK, resp)
		return
	}

	resp.Message = fmt.Sprintf(msgAddedTemplate, result.Added)
	writeJSON(w, r, http.StatusCreated, resp)
}

// handleGetCertificate looks a certificate up by code.
// GET /api/certificates/{code}
func (s *Server) handleGetCertificate(w http.ResponseWriter, r *http.Request) {
	// chi matches against RawPath when it is set (e.g. the code has a %2F),
	// otherwise against the already decoded Path.
	code := chi.URLParam(r, "code")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(code); err == nil {
			code = unescaped
		}
	}

	cert, err := s.service.GetCertificate(r.Context(), code)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, certificateResponse{
		Name:      cert.Name,
		Code:      cert.Code,
		ImageData: cert.ImageData,
	})
}

// limitBody caps the request body at SERVER_MAX_BODY_BYTES.
func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) io.Reader {
	if limit := s.cfg.Server.MaxBodyBytes; limit > 0 {
		return http.MaxBytesReader(w, r.Body, limit)
	}
	return r.Body
}

// decodeBody decodes a size-limited JSON body into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(s.limitBody(w, r)).Decode(v)
}

// asDecodeError classifies a body decoding failure: oversized bodies are
// ErrPayloadTooLarge, anything else unreadable is reported as fallback.
func asDecodeError(err, fallback error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("body above %d bytes: %w", maxErr.Limit, core.ErrPayloadTooLarge)
	}
	if errors.Is(err, fallback) {
		return err
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("empty body: %w", fallback)
	}
	return fmt.Errorf("decode body: %v: %w", err, fallback)
}
