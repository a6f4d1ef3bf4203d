package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-mailer/internal/db"
	"github.com/jonathan/resume-mailer/internal/fetch"
	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/logger"
	"github.com/jonathan/resume-mailer/internal/pipeline"
	"github.com/jonathan/resume-mailer/internal/schemas"
	"github.com/jonathan/resume-mailer/internal/types"
)

// DocumentResult is the outcome for one uploaded file.
type DocumentResult struct {
	ID      *uuid.UUID              `json:"id,omitempty"`
	Source  string                  `json:"source"`
	Kind    string                  `json:"kind,omitempty"`
	Chars   int                     `json:"chars,omitempty"`
	Profile *types.CandidateProfile `json:"profile,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// UploadResponse is the body of POST /v1/documents.
type UploadResponse struct {
	Documents []DocumentResult `json:"documents"`
}

// EmailRequest is the body of POST /v1/emails. At least one of FileIDs and
// Profiles must be set; FileIDs profiles come first in merge order.
type EmailRequest struct {
	FileIDs        []string                 `json:"file_ids,omitempty"`
	Profiles       []types.CandidateProfile `json:"profiles,omitempty"`
	CompanyName    string                   `json:"company_name"`
	Role           string                   `json:"role"`
	JobDescription string                   `json:"job_description,omitempty"`
	JobURL         string                   `json:"job_url,omitempty"`
	Tone           string                   `json:"tone,omitempty"`
	Length         string                   `json:"length,omitempty"`
}

// EmailResponse is the body of POST /v1/emails and the data of the stream's
// complete event.
type EmailResponse struct {
	DraftID *uuid.UUID              `json:"draft_id,omitempty"`
	Profile *types.CandidateProfile `json:"profile"`
	Draft   *types.EmailDraft       `json:"draft"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	storage := "disabled"
	if s.store != nil {
		storage = "enabled"
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "storage": storage})
}

// handleUploadDocuments extracts a profile from every "file" part of a
// multipart form. Files that fail are reported individually; the request only
// fails when none succeed.
func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, err)
			return
		}
		s.fail(w, r, &RequestError{Field: "body", Message: err.Error()})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		s.fail(w, r, &RequestError{Field: "body", Message: `at least one "file" part is required`})
		return
	}

	docs := make([]pipeline.Document, 0, len(headers))
	for _, fh := range headers {
		doc, err := readUpload(fh)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		docs = append(docs, doc)
	}

	ctx := r.Context()
	parsed := pipeline.ParseDocuments(ctx, s.extractor, docs, 0)

	resp := UploadResponse{Documents: make([]DocumentResult, len(parsed))}
	var firstErr error
	succeeded := 0
	for i, p := range parsed {
		res := DocumentResult{Source: p.Source}
		if p.Err != nil {
			res.Error = p.Err.Error()
			if firstErr == nil {
				firstErr = p.Err
			}
			resp.Documents[i] = res
			continue
		}

		succeeded++
		res.Kind = string(p.Document.Kind)
		res.Chars = len([]rune(p.Document.Text))
		res.Profile = p.Profile
		if s.store != nil {
			id, err := s.store.SaveParsedDocument(ctx, db.NewParsedDocument(p.Document, p.Profile))
			if err != nil {
				s.fail(w, r, err)
				return
			}
			res.ID = &id
		}
		resp.Documents[i] = res
	}

	if succeeded == 0 {
		s.fail(w, r, firstErr)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// readUpload takes the kind from the file name, falling back to the part's
// content type.
func readUpload(fh *multipart.FileHeader) (pipeline.Document, error) {
	kind, ok := ingestion.KindFromFilename(fh.Filename)
	if !ok {
		kind, ok = ingestion.KindFromContentType(fh.Header.Get("Content-Type"))
	}
	if !ok {
		return pipeline.Document{}, &RequestError{
			Field:   "file",
			Message: fmt.Sprintf("%s: unsupported file type (allowed: .pdf, .docx, .txt)", fh.Filename),
		}
	}

	f, err := fh.Open()
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return pipeline.Document{Source: fh.Filename, Kind: kind, Data: data}, nil
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "document")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.store == nil {
		s.fail(w, r, ErrStorageDisabled)
		return
	}

	docs, err := s.store.GetParsedDocuments(r.Context(), []uuid.UUID{id})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, docs[0])
}

// handleGenerateEmail drafts an email synchronously.
func (s *Server) handleGenerateEmail(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeEmailRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp, err := s.generate(r.Context(), req, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleGenerateEmailStream drafts an email and streams pipeline progress as
// step events followed by one complete or error event. Request validation
// errors are returned before the stream starts.
func (s *Server) handleGenerateEmailStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeEmailRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := r.Context()
	resp, err := s.generate(ctx, req, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(EventStep, stepEvent{Step: event.Step, Message: event.Message}); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to write progress event")
		}
	})
	if err != nil {
		_ = sse.WriteError(err)
		return
	}
	if err := sse.WriteEvent(EventComplete, resp); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to write complete event")
	}
}

// stepEvent is the data of a step event. Intermediate results stay server side.
type stepEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

func (s *Server) decodeEmailRequest(r *http.Request) (*EmailRequest, error) {
	var req EmailRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, &RequestError{Field: "body", Message: err.Error()}
	}
	if len(req.FileIDs) == 0 && len(req.Profiles) == 0 {
		return nil, &RequestError{Field: "body", Message: "either file_ids or profiles must be provided"}
	}
	if req.JobDescription != "" && req.JobURL != "" {
		return nil, &RequestError{Field: "body", Message: "job_description and job_url are mutually exclusive"}
	}
	if req.JobURL != "" {
		if err := fetch.ValidateURL(req.JobURL); err != nil {
			return nil, &RequestError{Field: "job_url", Message: err.Error()}
		}
		if !s.allowPrivateURLs {
			var blocked *fetch.BlockedAddressError
			if err := fetch.CheckPublicHost(r.Context(), req.JobURL); errors.As(err, &blocked) {
				return nil, &RequestError{Field: "job_url", Message: blocked.Error()}
			} else if err != nil {
				return nil, err
			}
		}
	}
	for i := range req.Profiles {
		if err := req.Profiles[i].Validate(); err != nil {
			return nil, &RequestError{Field: fmt.Sprintf("profiles[%d]", i), Message: err.Error()}
		}
	}
	return &req, nil
}

// generate resolves stored profiles and the job description, runs the
// pipeline and saves the draft when storage is configured.
func (s *Server) generate(ctx context.Context, req *EmailRequest, onProgress pipeline.ProgressCallback) (*EmailResponse, error) {
	tone, length := s.tone, s.length
	var err error
	if req.Tone != "" {
		if tone, err = types.ParseTone(req.Tone); err != nil {
			return nil, &RequestError{Field: "tone", Message: err.Error()}
		}
	}
	if req.Length != "" {
		if length, err = types.ParseLength(req.Length); err != nil {
			return nil, &RequestError{Field: "length", Message: err.Error()}
		}
	}

	fileIDs := make([]uuid.UUID, 0, len(req.FileIDs))
	for _, raw := range req.FileIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, &RequestError{Field: "file_ids", Message: fmt.Sprintf("%q is not a UUID", raw)}
		}
		fileIDs = append(fileIDs, id)
	}

	profiles := make([]types.CandidateProfile, 0, len(fileIDs)+len(req.Profiles))
	if len(fileIDs) > 0 {
		if s.store == nil {
			return nil, ErrStorageDisabled
		}
		docs, err := s.store.GetParsedDocuments(ctx, fileIDs)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			profiles = append(profiles, d.Profile)
		}
	}
	profiles = append(profiles, req.Profiles...)

	jobDescription := ingestion.CleanText(req.JobDescription)
	if req.JobURL != "" {
		if jobDescription, err = fetch.JobDescription(ctx, req.JobURL, s.job); err != nil {
			return nil, err
		}
	}

	result, err := pipeline.Run(ctx, pipeline.Options{
		Profiles: profiles,
		Job: types.JobContext{
			CompanyName:    req.CompanyName,
			Role:           req.Role,
			JobDescription: jobDescription,
		},
		Tone:       tone,
		Length:     length,
		Backend:    s.backend,
		OnProgress: onProgress,
	})
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateDocument(schemas.EmailDraft, result.Draft); err != nil {
		return nil, fmt.Errorf("generated draft does not validate against schema: %v", err)
	}

	resp := &EmailResponse{Profile: result.Profile, Draft: result.Draft}
	if s.store != nil {
		id, err := s.store.SaveDraft(ctx, db.NewDraftRecord(result.Request, result.Draft, fileIDs))
		if err != nil {
			return nil, err
		}
		resp.DraftID = &id
	}
	return resp, nil
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, ErrStorageDisabled)
		return
	}

	limit := db.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.fail(w, r, &RequestError{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	drafts, err := s.store.ListDrafts(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if drafts == nil {
		drafts = []db.DraftSummary{}
	}
	s.jsonResponse(w, http.StatusOK, drafts)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "draft")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.store == nil {
		s.fail(w, r, ErrStorageDisabled)
		return
	}

	rec, err := s.store.GetDraft(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "draft")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.store == nil {
		s.fail(w, r, ErrStorageDisabled)
		return
	}

	if err := s.store.DeleteDraft(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &RequestError{Field: what + " ID", Message: fmt.Sprintf("%q is not a UUID", r.PathValue("id"))}
	}
	return id, nil
}
