package httptransport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kycgate/internal/registration"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/httputil"
)

// maxRequestBody caps the multipart body, leaving headroom above the document
// size ceiling for the other form fields.
const maxRequestBody = 6 << 20

// multipartMemory is how much of the form is held in memory before spilling
// to temp files.
const multipartMemory = 1 << 20

// Handler is the thin HTTP layer. It parses requests into coordinator inputs
// and renders coordinator outputs; business rules never live here.
type Handler struct {
	registrations *registration.Service
	logger        *slog.Logger
}

func NewHandler(registrations *registration.Service, logger *slog.Logger) *Handler {
	return &Handler{
		registrations: registrations,
		logger:        logger,
	}
}

// credentialResponse mirrors the token envelope returned on registration.
type credentialResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// documentResponse is the document view embedded in a user response.
type documentResponse struct {
	ID             uuid.UUID  `json:"id"`
	DocumentType   string     `json:"document_type"`
	DocumentNumber string     `json:"document_number"`
	IssueDate      time.Time  `json:"issue_date"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	IsValid        bool       `json:"is_valid"`
	Warnings       []string   `json:"validation_warnings,omitempty"`
	BlobURL        string     `json:"blob_url"`
	ValidatedAt    time.Time  `json:"validated_at"`
}

type userResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	KYCStatus string           `json:"kyc_status"`
	Document  documentResponse `json:"document"`
	CreatedAt time.Time        `json:"created_at"`
}

func newUserResponse(record *registration.UserRecord) userResponse {
	warnings := make([]string, 0, len(record.Document.Warnings))
	for _, w := range record.Document.Warnings {
		warnings = append(warnings, string(w))
	}
	if len(warnings) == 0 {
		warnings = nil
	}
	return userResponse{
		ID:        record.ID,
		Name:      record.Name,
		Email:     record.Email,
		KYCStatus: string(record.KYCStatus),
		Document: documentResponse{
			ID:             record.Document.ID,
			DocumentType:   string(record.Document.Type),
			DocumentNumber: record.Document.Number,
			IssueDate:      record.Document.IssueDate,
			ExpiryDate:     record.Document.ExpiryDate,
			IsValid:        record.Document.IsValid,
			Warnings:       warnings,
			BlobURL:        record.Document.BlobURL,
			ValidatedAt:    record.Document.ValidatedAt,
		},
		CreatedAt: record.CreatedAt,
	}
}

// handleRegister accepts a multipart registration form and returns the minted
// credential with 201 on success.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "request must be multipart/form-data"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup
	}()

	req := &registration.RegisterRequest{
		Name:           r.FormValue("name"),
		Email:          r.FormValue("email"),
		DocumentType:   r.FormValue("document_type"),
		DocumentNumber: r.FormValue("document_number"),
	}

	issueDate, err := parseFormTime(r.FormValue("issue_date"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "issue_date must be an ISO 8601 timestamp"))
		return
	}
	req.IssueDate = issueDate

	if raw := r.FormValue("expiry_date"); raw != "" {
		expiry, err := parseFormTime(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "expiry_date must be an ISO 8601 timestamp"))
			return
		}
		req.ExpiryDate = &expiry
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "document file is required"))
		return
	}
	defer file.Close() //nolint:errcheck // read-only handle

	req.File = registration.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}

	cred, err := h.registrations.Register(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, credentialResponse{
		AccessToken: cred.AccessToken,
		TokenType:   cred.TokenType,
	})
}

// handleGetUser returns a user record to any caller presenting a valid
// credential.
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	credential, ok := bearerToken(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer credential"))
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// An unparseable id can never match a record.
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "user not found"))
		return
	}

	record, err := h.registrations.Get(r.Context(), userID, credential)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, newUserResponse(record))
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// parseFormTime accepts RFC 3339 timestamps and bare dates.
func parseFormTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}
