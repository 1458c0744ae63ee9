package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/blobstore"
	jwttoken "kycgate/internal/jwt_token"
	"kycgate/internal/platform/health"
	"kycgate/internal/registration"
)

type HandlersSuite struct {
	suite.Suite
	server *httptest.Server
	tokens *jwttoken.JWTServiceAdapter
}

func (s *HandlersSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService := jwttoken.NewJWTService("test-signing-key", "kycgate", "kycgate", 30*time.Minute)
	tokens := jwttoken.NewJWTServiceAdapter(jwtService)
	s.tokens = tokens

	service := registration.NewService(
		registration.NewInMemoryUserStore(),
		blobstore.NewInMemoryStore(),
		tokens,
		tokens,
		registration.WithLogger(logger),
	)

	handler := NewHandler(service, logger)
	router := NewRouter(handler, health.New("test"), nil, logger)
	s.server = httptest.NewServer(router)
}

func (s *HandlersSuite) TearDownTest() {
	s.server.Close()
}

type formField struct {
	name  string
	value string
}

func (s *HandlersSuite) registerForm(fields []formField, filename, contentType string) *http.Response {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range fields {
		s.Require().NoError(writer.WriteField(f.name, f.value))
	}
	if filename != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		s.Require().NoError(err)
		_, err = part.Write([]byte("%PDF-1.4 test document"))
		s.Require().NoError(err)
	}
	s.Require().NoError(writer.Close())

	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/users/", &body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *HandlersSuite) validFields(email string) []formField {
	return []formField{
		{"name", "Maria Gomez"},
		{"email", email},
		{"document_type", "CC"},
		{"document_number", "1234567"},
		{"issue_date", time.Now().UTC().AddDate(0, 0, -1).Format(time.RFC3339)},
	}
}

func (s *HandlersSuite) decode(resp *http.Response, into any) {
	defer resp.Body.Close() //nolint:errcheck // test cleanup
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(into))
}

func (s *HandlersSuite) TestRegisterReturnsCredential() {
	resp := s.registerForm(s.validFields("maria@example.com"), "cedula.pdf", "application/pdf")

	s.Equal(http.StatusCreated, resp.StatusCode)
	var cred struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	s.decode(resp, &cred)
	s.NotEmpty(cred.AccessToken)
	s.Equal("bearer", cred.TokenType)
}

func (s *HandlersSuite) TestRegisterDuplicateEmail() {
	resp := s.registerForm(s.validFields("maria@example.com"), "cedula.pdf", "application/pdf")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close() //nolint:errcheck // test cleanup

	resp = s.registerForm(s.validFields("maria@example.com"), "cedula.pdf", "application/pdf")

	s.Equal(http.StatusConflict, resp.StatusCode)
	var errBody struct {
		Error string `json:"error"`
	}
	s.decode(resp, &errBody)
	s.Equal("duplicate_email", errBody.Error)
}

func (s *HandlersSuite) TestRegisterInvalidDocument() {
	fields := s.validFields("old@example.com")
	fields[4].value = time.Now().UTC().AddDate(-11, 0, 0).Format(time.RFC3339)

	resp := s.registerForm(fields, "cedula.pdf", "application/pdf")

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	var errBody struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	s.decode(resp, &errBody)
	s.Equal("invalid_document", errBody.Error)
	s.Contains(errBody.Description, "10 years")
}

func (s *HandlersSuite) TestRegisterUnsupportedFile() {
	resp := s.registerForm(s.validFields("exe@example.com"), "malware.exe", "application/octet-stream")

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	var errBody struct {
		Error string `json:"error"`
	}
	s.decode(resp, &errBody)
	s.Equal("unsupported_extension", errBody.Error)
}

func (s *HandlersSuite) TestRegisterMissingFile() {
	resp := s.registerForm(s.validFields("nofile@example.com"), "", "")

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlersSuite) TestRegisterBareDateAccepted() {
	fields := s.validFields("bare@example.com")
	fields[4].value = time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")

	resp := s.registerForm(fields, "cedula.jpg", "image/jpeg")

	s.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close() //nolint:errcheck // test cleanup
}

func (s *HandlersSuite) TestGetUserRoundTrip() {
	resp := s.registerForm(s.validFields("maria@example.com"), "cedula.pdf", "application/pdf")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var cred struct {
		AccessToken string `json:"access_token"`
	}
	s.decode(resp, &cred)

	// The credential's subject is the freshly created user.
	userID, err := s.tokens.Verify(cred.AccessToken)
	s.Require().NoError(err)

	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/users/"+userID.String(), nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	getResp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, getResp.StatusCode)

	var user struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		KYCStatus string `json:"kyc_status"`
		Document  struct {
			DocumentType string `json:"document_type"`
			IsValid      bool   `json:"is_valid"`
			BlobURL      string `json:"blob_url"`
		} `json:"document"`
	}
	s.decode(getResp, &user)
	s.Equal(userID.String(), user.ID)
	s.Equal("Maria Gomez", user.Name)
	s.Equal("maria@example.com", user.Email)
	s.Equal("approved", user.KYCStatus)
	s.Equal("CC", user.Document.DocumentType)
	s.True(user.Document.IsValid)
	s.NotEmpty(user.Document.BlobURL)
}

func (s *HandlersSuite) TestGetUserUnknownID() {
	resp := s.registerForm(s.validFields("maria@example.com"), "cedula.pdf", "application/pdf")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var cred struct {
		AccessToken string `json:"access_token"`
	}
	s.decode(resp, &cred)

	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/users/00000000-0000-0000-0000-000000000001", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	getResp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer getResp.Body.Close() //nolint:errcheck // test cleanup
	s.Equal(http.StatusNotFound, getResp.StatusCode)
}

func (s *HandlersSuite) TestGetUserMissingCredential() {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/users/00000000-0000-0000-0000-000000000001", nil)
	s.Require().NoError(err)

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint:errcheck // test cleanup
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *HandlersSuite) TestGetUserGarbageCredential() {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/users/00000000-0000-0000-0000-000000000001", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer not-a-token")

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint:errcheck // test cleanup
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *HandlersSuite) TestGetUserMalformedID() {
	resp := s.registerForm(s.validFields("maria@example.com"), "cedula.pdf", "application/pdf")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var cred struct {
		AccessToken string `json:"access_token"`
	}
	s.decode(resp, &cred)

	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/users/not-a-uuid", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	getResp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer getResp.Body.Close() //nolint:errcheck // test cleanup
	s.Equal(http.StatusNotFound, getResp.StatusCode)
}

func (s *HandlersSuite) TestHealthEndpoint() {
	resp, err := s.server.Client().Get(s.server.URL + "/health/live")
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint:errcheck // test cleanup
	s.Equal(http.StatusOK, resp.StatusCode)
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}
