package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/api"
	"github.com/siamt-api/internal/config"
	"github.com/siamt-api/internal/mocks"
	"github.com/siamt-api/internal/models"
	"github.com/siamt-api/internal/repository"
	"github.com/siamt-api/internal/service"
	"github.com/siamt-api/internal/storage"
)

const baseURL = "http://api.test"

var pdfBytes = append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("0"), 2048-9)...)

type testEnv struct {
	router      *gin.Engine
	news        *mocks.MockNewsRepository
	conventions *mocks.MockConventionRepository
	layout      *storage.Layout
}

type fakeDB struct {
	err error
}

func (f *fakeDB) HealthCheck(ctx context.Context) error { return f.err }

func setupTestRouter(t *testing.T) *testEnv {
	return setupTestRouterWith(t, 10*1024*1024, nil)
}

func setupTestRouterWith(t *testing.T, maxUpload int64, db api.HealthChecker) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	layout, err := storage.NewLayout(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewLayout failed: %v", err)
	}

	cfg := &config.Config{
		Env:    config.EnvTest,
		Server: config.ServerConfig{Port: "3333", PublicBaseURL: baseURL},
		Storage: config.StorageConfig{
			StaticPrefix:  "/images",
			MaxUploadSize: maxUpload,
		},
		Sweep: config.SweepConfig{Grace: time.Hour},
	}

	env := &testEnv{
		news:        mocks.NewMockNewsRepository(),
		conventions: mocks.NewMockConventionRepository(),
		layout:      layout,
	}
	repos := &repository.Repositories{News: env.news, Convention: env.conventions}
	stores := service.Stores{News: layout.News, Convention: layout.Convention}
	services := service.NewServices(repos, stores, cfg, zerolog.Nop())

	env.router = api.NewRouter(services, cfg, layout.News.Root(), db, zerolog.Nop())
	return env
}

type filePart struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields [][2]string, files ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		part.Write(f.data)
	}
	w.Close()
	return body, w.FormDataContentType()
}

func (e *testEnv) do(t *testing.T, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// storedFiles lists every file under the upload directory, variant
// directories included
func (e *testEnv) storedFiles(t *testing.T) []string {
	t.Helper()
	var names []string
	err := filepath.WalkDir(e.layout.Root.Root(), func(path string, d fs.DirEntry, err error) error {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(e.layout.Root.Root(), path)
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir failed: %v", err)
	}
	return names
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON response %q: %v", w.Body.String(), err)
	}
	return response
}

func (e *testEnv) createConvention(t *testing.T, title, year, fileName string) *models.Convention {
	t.Helper()
	body, ct := multipartBody(t,
		[][2]string{{"title", title}, {"year", year}},
		filePart{"file", fileName, pdfBytes})

	w := e.do(t, "POST", "/conventions", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Data models.Convention `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	return &response.Data
}

func (e *testEnv) createNews(t *testing.T, title string) *models.News {
	t.Helper()
	body, ct := multipartBody(t,
		[][2]string{{"title", title}, {"description", "Descrição"}, {"author", "Diretoria"}},
		filePart{"image", "capa.jpg", []byte("\xff\xd8\xff\xe0jpeg")})

	w := e.do(t, "POST", "/news", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Data models.News `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	return &response.Data
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "GET", "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "siamt-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	env := setupTestRouterWith(t, 1024, &fakeDB{err: errors.New("connection refused")})

	w := env.do(t, "GET", "/health", nil, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}

	response := decode(t, w)
	db := response["database"].(map[string]interface{})
	if db["status"] != "down" {
		t.Errorf("Expected database down, got %v", db["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	env.do(t, "GET", "/news", nil, "")

	w := env.do(t, "GET", "/metrics", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `siamt_http_requests_total{method="GET",path="/news",status="200"}`) {
		t.Error("Expected request counter for GET /news")
	}
}

func TestCreateConvention_Scenario(t *testing.T) {
	env := setupTestRouter(t)

	created := env.createConvention(t, "Q3 Report", "2024", "report.pdf")
	if created.Year != "2024" || created.Title != "Q3 Report" {
		t.Errorf("Unexpected echo %+v", created)
	}

	w := env.do(t, "GET", "/conventions", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Conventions []models.Convention `json:"conventions"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)

	if len(response.Conventions) != 1 {
		t.Fatalf("Expected 1 convention, got %d", len(response.Conventions))
	}
	got := response.Conventions[0]
	if got.Year != "2024" {
		t.Errorf("Expected year 2024, got %q", got.Year)
	}
	if !strings.HasSuffix(got.DownloadURL, "-report.pdf") {
		t.Errorf("Expected URL ending in -report.pdf, got %q", got.DownloadURL)
	}
	if !strings.HasSuffix(got.DownloadURL, "/"+got.File) {
		t.Errorf("Expected URL ending in stored name %q, got %q", got.File, got.DownloadURL)
	}

	// exactly one row and one file
	if len(env.conventions.Conventions) != 1 {
		t.Errorf("Expected 1 row, got %d", len(env.conventions.Conventions))
	}
	if files := env.storedFiles(t); len(files) != 1 || files[0] != got.File {
		t.Errorf("Expected only %q on disk, got %v", got.File, files)
	}
}

func TestCreateConvention_NameAlias(t *testing.T) {
	env := setupTestRouter(t)

	body, ct := multipartBody(t,
		[][2]string{{"name", "Acordo coletivo"}, {"year", "2023"}},
		filePart{"file", "acordo.pdf", pdfBytes})

	w := env.do(t, "POST", "/conventions", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	data := decode(t, w)["data"].(map[string]interface{})
	if data["title"] != "Acordo coletivo" {
		t.Errorf("Expected title from name field, got %v", data["title"])
	}
}

func TestCreate_MissingFields(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		fields     [][2]string
		file       filePart
		wantFields []string
	}{
		{
			name:       "convention without title",
			target:     "/conventions",
			fields:     [][2]string{{"year", "2024"}},
			file:       filePart{"file", "report.pdf", pdfBytes},
			wantFields: []string{"title"},
		},
		{
			name:       "convention with blank year",
			target:     "/conventions",
			fields:     [][2]string{{"title", "Q3 Report"}, {"year", "   "}},
			file:       filePart{"file", "report.pdf", pdfBytes},
			wantFields: []string{"year"},
		},
		{
			name:       "news without author",
			target:     "/news",
			fields:     [][2]string{{"title", "Assembleia"}, {"description", "Pauta"}},
			file:       filePart{"image", "capa.jpg", []byte("jpeg")},
			wantFields: []string{"author"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t)

			body, ct := multipartBody(t, tt.fields, tt.file)
			w := env.do(t, "POST", tt.target, body, ct)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", w.Code)
			}
			response := decode(t, w)
			if response["message"] != "Missing required fields" {
				t.Errorf("Unexpected message %v", response["message"])
			}
			fields, _ := response["fields"].([]interface{})
			if len(fields) != len(tt.wantFields) || fields[0] != tt.wantFields[0] {
				t.Errorf("Expected fields %v, got %v", tt.wantFields, fields)
			}

			// no side effects
			if files := env.storedFiles(t); len(files) != 0 {
				t.Errorf("Expected no files, got %v", files)
			}
			if len(env.news.News)+len(env.conventions.Conventions) != 0 {
				t.Error("Expected no rows")
			}
		})
	}
}

func TestCreate_MissingFile(t *testing.T) {
	tests := []struct {
		target  string
		fields  [][2]string
		message string
	}{
		{"/conventions", [][2]string{{"title", "Q3 Report"}, {"year", "2024"}}, "PDF file is required"},
		{"/news", [][2]string{{"title", "t"}, {"description", "d"}, {"author", "a"}}, "Image is required"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			env := setupTestRouter(t)

			body, ct := multipartBody(t, tt.fields)
			w := env.do(t, "POST", tt.target, body, ct)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", w.Code)
			}
			if msg := decode(t, w)["message"]; msg != tt.message {
				t.Errorf("Expected %q, got %v", tt.message, msg)
			}

			// no side effects
			if files := env.storedFiles(t); len(files) != 0 {
				t.Errorf("Expected no files, got %v", files)
			}
			if len(env.news.News)+len(env.conventions.Conventions) != 0 {
				t.Error("Expected no rows")
			}
		})
	}
}

func TestCreate_FieldsCheckedBeforeFile(t *testing.T) {
	env := setupTestRouter(t)

	body, ct := multipartBody(t, [][2]string{{"year", "2024"}})
	w := env.do(t, "POST", "/conventions", body, ct)

	if msg := decode(t, w)["message"]; msg != "Missing required fields" {
		t.Errorf("Expected field error first, got %v", msg)
	}
}

func TestCreate_KeepsFirstFilePart(t *testing.T) {
	env := setupTestRouter(t)

	body, ct := multipartBody(t,
		[][2]string{{"title", "Q3 Report"}, {"year", "2024"}},
		filePart{"file", "first.pdf", pdfBytes},
		filePart{"file", "second.pdf", []byte("ignored")})

	w := env.do(t, "POST", "/conventions", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}

	files := env.storedFiles(t)
	if len(files) != 1 || !strings.HasSuffix(files[0], "-first.pdf") {
		t.Errorf("Expected only first file stored, got %v", files)
	}
}

func TestCreate_TooLarge(t *testing.T) {
	env := setupTestRouterWith(t, 1024, nil)

	body, ct := multipartBody(t,
		[][2]string{{"title", "Q3 Report"}, {"year", "2024"}},
		filePart{"file", "report.pdf", pdfBytes})

	w := env.do(t, "POST", "/conventions", body, ct)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected status 413, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "File too large" {
		t.Errorf("Unexpected message %v", msg)
	}
	if files := env.storedFiles(t); len(files) != 0 {
		t.Errorf("Expected no files, got %v", files)
	}
}

func TestCreate_FileSizeBoundary(t *testing.T) {
	const limit = 4096

	tests := []struct {
		name string
		size int
		code int
	}{
		{"exactly the limit", limit, http.StatusCreated},
		{"one byte over", limit + 1, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouterWith(t, limit, nil)

			body, ct := multipartBody(t,
				[][2]string{{"title", "Assembleia"}, {"description", strings.Repeat("d", 1024)}, {"author", "Diretoria"}},
				filePart{"image", "capa.jpg", bytes.Repeat([]byte("x"), tt.size)})

			w := env.do(t, "POST", "/news", body, ct)
			if w.Code != tt.code {
				t.Fatalf("Expected status %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}

			wantFiles := 0
			if tt.code == http.StatusCreated {
				wantFiles = 1
			}
			if files := env.storedFiles(t); len(files) != wantFiles {
				t.Errorf("Expected %d stored files, got %v", wantFiles, files)
			}
			if len(env.news.News) != wantFiles {
				t.Errorf("Expected %d rows, got %d", wantFiles, len(env.news.News))
			}
		})
	}
}

func TestCreate_FieldTooLarge(t *testing.T) {
	env := setupTestRouter(t)

	body, ct := multipartBody(t,
		[][2]string{{"title", "Assembleia"}, {"description", strings.Repeat("d", 64*1024+1)}, {"author", "Diretoria"}},
		filePart{"image", "capa.jpg", []byte("jpeg")})

	w := env.do(t, "POST", "/news", body, ct)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected status 413, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "Field too large" {
		t.Errorf("Unexpected message %v", msg)
	}
	if files := env.storedFiles(t); len(files) != 0 {
		t.Errorf("Expected no files, got %v", files)
	}
	if len(env.news.News) != 0 {
		t.Error("Expected no rows")
	}

	// a field of exactly the limit is stored whole
	body, ct = multipartBody(t,
		[][2]string{{"title", "Assembleia"}, {"description", strings.Repeat("d", 64*1024)}, {"author", "Diretoria"}},
		filePart{"image", "capa.jpg", []byte("jpeg")})
	w = env.do(t, "POST", "/news", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	for _, n := range env.news.News {
		if len(n.Description) != 64*1024 {
			t.Errorf("Expected untruncated description, got %d bytes", len(n.Description))
		}
	}
}

func TestCreate_NotMultipart(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "POST", "/news", bytes.NewBufferString(`{"title":"x"}`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "Invalid multipart request" {
		t.Errorf("Unexpected message %v", msg)
	}
}

func TestCreate_InsertFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.news.InsertError = errors.New("relation \"news\" does not exist")

	body, ct := multipartBody(t,
		[][2]string{{"title", "t"}, {"description", "d"}, {"author", "a"}},
		filePart{"image", "capa.jpg", []byte("jpeg")})

	w := env.do(t, "POST", "/news", body, ct)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}

	response := decode(t, w)
	if response["message"] != "An error occurred while processing the request." {
		t.Errorf("Unexpected message %v", response["message"])
	}
	if !strings.Contains(response["error"].(string), "does not exist") {
		t.Errorf("Expected underlying error text, got %v", response["error"])
	}
}

func TestListNews(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "GET", "/news", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if all, ok := decode(t, w)["allNews"].([]interface{}); !ok || len(all) != 0 {
		t.Errorf("Expected empty allNews array, got %s", w.Body.String())
	}

	first := env.createNews(t, "Primeira")
	second := env.createNews(t, "Segunda")

	w = env.do(t, "GET", "/news", nil, "")
	var response struct {
		AllNews []models.News `json:"allNews"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)

	// every record exactly once, newest first, URL ending in the stored name
	if len(response.AllNews) != 2 {
		t.Fatalf("Expected 2 news, got %d", len(response.AllNews))
	}
	if response.AllNews[0].ID != second.ID || response.AllNews[1].ID != first.ID {
		t.Error("Expected newest first")
	}
	for _, n := range response.AllNews {
		if n.ImageURL != baseURL+"/images/"+n.Image {
			t.Errorf("Unexpected image URL %q", n.ImageURL)
		}
	}
}

func TestGetNews(t *testing.T) {
	env := setupTestRouter(t)
	created := env.createNews(t, "Assembleia")

	w := env.do(t, "GET", "/news/"+created.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	news := decode(t, w)["news"].(map[string]interface{})
	if news["id"] != created.ID || news["title"] != "Assembleia" {
		t.Errorf("Unexpected news %v", news)
	}

	w = env.do(t, "GET", "/news/7f1c2e1a-9a6b-4d8e-8f3a-2b5c6d7e8f90", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	w = env.do(t, "GET", "/news/not-a-uuid", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestStaticImage(t *testing.T) {
	env := setupTestRouter(t)
	created := env.createNews(t, "Assembleia")

	w := env.do(t, "GET", "/images/"+created.Image, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "\xff\xd8\xff\xe0jpeg" {
		t.Error("Static route returned different bytes")
	}
}

func TestStaticImage_ConventionsNotServed(t *testing.T) {
	env := setupTestRouter(t)
	created := env.createConvention(t, "Acordo", "2024", "acordo.pdf")

	for _, path := range []string{
		"/images/" + created.File,
		"/images/../conventions/" + created.File,
		"/images/%2E%2E/conventions/" + created.File,
	} {
		w := env.do(t, "GET", path, nil, "")
		if w.Code == http.StatusOK {
			t.Errorf("%s: convention document reachable through the image mount", path)
		}
	}

	w := env.do(t, "GET", "/conventions/download/"+created.File, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected download 200, got %d", w.Code)
	}
	if _, err := os.Stat(filepath.Join(env.layout.Convention.Root(), created.File)); err != nil {
		t.Errorf("Expected file under the conventions directory: %v", err)
	}
}

func TestDownloadConvention(t *testing.T) {
	env := setupTestRouter(t)
	created := env.createConvention(t, "Acordo", "2024", "acordo 2024 (final).pdf")

	w := env.do(t, "GET", "/conventions/download/"+strings.ReplaceAll(created.File, " ", "%20"), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	headers := map[string]string{
		"Content-Type":        "application/pdf",
		"Content-Disposition": `attachment; filename="acordo 2024 (final).pdf"`,
		"Content-Length":      "2048",
		"Cache-Control":       "no-cache",
	}
	for name, want := range headers {
		if got := w.Header().Get(name); got != want {
			t.Errorf("%s: expected %q, got %q", name, want, got)
		}
	}

	info, err := os.Stat(filepath.Join(env.layout.Convention.Root(), created.File))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if got, want := w.Header().Get("Last-Modified"), info.ModTime().UTC().Format(http.TimeFormat); got != want {
		t.Errorf("Last-Modified: expected %q, got %q", want, got)
	}
	if !bytes.Equal(w.Body.Bytes(), pdfBytes) {
		t.Error("Downloaded bytes differ from upload")
	}
}

func TestDownloadConvention_NotFound(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		path string
		code int
	}{
		{"/conventions/download/1700000000000-missing.pdf", http.StatusNotFound},
		{"/conventions/download/..%2F..%2Fetc%2Fpasswd", http.StatusNotFound},
		{"/conventions/download/%2A%3F", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.do(t, "GET", tt.path, nil, "")
			if w.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, w.Code)
			}
		})
	}
}

func TestDelete_NeverCreated(t *testing.T) {
	env := setupTestRouter(t)
	env.createConvention(t, "Acordo", "2024", "acordo.pdf")

	for _, target := range []string{"/news/", "/conventions/"} {
		w := env.do(t, "DELETE", target+"7f1c2e1a-9a6b-4d8e-8f3a-2b5c6d7e8f90", nil, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected status 404, got %d", target, w.Code)
		}
	}

	// store unchanged
	if len(env.conventions.Conventions) != 1 || len(env.storedFiles(t)) != 1 {
		t.Error("Expected store to be unchanged")
	}
}

func TestDelete_InvalidID(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "DELETE", "/conventions/12345", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "Invalid id" {
		t.Errorf("Unexpected message %v", msg)
	}
}

func TestDeleteConvention_Twice(t *testing.T) {
	env := setupTestRouter(t)
	created := env.createConvention(t, "Acordo", "2024", "acordo.pdf")

	// row gone, listing excludes it, download 404
	w := env.do(t, "DELETE", "/conventions/"+created.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "Convention deleted successfully" {
		t.Errorf("Unexpected message %v", msg)
	}

	w = env.do(t, "GET", "/conventions", nil, "")
	if strings.Contains(w.Body.String(), created.ID) {
		t.Error("Deleted convention still listed")
	}

	w = env.do(t, "GET", "/conventions/download/"+created.File, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected download 404, got %d", w.Code)
	}

	// second delete is 404
	w = env.do(t, "DELETE", "/conventions/"+created.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected second delete 404, got %d", w.Code)
	}
}

func TestDeleteNews_Twice(t *testing.T) {
	env := setupTestRouter(t)
	created := env.createNews(t, "Assembleia")

	w := env.do(t, "DELETE", "/news/"+created.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = env.do(t, "GET", "/images/"+created.Image, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected static 404, got %d", w.Code)
	}

	w = env.do(t, "GET", "/news/"+created.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected fetch 404, got %d", w.Code)
	}

	w = env.do(t, "DELETE", "/news/"+created.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected second delete 404, got %d", w.Code)
	}
}

func TestDelete_FileAlreadyGone(t *testing.T) {
	env := setupTestRouter(t)
	created := env.createNews(t, "Assembleia")

	if err := os.Remove(filepath.Join(env.layout.News.Root(), created.Image)); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	w := env.do(t, "DELETE", "/news/"+created.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(env.news.News) != 0 {
		t.Error("Expected row to be deleted")
	}
}

func TestDelete_PersistenceFailure(t *testing.T) {
	env := setupTestRouter(t)
	created := env.createConvention(t, "Acordo", "2024", "acordo.pdf")
	env.conventions.DeleteError = errors.New("db down")

	w := env.do(t, "DELETE", "/conventions/"+created.ID, nil, "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, "OPTIONS", "/news", nil, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
		t.Error("Expected DELETE in allowed methods")
	}
}
