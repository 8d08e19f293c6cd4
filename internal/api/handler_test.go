package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/api"
	"github.com/siamt-api/internal/config"
	"github.com/siamt-api/internal/mocks"
	"github.com/siamt-api/internal/models"
	"github.com/siamt-api/internal/service"
)

func setupMockRouter(t *testing.T) (*testEnv, *mocks.MockNewsService, *mocks.MockConventionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockNews := mocks.NewMockNewsService()
	mockConvention := mocks.NewMockConventionService()

	services := &service.Services{
		News:       mockNews,
		Convention: mockConvention,
		Sweeper:    mocks.NewMockSweepService(),
	}

	cfg := &config.Config{
		Storage: config.StorageConfig{StaticPrefix: "/images", MaxUploadSize: 1024 * 1024},
	}

	env := &testEnv{}
	env.router = api.NewRouter(services, cfg, t.TempDir(), nil, zerolog.Nop())
	return env, mockNews, mockConvention
}

func TestRecoveryMiddleware(t *testing.T) {
	env, mockNews, _ := setupMockRouter(t)
	mockNews.ListFunc = func(ctx context.Context) ([]*models.News, error) {
		panic("nil map write")
	}

	w := env.do(t, "GET", "/news", nil, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if msg := decode(t, w)["message"]; msg != "An error occurred while processing the request." {
		t.Errorf("Unexpected message %v", msg)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound, "News not found"},
		{"invalid id", service.ErrInvalidID, http.StatusBadRequest, "Invalid id"},
		{"storage failure", &service.StorageError{Op: "remove", Err: errors.New("read-only file system")}, http.StatusInternalServerError, "An error occurred while processing the request."},
		{"persistence failure", &service.PersistenceError{Op: "delete", Err: errors.New("timeout")}, http.StatusInternalServerError, "An error occurred while processing the request."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, mockNews, _ := setupMockRouter(t)
			mockNews.DeleteFunc = func(ctx context.Context, id string) error { return tt.err }

			w := env.do(t, "DELETE", "/news/some-id", nil, "")
			if w.Code != tt.code {
				t.Fatalf("Expected status %d, got %d", tt.code, w.Code)
			}
			if msg := decode(t, w)["message"]; msg != tt.message {
				t.Errorf("Expected %q, got %v", tt.message, msg)
			}
			if len(mockNews.DeletedIDs) != 1 || mockNews.DeletedIDs[0] != "some-id" {
				t.Errorf("Expected raw id passed through, got %v", mockNews.DeletedIDs)
			}
		})
	}
}

func TestCreateNews_FirstFieldValueWins(t *testing.T) {
	env, mockNews, _ := setupMockRouter(t)

	body, ct := multipartBody(t,
		[][2]string{{"title", "first"}, {"title", "second"}, {"description", "d"}, {"author", "a"}},
		filePart{"image", "capa.jpg", []byte("jpeg")})

	w := env.do(t, "POST", "/news", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	if len(mockNews.Forms) != 1 || mockNews.Forms[0].Title != "first" {
		t.Errorf("Expected first title value, got %+v", mockNews.Forms)
	}
}

func TestCreateConvention_TitleWinsOverName(t *testing.T) {
	env, _, mockConvention := setupMockRouter(t)

	body, ct := multipartBody(t,
		[][2]string{{"name", "alias"}, {"title", "Acordo"}, {"year", "2024"}},
		filePart{"file", "acordo.pdf", pdfBytes})

	w := env.do(t, "POST", "/conventions", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	if got := mockConvention.Forms[0].Title; got != "Acordo" {
		t.Errorf("Expected title field to win, got %q", got)
	}
}

func TestDownload_StorageFailure(t *testing.T) {
	env, _, mockConvention := setupMockRouter(t)
	mockConvention.DownloadFunc = func(ctx context.Context, fileName string) (*service.Download, error) {
		return nil, &service.StorageError{Op: "open", Err: errors.New("permission denied")}
	}

	w := env.do(t, "GET", "/conventions/download/1729540800000-acordo.pdf", nil, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if errText, _ := decode(t, w)["error"].(string); !strings.Contains(errText, "permission denied") {
		t.Errorf("Expected underlying error text, got %q", errText)
	}
	if mockConvention.Requested[0] != "1729540800000-acordo.pdf" {
		t.Errorf("Unexpected requested name %q", mockConvention.Requested[0])
	}
}
