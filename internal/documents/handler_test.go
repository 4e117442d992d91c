package documents

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/shared/auth"
	"docchat-backend/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.Configure("docs-test-secret", 0)
	r := gin.New()
	NewHandler(NewService(NewMemoryRepo())).RegisterRoutes(r.Group("/api/docs", middleware.Auth(nil)))
	return r
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.SignJWT(userID, userID+"@example.com", userID)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	return token
}

func call(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestDocumentsCRUD(t *testing.T) {
	r := newTestRouter(t)
	alice := tokenFor(t, "alice")
	bob := tokenFor(t, "bob")

	resp := call(r, http.MethodPost, "/api/docs", alice, gin.H{"title": "  Plan  "})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created Document
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Title != "Plan" || created.OwnerID != "alice" {
		t.Fatalf("unexpected doc: %+v", created)
	}

	resp = call(r, http.MethodGet, "/api/docs", bob, nil)
	if resp.Code != http.StatusOK || resp.Body.String() != "[]" {
		t.Fatalf("expected empty list for bob, got %d %s", resp.Code, resp.Body.String())
	}

	resp = call(r, http.MethodPut, "/api/docs/"+created.ID, bob, gin.H{"content": "hijack"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign update, got %d", resp.Code)
	}

	resp = call(r, http.MethodPut, "/api/docs/"+created.ID, alice, gin.H{"content": "draft"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = call(r, http.MethodGet, "/api/docs", alice, nil)
	var docs []Document
	if err := json.Unmarshal(resp.Body.Bytes(), &docs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(docs) != 1 || docs[0].Content != "draft" || docs[0].Title != "Plan" {
		t.Fatalf("unexpected list: %+v", docs)
	}

	resp = call(r, http.MethodDelete, "/api/docs/"+created.ID, alice, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("Document deleted successfully")) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}

	resp = call(r, http.MethodDelete, "/api/docs/"+created.ID, alice, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.Code)
	}
}

func TestDocumentsValidation(t *testing.T) {
	r := newTestRouter(t)
	alice := tokenFor(t, "alice")

	resp := call(r, http.MethodPost, "/api/docs", alice, gin.H{"title": "   "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("Document title is required")) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestDocumentsRequireToken(t *testing.T) {
	r := newTestRouter(t)

	resp := call(r, http.MethodGet, "/api/docs", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	resp = call(r, http.MethodGet, "/api/docs", "garbage", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
