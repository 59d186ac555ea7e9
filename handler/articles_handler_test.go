package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"main/model"
	"main/repository"
	"main/usecase"

	"github.com/gin-gonic/gin"
)

type memArticlesRepo struct {
	articles map[string]*model.Article
}

func (r *memArticlesRepo) FetchAll(ctx context.Context) ([]*model.Article, error) {
	out := make([]*model.Article, 0, len(r.articles))
	for _, a := range r.articles {
		out = append(out, a)
	}
	return out, nil
}

func (r *memArticlesRepo) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	a, ok := r.articles[id]
	if !ok {
		return nil, repository.ErrArticleNotFound
	}
	return a, nil
}

func (r *memArticlesRepo) SaveArticle(ctx context.Context, a *model.Article) error {
	r.articles[a.ID] = a
	return nil
}

func (r *memArticlesRepo) DeleteArticle(ctx context.Context, id string) error {
	if _, ok := r.articles[id]; !ok {
		return repository.ErrArticleNotFound
	}
	delete(r.articles, id)
	return nil
}

type memBlobStore struct{}

func (memBlobStore) Upload(path string, data []byte) error { return nil }
func (memBlobStore) Delete(path string) error              { return nil }
func (memBlobStore) DownloadURL(articleID, fileName string) string {
	return fmt.Sprintf("http://test/api/files/%s/%s", articleID, fileName)
}

func newTestRouter(svc *usecase.ArticlesService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", "u-1")
		c.Set("email", "tester@example.com")
	})
	router.GET("/api/articles", func(c *gin.Context) { ListArticlesHandler(c, svc) })
	router.POST("/api/articles", func(c *gin.Context) { CreateArticleHandler(c, svc) })
	router.DELETE("/api/articles/:id", func(c *gin.Context) { DeleteArticleHandler(c, svc) })
	return router
}

func seededService(t *testing.T) (*usecase.ArticlesService, *memArticlesRepo) {
	t.Helper()
	repo := &memArticlesRepo{articles: make(map[string]*model.Article)}
	svc := &usecase.ArticlesService{Repo: repo, Blobs: memBlobStore{}}

	seeds := []*model.Article{
		{Title: "DBS renewal", Content: "steps", Category: "DBS", Tags: []string{"urgent"}},
		{Title: "Portal guide", Content: "login help", Category: "Portal"},
	}
	for _, a := range seeds {
		if err := svc.CreateArticle(context.Background(), a, usecase.Editor{UserID: "seed", Email: "seed@example.com"}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	return svc, repo
}

func TestListArticlesHandlerFilters(t *testing.T) {
	svc, _ := seededService(t)
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/articles?categories=DBS&tags=urgent", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Articles   []map[string]any `json:"articles"`
			TotalCount int              `json:"total_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Data.TotalCount != 1 || len(resp.Data.Articles) != 1 {
		t.Fatalf("expected exactly one match, got %+v", resp.Data)
	}
	if resp.Data.Articles[0]["title"] != "DBS renewal" {
		t.Errorf("matched article = %v", resp.Data.Articles[0]["title"])
	}
}

func articleForm(t *testing.T, payload string, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("article", payload); err != nil {
		t.Fatalf("failed to write article field: %v", err)
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("files", fileName)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		fw.Write([]byte("file contents"))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestCreateArticleHandler(t *testing.T) {
	svc, repo := seededService(t)
	router := newTestRouter(svc)

	body, contentType := articleForm(t, `{"title":"New entry","content":"body","category":"Training","tags":["One"]}`, "attachment.txt")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/articles", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(repo.articles) != 3 {
		t.Errorf("repo holds %d articles, want 3", len(repo.articles))
	}

	var resp struct {
		Data struct {
			ID    string           `json:"id"`
			Files []map[string]any `json:"files"`
			Tags  []string         `json:"tags"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Data.ID == "" {
		t.Error("response must carry the allocated id")
	}
	if len(resp.Data.Files) != 1 {
		t.Errorf("files = %v", resp.Data.Files)
	}
	if len(resp.Data.Tags) != 1 || resp.Data.Tags[0] != "one" {
		t.Errorf("tags = %v, want [one]", resp.Data.Tags)
	}
}

func TestCreateArticleHandlerValidation(t *testing.T) {
	svc, repo := seededService(t)
	router := newTestRouter(svc)
	before := len(repo.articles)

	body, contentType := articleForm(t, `{"title":"","content":"body","category":"Training"}`, "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/articles", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(repo.articles) != before {
		t.Error("invalid article must not be persisted")
	}
}

func TestDeleteArticleHandlerNotFound(t *testing.T) {
	svc, _ := seededService(t)
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/articles/ffffffffffffffffffffffff", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
