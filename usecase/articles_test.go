package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"main/model"
	"main/repository"
)

// fakeArticlesRepo stores articles in memory, cloning on the way in and out
// so the service cannot accidentally share state with "persisted" records.
type fakeArticlesRepo struct {
	articles map[string]*model.Article
	saves    int
}

func newFakeArticlesRepo() *fakeArticlesRepo {
	return &fakeArticlesRepo{articles: make(map[string]*model.Article)}
}

func cloneArticle(a *model.Article) *model.Article {
	c := *a
	c.Files = append([]model.ArticleFile(nil), a.Files...)
	c.Tags = append([]string(nil), a.Tags...)
	c.Amendments = append([]model.Amendment(nil), a.Amendments...)
	c.NewFiles = nil
	return &c
}

func (r *fakeArticlesRepo) FetchAll(ctx context.Context) ([]*model.Article, error) {
	out := make([]*model.Article, 0, len(r.articles))
	for _, a := range r.articles {
		out = append(out, cloneArticle(a))
	}
	return out, nil
}

func (r *fakeArticlesRepo) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	a, ok := r.articles[id]
	if !ok {
		return nil, repository.ErrArticleNotFound
	}
	return cloneArticle(a), nil
}

func (r *fakeArticlesRepo) SaveArticle(ctx context.Context, a *model.Article) error {
	r.saves++
	r.articles[a.ID] = cloneArticle(a)
	return nil
}

func (r *fakeArticlesRepo) DeleteArticle(ctx context.Context, id string) error {
	if _, ok := r.articles[id]; !ok {
		return repository.ErrArticleNotFound
	}
	delete(r.articles, id)
	return nil
}

type fakeBlobStore struct {
	uploads map[string][]byte
	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{uploads: make(map[string][]byte)}
}

func (b *fakeBlobStore) Upload(path string, data []byte) error {
	b.uploads[path] = data
	return nil
}

func (b *fakeBlobStore) Delete(path string) error {
	b.deleted = append(b.deleted, path)
	delete(b.uploads, path)
	return nil
}

func (b *fakeBlobStore) DownloadURL(articleID, fileName string) string {
	return fmt.Sprintf("http://test/api/files/%s/%s", articleID, fileName)
}

func newTestService() (*ArticlesService, *fakeArticlesRepo, *fakeBlobStore) {
	repo := newFakeArticlesRepo()
	blobs := newFakeBlobStore()
	return &ArticlesService{Repo: repo, Blobs: blobs}, repo, blobs
}

var testEditor = Editor{UserID: "u-1", Email: "editor@example.com"}

func validDraft() *model.Article {
	return &model.Article{
		Title:    "Referral process",
		Content:  "<p>Steps for referrals</p>",
		Category: "DBS",
		Tags:     []string{"Urgent", "urgent", " Process "},
	}
}

func TestCreateArticleValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Article)
	}{
		{"blank title", func(a *model.Article) { a.Title = "   " }},
		{"blank content", func(a *model.Article) { a.Content = " " }},
		{"missing category", func(a *model.Article) { a.Category = "" }},
		{"unknown category", func(a *model.Article) { a.Category = "Gossip" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			draft := validDraft()
			tt.mutate(draft)

			err := svc.CreateArticle(context.Background(), draft, testEditor)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if repo.saves != 0 {
				t.Errorf("invalid article must not be persisted, got %d saves", repo.saves)
			}
		})
	}
}

func TestCreateArticleRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	draft := validDraft()
	if err := svc.CreateArticle(ctx, draft, testEditor); err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}
	if draft.ID == "" {
		t.Fatal("create must allocate an id")
	}

	stored, err := svc.GetArticle(ctx, draft.ID)
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}

	if stored.Title != "Referral process" || stored.Category != "DBS" {
		t.Errorf("stored article = %q/%q", stored.Title, stored.Category)
	}
	wantTags := []string{"urgent", "process"}
	if len(stored.Tags) != len(wantTags) {
		t.Fatalf("tags = %v, want %v", stored.Tags, wantTags)
	}
	for i, tag := range wantTags {
		if stored.Tags[i] != tag {
			t.Errorf("tags[%d] = %q, want %q", i, stored.Tags[i], tag)
		}
	}
	if stored.CreatedBy != testEditor.Email {
		t.Errorf("createdBy = %q, want %q", stored.CreatedBy, testEditor.Email)
	}
	if len(stored.Amendments) != 1 {
		t.Fatalf("amendments = %d, want 1", len(stored.Amendments))
	}
	if stored.Amendments[0].UserEmail != testEditor.Email {
		t.Errorf("amendment email = %q", stored.Amendments[0].UserEmail)
	}
}

func TestCreateArticleProcessesFiles(t *testing.T) {
	svc, _, blobs := newTestService()
	ctx := context.Background()

	draft := validDraft()
	draft.NewFiles = []model.UploadedFile{
		{Name: "minutes.txt", Data: []byte("not extractable")},
	}

	if err := svc.CreateArticle(ctx, draft, testEditor); err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}

	if len(draft.Files) != 1 {
		t.Fatalf("files = %d, want 1", len(draft.Files))
	}
	file := draft.Files[0]
	if file.Name != "minutes.txt" {
		t.Errorf("file name = %q", file.Name)
	}
	if !strings.HasPrefix(file.URL, "http://test/api/files/") {
		t.Errorf("file url = %q", file.URL)
	}
	if file.ExtractedText != "" {
		t.Errorf("unsupported file should extract to empty text, got %q", file.ExtractedText)
	}
	if file.ThumbnailURL == "" {
		t.Error("thumbnail must always be set")
	}
	if draft.NewFiles != nil {
		t.Error("staged files must be cleared after save")
	}

	path := fmt.Sprintf("articles/%s/minutes.txt", draft.ID)
	if _, ok := blobs.uploads[path]; !ok {
		t.Errorf("blob not uploaded at %q; uploads: %v", path, blobs.uploads)
	}
}

func TestUpdateArticleAppendsAmendments(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	draft := validDraft()
	if err := svc.CreateArticle(ctx, draft, testEditor); err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}
	createdAt := draft.CreatedAt

	second := Editor{UserID: "u-2", Email: "second@example.com"}
	for i := 0; i < 2; i++ {
		update := cloneArticle(draft)
		update.Content = fmt.Sprintf("<p>revision %d</p>", i+1)
		// A stale client may send garbage creation facts; they must not stick
		update.CreatedBy = "imposter@example.com"
		update.CreatedAt = time.Unix(0, 0)
		// Nor can it truncate the amendment log
		update.Amendments = nil

		if err := svc.UpdateArticle(ctx, update, second); err != nil {
			t.Fatalf("UpdateArticle %d failed: %v", i+1, err)
		}
	}

	stored, err := svc.GetArticle(ctx, draft.ID)
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}

	if len(stored.Amendments) != 3 {
		t.Fatalf("amendments = %d, want 3 (one per save)", len(stored.Amendments))
	}
	for i := 1; i < len(stored.Amendments); i++ {
		if stored.Amendments[i].Timestamp.Before(stored.Amendments[i-1].Timestamp) {
			t.Error("amendment timestamps must be monotonic")
		}
	}
	if stored.CreatedBy != testEditor.Email || !stored.CreatedAt.Equal(createdAt) {
		t.Errorf("creation facts changed: %q %v", stored.CreatedBy, stored.CreatedAt)
	}
	if stored.LastModifiedBy != second.Email {
		t.Errorf("lastModifiedBy = %q, want %q", stored.LastModifiedBy, second.Email)
	}
}

func TestUpdateArticleRemovesDroppedBlobs(t *testing.T) {
	svc, _, blobs := newTestService()
	ctx := context.Background()

	draft := validDraft()
	draft.NewFiles = []model.UploadedFile{
		{Name: "keep.txt", Data: []byte("a")},
		{Name: "drop.txt", Data: []byte("b")},
	}
	if err := svc.CreateArticle(ctx, draft, testEditor); err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}

	update := cloneArticle(draft)
	update.Files = update.Files[:1] // keep.txt only
	if err := svc.UpdateArticle(ctx, update, testEditor); err != nil {
		t.Fatalf("UpdateArticle failed: %v", err)
	}

	droppedPath := fmt.Sprintf("articles/%s/drop.txt", draft.ID)
	found := false
	for _, p := range blobs.deleted {
		if p == droppedPath {
			found = true
		}
	}
	if !found {
		t.Errorf("expected blob delete for %q, deleted: %v", droppedPath, blobs.deleted)
	}

	keptPath := fmt.Sprintf("articles/%s/keep.txt", draft.ID)
	if _, ok := blobs.uploads[keptPath]; !ok {
		t.Error("retained file's blob must survive the update")
	}
}

func TestDeleteArticle(t *testing.T) {
	svc, _, blobs := newTestService()
	ctx := context.Background()

	draft := validDraft()
	draft.NewFiles = []model.UploadedFile{{Name: "doc.txt", Data: []byte("x")}}
	if err := svc.CreateArticle(ctx, draft, testEditor); err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}

	if err := svc.DeleteArticle(ctx, draft.ID); err != nil {
		t.Fatalf("DeleteArticle failed: %v", err)
	}

	all, err := svc.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("deleted article still listed: %d remain", len(all))
	}

	// Plain delete does not cascade to blob storage
	if len(blobs.deleted) != 0 {
		t.Errorf("delete must not remove blobs, deleted: %v", blobs.deleted)
	}

	if err := svc.DeleteArticle(ctx, draft.ID); !errors.Is(err, repository.ErrArticleNotFound) {
		t.Errorf("second delete should report not found, got %v", err)
	}
}

func filterFixture() []*model.Article {
	return []*model.Article{
		{ID: "a", Title: "DBS renewal", Content: "renewal steps", Category: "DBS", Tags: []string{"urgent"}},
		{ID: "b", Title: "DBS overview", Content: "background", Category: "DBS", Tags: []string{}},
		{ID: "c", Title: "Other things", Content: "misc", Category: "Other", Tags: []string{"urgent"}},
	}
}

func idsOf(articles []*model.Article) []string {
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	return ids
}

func TestFilterArticles(t *testing.T) {
	articles := filterFixture()

	t.Run("empty filter returns everything", func(t *testing.T) {
		got := FilterArticles(articles, "", nil, nil)
		if len(got) != len(articles) {
			t.Errorf("got %v, want all three", idsOf(got))
		}
	})

	t.Run("category and tag are conjunctive", func(t *testing.T) {
		got := FilterArticles(articles, "", []string{"DBS"}, []string{"urgent"})
		if len(got) != 1 || got[0].ID != "a" {
			t.Errorf("got %v, want exactly [a]", idsOf(got))
		}
	})

	t.Run("search is case-insensitive over title and content", func(t *testing.T) {
		got := FilterArticles(articles, "RENEWAL", nil, nil)
		if len(got) != 1 || got[0].ID != "a" {
			t.Errorf("got %v, want [a]", idsOf(got))
		}

		got = FilterArticles(articles, "background", nil, nil)
		if len(got) != 1 || got[0].ID != "b" {
			t.Errorf("got %v, want [b]", idsOf(got))
		}
	})

	t.Run("selections are disjunctive within themselves", func(t *testing.T) {
		got := FilterArticles(articles, "", []string{"DBS", "Other"}, nil)
		if len(got) != 3 {
			t.Errorf("got %v, want all three", idsOf(got))
		}
	})

	t.Run("no match", func(t *testing.T) {
		got := FilterArticles(articles, "nonexistent", nil, nil)
		if len(got) != 0 {
			t.Errorf("got %v, want none", idsOf(got))
		}
	})
}

func TestAllTags(t *testing.T) {
	articles := []*model.Article{
		{Tags: []string{"zeta", "alpha"}},
		{Tags: []string{"alpha", "mid"}},
	}

	tags := AllTags(articles)
	want := []string{"alpha", "mid", "zeta"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i, w := range want {
		if tags[i].Text != w || tags[i].ID != w {
			t.Errorf("tags[%d] = %+v, want %q", i, tags[i], w)
		}
	}
}
