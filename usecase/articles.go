package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"main/model"
	"main/repository"
	"main/services"
	"main/utils"
)

// ErrValidation marks rejections a caller should surface as a bad request.
var ErrValidation = errors.New("validation failed")

// ArticlesRepository is the persistence surface the service needs.
type ArticlesRepository interface {
	FetchAll(ctx context.Context) ([]*model.Article, error)
	GetArticle(ctx context.Context, articleID string) (*model.Article, error)
	SaveArticle(ctx context.Context, article *model.Article) error
	DeleteArticle(ctx context.Context, articleID string) error
}

// AttachmentStore is the blob surface the service needs.
type AttachmentStore interface {
	Upload(path string, data []byte) error
	Delete(path string) error
	DownloadURL(articleID, fileName string) string
}

type ArticlesService struct {
	Repo  ArticlesRepository
	Blobs AttachmentStore
}

// Editor identifies who is performing a save, for the amendment log.
type Editor struct {
	UserID string
	Email  string
}

func (svc *ArticlesService) validateArticle(article *model.Article) error {
	article.Title = strings.TrimSpace(article.Title)
	if article.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(article.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if article.Category == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if !model.ValidCategory(article.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, article.Category)
	}
	article.Tags = model.NormalizeTags(article.Tags)
	return nil
}

// processNewFiles uploads each staged file and builds its stored reference.
// Files are handled strictly one at a time so a failed upload leaves every
// earlier file already persisted.
func (svc *ArticlesService) processNewFiles(article *model.Article) error {
	for _, staged := range article.NewFiles {
		path := services.AttachmentPath(article.ID, staged.Name)
		if err := svc.Blobs.Upload(path, staged.Data); err != nil {
			return fmt.Errorf("failed to upload %s: %w", staged.Name, err)
		}

		kind := services.DetectKind(staged.Name, "")

		// Extraction failures degrade to an empty text, never block the save.
		text, err := services.ExtractText(kind, staged.Data)
		if err != nil && !errors.Is(err, services.ErrUnsupportedFileType) {
			log.Printf("Text extraction failed for %s: %v", staged.Name, err)
		}

		article.Files = append(article.Files, model.ArticleFile{
			Name:          staged.Name,
			URL:           svc.Blobs.DownloadURL(article.ID, staged.Name),
			ExtractedText: text,
			ThumbnailURL:  services.GenerateThumbnail(staged.Name, staged.Data, kind),
		})
	}
	article.NewFiles = nil
	return nil
}

// CreateArticle persists a new article along with its staged attachments and
// opens its amendment log with a single entry for the creator.
func (svc *ArticlesService) CreateArticle(ctx context.Context, article *model.Article, editor Editor) error {
	if err := svc.validateArticle(article); err != nil {
		return err
	}

	if article.ID == "" {
		article.ID = repository.NewArticleID()
	}

	// Creation facts default to this editor but stand when preset, so
	// imported records keep their original provenance.
	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	if article.CreatedBy == "" {
		article.CreatedBy = editor.Email
	}
	if article.OwnerID == "" {
		article.OwnerID = "anonymous"
	}
	if article.Files == nil {
		article.Files = []model.ArticleFile{}
	}

	if err := svc.processNewFiles(article); err != nil {
		return err
	}

	article.LastModified = now
	article.LastModifiedBy = editor.Email
	article.Amendments = []model.Amendment{{
		Timestamp: now,
		UserID:    editor.UserID,
		UserEmail: editor.Email,
	}}

	if err := svc.Repo.SaveArticle(ctx, article); err != nil {
		return err
	}
	utils.TrackArticleOperation("create")
	return nil
}

// UpdateArticle overwrites a stored article. Attachments absent from the
// incoming file list are removed from blob storage; staged files are uploaded;
// exactly one amendment is appended to the freshly read log.
func (svc *ArticlesService) UpdateArticle(ctx context.Context, article *model.Article, editor Editor) error {
	if err := svc.validateArticle(article); err != nil {
		return err
	}

	stored, err := svc.Repo.GetArticle(ctx, article.ID)
	if err != nil {
		return err
	}

	retained := make(map[string]bool, len(article.Files))
	for _, f := range article.Files {
		retained[f.Name] = true
	}
	for _, f := range stored.Files {
		if retained[f.Name] {
			continue
		}
		// A failed blob delete orphans the attachment but never blocks the
		// update.
		if err := svc.Blobs.Delete(services.AttachmentPath(article.ID, f.Name)); err != nil {
			log.Printf("Failed to delete attachment %s from article %s: %v", f.Name, article.ID, err)
			utils.TrackError("storage", "attachment_delete_failed")
		}
	}

	if err := svc.processNewFiles(article); err != nil {
		return err
	}

	// Creation facts and the amendment log come from the stored record so a
	// stale client cannot rewrite history.
	article.CreatedAt = stored.CreatedAt
	article.CreatedBy = stored.CreatedBy
	article.OwnerID = stored.OwnerID

	now := time.Now()
	article.LastModified = now
	article.LastModifiedBy = editor.Email
	article.Amendments = append(stored.Amendments, model.Amendment{
		Timestamp: now,
		UserID:    editor.UserID,
		UserEmail: editor.Email,
	})

	if err := svc.Repo.SaveArticle(ctx, article); err != nil {
		return err
	}
	utils.TrackArticleOperation("update")
	return nil
}

// DeleteArticle removes the record only. Attachment blobs stay behind;
// reclaiming them is a storage maintenance concern.
func (svc *ArticlesService) DeleteArticle(ctx context.Context, articleID string) error {
	if err := svc.Repo.DeleteArticle(ctx, articleID); err != nil {
		return err
	}
	utils.TrackArticleOperation("delete")
	return nil
}

func (svc *ArticlesService) GetArticle(ctx context.Context, articleID string) (*model.Article, error) {
	return svc.Repo.GetArticle(ctx, articleID)
}

func (svc *ArticlesService) FetchAll(ctx context.Context) ([]*model.Article, error) {
	return svc.Repo.FetchAll(ctx)
}

// FilterArticles narrows a list by a free-text query, a category set, and a
// tag set. Clauses combine conjunctively; within a clause any value matches.
// Empty clauses are skipped entirely, so no filters returns the full list.
func FilterArticles(articles []*model.Article, query string, categories []string, tags []string) []*model.Article {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]*model.Article, 0, len(articles))
	for _, article := range articles {
		if query != "" && !matchesQuery(article, query) {
			continue
		}
		if len(categories) > 0 && !containsString(categories, article.Category) {
			continue
		}
		if len(tags) > 0 && !matchesAnyTag(article.Tags, tags) {
			continue
		}
		filtered = append(filtered, article)
	}
	return filtered
}

func matchesQuery(article *model.Article, query string) bool {
	return strings.Contains(strings.ToLower(article.Title), query) ||
		strings.Contains(strings.ToLower(article.Content), query)
}

func matchesAnyTag(articleTags []string, wanted []string) bool {
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		for _, t := range articleTags {
			if strings.ToLower(t) == w {
				return true
			}
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

// AllTags collects every distinct tag across the given articles, sorted.
func AllTags(articles []*model.Article) []model.Tag {
	seen := make(map[string]bool)
	for _, article := range articles {
		for _, tag := range article.Tags {
			seen[tag] = true
		}
	}

	names := make([]string, 0, len(seen))
	for tag := range seen {
		names = append(names, tag)
	}
	sort.Strings(names)

	tags := make([]model.Tag, len(names))
	for i, name := range names {
		tags[i] = model.Tag{ID: name, Text: name}
	}
	return tags
}
