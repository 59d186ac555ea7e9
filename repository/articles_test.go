package repository

import (
	"testing"
	"time"

	"main/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToRecordRejectsBadID(t *testing.T) {
	if _, err := toRecord(&model.Article{ID: "not-a-hex-objectid"}); err == nil {
		t.Fatal("expected error for malformed article id")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	modified := created.Add(2 * time.Hour)

	article := &model.Article{
		ID:       NewArticleID(),
		Title:    "Stage 1 checklist",
		Content:  "<p>items</p>",
		Category: "Stage 1",
		Files: []model.ArticleFile{
			{Name: "a.pdf", URL: "http://x/a.pdf", ExtractedText: "first part", ThumbnailURL: "data:..."},
			{Name: "b.docx", URL: "http://x/b.docx", ExtractedText: "second part"},
		},
		CreatedAt:      created,
		CreatedBy:      "author@example.com",
		Tags:           []string{"checklist"},
		IsPrivate:      true,
		OwnerID:        "u-9",
		Amendments:     []model.Amendment{{Timestamp: created, UserID: "u-9", UserEmail: "author@example.com"}},
		LastModified:   modified,
		LastModifiedBy: "author@example.com",
	}

	rec, err := toRecord(article)
	if err != nil {
		t.Fatalf("toRecord failed: %v", err)
	}

	back := fromRecord(rec)

	if back.ID != article.ID || back.Title != article.Title || back.Category != article.Category {
		t.Errorf("identity fields changed: %q %q %q", back.ID, back.Title, back.Category)
	}
	if !back.CreatedAt.Equal(created) || !back.LastModified.Equal(modified) {
		t.Errorf("timestamps drifted: %v %v", back.CreatedAt, back.LastModified)
	}
	if back.IsPrivate != true || back.OwnerID != "u-9" {
		t.Errorf("flags changed: %v %q", back.IsPrivate, back.OwnerID)
	}
	if len(back.Files) != 2 || back.Files[1].Name != "b.docx" {
		t.Errorf("files = %+v", back.Files)
	}
	if len(back.Amendments) != 1 || back.Amendments[0].UserEmail != "author@example.com" {
		t.Errorf("amendments = %+v", back.Amendments)
	}
}

func TestFromRecordDerivesExtractedText(t *testing.T) {
	rec := articleRecord{
		ID: primitive.NewObjectID(),
		Files: []fileRecord{
			{Name: "a", ExtractedText: "alpha"},
			{Name: "b", ExtractedText: "beta"},
		},
	}

	article := fromRecord(rec)
	if article.ExtractedText != "alpha beta" {
		t.Errorf("extractedText = %q, want %q", article.ExtractedText, "alpha beta")
	}
}

func TestFromRecordDefaults(t *testing.T) {
	// Records written by older clients may miss owner, tags, and amendments
	rec := articleRecord{ID: primitive.NewObjectID()}

	article := fromRecord(rec)

	if article.OwnerID != "anonymous" {
		t.Errorf("ownerID = %q, want anonymous", article.OwnerID)
	}
	if article.Tags == nil || len(article.Tags) != 0 {
		t.Errorf("tags = %#v, want empty non-nil slice", article.Tags)
	}
	if article.Amendments == nil || len(article.Amendments) != 0 {
		t.Errorf("amendments = %#v, want empty non-nil slice", article.Amendments)
	}
	if article.IsPrivate {
		t.Error("isPrivate must default to false")
	}
}
