package model

import (
	"strings"
	"time"
)

// Categories is the fixed set an article must belong to.
var Categories = []string{
	"Portal",
	"MDS",
	"Candidates Panel",
	"Safeguarding",
	"DBS",
	"Stage 1",
	"Stage 2",
	"Training",
	"Other",
}

// ValidCategory reports whether category is one of the fixed set.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ArticleFile is a stored attachment reference. URL is always resolvable once
// the article has been loaded from storage.
type ArticleFile struct {
	Name          string `bson:"name" json:"name"`
	URL           string `bson:"url" json:"url"`
	ExtractedText string `bson:"extracted_text,omitempty" json:"extracted_text,omitempty"`
	ThumbnailURL  string `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
}

// Amendment records who modified an article and when. The amendment log is
// append-only; entries are never removed.
type Amendment struct {
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	UserID    string    `bson:"user_id" json:"user_id"`
	UserEmail string    `bson:"user_email" json:"user_email"`
}

// UploadedFile is a file staged for upload during an edit session. It is
// transient and never persisted with the article.
type UploadedFile struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

type Article struct {
	ID             string        `bson:"-" json:"id"`
	Title          string        `json:"title"`
	Content        string        `json:"content"`
	Category       string        `json:"category"`
	Files          []ArticleFile `json:"files"`
	CreatedAt      time.Time     `json:"created_at"`
	CreatedBy      string        `json:"created_by"`
	ExtractedText  string        `bson:"-" json:"extracted_text,omitempty"`
	Tags           []string      `json:"tags"`
	IsPrivate      bool          `json:"is_private"`
	OwnerID        string        `json:"owner_id"`
	Amendments     []Amendment   `json:"amendments"`
	LastModified   time.Time     `json:"last_modified,omitempty"`
	LastModifiedBy string        `json:"last_modified_by,omitempty"`

	// NewFiles are attachments staged during an edit; cleared after save.
	NewFiles []UploadedFile `bson:"-" json:"-"`
}

// Tag exists to satisfy the tag-input widget shape: id and text are kept
// identical and lowercased.
type Tag struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// NormalizeTags lowercases tags and drops duplicates and blanks while
// preserving insertion order.
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		normalized = append(normalized, t)
	}
	return normalized
}
