package dto

import (
	"time"

	"main/model"
)

type ArticleFileResponse struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	ExtractedText string `json:"extracted_text,omitempty"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
}

type AmendmentResponse struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`
}

type ArticleResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Content        string                `json:"content"`
	Category       string                `json:"category"`
	Files          []ArticleFileResponse `json:"files"`
	CreatedAt      time.Time             `json:"created_at"`
	CreatedBy      string                `json:"created_by"`
	ExtractedText  string                `json:"extracted_text,omitempty"`
	Tags           []string              `json:"tags"`
	IsPrivate      bool                  `json:"is_private"`
	OwnerID        string                `json:"owner_id"`
	Amendments     []AmendmentResponse   `json:"amendments"`
	LastModified   time.Time             `json:"last_modified"`
	LastModifiedBy string                `json:"last_modified_by,omitempty"`
}

type ArticlesPageResponse struct {
	Articles   []ArticleResponse `json:"articles"`
	TotalCount int               `json:"total_count"`
}

func ToArticleResponse(article *model.Article) ArticleResponse {
	files := make([]ArticleFileResponse, len(article.Files))
	for i, f := range article.Files {
		files[i] = ArticleFileResponse{
			Name:          f.Name,
			URL:           f.URL,
			ExtractedText: f.ExtractedText,
			ThumbnailURL:  f.ThumbnailURL,
		}
	}

	amendments := make([]AmendmentResponse, len(article.Amendments))
	for i, a := range article.Amendments {
		amendments[i] = AmendmentResponse{
			Timestamp: a.Timestamp,
			UserID:    a.UserID,
			UserEmail: a.UserEmail,
		}
	}

	return ArticleResponse{
		ID:             article.ID,
		Title:          article.Title,
		Content:        article.Content,
		Category:       article.Category,
		Files:          files,
		CreatedAt:      article.CreatedAt,
		CreatedBy:      article.CreatedBy,
		ExtractedText:  article.ExtractedText,
		Tags:           article.Tags,
		IsPrivate:      article.IsPrivate,
		OwnerID:        article.OwnerID,
		Amendments:     amendments,
		LastModified:   article.LastModified,
		LastModifiedBy: article.LastModifiedBy,
	}
}

func ToArticleResponses(articles []*model.Article) []ArticleResponse {
	responses := make([]ArticleResponse, len(articles))
	for i, article := range articles {
		responses[i] = ToArticleResponse(article)
	}
	return responses
}
