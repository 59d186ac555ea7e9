package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"

	"main/dto"
	"main/model"
	"main/repository"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// ListArticlesHandler returns the article set, optionally narrowed by the
// q, categories, and tags query parameters.
func ListArticlesHandler(c *gin.Context, articlesService *usecase.ArticlesService) {
	articles, err := articlesService.FetchAll(c)
	if err != nil {
		utils.InternalError(c, "Failed to fetch articles")
		return
	}

	filtered := usecase.FilterArticles(
		articles,
		c.Query("q"),
		c.QueryArray("categories"),
		c.QueryArray("tags"),
	)

	utils.Success(c, dto.ArticlesPageResponse{
		Articles:   dto.ToArticleResponses(filtered),
		TotalCount: len(filtered),
	})
}

func GetArticleHandler(c *gin.Context, articlesService *usecase.ArticlesService) {
	article, err := articlesService.GetArticle(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			utils.NotFound(c, "Article not found")
			return
		}
		utils.InternalError(c, "Failed to fetch article")
		return
	}
	utils.Success(c, dto.ToArticleResponse(article))
}

// ListTagsHandler returns every distinct tag across all articles, sorted.
func ListTagsHandler(c *gin.Context, articlesService *usecase.ArticlesService) {
	articles, err := articlesService.FetchAll(c)
	if err != nil {
		utils.InternalError(c, "Failed to fetch articles")
		return
	}
	utils.Success(c, gin.H{"tags": usecase.AllTags(articles)})
}

// bindArticleForm reads the multipart body: the article JSON travels in the
// "article" field and staged attachments under "files".
func bindArticleForm(c *gin.Context) (*model.Article, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	payload := c.PostForm("article")
	if payload == "" {
		return nil, errors.New("missing article field")
	}

	var article model.Article
	if err := json.Unmarshal([]byte(payload), &article); err != nil {
		return nil, err
	}

	for _, fh := range form.File["files"] {
		data, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		article.NewFiles = append(article.NewFiles, model.UploadedFile{
			Name: fh.Filename,
			Data: data,
		})
	}
	return &article, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func CreateArticleHandler(c *gin.Context, articlesService *usecase.ArticlesService) {
	article, err := bindArticleForm(c)
	if err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	editor := usecase.Editor{
		UserID: c.GetString("user_id"),
		Email:  c.GetString("email"),
	}
	if article.OwnerID == "" {
		article.OwnerID = editor.UserID
	}

	if err := articlesService.CreateArticle(c, article, editor); err != nil {
		if errors.Is(err, usecase.ErrValidation) {
			utils.BadRequest(c, err.Error())
			return
		}
		utils.InternalError(c, "Failed to save article")
		return
	}

	utils.Created(c, dto.ToArticleResponse(article))
}

func UpdateArticleHandler(c *gin.Context, articlesService *usecase.ArticlesService) {
	article, err := bindArticleForm(c)
	if err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}
	article.ID = c.Param("id")

	editor := usecase.Editor{
		UserID: c.GetString("user_id"),
		Email:  c.GetString("email"),
	}

	if err := articlesService.UpdateArticle(c, article, editor); err != nil {
		switch {
		case errors.Is(err, usecase.ErrValidation):
			utils.BadRequest(c, err.Error())
		case errors.Is(err, repository.ErrArticleNotFound):
			utils.NotFound(c, "Article not found")
		default:
			utils.InternalError(c, "Failed to update article")
		}
		return
	}

	utils.Success(c, dto.ToArticleResponse(article))
}

func DeleteArticleHandler(c *gin.Context, articlesService *usecase.ArticlesService) {
	if err := articlesService.DeleteArticle(c, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			utils.NotFound(c, "Article not found")
			return
		}
		utils.InternalError(c, "Failed to delete article")
		return
	}
	utils.Success(c, gin.H{"message": "Article deleted successfully"})
}
