package handler

import (
	"errors"
	"fmt"
	"log"

	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// ExportArticlesHandler streams the filtered article set as a CSV download.
// The same q/categories/tags parameters as the list endpoint apply, so the
// export matches what the caller currently sees.
func ExportArticlesHandler(c *gin.Context, transferService *usecase.TransferService) {
	articles, err := transferService.Articles.FetchAll(c)
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

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="articles.csv"`)

	if err := transferService.ExportCSV(c.Writer, filtered); err != nil {
		// Headers are already gone; all we can do is log
		log.Printf("CSV export failed: %v", err)
		utils.TrackError("transfer", "export_failed")
		return
	}
	utils.TrackArticleOperation("export")
}

// ImportArticlesHandler accepts a multipart CSV upload and creates one
// article per row. A failing row stops the import; the response reports how
// many rows made it in.
func ImportArticlesHandler(c *gin.Context, transferService *usecase.TransferService) {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "Missing csv file")
		return
	}

	f, err := fh.Open()
	if err != nil {
		utils.InternalError(c, "Failed to read upload")
		return
	}
	defer f.Close()

	editor := usecase.Editor{
		UserID: c.GetString("user_id"),
		Email:  c.GetString("email"),
	}

	imported, err := transferService.ImportCSV(c, f, editor)
	if err != nil {
		message := fmt.Sprintf("Import stopped after %d articles: %v", imported, err)
		if errors.Is(err, usecase.ErrValidation) {
			utils.BadRequest(c, message)
			return
		}
		utils.InternalError(c, message)
		return
	}

	utils.TrackArticleOperation("import")
	utils.Success(c, gin.H{
		"message":  "Import complete",
		"imported": imported,
	})
}
