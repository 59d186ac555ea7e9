package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"main/model"
)

// csvHeader is the fixed column order for article export and import.
var csvHeader = []string{"title", "content", "category", "tags", "isPrivate", "createdAt", "createdBy"}

// TransferService moves articles in and out of the system as CSV.
type TransferService struct {
	Articles *ArticlesService
}

// ExportCSV writes every given article as one CSV row. Attachments and
// amendment history are not part of the export format.
func (svc *TransferService) ExportCSV(w io.Writer, articles []*model.Article) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, article := range articles {
		row := []string{
			article.Title,
			article.Content,
			article.Category,
			strings.Join(article.Tags, ", "),
			strconv.FormatBool(article.IsPrivate),
			article.CreatedAt.Format(time.RFC3339),
			article.CreatedBy,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ImportCSV reads articles from r and saves them one at a time through the
// normal create path, so each row is validated and amended like a manual
// entry. The first failing row stops the import; earlier rows stay saved.
// Returns the number of articles imported.
func (svc *TransferService) ImportCSV(ctx context.Context, r io.Reader, editor Editor) (int, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: missing header row", ErrValidation)
	}
	if err := validateHeader(header); err != nil {
		return 0, err
	}

	imported := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("%w: row %d: %v", ErrValidation, imported+2, err)
		}

		article, err := articleFromRow(row)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", imported+2, err)
		}
		if err := svc.Articles.CreateArticle(ctx, article, editor); err != nil {
			return imported, fmt.Errorf("row %d: %w", imported+2, err)
		}
		imported++
	}
	return imported, nil
}

func validateHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrValidation, len(csvHeader), len(header))
	}
	for i, col := range csvHeader {
		if strings.TrimSpace(header[i]) != col {
			return fmt.Errorf("%w: column %d must be %q", ErrValidation, i+1, col)
		}
	}
	return nil
}

func articleFromRow(row []string) (*model.Article, error) {
	if len(row) != len(csvHeader) {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", ErrValidation, len(csvHeader), len(row))
	}

	var tags []string
	for _, tag := range strings.Split(row[3], ",") {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}

	article := &model.Article{
		Title:     row[0],
		Content:   row[1],
		Category:  row[2],
		Tags:      tags,
		IsPrivate: row[4] == "true",
		CreatedBy: strings.TrimSpace(row[6]),
		Files:     []model.ArticleFile{},
	}

	if created := strings.TrimSpace(row[5]); created != "" {
		ts, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid createdAt %q", ErrValidation, created)
		}
		article.CreatedAt = ts
	}
	return article, nil
}
