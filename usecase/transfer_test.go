package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"main/model"
)

func TestExportCSVShape(t *testing.T) {
	svc := &TransferService{}

	created, _ := time.Parse(time.RFC3339, "2024-03-01T10:30:00Z")
	articles := []*model.Article{{
		Title:     "Safeguarding escalation",
		Content:   "<p>Who to call</p>",
		Category:  "Safeguarding",
		Tags:      []string{"urgent", "phone"},
		IsPrivate: true,
		CreatedAt: created,
		CreatedBy: "author@example.com",
	}}

	var buf bytes.Buffer
	if err := svc.ExportCSV(&buf, articles); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}

	wantHeader := "title,content,category,tags,isPrivate,createdAt,createdBy"
	if strings.Join(rows[0], ",") != wantHeader {
		t.Errorf("header = %v, want %s", rows[0], wantHeader)
	}

	row := rows[1]
	if row[3] != "urgent, phone" {
		t.Errorf("tags column = %q, want \"urgent, phone\"", row[3])
	}
	if row[4] != "true" {
		t.Errorf("isPrivate column = %q, want \"true\"", row[4])
	}
	if row[5] != "2024-03-01T10:30:00Z" {
		t.Errorf("createdAt column = %q", row[5])
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	source, _, _ := newTestService()
	ctx := context.Background()

	originals := []*model.Article{
		{Title: "First", Content: "one", Category: "Portal", Tags: []string{"alpha", "beta"}, IsPrivate: true},
		{Title: "Second", Content: "two", Category: "Training", Tags: []string{}},
	}
	for _, a := range originals {
		if err := source.CreateArticle(ctx, a, testEditor); err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
	}

	exported, err := source.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	var buf bytes.Buffer
	transfer := &TransferService{Articles: source}
	if err := transfer.ExportCSV(&buf, exported); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	dest, destRepo, _ := newTestService()
	destTransfer := &TransferService{Articles: dest}
	imported, err := destTransfer.ImportCSV(ctx, &buf, testEditor)
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	if imported != 2 {
		t.Fatalf("imported = %d, want 2", imported)
	}

	restored, _ := dest.FetchAll(ctx)
	byTitle := make(map[string]*model.Article)
	for _, a := range restored {
		byTitle[a.Title] = a
	}

	for _, want := range originals {
		got, ok := byTitle[want.Title]
		if !ok {
			t.Fatalf("article %q missing after round trip", want.Title)
		}
		if got.Content != want.Content || got.Category != want.Category || got.IsPrivate != want.IsPrivate {
			t.Errorf("%q round-tripped as %q/%q/%v", want.Title, got.Content, got.Category, got.IsPrivate)
		}
		if strings.Join(got.Tags, ",") != strings.Join(want.Tags, ",") {
			t.Errorf("%q tags = %v, want %v", want.Title, got.Tags, want.Tags)
		}
		if got.ID == want.ID {
			t.Error("import must create new records, not reuse ids")
		}
	}

	if destRepo.saves != 2 {
		t.Errorf("saves = %d, want one per row", destRepo.saves)
	}
}

func TestImportStopsOnFirstFailure(t *testing.T) {
	svc, repo, _ := newTestService()
	transfer := &TransferService{Articles: svc}

	input := strings.Join([]string{
		"title,content,category,tags,isPrivate,createdAt,createdBy",
		`Good one,body,Portal,,false,,author@example.com`,
		`Bad one,body,NotACategory,,false,,author@example.com`,
		`Never reached,body,Portal,,false,,author@example.com`,
	}, "\n")

	imported, err := transfer.ImportCSV(context.Background(), strings.NewReader(input), testEditor)
	if err == nil {
		t.Fatal("expected failure on the invalid row")
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if imported != 1 {
		t.Errorf("imported = %d, want 1 (rows before the failure stay persisted)", imported)
	}
	if repo.saves != 1 {
		t.Errorf("saves = %d, want 1", repo.saves)
	}
}

func TestImportRejectsWrongHeader(t *testing.T) {
	svc, repo, _ := newTestService()
	transfer := &TransferService{Articles: svc}

	input := "name,body,kind\nX,Y,Z\n"
	_, err := transfer.ImportCSV(context.Background(), strings.NewReader(input), testEditor)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for wrong header, got %v", err)
	}
	if repo.saves != 0 {
		t.Errorf("nothing should be saved, got %d saves", repo.saves)
	}
}
