package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"main/utils"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFileType reports that no text can be extracted from a file.
// Callers must treat it as non-fatal: the attachment is kept with empty
// extracted text.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// FileKind tags what the processing pipeline can do with a file. It is
// resolved once when the file arrives, not re-inspected per operation.
type FileKind int

const (
	KindUnsupported FileKind = iota
	KindPDF
	KindDocx
	KindImage
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
}

// DetectKind resolves the processing capability of a file from its name and
// declared content type.
func DetectKind(fileName, contentType string) FileKind {
	ext := strings.ToLower(filepath.Ext(fileName))

	switch {
	case ext == ".pdf" || contentType == "application/pdf":
		return KindPDF
	case ext == ".docx" ||
		contentType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return KindDocx
	case imageExtensions[ext] || strings.HasPrefix(contentType, "image/"):
		return KindImage
	}
	return KindUnsupported
}

// ExtractText extracts plain text from a file according to its kind. Any
// kind without an extraction routine fails with ErrUnsupportedFileType.
func ExtractText(kind FileKind, data []byte) (string, error) {
	switch kind {
	case KindPDF:
		text, err := extractPDFText(data)
		utils.TrackFileProcessing("extract", err == nil)
		return text, err
	case KindDocx:
		text, err := extractDocxText(data)
		utils.TrackFileProcessing("extract", err == nil)
		return text, err
	}
	return "", ErrUnsupportedFileType
}

// extractPDFText walks every page in order, joining each page's text items
// with single spaces and separating pages with a newline.
func extractPDFText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed documents; extraction must
	// never take the save path down with it.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf extraction failed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content := page.Content()
		for j, item := range content.Text {
			if j > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(item.S)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// extractDocxText pulls the raw text out of word/document.xml. There is no
// docx library in use here; the format is just a zip around XML.
func extractDocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", err)
	}

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("failed to open document.xml: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx archive has no word/document.xml")
	}
	defer doc.Close()

	decoder := xml.NewDecoder(doc)
	var sb strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				// Paragraph boundaries become newlines
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), nil
}
