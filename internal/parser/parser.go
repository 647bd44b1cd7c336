package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"realty-rag/internal/models"
)

// Pages extracts raw page texts from a document file. Formats without a
// native page concept (Word, Markdown, plain text) yield a single page;
// spreadsheets yield one page per sheet.
func Pages(filePath string) ([]string, string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		pages, err := pdfPages(filePath)
		return pages, models.SourceTypePDF, err
	case ".docx":
		pages, err := docxPages(filePath)
		return pages, models.SourceTypeDocx, err
	case ".md", ".markdown":
		pages, err := markdownPages(filePath)
		return pages, models.SourceTypeMarkdown, err
	case ".xlsx":
		pages, err := xlsxPages(filePath)
		return pages, models.SourceTypeSheet, err
	case ".ods":
		pages, err := odsPages(filePath)
		return pages, models.SourceTypeSheet, err
	case ".txt":
		pages, err := textPages(filePath)
		return pages, models.SourceTypeText, err
	default:
		return nil, "", fmt.Errorf("unsupported file format: %s", ext)
	}
}

func pdfPages(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var pages []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		pages = append(pages, pageText)
	}
	return pages, nil
}

func docxPages(filePath string) ([]string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc := r.Editable()
	content := doc.GetContent()
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	return []string{content}, nil
}

// markdownPages parses the Markdown AST and extracts plain text so that
// formatting syntax never leaks into embeddings.
func markdownPages(filePath string) ([]string, error) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			buf.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(buf.String())
	if content == "" {
		return nil, nil
	}
	return []string{content}, nil
}

func xlsxPages(filePath string) ([]string, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var pages []string
	for _, sheet := range f.Sheets {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Hoja: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				sb.WriteString(cell.String() + "\t")
			}
			sb.WriteString("\n")
		}
		if strings.TrimSpace(sb.String()) != "" {
			pages = append(pages, sb.String())
		}
	}
	return pages, nil
}

func odsPages(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Hoja: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				sb.WriteString(cell + "\t")
			}
			sb.WriteString("\n")
		}
		if strings.TrimSpace(sb.String()) != "" {
			pages = append(pages, sb.String())
		}
	}
	return pages, nil
}

func textPages(filePath string) ([]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []string{string(data)}, nil
}
