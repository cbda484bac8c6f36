package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/server/models"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// Export formats of the whole collection.
const (
	FormatSpreadsheet = "excel"
	FormatDocument    = "pdf"
)

const (
	ContentTypeSpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeDocument    = "application/pdf"
)

const exportDate = "2006-01-02"

var exportHeader = []string{"Name", "URL", "Username", "Password", "Created"}

// Export renders every record of ownerID in name order. It returns the blob
// and its content type.
func (s *PlatformService) Export(ctx context.Context, ownerID int64, format string) ([]byte, string, error) {
	list, err := s.sorted(ctx, ownerID)
	if err != nil {
		return nil, "", err
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case FormatSpreadsheet:
		data, err = spreadsheet(list)
		contentType = ContentTypeSpreadsheet
	case FormatDocument:
		data, err = document(list)
		contentType = ContentTypeDocument
	default:
		return nil, "", fmt.Errorf("%w: unknown export format %q", ErrInvalidInput, format)
	}
	if err != nil {
		s.logger.Error(ctx, "render export", "format", format, "error", err)
		return nil, "", common.ErrorInternal
	}

	s.logger.Info(ctx, "collection exported", "owner", ownerID, "format", format, "records", len(list))
	return data, contentType, nil
}

func row(p models.Platform) []string {
	return []string{p.Name, p.URL, p.Username, p.Password, p.CreatedDate.Format(exportDate)}
}

func spreadsheet(list []models.Platform) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Platforms"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	write := func(n int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return err
		}
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		return f.SetSheetRow(sheet, cell, &cells)
	}

	if err := write(1, exportHeader); err != nil {
		return nil, err
	}
	for i, p := range list {
		if err := write(i+2, row(p)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func document(list []models.Platform) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	widths := []float64{55, 75, 50, 55, 30}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Platforms", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range exportHeader {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, p := range list {
		for i, v := range row(p) {
			pdf.CellFormat(widths[i], 7, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
