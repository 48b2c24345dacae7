package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"phonebook_backend/platform/apperr"

	"github.com/tealeg/xlsx/v2"
)

const (
	contentTypeText = "text/plain"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// cellSeparator joins the cells of one row so a row keeps its own line
	cellSeparator = "; "
)

// ExtractText turns an import file into parser input with one line per
// source line or spreadsheet row.
func ExtractText(contentType string, data []byte) (string, error) {
	switch contentType {
	case contentTypeText:
		return string(data), nil
	case "text/csv", "application/csv", "application/vnd.ms-excel":
		return csvText(data)
	case contentTypeXLSX:
		return xlsxText(data)
	default:
		return "", apperr.BadRequest(fmt.Sprintf("unsupported content type %q", contentType))
	}
}

func readUpload(r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, apperr.BadRequest("file is required")
	}
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, apperr.BadRequest(fmt.Sprintf("file exceeds the %d byte upload limit", limit))
	}
	if len(data) == 0 {
		return nil, apperr.BadRequest("file is empty").WithCode(apperr.CodeBatchEmptyOrMalformed)
	}
	return data, nil
}

func csvText(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var b strings.Builder
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", apperr.BadRequest("malformed csv file").WithCode(apperr.CodeBatchEmptyOrMalformed)
		}
		b.WriteString(strings.Join(record, cellSeparator))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func xlsxText(data []byte) (string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return "", apperr.BadRequest("malformed xlsx file").WithCode(apperr.CodeBatchEmptyOrMalformed)
	}

	var b strings.Builder
	for _, sheet := range f.Sheets {
		for _, row := range sheet.Rows {
			if row == nil {
				b.WriteByte('\n')
				continue
			}
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				if v := strings.TrimSpace(cell.String()); v != "" {
					cells = append(cells, v)
				}
			}
			b.WriteString(strings.Join(cells, cellSeparator))
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
