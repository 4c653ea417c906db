package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Options controls how the input is decoded.
type Options struct {
	Delimiter rune   // CSV field separator; ',' when zero
	Sheet     string // XLSX sheet; first sheet when empty
}

// Open reads the table at location, which is a local path or an s3://bucket/key URL.
// Files ending in .xlsx are read as workbooks, anything else as delimited text.
func Open(ctx context.Context, location string, opts Options) (*Table, error) {
	var (
		t   *Table
		err error
	)

	if bucket, key, ok := ParseS3URL(location); ok {
		t, err = openS3(ctx, bucket, key, opts)
	} else {
		t, err = openFile(location, opts)
	}
	if err != nil {
		return nil, err
	}
	t.Location = location
	return t, nil
}

func openFile(path string, opts Options) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := decodeStream(f, path, opts)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	t.ModTime = info.ModTime()
	t.Size = info.Size()
	return t, nil
}

func decodeStream(r io.Reader, name string, opts Options) (*Table, error) {
	if isWorkbook(name) {
		return ReadXLSX(r, opts.Sheet)
	}
	return ReadCSV(r, opts.Delimiter)
}

func isWorkbook(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// ReadCSV decodes delimited text with a header row.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	cr := csv.NewReader(r)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Missing: append([]string(nil), RequiredColumns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return decode(header, rows)
}

// ReadXLSX decodes one sheet of a workbook. The first row is the header.
func ReadXLSX(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, &SchemaError{Missing: append([]string(nil), RequiredColumns...)}
	}
	return decode(rows[0], rows[1:])
}

// readAll buffers a remote body so the workbook reader can seek.
func readAll(r io.Reader) (*bytes.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
