package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "regionstats/internal/errors"
)

// Supported CSV encodings.
const (
	EncodingAuto        = "auto"
	EncodingUTF8        = "utf-8"
	EncodingWindows1250 = "windows-1250"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a raw sheet of text cells: one header row followed by data rows.
// Rows are padded to the header width.
type Table struct {
	Header []string
	Rows   [][]string
}

// Width returns the number of header columns.
func (t *Table) Width() int { return len(t.Header) }

// Column returns the cells of column i.
func (t *Table) Column(i int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// MissingCount returns the number of empty cells in the first n columns.
// A negative n counts every column.
func (t *Table) MissingCount(n int) int {
	if n < 0 || n > t.Width() {
		n = t.Width()
	}
	missing := 0
	for _, row := range t.Rows {
		for _, cell := range row[:n] {
			if isMissing(cell) {
				missing++
			}
		}
	}
	return missing
}

// openInput checks that path exists before any parsing starts, so callers
// get a NOT_FOUND error that still matches os.ErrNotExist.
func openInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.NewNotFoundError(fmt.Sprintf("input file %s", path), err)
		}
		return apperrors.NewStorageError(fmt.Sprintf("cannot access %s", path), err)
	}
	if info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}
	return nil
}

// ReadCSV reads a delimited text file. The delimiter (',' or ';') is detected
// from the header line. encoding is one of the Encoding constants; with
// EncodingAuto, input that is not valid UTF-8 is decoded as Windows-1250.
func ReadCSV(path, encoding string) (*Table, error) {
	if err := openInput(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}

	data, err = decodeText(data, encoding)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to decode %s", path), err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to parse %s", path), err)
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s is empty", path), nil)
	}
	return newTable(records[0], records[1:]), nil
}

// decodeText strips a UTF-8 byte order mark and converts Windows-1250 input
// to UTF-8.
func decodeText(data []byte, encoding string) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	switch encoding {
	case EncodingUTF8:
		return data, nil
	case EncodingWindows1250:
	case EncodingAuto, "":
		if utf8.Valid(data) {
			return data, nil
		}
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
	decoded, _, err := transform.Bytes(charmap.Windows1250.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// detectDelimiter picks ';' when the first line has more semicolons than
// commas. Polish exports from spreadsheet software commonly use ';'.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// ReadXLSX reads the worksheet at sheetIndex (zero based), skips skipRows
// physical rows and uses the next row as the header. Fully blank data rows
// are dropped.
func ReadXLSX(path string, sheetIndex, skipRows int) (*Table, error) {
	if err := openInput(path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheetIndex < 0 || sheetIndex >= len(sheets) {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("workbook %s has %d sheets, need sheet %d", path, len(sheets), sheetIndex+1), nil)
	}
	sheet := sheets[sheetIndex]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q of %s", sheet, path), err)
	}
	if len(rows) <= skipRows {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("sheet %q of %s has no header after %d skipped rows", sheet, path, skipRows), nil)
	}

	data := make([][]string, 0, len(rows)-skipRows-1)
	for _, row := range rows[skipRows+1:] {
		if blankRow(row) {
			continue
		}
		data = append(data, row)
	}
	return newTable(rows[skipRows], data), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if !isMissing(cell) {
			return false
		}
	}
	return true
}

// newTable pads rows to a common width and names empty or repeated header
// cells so every column is addressable.
func newTable(header []string, rows [][]string) *Table {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := range names {
		name := ""
		if i < len(header) {
			name = nfc(collapseSpace(header[i]))
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		names[i] = name
	}

	padded := make([][]string, len(rows))
	for r, row := range rows {
		if len(row) < width {
			row = append(append(make([]string, 0, width), row...), make([]string, width-len(row))...)
		}
		padded[r] = row
	}
	return &Table{Header: names, Rows: padded}
}
