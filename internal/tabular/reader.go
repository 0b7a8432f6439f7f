// Package tabular loads uploaded spreadsheet and CSV files into a
// row-oriented table and maps their messy header names onto the canonical
// guest fields used by the import engines.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnreadableFile indicates the upload could not be parsed under any
// supported format or encoding, or contained no data rows.
var ErrUnreadableFile = errors.New("unreadable file")

// attemptedEncodings is the ordered list of text encodings tried for
// delimited files, reported to the user when decoding fails.
var attemptedEncodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

// Row maps a header name to the cell value in that column.
// Absent and empty cells are both represented as the empty string.
type Row map[string]string

// Table is a parsed upload: an ordered header list and its data rows.
type Table struct {
	Headers []string
	Rows    []Row
}

// Read parses raw file bytes into a Table. The filename extension selects
// spreadsheet or delimited-text semantics; delimited text is decoded under a
// list of candidate encodings and the field delimiter is auto-detected.
func Read(data []byte, filename string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xls", ".xlsm":
		return readWorkbook(data)
	default:
		return readDelimited(data)
	}
}

// readWorkbook parses a spreadsheet: first sheet, first row as header.
func readWorkbook(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable workbook: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadableFile)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", ErrUnreadableFile, sheets[0], err)
	}

	return buildTable(rows)
}

// readDelimited parses CSV-like text, trying each supported encoding in order
// and sniffing the field delimiter from the header line.
func readDelimited(data []byte) (*Table, error) {
	decoded, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: no supported encoding (tried %s): %v",
			ErrUnreadableFile, strings.Join(attemptedEncodings, ", "), err)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = sniffDelimiter(decoded)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse error: %v", ErrUnreadableFile, err)
	}

	return buildTable(records)
}

// buildTable assembles a Table from raw records: first record is the header,
// short rows are padded and long rows truncated to the header width.
func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrUnreadableFile)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}

	var rows []Row
	for _, rec := range records[1:] {
		if isEmptyRecord(rec) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file contains no data rows", ErrUnreadableFile)
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

// MatchableHeaders returns headers eligible for column mapping. Headers that
// are not plain text (numeric or date-shaped, typically artifacts of a
// headerless export) can never represent a semantic field.
func (t *Table) MatchableHeaders() []string {
	out := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		if isTextHeader(h) {
			out = append(out, h)
		}
	}
	return out
}

// dateLayouts are header shapes produced when a reader misparses a date cell
// as the column name.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	time.RFC3339,
}

func isTextHeader(h string) bool {
	h = strings.TrimSpace(h)
	if h == "" {
		return false
	}
	if _, err := strconv.ParseFloat(h, 64); err == nil {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, h); err == nil {
			return false
		}
	}
	return true
}

// decodeText returns data as UTF-8, trying the supported encodings in order.
// A UTF-8 BOM is stripped first. Windows-1252 is preferred over ISO-8859-1
// because it gives printable glyphs (curly quotes, dashes) for 0x80-0x9F;
// bytes undefined in cp1252 decode to U+FFFD, which we treat as a miss.
// ISO-8859-1 maps every byte to a code point, so it is the terminal fallback
// and decoding as a whole cannot fail.
func decodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if utf8.Valid(data) {
		return data, nil
	}

	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil &&
		!bytes.ContainsRune(decoded, utf8.RuneError) {
		return decoded, nil
	}

	return charmap.ISO8859_1.NewDecoder().Bytes(data)
}

// sniffDelimiter picks the field delimiter by counting candidates in the
// header line, outside quoted sections. Comma wins ties.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	counts := map[rune]int{',': 0, ';': 0, '\t': 0}
	inQuotes := false
	for _, b := range line {
		switch b {
		case '"':
			inQuotes = !inQuotes
		case ',', ';', '\t':
			if !inQuotes {
				counts[rune(b)]++
			}
		}
	}

	best := ','
	for _, c := range []rune{';', '\t'} {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
