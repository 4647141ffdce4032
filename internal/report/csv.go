// Package report filters payment and user collections and renders them as
// CSV exports.
package report

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoData is returned when an export has no rows; no file is produced.
var ErrNoData = errors.New("no data available to export")

// ByteOrderMark prefixes every export so spreadsheet tools detect UTF-8.
const ByteOrderMark = "\ufeff"

// DateLayout renders timestamps as MM/DD/YYYY, HH:MM:SS.
const DateLayout = "01/02/2006, 15:04:05"

type fieldKind int

const (
	kindText fieldKind = iota
	kindBare
	kindNumber
	kindDate
)

// Field is one cell of an export row.
type Field struct {
	kind   fieldKind
	text   string
	number decimal.Decimal
	date   *time.Time
}

// Text is a quoted string cell.
func Text(s string) Field { return Field{kind: kindText, text: s} }

// OptionalText is a quoted string cell that renders as "" when s is nil.
func OptionalText(s *string) Field {
	if s == nil {
		return Text("")
	}
	return Text(*s)
}

// Bare is an unquoted string cell, used for enum values that never contain
// separators.
func Bare(s string) Field { return Field{kind: kindBare, text: s} }

// Number is a bare numeric cell.
func Number(d decimal.Decimal) Field { return Field{kind: kindNumber, number: d} }

// Date is a quoted timestamp cell, or an empty unquoted cell when t is nil.
func Date(t *time.Time) Field { return Field{kind: kindDate, date: t} }

// Column pairs a header with the extractor producing its cell.
type Column[T any] struct {
	Header string
	Value  func(T) Field
}

// ToCSV renders rows as a BOM-prefixed CSV document: a header line followed
// by one line per row, joined with "\n".
func ToCSV[T any](rows []T, columns []Column[T]) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	var buf bytes.Buffer
	buf.WriteString(ByteOrderMark)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = header(col.Header)
	}
	buf.WriteString(strings.Join(headers, ","))

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			cells[i] = render(col.Value(row))
		}
		buf.WriteByte('\n')
		buf.WriteString(strings.Join(cells, ","))
	}
	return buf.Bytes(), nil
}

// FormatDate renders t with DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func render(f Field) string {
	switch f.kind {
	case kindBare:
		return f.text
	case kindNumber:
		return f.number.String()
	case kindDate:
		if f.date == nil {
			return ""
		}
		return quote(FormatDate(*f.date))
	default:
		return quote(f.text)
	}
}

// quote wraps s in double quotes, doubling any embedded quote.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func header(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return quote(s)
	}
	return s
}
