package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"asset-reconciler/core/table"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw CSV bytes to UTF-8 and reports the detected encoding.
// Input without a BOM that is not valid UTF-8 is treated as GB18030.
func Decode(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		out, err := decodeWith(data, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM))
		return out, "utf-16le", err
	case bytes.HasPrefix(data, bomUTF16BE):
		out, err := decodeWith(data, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM))
		return out, "utf-16be", err
	case utf8.Valid(data):
		return data, "utf-8", nil
	}
	out, err := decodeWith(data, simplifiedchinese.GB18030)
	return out, "gb18030", err
}

func decodeWith(data []byte, enc encoding.Encoding) ([]byte, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadCSV reads a CSV export. Rows with a different field count are padded or cut to
// the header width.
func ReadCSV(r io.Reader, opts Options) (*table.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data, enc, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode csv as %s: %w", enc, err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		rows = append(rows, row)
	}

	rows = skip(rows, opts.SkipRows)
	if opts.headerRows() == 2 && len(rows) > 0 {
		rows[0] = fillRight(rows[0])
	}

	name := opts.Name
	if name == "" {
		name = "csv"
	}
	return buildTable(name, rows, opts)
}
