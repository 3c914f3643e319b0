package dataset

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// readXLSX parses a .xlsx workbook (an OOXML zip) into raw rows of cell
// text. Only the first worksheet is read; shared and inline strings are
// resolved, every other cell value is kept as its raw stored text.
func readXLSX(data []byte) ([][]string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	shared, err := readSharedStrings(archive)
	if err != nil {
		return nil, err
	}

	sheet := findWorksheet(archive)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no worksheet")
	}
	rc, err := sheet.Open()
	if err != nil {
		return nil, fmt.Errorf("open worksheet: %w", err)
	}
	defer rc.Close()

	return readSheetRows(rc, shared)
}

func findWorksheet(archive *zip.Reader) *zip.File {
	var first *zip.File
	for _, file := range archive.File {
		if !strings.HasPrefix(file.Name, "xl/worksheets/") || !strings.HasSuffix(file.Name, ".xml") {
			continue
		}
		if file.Name == "xl/worksheets/sheet1.xml" {
			return file
		}
		if first == nil {
			first = file
		}
	}
	return first
}

func readSharedStrings(archive *zip.Reader) ([]string, error) {
	var src *zip.File
	for _, file := range archive.File {
		if file.Name == "xl/sharedStrings.xml" {
			src = file
			break
		}
	}
	if src == nil {
		return nil, nil
	}
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("open shared strings: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var (
		strs    []string
		current strings.Builder
		inSI    bool
		inT     bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse shared strings: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inSI = true
				current.Reset()
			case "t":
				inT = inSI
			}
		case xml.CharData:
			if inT {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "si":
				inSI = false
				strs = append(strs, current.String())
			}
		}
	}
	return strs, nil
}

func readSheetRows(r io.Reader, shared []string) ([][]string, error) {
	decoder := xml.NewDecoder(r)
	var (
		rows     [][]string
		row      []string
		inRow    bool
		cellType string
		cellCol  int
		inValue  bool
		value    strings.Builder
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse worksheet: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				inRow = true
				row = nil
			case "c":
				if !inRow {
					continue
				}
				cellType = ""
				cellCol = len(row)
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "t":
						cellType = attr.Value
					case "r":
						if col, ok := columnIndex(attr.Value); ok {
							cellCol = col
						}
					}
				}
			case "v", "t":
				inValue = inRow
				value.Reset()
			}
		case xml.CharData:
			if inValue {
				value.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				if !inValue {
					continue
				}
				inValue = false
				text := value.String()
				if cellType == "s" {
					if i, ok := sharedIndex(text, shared); ok {
						text = shared[i]
					}
				}
				setCell(&row, cellCol, text)
			case "row":
				inRow = false
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}

func setCell(row *[]string, col int, text string) {
	for len(*row) <= col {
		*row = append(*row, "")
	}
	(*row)[col] = text
}

// columnIndex converts the letter prefix of a cell reference ("C7") into a
// zero-based column index.
func columnIndex(ref string) (int, bool) {
	col := 0
	seen := false
	for _, r := range ref {
		if r >= 'A' && r <= 'Z' {
			col = col*26 + int(r-'A') + 1
			seen = true
			continue
		}
		if r >= 'a' && r <= 'z' {
			col = col*26 + int(r-'a') + 1
			seen = true
			continue
		}
		break
	}
	if !seen {
		return 0, false
	}
	return col - 1, true
}

func sharedIndex(text string, shared []string) (int, bool) {
	i := 0
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
		i = i*10 + int(r-'0')
	}
	if text == "" || i >= len(shared) {
		return 0, false
	}
	return i, true
}
