package registry

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/edufin/internal/parser"
	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for register files that are neither
// XLSX nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported registry format")

// Load reads a register file (.xlsx or .csv).
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode reads register rows from r, picking the format from filename.
func Decode(r io.Reader, filename string) ([]Row, error) {
	var (
		table [][]string
		err   error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		table, err = readXLSX(r)
	case ".csv":
		table, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", filename, err)
	}
	return decodeTable(table)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	// Counts are often styled "#,##0"; formatted text would read as decimals.
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	cr := csv.NewReader(br)
	cr.Comma = parser.SniffDelimiter(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

// decodeTable finds the header row and maps the rows below it onto Row.
func decodeTable(table [][]string) ([]Row, error) {
	header := -1
	for i, cells := range table {
		for j := range cells {
			cells[j] = strings.TrimSpace(strings.TrimPrefix(cells[j], "\ufeff"))
		}
		if header < 0 && containsCell(cells, NameColumn) {
			header = i
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("registry: no %q header row", NameColumn)
	}
	if header == len(table)-1 {
		return []Row{}, nil
	}

	var rows []Row
	if err := gocsv.UnmarshalCSV(&tableReader{rows: table[header:]}, &rows); err != nil {
		return nil, fmt.Errorf("decode registry rows: %w", err)
	}
	return rows, nil
}

func containsCell(cells []string, want string) bool {
	for _, c := range cells {
		if c == want {
			return true
		}
	}
	return false
}

// tableReader serves an in-memory table through gocsv.CSVReader.
type tableReader struct {
	rows [][]string
	next int
}

func (t *tableReader) Read() ([]string, error) {
	if t.next >= len(t.rows) {
		return nil, io.EOF
	}
	row := t.rows[t.next]
	t.next++
	return row, nil
}

func (t *tableReader) ReadAll() ([][]string, error) {
	rest := t.rows[t.next:]
	t.next = len(t.rows)
	return rest, nil
}
