package mileage

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/Domenick1991/flightroutes/internal/domain"
)

// NoRoute is the cell token meaning there is no direct route for the pair.
const NoRoute = "NA"

// Matrix is a parsed mileage table.
type Matrix struct {
	// Airports are the header airports in column order, followed by airports
	// first seen in data rows.
	Airports []domain.AirportCodeMapping
	Rows     []DataRow
}

// DataRow holds the routed distances of one origin airport, keyed by column index.
// Sentinel cells and the origin's own column are left out.
type DataRow struct {
	Line      int
	Origin    string
	Distances map[int]int
}

// Columns returns the row's column indexes in ascending order.
func (r DataRow) Columns() []int {
	cols := make([]int, 0, len(r.Distances))
	for c := range r.Distances {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}

// Destination resolves a column index to an airport code.
func (m *Matrix) Destination(col int) (string, bool) {
	if col < 0 || col >= len(m.Airports) {
		return "", false
	}
	return m.Airports[col].Code, true
}

// Parse reads a whole mileage matrix.
func Parse(r io.Reader) (*Matrix, error) {
	scanner := NewRowScanner(r)
	m := &Matrix{}
	known := make(map[string]bool)

	for {
		row, err := scanner.Next()
		if err != nil {
			return nil, err
		}

		switch row := row.(type) {
		case ParsedHeader:
			for _, a := range row.Airports {
				m.register(a, known)
			}
		case ParsedDataRow:
			m.register(row.Airport, known)
			dr, err := m.parseCells(row)
			if err != nil {
				return nil, err
			}
			m.Rows = append(m.Rows, dr)
		case EndOfInput:
			return m, nil
		default:
			return nil, fmt.Errorf("mileage: unexpected row %T", row)
		}
	}
}

func (m *Matrix) register(a domain.AirportCodeMapping, known map[string]bool) {
	if known[a.Code] {
		return
	}
	known[a.Code] = true
	m.Airports = append(m.Airports, a)
}

func (m *Matrix) parseCells(row ParsedDataRow) (DataRow, error) {
	dr := DataRow{Line: row.Line, Origin: row.Airport.Code, Distances: make(map[int]int)}
	for col, cell := range row.Cells {
		if cell == NoRoute {
			continue
		}
		miles, err := strconv.Atoi(cell)
		if err != nil {
			return DataRow{}, &domain.ParseError{Line: row.Line, Column: col, Value: cell, Err: err}
		}
		dest, ok := m.Destination(col)
		if !ok {
			return DataRow{}, &domain.ParseError{Line: row.Line, Column: col, Value: cell, Err: errors.New("column has no airport")}
		}
		if dest == dr.Origin {
			continue
		}
		if miles <= 0 {
			return DataRow{}, &domain.ParseError{Line: row.Line, Column: col, Value: cell, Err: errors.New("mileage must be positive")}
		}
		dr.Distances[col] = miles
	}
	return dr, nil
}
