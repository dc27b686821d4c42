package mileage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Domenick1991/flightroutes/internal/domain"
)

// Row is one result of RowScanner.Next: ParsedHeader, ParsedDataRow or EndOfInput.
type Row interface {
	isRow()
}

// ParsedHeader holds the airports named by the two header lines, in column order.
type ParsedHeader struct {
	Airports []domain.AirportCodeMapping
}

// ParsedDataRow is a "name,code,dist1,dist2,..." line. Cells are the raw distance
// tokens in column order.
type ParsedDataRow struct {
	Line    int
	Airport domain.AirportCodeMapping
	Cells   []string
}

// EndOfInput marks the end of the matrix: EOF or the first blank line.
type EndOfInput struct{}

func (ParsedHeader) isRow()  {}
func (ParsedDataRow) isRow() {}
func (EndOfInput) isRow()    {}

type scanState int

const (
	stateHeader scanState = iota
	stateData
	stateDone
)

// RowScanner tokenizes a mileage matrix line by line.
type RowScanner struct {
	lines *bufio.Scanner
	line  int
	state scanState
}

func NewRowScanner(r io.Reader) *RowScanner {
	return &RowScanner{lines: bufio.NewScanner(r)}
}

// Next returns the next row. Once EndOfInput is returned every later call returns it too.
func (s *RowScanner) Next() (Row, error) {
	switch s.state {
	case stateHeader:
		names, ok, err := s.readLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ParseError{Line: s.line, Err: errors.New("missing airport name header")}
		}
		codes, ok, err := s.readLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ParseError{Line: s.line, Err: errors.New("missing airport code header")}
		}
		nameTokens, codeTokens := tokenize(names), tokenize(codes)
		if len(nameTokens) != len(codeTokens) {
			return nil, &domain.ParseError{Line: s.line, Err: errors.New("header names and codes differ in length")}
		}
		airports := make([]domain.AirportCodeMapping, len(nameTokens))
		seen := make(map[string]int, len(codeTokens))
		for i := range nameTokens {
			if first, dup := seen[codeTokens[i]]; dup {
				return nil, &domain.ParseError{Line: s.line, Column: i, Value: codeTokens[i],
					Err: fmt.Errorf("airport code repeats header column %d", first)}
			}
			seen[codeTokens[i]] = i
			airports[i] = domain.AirportCodeMapping{Code: codeTokens[i], Name: nameTokens[i]}
		}
		s.state = stateData
		return ParsedHeader{Airports: airports}, nil
	case stateData:
		text, ok, err := s.readLine()
		if err != nil {
			return nil, err
		}
		if !ok || strings.TrimSpace(text) == "" {
			s.state = stateDone
			return EndOfInput{}, nil
		}
		tokens := tokenize(text)
		if len(tokens) < 2 {
			return nil, &domain.ParseError{Line: s.line, Err: errors.New("data row needs an airport name and code")}
		}
		return ParsedDataRow{
			Line:    s.line,
			Airport: domain.AirportCodeMapping{Name: tokens[0], Code: tokens[1]},
			Cells:   tokens[2:],
		}, nil
	default:
		return EndOfInput{}, nil
	}
}

func (s *RowScanner) readLine() (string, bool, error) {
	if !s.lines.Scan() {
		return "", false, s.lines.Err()
	}
	s.line++
	return s.lines.Text(), true, nil
}

// tokenize splits on commas and drops empty tokens.
func tokenize(line string) []string {
	parts := strings.Split(line, ",")
	tokens := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
