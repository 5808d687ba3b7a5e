package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultSize = 50
	MaxSize     = 500
)

var ErrInvalidPage = errors.New("invalid pagination values")

// Page is a validated 1-based page request. The zero Page is unbounded.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"pageSize"`
}

// New validates number and size against maxSize (MaxSize when <= 0).
func New(number, size, maxSize int) (Page, error) {
	if maxSize <= 0 {
		maxSize = MaxSize
	}
	if number < 1 || size < 1 || size > maxSize {
		return Page{}, ErrInvalidPage
	}
	if number > math.MaxInt/size {
		return Page{}, ErrInvalidPage
	}
	return Page{Number: number, Size: size}, nil
}

// Parse reads raw query values; blanks fall back to page 1 and DefaultSize.
func Parse(rawNumber, rawSize string, maxSize int) (Page, error) {
	number, err := parseOr(rawNumber, 1)
	if err != nil {
		return Page{}, ErrInvalidPage
	}
	size, err := parseOr(rawSize, DefaultSize)
	if err != nil {
		return Page{}, ErrInvalidPage
	}
	return New(number, size, maxSize)
}

// Unbounded reports whether p selects every row.
func (p Page) Unbounded() bool { return p.Size <= 0 }

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

func (p Page) Limit() int { return p.Size }

func parseOr(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
