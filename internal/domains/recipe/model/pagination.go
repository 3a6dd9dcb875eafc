package model

import "strings"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a normalized page window over the recipe list
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// NewPageRequest normalizes raw integer inputs.
// Page: zero or negative → 1.
// PageSize: zero → 10, negative → 1, above MaxPageSize → MaxPageSize.
func NewPageRequest(page, pageSize int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}

	switch {
	case pageSize == 0:
		pageSize = DefaultPageSize
	case pageSize < 1:
		pageSize = 1
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	return PageRequest{Page: page, PageSize: pageSize}
}

// ParsePageRequest normalizes raw query-string values. Values without a
// leading integer ("x", "") count as absent and fall back to the defaults;
// "3abc" and "2.9" read as 3 and 2.
func ParsePageRequest(page, pageSize string) PageRequest {
	return NewPageRequest(leadingInt(page), leadingInt(pageSize))
}

// leadingInt parses an optional sign followed by decimal digits at the start
// of s, ignoring surrounding whitespace. It returns 0 when there are no digits.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		if n > 1<<31 {
			n = 1 << 31
		}
	}

	if neg {
		return -n
	}
	return n
}
