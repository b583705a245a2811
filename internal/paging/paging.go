// Package paging implements page-number pagination for list endpoints.
package paging

import (
	"net/url"
	"strconv"
)

// MaxLimit caps the page size a client may request.
const MaxLimit = 100

// Page is a 1-based page number with a page size.
type Page struct {
	Number int
	Limit  int
}

// FromQuery reads the page and limit parameters, falling back to page one and
// defaultLimit for missing or malformed values.
func FromQuery(values url.Values, defaultLimit int) Page {
	page := Page{Number: 1, Limit: defaultLimit}
	if n, err := strconv.Atoi(values.Get("page")); err == nil && n > 0 {
		page.Number = n
	}
	if n, err := strconv.Atoi(values.Get("limit")); err == nil && n > 0 {
		page.Limit = n
	}
	if page.Limit > MaxLimit {
		page.Limit = MaxLimit
	}
	if page.Limit < 1 {
		page.Limit = 1
	}
	return page
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// Envelope is the list response shape: total count, neighbour links and results.
type Envelope[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewEnvelope builds the response for page, linking neighbours relative to base.
func NewEnvelope[T any](base *url.URL, page Page, count int64, results []T) Envelope[T] {
	if results == nil {
		results = []T{}
	}
	env := Envelope[T]{Count: count, Results: results}
	if int64(page.Offset()+page.Limit) < count {
		next := link(base, page.Number+1)
		env.Next = &next
	}
	if page.Number > 1 {
		previous := link(base, page.Number-1)
		env.Previous = &previous
	}
	return env
}

func link(base *url.URL, number int) string {
	u := *base
	query := u.Query()
	query.Set("page", strconv.Itoa(number))
	u.RawQuery = query.Encode()
	return u.String()
}
