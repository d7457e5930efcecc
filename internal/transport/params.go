package transport

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"joyeria-be/internal/apperr"

	"github.com/julienschmidt/httprouter"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside an int32 OFFSET.
	MaxPage = math.MaxInt32 / MaxLimit
)

type Pagination struct {
	Limit int
	Page  int
}

func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

type Sort struct {
	Field string
	Desc  bool
}

// parseID rejects values above MaxInt64, which do not fit a BIGINT.
func parseID(raw string) (uint, error) {
	n, err := strconv.ParseUint(raw, 10, 63)
	return uint(n), err
}

// IDParam parses a positive integer route parameter.
func IDParam(ps httprouter.Params, name string) (uint, error) {
	id, err := parseID(ps.ByName(name))
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// ParsePagination reads ?limit=&page= with defaults 20/1, a limit cap of 100
// and a page cap of MaxPage.
func ParsePagination(r *http.Request) Pagination {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}

	return Pagination{Limit: limit, Page: page}
}

// ParseSort reads ?sort=field&order=asc|desc. Fields outside allowed fall back
// to def; allowed maps API names to column expressions.
func ParseSort(r *http.Request, allowed map[string]string, def Sort) Sort {
	q := r.URL.Query()

	s := def
	if col, ok := allowed[q.Get("sort")]; ok {
		s.Field = col
	}
	switch strings.ToLower(q.Get("order")) {
	case "asc":
		s.Desc = false
	case "desc":
		s.Desc = true
	}
	return s
}

func (s Sort) SQL() string {
	if s.Desc {
		return s.Field + " DESC"
	}
	return s.Field + " ASC"
}

// QueryUint returns nil when the parameter is absent and a validation error
// when it is malformed.
func QueryUint(r *http.Request, name string) (*uint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := parseID(raw)
	if err != nil {
		return nil, apperr.Validation("invalid " + name)
	}
	return &v, nil
}

func QueryFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.Validation("invalid " + name)
	}
	return &f, nil
}

func QueryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("invalid " + name)
	}
	return &b, nil
}

func QueryString(r *http.Request, name string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}
