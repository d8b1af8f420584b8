// Package links builds the hypermedia links embedded in user responses.
//
// Pagination hrefs always carry skip before limit:
//
//	{base}/users?skip=20&limit=10
//
// Existing clients parse that order, so it must not change.
package links

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Clamp normalises request pagination: skip is at least 0 and limit lies in
// [1, MaxLimit], defaulting to DefaultLimit.
func Clamp(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return skip, limit
}

// Window is a page of a result list.
type Window struct {
	Offset int
	Limit  int
	Total  int64
}

// First is always zero.
func (w Window) First() int { return 0 }

// Last returns the offset of the final page, max(0, ((total-1)/limit)*limit).
func (w Window) Last() int {
	if w.Total <= 0 || w.Limit <= 0 {
		return 0
	}
	return int((w.Total-1)/int64(w.Limit)) * w.Limit
}

// Next returns the offset of the following page and whether one exists.
func (w Window) Next() (int, bool) {
	if int64(w.Offset) >= w.Total-int64(w.Limit) {
		return 0, false
	}
	return w.Offset + w.Limit, true
}

// Prev returns the offset of the preceding page and whether one exists.
func (w Window) Prev() (int, bool) {
	if w.Offset <= 0 {
		return 0, false
	}
	return max(0, w.Offset-w.Limit), true
}

// Page is the 1-based page number of offset.
func (w Window) Page() int {
	if w.Limit <= 0 {
		return 1
	}
	return w.Offset/w.Limit + 1
}

// ForUser returns the self, update and delete links of a single user.
func ForUser(baseURL, id string) []domain.Link {
	href := fmt.Sprintf("%s/users/%s", trim(baseURL), id)
	return []domain.Link{
		{Rel: "self", Href: href, Method: http.MethodGet},
		{Rel: "update", Href: href, Method: http.MethodPut},
		{Rel: "delete", Href: href, Method: http.MethodDelete},
	}
}

// ForPage returns self, first and last links, plus next when
// offset+limit < total and prev when offset > 0.
func ForPage(baseURL string, offset, limit int, total int64) []domain.Link {
	w := Window{Offset: offset, Limit: limit, Total: total}
	base := trim(baseURL) + "/users"

	out := []domain.Link{
		pageLink("self", base, w.Offset, limit),
		pageLink("first", base, w.First(), limit),
		pageLink("last", base, w.Last(), limit),
	}
	if next, ok := w.Next(); ok {
		out = append(out, pageLink("next", base, next, limit))
	}
	if prev, ok := w.Prev(); ok {
		out = append(out, pageLink("prev", base, prev, limit))
	}
	return out
}

// Find returns the link with the given rel.
func Find(ls []domain.Link, rel string) (domain.Link, bool) {
	for _, l := range ls {
		if l.Rel == rel {
			return l, true
		}
	}
	return domain.Link{}, false
}

func pageLink(rel, base string, skip, limit int) domain.Link {
	return domain.Link{
		Rel:    rel,
		Href:   fmt.Sprintf("%s?skip=%d&limit=%d", base, skip, limit),
		Method: http.MethodGet,
	}
}

func trim(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
