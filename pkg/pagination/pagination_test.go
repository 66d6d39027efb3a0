package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", DefaultLimit, 0},
		{"limit=5&offset=10", 5, 10},
		{"limit=9999", MaxLimit, 0},
		{"limit=-1&offset=-3", DefaultLimit, 0},
	}
	for _, tc := range cases {
		p := paramsFor(t, tc.query)
		if p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
			t.Errorf("query %q: got (%d, %d), want (%d, %d)",
				tc.query, p.Limit, p.Offset, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestSlice(t *testing.T) {
	p := Params{Limit: 10, Offset: 95}
	lo, hi := p.Slice(100)
	if lo != 95 || hi != 100 {
		t.Errorf("Slice(100) = (%d, %d), want (95, 100)", lo, hi)
	}

	p = Params{Limit: 10, Offset: 200}
	lo, hi = p.Slice(100)
	if lo != 100 || hi != 100 {
		t.Errorf("Slice beyond end = (%d, %d), want (100, 100)", lo, hi)
	}
}

func TestNewResponseHasMore(t *testing.T) {
	r := NewResponse(nil, 50, 20, 0)
	if !r.HasMore {
		t.Error("expected HasMore for first page of 50")
	}
	r = NewResponse(nil, 50, 20, 40)
	if r.HasMore {
		t.Error("expected no more after offset 40 of 50")
	}
}
