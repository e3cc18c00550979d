package listutil

import (
	"net/url"
	"testing"
)

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"defaults", "", 1, DefaultPerPage},
		{"explicit values", "page=3&per_page=50", 3, 50},
		{"zero page clamps to 1", "page=0", 1, DefaultPerPage},
		{"negative page clamps to 1", "page=-2", 1, DefaultPerPage},
		{"oversized per_page falls back", "per_page=5000", 1, DefaultPerPage},
		{"garbage values fall back", "page=abc&per_page=xyz", 1, DefaultPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got := ParsePageParams(q)
			if got.Page != tt.wantPage || got.PerPage != tt.wantPerPage {
				t.Errorf("got %+v, want page=%d per_page=%d", got, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name           string
		page, perPage  int
		total          int
		wantPage       int
		wantTotalPages int
	}{
		{"first page", 1, 20, 45, 1, 3},
		{"exact fit", 2, 20, 40, 2, 2},
		{"page beyond end clamps", 9, 20, 45, 3, 3},
		{"empty result", 1, 20, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewPageInfo(tt.page, tt.perPage, tt.total)
			if info.Page != tt.wantPage || info.TotalPages != tt.wantTotalPages {
				t.Errorf("got %+v, want page=%d total_pages=%d", info, tt.wantPage, tt.wantTotalPages)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5, 6, 7}

	t.Run("middle page", func(t *testing.T) {
		info := NewPageInfo(2, 3, len(rows))
		got := Paginate(rows, info)
		if len(got) != 3 || got[0] != 4 {
			t.Errorf("got %v", got)
		}
	})

	t.Run("short last page", func(t *testing.T) {
		info := NewPageInfo(3, 3, len(rows))
		got := Paginate(rows, info)
		if len(got) != 1 || got[0] != 7 {
			t.Errorf("got %v", got)
		}
	})

	t.Run("empty rows", func(t *testing.T) {
		info := NewPageInfo(1, 3, 0)
		if got := Paginate([]int{}, info); len(got) != 0 {
			t.Errorf("got %v", got)
		}
	})
}
