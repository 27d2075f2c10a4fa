package listutil

import (
	"net/url"
	"testing"
)

func TestParseListParams_Defaults(t *testing.T) {
	lp := ParseListParams(url.Values{}, []string{"name"}, nil)
	if lp.Page != 1 {
		t.Errorf("expected page 1, got %d", lp.Page)
	}
	if lp.PerPage != DefaultPerPage {
		t.Errorf("expected per_page %d, got %d", DefaultPerPage, lp.PerPage)
	}
	if lp.Sort != "" {
		t.Errorf("expected empty sort, got %s", lp.Sort)
	}
	if lp.Dir != "asc" {
		t.Errorf("expected dir=asc, got %s", lp.Dir)
	}
}

func TestParseListParams_Valid(t *testing.T) {
	q := url.Values{
		"page": {"3"}, "per_page": {"50"},
		"sort": {"name"}, "dir": {"desc"},
		"q": {"cazuela"}, "category": {"postre"},
	}
	lp := ParseListParams(q, []string{"name", "category"}, []string{"category"})
	if lp.Page != 3 || lp.PerPage != 50 {
		t.Errorf("expected page 3 per_page 50, got %d/%d", lp.Page, lp.PerPage)
	}
	if lp.Sort != "name" || lp.Dir != "desc" {
		t.Errorf("expected name/desc, got %s/%s", lp.Sort, lp.Dir)
	}
	if lp.Search != "cazuela" {
		t.Errorf("expected search=cazuela, got %s", lp.Search)
	}
	if lp.Filters["category"] != "postre" {
		t.Errorf("expected category=postre, got %s", lp.Filters["category"])
	}
}

func TestParseListParams_RejectsBadValues(t *testing.T) {
	q := url.Values{
		"page": {"-1"}, "per_page": {"25"},
		"sort": {"password_hash"}, "dir": {"DROP TABLE"},
		"role": {"empleado"},
	}
	lp := ParseListParams(q, []string{"email"}, []string{"category"})
	if lp.Page != 1 {
		t.Errorf("expected page clamped to 1, got %d", lp.Page)
	}
	if lp.PerPage != DefaultPerPage {
		t.Errorf("expected default per_page for unlisted value, got %d", lp.PerPage)
	}
	if lp.Sort != "" {
		t.Errorf("expected disallowed sort column dropped, got %s", lp.Sort)
	}
	if lp.Dir != "asc" {
		t.Errorf("expected dir=asc for invalid dir, got %s", lp.Dir)
	}
	if _, ok := lp.Filters["role"]; ok {
		t.Error("unexpected filter key 'role'")
	}
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		total      int
		wantPages  int
		wantPage   int
		wantStart  int
		wantEnd    int
		wantOffset int
	}{
		{"basic", 1, 20, 85, 5, 1, 1, 20, 0},
		{"page2", 2, 20, 85, 5, 2, 21, 40, 20},
		{"lastPage", 5, 20, 85, 5, 5, 81, 85, 80},
		{"pageBeyondTotal", 10, 20, 85, 5, 5, 81, 85, 80},
		{"emptyList", 1, 20, 0, 1, 1, 0, 0, 0},
		{"exactFit", 1, 10, 10, 1, 1, 1, 10, 0},
		{"singleRow", 1, 20, 1, 1, 1, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.perPage, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
			if pi.StartRow() != tt.wantStart {
				t.Errorf("StartRow: got %d, want %d", pi.StartRow(), tt.wantStart)
			}
			if pi.EndRow() != tt.wantEnd {
				t.Errorf("EndRow: got %d, want %d", pi.EndRow(), tt.wantEnd)
			}
			if pi.Offset() != tt.wantOffset {
				t.Errorf("Offset: got %d, want %d", pi.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		name string
		page int
		tot  int
		want []int
	}{
		{"3pages_at1", 1, 3, []int{1, 2, 3}},
		{"10pages_at1", 1, 10, []int{1, 2, 3, 4, 5}},
		{"10pages_at5", 5, 10, []int{3, 4, 5, 6, 7}},
		{"10pages_at10", 10, 10, []int{6, 7, 8, 9, 10}},
		{"1page", 1, 1, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, 20, tt.tot*20)
			got := pi.PageNumbers()
			if len(got) != len(tt.want) {
				t.Fatalf("PageNumbers length: got %d, want %d", len(got), len(tt.want))
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("PageNumbers[%d]: got %d, want %d", i, v, tt.want[i])
				}
			}
		})
	}
}

func TestShowPagination(t *testing.T) {
	if NewPageInfo(1, 20, 20).ShowPagination() {
		t.Error("should not show pagination when total == perPage")
	}
	if !NewPageInfo(1, 20, 21).ShowPagination() {
		t.Error("should show pagination when total > perPage")
	}
}
