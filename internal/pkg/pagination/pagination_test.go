package pagination

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults applied", 0, 0, 1, DefaultLimit, 0},
		{"negative page clamped", -3, 10, 1, 10, 0},
		{"limit capped at max", 2, 500, 2, MaxLimit, MaxLimit},
		{"plain values", 3, 25, 3, 25, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.limit)
			if p.Page != tt.wantPage || p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
				t.Errorf("New(%d, %d) = {page:%d limit:%d offset:%d}, want {page:%d limit:%d offset:%d}",
					tt.page, tt.limit, p.Page, p.Limit, p.Offset, tt.wantPage, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestGetMeta(t *testing.T) {
	tests := []struct {
		name           string
		page           int
		limit          int
		total          int64
		wantTotalPages int
		wantHasNext    bool
		wantHasPrev    bool
	}{
		{"single page", 1, 20, 5, 1, false, false},
		{"exact boundary", 2, 20, 40, 2, false, true},
		{"partial last page", 1, 20, 41, 3, true, false},
		{"empty set", 1, 20, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := GetMeta(New(tt.page, tt.limit), tt.total)
			if meta.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tt.wantTotalPages)
			}
			if meta.HasNext != tt.wantHasNext {
				t.Errorf("HasNext = %v, want %v", meta.HasNext, tt.wantHasNext)
			}
			if meta.HasPrev != tt.wantHasPrev {
				t.Errorf("HasPrev = %v, want %v", meta.HasPrev, tt.wantHasPrev)
			}
		})
	}
}
