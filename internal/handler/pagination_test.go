package handler

import "testing"

func TestNewPaginatedResponseMeta(t *testing.T) {
	tests := []struct {
		total     int64
		page      int
		limit     int
		wantPages int
	}{
		{0, 1, 10, 0},
		{1, 1, 10, 1},
		{10, 1, 10, 1},
		{11, 2, 10, 2},
		{25, 3, 10, 3},
	}
	for _, tt := range tests {
		resp := NewPaginatedResponse([]int{}, tt.total, tt.page, tt.limit)
		if resp.Meta.TotalPages != tt.wantPages {
			t.Errorf("total=%d limit=%d: pages = %d, want %d",
				tt.total, tt.limit, resp.Meta.TotalPages, tt.wantPages)
		}
		if resp.Meta.CurrentPage != tt.page || resp.Meta.PageSize != tt.limit {
			t.Errorf("meta = %+v", resp.Meta)
		}
	}
}
