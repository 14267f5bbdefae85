package repository

import "testing"

func TestPaginationWithDefaults(t *testing.T) {
	cases := []struct {
		in         Pagination
		want       Pagination
		wantOffset int32
	}{
		{Pagination{}, Pagination{PageNo: 1, PageSize: 10}, 0},
		{Pagination{PageNo: 3, PageSize: 25}, Pagination{PageNo: 3, PageSize: 25}, 50},
		{Pagination{PageNo: -2, PageSize: 500}, Pagination{PageNo: 1, PageSize: MaxPageSize}, 0},
	}
	for _, tc := range cases {
		got := tc.in.WithDefaults(10)
		if got != tc.want {
			t.Fatalf("WithDefaults(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
		if got.Offset() != tc.wantOffset {
			t.Fatalf("Offset(%+v) = %d, want %d", got, got.Offset(), tc.wantOffset)
		}
	}
}
