package paging

import "testing"

func TestNormalize(t *testing.T) {
	page, size, window := Normalize(0, 500)
	if page != 1 || size != 100 || window.Offset != 0 || window.Limit != 100 {
		t.Fatalf("unexpected normalization: %d %d %+v", page, size, window)
	}
	_, _, window = Normalize(3, 10)
	if window.Offset != 20 {
		t.Fatalf("expected offset 20, got %d", window.Offset)
	}
}

func TestTotalPages(t *testing.T) {
	if got := TotalPages(41, 20); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := TotalPages(0, 20); got != 0 {
		t.Fatalf("expected 0 pages, got %d", got)
	}
}
