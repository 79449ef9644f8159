package core

import "testing"

func TestRectContains(t *testing.T) {
	r := NewRect(2, 3, 4, 5)
	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"top-left corner", 2, 3, true},
		{"inside", 4, 5, true},
		{"last column", 5, 7, true},
		{"right edge (exclusive)", 6, 3, false},
		{"bottom edge (exclusive)", 2, 8, false},
		{"left of rect", 1, 4, false},
		{"above rect", 3, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.expected {
				t.Errorf("Contains(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.expected)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(10, 20, 5, 7)
	if r.Right() != 15 {
		t.Errorf("Right() = %d, want 15", r.Right())
	}
	if r.Bottom() != 27 {
		t.Errorf("Bottom() = %d, want 27", r.Bottom())
	}
}

func TestRectCentered(t *testing.T) {
	tests := []struct {
		name     string
		outer    Rect
		w, h     int
		expected Rect
	}{
		{"even fit", NewRect(0, 0, 10, 10), 4, 2, NewRect(3, 4, 4, 2)},
		{"odd remainder rounds down", NewRect(0, 0, 9, 9), 4, 4, NewRect(2, 2, 4, 4)},
		{"offset outer", NewRect(5, 5, 10, 4), 10, 4, NewRect(5, 5, 10, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outer.Centered(tt.w, tt.h); got != tt.expected {
				t.Errorf("Centered(%d, %d) = %+v, want %+v", tt.w, tt.h, got, tt.expected)
			}
		})
	}
}
