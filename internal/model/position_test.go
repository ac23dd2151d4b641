package model

import "testing"

func TestPosition_Tile(t *testing.T) {
	tests := []struct {
		x, y   int32
		tx, ty int32
	}{
		{0, 0, 0, 0},
		{31, 31, 0, 0},
		{32, 31, 1, 0},
		{1000, 2048, 31, 64},
	}
	for _, tt := range tests {
		pos := NewPosition(1, tt.x, tt.y)
		tx, ty := pos.Tile()
		if tx != tt.tx || ty != tt.ty {
			t.Errorf("Tile() of (%d, %d) = (%d, %d), want (%d, %d)", tt.x, tt.y, tx, ty, tt.tx, tt.ty)
		}
	}
}

func TestPosition_DistanceSquared(t *testing.T) {
	a := NewPosition(1, 0, 0)
	b := NewPosition(1, 3, 4)
	if got := a.DistanceSquared(b); got != 25 {
		t.Errorf("DistanceSquared() = %d, want 25", got)
	}
}

func TestPosition_WithCoordinates(t *testing.T) {
	a := NewPosition(3, 10, 20)
	b := a.WithCoordinates(30, 40)

	if b.MapID != 3 || b.X != 30 || b.Y != 40 {
		t.Errorf("WithCoordinates() = %+v", b)
	}
	if a.X != 10 || a.Y != 20 {
		t.Error("WithCoordinates() must not mutate the receiver")
	}
}
