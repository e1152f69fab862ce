package systems

import "testing"

func TestGroundTilesStayAdjacent(t *testing.T) {
	g := NewGround(730, 672, 5)

	for i := 0; i < 1000; i++ {
		g.Move()
		gap := g.X2 - g.X1
		if gap != g.Width && gap != -g.Width {
			t.Fatalf("tick %d: tiles %v apart, want %v", i, gap, g.Width)
		}
		if g.X1+g.Width < 0 || g.X2+g.Width < 0 {
			t.Fatalf("tick %d: tile left the screen (%v, %v)", i, g.X1, g.X2)
		}
	}
}
