package systems

// Ground is the cosmetic base strip: two tiles scrolling left, each jumping
// behind the other once it leaves the screen.
type Ground struct {
	Y        float64
	X1, X2   float64
	Width    float64
	Velocity float64
}

// NewGround creates a ground strip at y with tiles of the given width.
func NewGround(y float64, width int, velocity float64) *Ground {
	return &Ground{
		Y:        y,
		X1:       0,
		X2:       float64(width),
		Width:    float64(width),
		Velocity: velocity,
	}
}

// Move scrolls both tiles one tick.
func (g *Ground) Move() {
	g.X1 -= g.Velocity
	g.X2 -= g.Velocity

	if g.X1+g.Width < 0 {
		g.X1 = g.X2 + g.Width
	}
	if g.X2+g.Width < 0 {
		g.X2 = g.X1 + g.Width
	}
}
