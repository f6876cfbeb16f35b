package interact

// Point is a position in canvas or display space.
type Point struct {
	X, Y float64
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Rect is the on-screen rectangle the rendered surface occupies.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Viewport relates a displayed surface to the canvas it shows.
type Viewport struct {
	CanvasWidth  int
	CanvasHeight int
	Display      Rect
}

// Scale returns canvas pixels per displayed pixel on each axis. A collapsed
// display rectangle maps one to one.
func (v Viewport) Scale() (float64, float64) {
	sx, sy := 1.0, 1.0
	if v.Display.Width > 0 {
		sx = float64(v.CanvasWidth) / v.Display.Width
	}
	if v.Display.Height > 0 {
		sy = float64(v.CanvasHeight) / v.Display.Height
	}
	return sx, sy
}

// ToCanvas maps client coordinates into canvas space.
func (v Viewport) ToCanvas(clientX, clientY float64) Point {
	sx, sy := v.Scale()
	return Point{
		X: (clientX - v.Display.Left) * sx,
		Y: (clientY - v.Display.Top) * sy,
	}
}

// ToDisplay maps a canvas point back into client coordinates.
func (v Viewport) ToDisplay(p Point) Point {
	sx, sy := v.Scale()
	return Point{
		X: p.X/sx + v.Display.Left,
		Y: p.Y/sy + v.Display.Top,
	}
}
