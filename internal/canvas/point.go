package canvas

// Point is a signed 64-bit canvas coordinate. Coordinates are never
// clamped; the canvas is conceptually infinite in all four directions.
type Point struct {
	X int64
	Y int64
}
