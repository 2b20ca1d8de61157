package diagram

// Coord is a cached pixel position for one diagram node.
type Coord struct {
	X float64
	Y float64
}

// Arena is the single shared coordinate table. Placements are keyed by
// Placement.Key, workstream lanes by WorkstreamKey. Layout, drag and
// connection drawing all read and write through it, so there is exactly one
// coordinate per node rather than competing trackers for originals and
// duplicates.
type Arena struct {
	coords map[string]Coord
}

func NewArena() *Arena {
	return &Arena{coords: make(map[string]Coord)}
}

func (a *Arena) Get(key string) (Coord, bool) {
	c, ok := a.coords[key]
	return c, ok
}

func (a *Arena) Set(key string, c Coord) {
	a.coords[key] = c
}

// SetY updates only the vertical coordinate, keeping the cached x.
func (a *Arena) SetY(key string, y float64) {
	c := a.coords[key]
	c.Y = y
	a.coords[key] = c
}

// SetX updates only the horizontal coordinate, keeping the cached y.
func (a *Arena) SetX(key string, x float64) {
	c := a.coords[key]
	c.X = x
	a.coords[key] = c
}

func (a *Arena) Delete(key string) {
	delete(a.coords, key)
}

func (a *Arena) Len() int {
	return len(a.coords)
}

func (a *Arena) Clear() {
	a.coords = make(map[string]Coord)
}
