package packet

// PlayerPosition is a player position in world coordinates. Stance is the eye
// height sent between Y and Z.
type PlayerPosition struct {
	X, Y, Stance, Z float64
}

func (p PlayerPosition) encode(w *Writer) {
	w.Float64(p.X)
	w.Float64(p.Y)
	w.Float64(p.Stance)
	w.Float64(p.Z)
}

func (p *PlayerPosition) decode(r *Reader) {
	p.X = r.Float64()
	p.Y = r.Float64()
	p.Stance = r.Float64()
	p.Z = r.Float64()
}

// PlayerLook is a player orientation in degrees.
type PlayerLook struct {
	Yaw, Pitch float64
}

func (l PlayerLook) encode(w *Writer) {
	w.Float64(l.Yaw)
	w.Float64(l.Pitch)
}

func (l *PlayerLook) decode(r *Reader) {
	l.Yaw = r.Float64()
	l.Pitch = r.Float64()
}

// EntityRotation is an entity orientation packed into 1/256 turns.
type EntityRotation struct {
	Yaw, Pitch int8
}

func (l EntityRotation) encode(w *Writer) {
	w.Int8(l.Yaw)
	w.Int8(l.Pitch)
}

func (l *EntityRotation) decode(r *Reader) {
	l.Yaw = r.Int8()
	l.Pitch = r.Int8()
}

// EntityPosition is an absolute entity position in fixed point (1/32 block).
type EntityPosition struct {
	X, Y, Z int32
}

func (p EntityPosition) encode(w *Writer) {
	w.Int32(p.X)
	w.Int32(p.Y)
	w.Int32(p.Z)
}

func (p *EntityPosition) decode(r *Reader) {
	p.X = r.Int32()
	p.Y = r.Int32()
	p.Z = r.Int32()
}

// EntityDelta is a small relative movement, one byte per axis.
type EntityDelta struct {
	X, Y, Z int8
}

func (v EntityDelta) encode(w *Writer) {
	w.Int8(v.X)
	w.Int8(v.Y)
	w.Int8(v.Z)
}

func (v *EntityDelta) decode(r *Reader) {
	v.X = r.Int8()
	v.Y = r.Int8()
	v.Z = r.Int8()
}

// EntityMotion is a velocity with two bytes per axis.
type EntityMotion struct {
	X, Y, Z int16
}

func (v EntityMotion) encode(w *Writer) {
	w.Int16(v.X)
	w.Int16(v.Y)
	w.Int16(v.Z)
}

func (v *EntityMotion) decode(r *Reader) {
	v.X = r.Int16()
	v.Y = r.Int16()
	v.Z = r.Int16()
}

// BlockPosition addresses a single block. Y is a byte since the world is 128 high.
type BlockPosition struct {
	X int32
	Y int8
	Z int32
}

func (p BlockPosition) encode(w *Writer) {
	w.Int32(p.X)
	w.Int8(p.Y)
	w.Int32(p.Z)
}

func (p *BlockPosition) decode(r *Reader) {
	p.X = r.Int32()
	p.Y = r.Int8()
	p.Z = r.Int32()
}

// BlockChange is one entry of a ChunkBlockSet. On the wire the entries are
// split into three parallel arrays.
type BlockChange struct {
	Position int16
	ID       uint8
	Metadata uint8
}

// ExplosionRecord is a block offset relative to the explosion centre.
type ExplosionRecord struct {
	X, Y, Z int8
}
