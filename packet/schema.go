// Package packet defines the closed set of protocol packets, their field
// layouts and the primitive wire types they are built from.
//
// Every packet is a tag byte followed by the fields of its variant in
// declaration order. Integers and floats are big-endian. The Schema table is
// the single source of truth for which tags exist.
package packet

import (
	"fmt"
	"reflect"
	"sort"
)

// Tag is the one byte discriminant that starts every frame.
type Tag uint8

// Packet is implemented by every variant. Decode reads fields in wire order;
// failures are recorded on the Reader and reported by Reader.Err.
type Packet interface {
	Tag() Tag
	Encode(w *Writer)
	Decode(r *Reader)
}

// Kind describes the wire shape of one field.
type Kind int

const (
	KindU8 Kind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindBool
	KindString
	KindPlayerPosition
	KindPlayerLook
	KindEntityRotation
	KindEntityPosition
	KindEntityDelta
	KindEntityMotion
	KindBlockPosition
	KindOptionalEntityMotion // present iff the preceding bool is 1
	KindBytes32              // i32 count + bytes
	KindBlockChanges16       // i16 count + three parallel arrays
	KindExplosionRecords32   // i32 count + [3]i8 records
	KindStrings4             // four strings, no count
)

var _kindMinSize = map[Kind]int{
	KindU8:                   1,
	KindI8:                   1,
	KindI16:                  2,
	KindI32:                  4,
	KindI64:                  8,
	KindF32:                  4,
	KindF64:                  8,
	KindBool:                 1,
	KindString:               2,
	KindPlayerPosition:       32,
	KindPlayerLook:           16,
	KindEntityRotation:       2,
	KindEntityPosition:       12,
	KindEntityDelta:          3,
	KindEntityMotion:         6,
	KindBlockPosition:        9,
	KindOptionalEntityMotion: 0,
	KindBytes32:              4,
	KindBlockChanges16:       2,
	KindExplosionRecords32:   4,
	KindStrings4:             8,
}

// MinSize returns the number of bytes the field takes when every variable
// part is empty.
func (k Kind) MinSize() int {
	return _kindMinSize[k]
}

// Field names one field of a variant.
type Field struct {
	Name string
	Kind Kind
}

// Shape is the schema entry for one tag.
type Shape struct {
	Name   string
	Fields []Field
	New    func() Packet
}

// MinSize returns the smallest frame size for the shape, tag byte included.
func (s Shape) MinSize() int {
	n := 1
	for _, f := range s.Fields {
		n += f.Kind.MinSize()
	}
	return n
}

func f(name string, kind Kind) Field { return Field{Name: name, Kind: kind} }

// Schema maps every known tag to its shape.
var Schema = map[Tag]Shape{
	TagKeepAlive: {"KeepAlive", nil, func() Packet { return &KeepAlive{} }},
	TagLogin: {"Login", []Field{
		f("protocol_version", KindI32), f("username", KindString), f("random_seed", KindI64), f("dimension", KindU8),
	}, func() Packet { return &Login{} }},
	TagHandshake: {"Handshake", []Field{f("username", KindString)}, func() Packet { return &Handshake{} }},
	TagChat:      {"Chat", []Field{f("message", KindString)}, func() Packet { return &Chat{} }},
	TagUpdateTime: {"UpdateTime", []Field{f("time", KindI64)}, func() Packet { return &UpdateTime{} }},
	TagPlayerInventory: {"PlayerInventory", []Field{
		f("entity_id", KindI32), f("slot", KindI16), f("item_id", KindI16), f("item_damage", KindI16),
	}, func() Packet { return &PlayerInventory{} }},
	TagSpawnPosition: {"SpawnPosition", []Field{
		f("x", KindI32), f("y", KindI32), f("z", KindI32),
	}, func() Packet { return &SpawnPosition{} }},
	TagInteract: {"Interact", []Field{
		f("player_id", KindI32), f("target_id", KindI32), f("left_click", KindBool),
	}, func() Packet { return &Interact{} }},
	TagUpdateHealth: {"UpdateHealth", []Field{f("health", KindI16)}, func() Packet { return &UpdateHealth{} }},
	TagRespawn:      {"Respawn", []Field{f("dimension", KindI8)}, func() Packet { return &Respawn{} }},
	TagFlying:       {"Flying", []Field{f("on_ground", KindBool)}, func() Packet { return &Flying{} }},
	TagPosition: {"Position", []Field{
		f("position", KindPlayerPosition), f("on_ground", KindBool),
	}, func() Packet { return &Position{} }},
	TagLook: {"Look", []Field{
		f("look", KindPlayerLook), f("on_ground", KindBool),
	}, func() Packet { return &Look{} }},
	TagPositionLook: {"PositionLook", []Field{
		f("position", KindPlayerPosition), f("look", KindPlayerLook), f("on_ground", KindBool),
	}, func() Packet { return &PositionLook{} }},
	TagBreakBlock: {"BreakBlock", []Field{
		f("status", KindBool), f("position", KindBlockPosition), f("face", KindU8),
	}, func() Packet { return &BreakBlock{} }},
	TagPlaceBlock: {"PlaceBlock", []Field{
		f("position", KindBlockPosition), f("direction", KindU8),
	}, func() Packet { return &PlaceBlock{} }},
	TagHandSlot: {"HandSlot", []Field{f("slot", KindI16)}, func() Packet { return &HandSlot{} }},
	TagPlayerSleep: {"PlayerSleep", []Field{
		f("entity_id", KindI32), f("unused", KindI8), f("position", KindBlockPosition),
	}, func() Packet { return &PlayerSleep{} }},
	TagEntityAnimation: {"EntityAnimation", []Field{
		f("entity_id", KindI32), f("animate", KindI8),
	}, func() Packet { return &EntityAnimation{} }},
	TagEntityAction: {"EntityAction", []Field{
		f("entity_id", KindI32), f("state", KindI8),
	}, func() Packet { return &EntityAction{} }},
	TagHumanSpawn: {"HumanSpawn", []Field{
		f("entity_id", KindI32), f("username", KindString), f("position", KindEntityPosition),
		f("yaw", KindI8), f("pitch", KindI8), f("current_item", KindI16),
	}, func() Packet { return &HumanSpawn{} }},
	TagItemSpawn: {"ItemSpawn", []Field{
		f("entity_id", KindI32), f("stack_id", KindI16), f("stack_size", KindI8), f("stack_damage", KindI16),
		f("position", KindEntityPosition), f("velocity", KindEntityDelta),
	}, func() Packet { return &ItemSpawn{} }},
	TagEntityPickup: {"EntityPickup", []Field{
		f("target_entity_id", KindI32), f("entity_id", KindI32),
	}, func() Packet { return &EntityPickup{} }},
	TagObjectSpawn: {"ObjectSpawn", []Field{
		f("entity_id", KindI32), f("kind", KindI8), f("position", KindEntityPosition),
		f("has_velocity", KindBool), f("velocity", KindOptionalEntityMotion),
	}, func() Packet { return &ObjectSpawn{} }},
	TagMobSpawn: {"MobSpawn", []Field{
		f("entity_id", KindI32), f("kind", KindI8), f("position", KindEntityPosition),
		f("yaw", KindI8), f("pitch", KindI8),
	}, func() Packet { return &MobSpawn{} }},
	TagPaintingSpawn: {"PaintingSpawn", []Field{
		f("entity_id", KindI32), f("title", KindString), f("position", KindEntityPosition), f("direction", KindI32),
	}, func() Packet { return &PaintingSpawn{} }},
	TagEntityVelocity: {"EntityVelocity", []Field{
		f("entity_id", KindI32), f("velocity", KindEntityMotion),
	}, func() Packet { return &EntityVelocity{} }},
	TagEntityKill: {"EntityKill", []Field{f("entity_id", KindI32)}, func() Packet { return &EntityKill{} }},
	TagEntity:     {"Entity", []Field{f("entity_id", KindI32)}, func() Packet { return &Entity{} }},
	TagEntityMove: {"EntityMove", []Field{
		f("entity_id", KindI32), f("delta", KindEntityDelta),
	}, func() Packet { return &EntityMove{} }},
	TagEntityLook: {"EntityLook", []Field{
		f("entity_id", KindI32), f("look", KindEntityRotation),
	}, func() Packet { return &EntityLook{} }},
	TagEntityMoveAndLook: {"EntityMoveAndLook", []Field{
		f("entity_id", KindI32), f("delta", KindEntityDelta), f("look", KindEntityRotation),
	}, func() Packet { return &EntityMoveAndLook{} }},
	TagEntityPositionAndLook: {"EntityPositionAndLook", []Field{
		f("entity_id", KindI32), f("position", KindEntityPosition), f("look", KindEntityRotation),
	}, func() Packet { return &EntityPositionAndLook{} }},
	TagEntityStatus: {"EntityStatus", []Field{
		f("entity_id", KindI32), f("status", KindI8),
	}, func() Packet { return &EntityStatus{} }},
	TagEntityRide: {"EntityRide", []Field{
		f("entity_id", KindI32), f("vehicle_entity_id", KindI32),
	}, func() Packet { return &EntityRide{} }},
	TagEntityMetadata: {"EntityMetadata", []Field{f("entity_id", KindI32)}, func() Packet { return &EntityMetadata{} }},
	TagChunkState: {"ChunkState", []Field{
		f("chunk_x", KindI32), f("chunk_z", KindI32), f("init", KindBool),
	}, func() Packet { return &ChunkState{} }},
	TagChunkData: {"ChunkData", []Field{
		f("x", KindI32), f("y", KindI16), f("z", KindI32),
		f("x_size", KindI8), f("y_size", KindI8), f("z_size", KindI8), f("data", KindBytes32),
	}, func() Packet { return &ChunkData{} }},
	TagChunkBlockSet: {"ChunkBlockSet", []Field{
		f("chunk_x", KindI32), f("chunk_z", KindI32), f("blocks", KindBlockChanges16),
	}, func() Packet { return &ChunkBlockSet{} }},
	TagBlockSet: {"BlockSet", []Field{
		f("position", KindBlockPosition), f("block", KindI8), f("metadata", KindI8),
	}, func() Packet { return &BlockSet{} }},
	TagBlockAction: {"BlockAction", []Field{
		f("position", KindBlockPosition), f("data0", KindI8), f("data1", KindI8),
	}, func() Packet { return &BlockAction{} }},
	TagExplosion: {"Explosion", []Field{
		f("x", KindF64), f("y", KindF64), f("z", KindF64), f("size", KindF32), f("records", KindExplosionRecords32),
	}, func() Packet { return &Explosion{} }},
	TagWindowClose: {"WindowClose", []Field{f("window_id", KindU8)}, func() Packet { return &WindowClose{} }},
	TagWindowClick: {"WindowClick", []Field{
		f("window_id", KindU8), f("slot", KindI16), f("right_click", KindBool),
		f("transaction_id", KindI32), f("shift_click", KindBool),
	}, func() Packet { return &WindowClick{} }},
	TagWindowTransaction: {"WindowTransaction", []Field{
		f("window_id", KindU8), f("transaction_id", KindI32), f("accepted", KindBool),
	}, func() Packet { return &WindowTransaction{} }},
	TagUpdateSign: {"UpdateSign", []Field{
		f("x", KindI32), f("y", KindI16), f("z", KindI32), f("lines", KindStrings4),
	}, func() Packet { return &UpdateSign{} }},
	TagDisconnect: {"Disconnect", []Field{f("reason", KindString)}, func() Packet { return &Disconnect{} }},
}

// Lookup returns the shape registered for tag.
func Lookup(tag Tag) (Shape, bool) {
	s, ok := Schema[tag]
	return s, ok
}

// New returns an empty packet for tag, or ErrUnknownTag.
func New(tag Tag) (Packet, error) {
	s, ok := Schema[tag]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, uint8(tag))
	}
	return s.New(), nil
}

// IsNil reports whether p is nil or a nil pointer to a variant.
func IsNil(p Packet) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Name returns the variant name of p, or "Unknown".
func Name(p Packet) string {
	if p == nil {
		return "Unknown"
	}
	if s, ok := Schema[p.Tag()]; ok {
		return s.Name
	}
	return "Unknown"
}

// Tags returns every known tag in ascending order.
func Tags() []Tag {
	tags := make([]Tag, 0, len(Schema))
	for t := range Schema {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
