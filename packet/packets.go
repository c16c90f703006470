package packet

// Tag values. Every tag maps to exactly one variant in Schema.
const (
	TagKeepAlive             Tag = 0
	TagLogin                 Tag = 1
	TagHandshake             Tag = 2
	TagChat                  Tag = 3
	TagUpdateTime            Tag = 4
	TagPlayerInventory       Tag = 5
	TagSpawnPosition         Tag = 6
	TagInteract              Tag = 7
	TagUpdateHealth          Tag = 8
	TagRespawn               Tag = 9
	TagFlying                Tag = 10
	TagPosition              Tag = 11
	TagLook                  Tag = 12
	TagPositionLook          Tag = 13
	TagBreakBlock            Tag = 14
	TagPlaceBlock            Tag = 15
	TagHandSlot              Tag = 16
	TagPlayerSleep           Tag = 17
	TagEntityAnimation       Tag = 18
	TagEntityAction          Tag = 19
	TagHumanSpawn            Tag = 20
	TagItemSpawn             Tag = 21
	TagEntityPickup          Tag = 22
	TagObjectSpawn           Tag = 23
	TagMobSpawn              Tag = 24
	TagPaintingSpawn         Tag = 25
	TagEntityVelocity        Tag = 28
	TagEntityKill            Tag = 29
	TagEntity                Tag = 30
	TagEntityMove            Tag = 31
	TagEntityLook            Tag = 32
	TagEntityMoveAndLook     Tag = 33
	TagEntityPositionAndLook Tag = 34
	TagEntityStatus          Tag = 38
	TagEntityRide            Tag = 39
	TagEntityMetadata        Tag = 40
	TagChunkState            Tag = 50
	TagChunkData             Tag = 51
	TagChunkBlockSet         Tag = 52
	TagBlockSet              Tag = 53
	TagBlockAction           Tag = 54
	TagExplosion             Tag = 60
	TagWindowClose           Tag = 101
	TagWindowClick           Tag = 102
	TagWindowTransaction     Tag = 106
	TagUpdateSign            Tag = 130
	TagDisconnect            Tag = 255
)

// KeepAlive is sent periodically by both sides; the server echoes it.
type KeepAlive struct{}

func (*KeepAlive) Tag() Tag         { return TagKeepAlive }
func (*KeepAlive) Encode(*Writer)   {}
func (*KeepAlive) Decode(r *Reader) {}

// Login answers a Handshake and carries the world seed and dimension.
type Login struct {
	ProtocolVersion int32
	Username        WireString
	RandomSeed      int64
	Dimension       uint8
}

func (*Login) Tag() Tag { return TagLogin }

func (p *Login) Encode(w *Writer) {
	w.Int32(p.ProtocolVersion)
	w.String(p.Username)
	w.Int64(p.RandomSeed)
	w.Uint8(p.Dimension)
}

func (p *Login) Decode(r *Reader) {
	p.ProtocolVersion = r.Int32()
	p.Username = r.String()
	p.RandomSeed = r.Int64()
	p.Dimension = r.Uint8()
}

// Handshake is the first packet a client sends.
type Handshake struct {
	Username WireString
}

func (*Handshake) Tag() Tag           { return TagHandshake }
func (p *Handshake) Encode(w *Writer) { w.String(p.Username) }
func (p *Handshake) Decode(r *Reader) { p.Username = r.String() }

// Chat is one line of chat text.
type Chat struct {
	Message WireString
}

func (*Chat) Tag() Tag           { return TagChat }
func (p *Chat) Encode(w *Writer) { w.String(p.Message) }
func (p *Chat) Decode(r *Reader) { p.Message = r.String() }

// UpdateTime sets the world time in ticks.
type UpdateTime struct {
	Time int64
}

func (*UpdateTime) Tag() Tag           { return TagUpdateTime }
func (p *UpdateTime) Encode(w *Writer) { w.Int64(p.Time) }
func (p *UpdateTime) Decode(r *Reader) { p.Time = r.Int64() }

// PlayerInventory replaces the contents of one inventory section.
type PlayerInventory struct {
	EntityID   int32
	Slot       int16
	ItemID     int16
	ItemDamage int16
}

func (*PlayerInventory) Tag() Tag { return TagPlayerInventory }

func (p *PlayerInventory) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.Int16(p.Slot)
	w.Int16(p.ItemID)
	w.Int16(p.ItemDamage)
}

func (p *PlayerInventory) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Slot = r.Int16()
	p.ItemID = r.Int16()
	p.ItemDamage = r.Int16()
}

// SpawnPosition is the world spawn point used by the compass.
type SpawnPosition struct {
	X, Y, Z int32
}

func (*SpawnPosition) Tag() Tag { return TagSpawnPosition }

func (p *SpawnPosition) Encode(w *Writer) {
	w.Int32(p.X)
	w.Int32(p.Y)
	w.Int32(p.Z)
}

func (p *SpawnPosition) Decode(r *Reader) {
	p.X = r.Int32()
	p.Y = r.Int32()
	p.Z = r.Int32()
}

// Interact is a player using or attacking an entity.
type Interact struct {
	PlayerID  int32
	TargetID  int32
	LeftClick WireBool
}

func (*Interact) Tag() Tag { return TagInteract }

func (p *Interact) Encode(w *Writer) {
	w.Int32(p.PlayerID)
	w.Int32(p.TargetID)
	w.Bool(p.LeftClick)
}

func (p *Interact) Decode(r *Reader) {
	p.PlayerID = r.Int32()
	p.TargetID = r.Int32()
	p.LeftClick = r.Bool()
}

// UpdateHealth sets the player health.
type UpdateHealth struct {
	Health int16
}

func (*UpdateHealth) Tag() Tag           { return TagUpdateHealth }
func (p *UpdateHealth) Encode(w *Writer) { w.Int16(p.Health) }
func (p *UpdateHealth) Decode(r *Reader) { p.Health = r.Int16() }

// Respawn asks to respawn in a dimension.
type Respawn struct {
	Dimension int8
}

func (*Respawn) Tag() Tag           { return TagRespawn }
func (p *Respawn) Encode(w *Writer) { w.Int8(p.Dimension) }
func (p *Respawn) Decode(r *Reader) { p.Dimension = r.Int8() }

// Flying reports whether the player is on the ground.
type Flying struct {
	OnGround WireBool
}

func (*Flying) Tag() Tag           { return TagFlying }
func (p *Flying) Encode(w *Writer) { w.Bool(p.OnGround) }
func (p *Flying) Decode(r *Reader) { p.OnGround = r.Bool() }

// Position is a player move without a look change.
type Position struct {
	Position PlayerPosition
	OnGround WireBool
}

func (*Position) Tag() Tag { return TagPosition }

func (p *Position) Encode(w *Writer) {
	p.Position.encode(w)
	w.Bool(p.OnGround)
}

func (p *Position) Decode(r *Reader) {
	p.Position.decode(r)
	p.OnGround = r.Bool()
}

// Look is a player look change without a move.
type Look struct {
	Look     PlayerLook
	OnGround WireBool
}

func (*Look) Tag() Tag { return TagLook }

func (p *Look) Encode(w *Writer) {
	p.Look.encode(w)
	w.Bool(p.OnGround)
}

func (p *Look) Decode(r *Reader) {
	p.Look.decode(r)
	p.OnGround = r.Bool()
}

// PositionLook is a player move and look change together.
type PositionLook struct {
	Position PlayerPosition
	Look     PlayerLook
	OnGround WireBool
}

func (*PositionLook) Tag() Tag { return TagPositionLook }

func (p *PositionLook) Encode(w *Writer) {
	p.Position.encode(w)
	p.Look.encode(w)
	w.Bool(p.OnGround)
}

func (p *PositionLook) Decode(r *Reader) {
	p.Position.decode(r)
	p.Look.decode(r)
	p.OnGround = r.Bool()
}

// BreakBlock is a digging status update on one block face.
type BreakBlock struct {
	Status   WireBool
	Position BlockPosition
	Face     uint8
}

func (*BreakBlock) Tag() Tag { return TagBreakBlock }

func (p *BreakBlock) Encode(w *Writer) {
	w.Bool(p.Status)
	p.Position.encode(w)
	w.Uint8(p.Face)
}

func (p *BreakBlock) Decode(r *Reader) {
	p.Status = r.Bool()
	p.Position.decode(r)
	p.Face = r.Uint8()
}

// PlaceBlock carries no item stack; the legacy client sends none for this tag.
type PlaceBlock struct {
	Position  BlockPosition
	Direction uint8
}

func (*PlaceBlock) Tag() Tag { return TagPlaceBlock }

func (p *PlaceBlock) Encode(w *Writer) {
	p.Position.encode(w)
	w.Uint8(p.Direction)
}

func (p *PlaceBlock) Decode(r *Reader) {
	p.Position.decode(r)
	p.Direction = r.Uint8()
}

// HandSlot selects the held hotbar slot.
type HandSlot struct {
	Slot int16
}

func (*HandSlot) Tag() Tag           { return TagHandSlot }
func (p *HandSlot) Encode(w *Writer) { w.Int16(p.Slot) }
func (p *HandSlot) Decode(r *Reader) { p.Slot = r.Int16() }

// PlayerSleep puts a player into a bed.
type PlayerSleep struct {
	EntityID int32
	Unused   int8
	Position BlockPosition
}

func (*PlayerSleep) Tag() Tag { return TagPlayerSleep }

func (p *PlayerSleep) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.Int8(p.Unused)
	p.Position.encode(w)
}

func (p *PlayerSleep) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Unused = r.Int8()
	p.Position.decode(r)
}

// EntityAnimation plays an animation such as an arm swing.
type EntityAnimation struct {
	EntityID int32
	Animate  int8
}

func (*EntityAnimation) Tag() Tag { return TagEntityAnimation }

func (p *EntityAnimation) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.Int8(p.Animate)
}

func (p *EntityAnimation) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Animate = r.Int8()
}

// EntityAction is a crouch, stand or leave-bed action.
type EntityAction struct {
	EntityID int32
	State    int8
}

func (*EntityAction) Tag() Tag { return TagEntityAction }

func (p *EntityAction) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.Int8(p.State)
}

func (p *EntityAction) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.State = r.Int8()
}

// HumanSpawn shows another player to the client.
type HumanSpawn struct {
	EntityID    int32
	Username    WireString
	Position    EntityPosition
	Yaw         int8
	Pitch       int8
	CurrentItem int16
}

func (*HumanSpawn) Tag() Tag { return TagHumanSpawn }

func (p *HumanSpawn) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.String(p.Username)
	p.Position.encode(w)
	w.Int8(p.Yaw)
	w.Int8(p.Pitch)
	w.Int16(p.CurrentItem)
}

func (p *HumanSpawn) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Username = r.String()
	p.Position.decode(r)
	p.Yaw = r.Int8()
	p.Pitch = r.Int8()
	p.CurrentItem = r.Int16()
}

// ItemSpawn drops an item entity into the world.
type ItemSpawn struct {
	EntityID    int32
	StackID     int16
	StackSize   int8
	StackDamage int16
	Position    EntityPosition
	Velocity    EntityDelta
}

func (*ItemSpawn) Tag() Tag { return TagItemSpawn }

func (p *ItemSpawn) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.Int16(p.StackID)
	w.Int8(p.StackSize)
	w.Int16(p.StackDamage)
	p.Position.encode(w)
	p.Velocity.encode(w)
}

func (p *ItemSpawn) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.StackID = r.Int16()
	p.StackSize = r.Int8()
	p.StackDamage = r.Int16()
	p.Position.decode(r)
	p.Velocity.decode(r)
}

// EntityPickup is an entity collecting an item entity.
type EntityPickup struct {
	TargetEntityID int32
	EntityID       int32
}

func (*EntityPickup) Tag() Tag { return TagEntityPickup }

func (p *EntityPickup) Encode(w *Writer) {
	w.Int32(p.TargetEntityID)
	w.Int32(p.EntityID)
}

func (p *EntityPickup) Decode(r *Reader) {
	p.TargetEntityID = r.Int32()
	p.EntityID = r.Int32()
}

// ObjectSpawn writes has_velocity as Velocity != nil and the velocity only
// when it is set.
type ObjectSpawn struct {
	EntityID int32
	Kind     int8
	Position EntityPosition
	Velocity *EntityMotion
}

func (*ObjectSpawn) Tag() Tag { return TagObjectSpawn }

func (p *ObjectSpawn) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.Int8(p.Kind)
	p.Position.encode(w)
	w.Bool(p.Velocity != nil)
	if p.Velocity != nil {
		p.Velocity.encode(w)
	}
}

func (p *ObjectSpawn) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Kind = r.Int8()
	p.Position.decode(r)
	p.Velocity = nil
	if r.Bool() {
		v := &EntityMotion{}
		v.decode(r)
		p.Velocity = v
	}
}

// MobSpawn has no metadata trailer in this protocol revision.
type MobSpawn struct {
	EntityID int32
	Kind     int8
	Position EntityPosition
	Yaw      int8
	Pitch    int8
}

func (*MobSpawn) Tag() Tag { return TagMobSpawn }

func (p *MobSpawn) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.Int8(p.Kind)
	p.Position.encode(w)
	w.Int8(p.Yaw)
	w.Int8(p.Pitch)
}

func (p *MobSpawn) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Kind = r.Int8()
	p.Position.decode(r)
	p.Yaw = r.Int8()
	p.Pitch = r.Int8()
}

// PaintingSpawn places a painting on a block face.
type PaintingSpawn struct {
	EntityID  int32
	Title     WireString
	Position  EntityPosition
	Direction int32
}

func (*PaintingSpawn) Tag() Tag { return TagPaintingSpawn }

func (p *PaintingSpawn) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.String(p.Title)
	p.Position.encode(w)
	w.Int32(p.Direction)
}

func (p *PaintingSpawn) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Title = r.String()
	p.Position.decode(r)
	p.Direction = r.Int32()
}

// EntityVelocity sets an entity velocity in 1/8000 blocks per tick.
type EntityVelocity struct {
	EntityID int32
	Velocity EntityMotion
}

func (*EntityVelocity) Tag() Tag { return TagEntityVelocity }

func (p *EntityVelocity) Encode(w *Writer) {
	w.Int32(p.EntityID)
	p.Velocity.encode(w)
}

func (p *EntityVelocity) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Velocity.decode(r)
}

// EntityKill removes an entity from the client.
type EntityKill struct {
	EntityID int32
}

func (*EntityKill) Tag() Tag           { return TagEntityKill }
func (p *EntityKill) Encode(w *Writer) { w.Int32(p.EntityID) }
func (p *EntityKill) Decode(r *Reader) { p.EntityID = r.Int32() }

// Entity announces an entity id with no other state.
type Entity struct {
	EntityID int32
}

func (*Entity) Tag() Tag           { return TagEntity }
func (p *Entity) Encode(w *Writer) { w.Int32(p.EntityID) }
func (p *Entity) Decode(r *Reader) { p.EntityID = r.Int32() }

// EntityMove is a relative entity move in 1/32 blocks.
type EntityMove struct {
	EntityID int32
	Delta    EntityDelta
}

func (*EntityMove) Tag() Tag { return TagEntityMove }

func (p *EntityMove) Encode(w *Writer) {
	w.Int32(p.EntityID)
	p.Delta.encode(w)
}

func (p *EntityMove) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Delta.decode(r)
}

// EntityLook is an entity rotation change.
type EntityLook struct {
	EntityID int32
	Look     EntityRotation
}

func (*EntityLook) Tag() Tag { return TagEntityLook }

func (p *EntityLook) Encode(w *Writer) {
	w.Int32(p.EntityID)
	p.Look.encode(w)
}

func (p *EntityLook) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Look.decode(r)
}

// EntityMoveAndLook is a relative move and rotation together.
type EntityMoveAndLook struct {
	EntityID int32
	Delta    EntityDelta
	Look     EntityRotation
}

func (*EntityMoveAndLook) Tag() Tag { return TagEntityMoveAndLook }

func (p *EntityMoveAndLook) Encode(w *Writer) {
	w.Int32(p.EntityID)
	p.Delta.encode(w)
	p.Look.encode(w)
}

func (p *EntityMoveAndLook) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Delta.decode(r)
	p.Look.decode(r)
}

// EntityPositionAndLook teleports an entity to an absolute position.
type EntityPositionAndLook struct {
	EntityID int32
	Position EntityPosition
	Look     EntityRotation
}

func (*EntityPositionAndLook) Tag() Tag { return TagEntityPositionAndLook }

func (p *EntityPositionAndLook) Encode(w *Writer) {
	w.Int32(p.EntityID)
	p.Position.encode(w)
	p.Look.encode(w)
}

func (p *EntityPositionAndLook) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Position.decode(r)
	p.Look.decode(r)
}

// EntityStatus is an entity event such as hurt or dead.
type EntityStatus struct {
	EntityID int32
	Status   int8
}

func (*EntityStatus) Tag() Tag { return TagEntityStatus }

func (p *EntityStatus) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.Int8(p.Status)
}

func (p *EntityStatus) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.Status = r.Int8()
}

// EntityRide attaches an entity to a vehicle.
type EntityRide struct {
	EntityID        int32
	VehicleEntityID int32
}

func (*EntityRide) Tag() Tag { return TagEntityRide }

func (p *EntityRide) Encode(w *Writer) {
	w.Int32(p.EntityID)
	w.Int32(p.VehicleEntityID)
}

func (p *EntityRide) Decode(r *Reader) {
	p.EntityID = r.Int32()
	p.VehicleEntityID = r.Int32()
}

// EntityMetadata has no metadata trailer in this protocol revision.
type EntityMetadata struct {
	EntityID int32
}

func (*EntityMetadata) Tag() Tag           { return TagEntityMetadata }
func (p *EntityMetadata) Encode(w *Writer) { w.Int32(p.EntityID) }
func (p *EntityMetadata) Decode(r *Reader) { p.EntityID = r.Int32() }

// ChunkState tells the client to allocate or free a chunk column.
type ChunkState struct {
	ChunkX int32
	ChunkZ int32
	Init   WireBool
}

func (*ChunkState) Tag() Tag { return TagChunkState }

func (p *ChunkState) Encode(w *Writer) {
	w.Int32(p.ChunkX)
	w.Int32(p.ChunkZ)
	w.Bool(p.Init)
}

func (p *ChunkState) Decode(r *Reader) {
	p.ChunkX = r.Int32()
	p.ChunkZ = r.Int32()
	p.Init = r.Bool()
}

// ChunkData carries an opaque chunk payload behind an i32 length.
type ChunkData struct {
	X     int32
	Y     int16
	Z     int32
	SizeX int8
	SizeY int8
	SizeZ int8
	Data  []byte
}

func (*ChunkData) Tag() Tag { return TagChunkData }

func (p *ChunkData) Encode(w *Writer) {
	w.Int32(p.X)
	w.Int16(p.Y)
	w.Int32(p.Z)
	w.Int8(p.SizeX)
	w.Int8(p.SizeY)
	w.Int8(p.SizeZ)
	w.Count32(len(p.Data))
	w.Raw(p.Data)
}

func (p *ChunkData) Decode(r *Reader) {
	p.X = r.Int32()
	p.Y = r.Int16()
	p.Z = r.Int32()
	p.SizeX = r.Int8()
	p.SizeY = r.Int8()
	p.SizeZ = r.Int8()
	p.Data = r.Bytes(r.Count32(1))
}

// ChunkBlockSet is written as one i16 count followed by three parallel
// arrays: positions, block ids, metadata.
type ChunkBlockSet struct {
	ChunkX int32
	ChunkZ int32
	Blocks []BlockChange
}

func (*ChunkBlockSet) Tag() Tag { return TagChunkBlockSet }

func (p *ChunkBlockSet) Encode(w *Writer) {
	w.Int32(p.ChunkX)
	w.Int32(p.ChunkZ)
	w.Count16(len(p.Blocks))
	for _, b := range p.Blocks {
		w.Int16(b.Position)
	}
	for _, b := range p.Blocks {
		w.Uint8(b.ID)
	}
	for _, b := range p.Blocks {
		w.Uint8(b.Metadata)
	}
}

func (p *ChunkBlockSet) Decode(r *Reader) {
	p.ChunkX = r.Int32()
	p.ChunkZ = r.Int32()
	n := r.Count16(4)
	p.Blocks = nil
	if n == 0 {
		return
	}
	p.Blocks = make([]BlockChange, n)
	for i := range p.Blocks {
		p.Blocks[i].Position = r.Int16()
	}
	for i := range p.Blocks {
		p.Blocks[i].ID = r.Uint8()
	}
	for i := range p.Blocks {
		p.Blocks[i].Metadata = r.Uint8()
	}
}

// BlockSet changes one block.
type BlockSet struct {
	Position BlockPosition
	Block    int8
	Metadata int8
}

func (*BlockSet) Tag() Tag { return TagBlockSet }

func (p *BlockSet) Encode(w *Writer) {
	p.Position.encode(w)
	w.Int8(p.Block)
	w.Int8(p.Metadata)
}

func (p *BlockSet) Decode(r *Reader) {
	p.Position.decode(r)
	p.Block = r.Int8()
	p.Metadata = r.Int8()
}

// BlockAction is a block event such as a note block or piston.
type BlockAction struct {
	Position BlockPosition
	Data0    int8
	Data1    int8
}

func (*BlockAction) Tag() Tag { return TagBlockAction }

func (p *BlockAction) Encode(w *Writer) {
	p.Position.encode(w)
	w.Int8(p.Data0)
	w.Int8(p.Data1)
}

func (p *BlockAction) Decode(r *Reader) {
	p.Position.decode(r)
	p.Data0 = r.Int8()
	p.Data1 = r.Int8()
}

// Explosion destroys the listed blocks around a center.
type Explosion struct {
	X, Y, Z float64
	Size    float32
	Records []ExplosionRecord
}

func (*Explosion) Tag() Tag { return TagExplosion }

func (p *Explosion) Encode(w *Writer) {
	w.Float64(p.X)
	w.Float64(p.Y)
	w.Float64(p.Z)
	w.Float32(p.Size)
	w.Count32(len(p.Records))
	for _, rec := range p.Records {
		w.Int8(rec.X)
		w.Int8(rec.Y)
		w.Int8(rec.Z)
	}
}

func (p *Explosion) Decode(r *Reader) {
	p.X = r.Float64()
	p.Y = r.Float64()
	p.Z = r.Float64()
	p.Size = r.Float32()
	n := r.Count32(3)
	p.Records = nil
	if n == 0 {
		return
	}
	p.Records = make([]ExplosionRecord, n)
	for i := range p.Records {
		p.Records[i].X = r.Int8()
		p.Records[i].Y = r.Int8()
		p.Records[i].Z = r.Int8()
	}
}

// WindowClose closes an open window.
type WindowClose struct {
	WindowID uint8
}

func (*WindowClose) Tag() Tag           { return TagWindowClose }
func (p *WindowClose) Encode(w *Writer) { w.Uint8(p.WindowID) }
func (p *WindowClose) Decode(r *Reader) { p.WindowID = r.Uint8() }

// WindowClick carries no item stack; see PlaceBlock.
type WindowClick struct {
	WindowID      uint8
	Slot          int16
	RightClick    WireBool
	TransactionID int32
	ShiftClick    WireBool
}

func (*WindowClick) Tag() Tag { return TagWindowClick }

func (p *WindowClick) Encode(w *Writer) {
	w.Uint8(p.WindowID)
	w.Int16(p.Slot)
	w.Bool(p.RightClick)
	w.Int32(p.TransactionID)
	w.Bool(p.ShiftClick)
}

func (p *WindowClick) Decode(r *Reader) {
	p.WindowID = r.Uint8()
	p.Slot = r.Int16()
	p.RightClick = r.Bool()
	p.TransactionID = r.Int32()
	p.ShiftClick = r.Bool()
}

// WindowTransaction accepts or rejects a window click.
type WindowTransaction struct {
	WindowID      uint8
	TransactionID int32
	Accepted      WireBool
}

func (*WindowTransaction) Tag() Tag { return TagWindowTransaction }

func (p *WindowTransaction) Encode(w *Writer) {
	w.Uint8(p.WindowID)
	w.Int32(p.TransactionID)
	w.Bool(p.Accepted)
}

func (p *WindowTransaction) Decode(r *Reader) {
	p.WindowID = r.Uint8()
	p.TransactionID = r.Int32()
	p.Accepted = r.Bool()
}

// UpdateSign carries exactly four lines with no count prefix.
type UpdateSign struct {
	X     int32
	Y     int16
	Z     int32
	Lines [4]WireString
}

func (*UpdateSign) Tag() Tag { return TagUpdateSign }

func (p *UpdateSign) Encode(w *Writer) {
	w.Int32(p.X)
	w.Int16(p.Y)
	w.Int32(p.Z)
	for _, l := range p.Lines {
		w.String(l)
	}
}

func (p *UpdateSign) Decode(r *Reader) {
	p.X = r.Int32()
	p.Y = r.Int16()
	p.Z = r.Int32()
	for i := range p.Lines {
		p.Lines[i] = r.String()
	}
}

// Disconnect ends the session with a reason.
type Disconnect struct {
	Reason WireString
}

func (*Disconnect) Tag() Tag           { return TagDisconnect }
func (p *Disconnect) Encode(w *Writer) { w.String(p.Reason) }
func (p *Disconnect) Decode(r *Reader) { p.Reason = r.String() }
