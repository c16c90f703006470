// Package lobby is a minimal game: players handshake, receive a flat spawn
// chunk, chat with each other and get the world time.
package lobby

import (
	"errors"
	"fmt"

	"github.com/lcx/dice/packet"
	"github.com/lcx/dice/tick"
)

// ProtocolVersion is sent in the Login reply.
const ProtocolVersion = 14

// Cfg is the "lobby" config.
type Cfg struct {
	// TimeBroadcastTicks is how often UpdateTime goes out. 0 disables it.
	TimeBroadcastTicks int `mapstructure:"timeBroadcastTicks"`
	// SpawnHeight is the y of the spawn floor and the spawn point.
	SpawnHeight int `mapstructure:"spawnHeight"`
}

// DefaultCfg returns the configuration used when no "lobby" file exists.
func DefaultCfg() *Cfg {
	return &Cfg{TimeBroadcastTicks: 20, SpawnHeight: 64}
}

func (c *Cfg) GetName() string { return "lobby" }

func (c *Cfg) Validate() error {
	if c.TimeBroadcastTicks < 0 {
		return errors.New("timeBroadcastTicks must not be negative")
	}
	if c.SpawnHeight < 0 || c.SpawnHeight > 127 {
		return errors.New("spawnHeight must be in 0..127")
	}
	return nil
}

type player struct {
	name   packet.WireString
	joined bool
}

// Lobby implements tick.Handler.
type Lobby struct {
	cfg       *Cfg
	worldTime int64
}

var _ tick.Handler = (*Lobby)(nil)

// New creates a lobby; nil cfg means DefaultCfg.
func New(cfg *Cfg) *Lobby {
	if cfg == nil {
		cfg = DefaultCfg()
	}
	return &Lobby{cfg: cfg}
}

func playerOf(ctx *tick.Context) *player {
	p, _ := ctx.Value().(*player)
	return p
}

func (l *Lobby) OnJoin(ctx *tick.Context) {
	ctx.SetValue(&player{})
	ctx.Info().Msg("connected")
}

func (l *Lobby) OnPacket(ctx *tick.Context, p packet.Packet) {
	pl := playerOf(ctx)

	switch p := p.(type) {
	case *packet.KeepAlive:
		_ = ctx.Send(&packet.KeepAlive{})
		return
	case *packet.Handshake:
		if pl.joined {
			ctx.Debug().Msg("repeated handshake ignored")
			return
		}
		l.handshake(ctx, pl, p.Username)
		return
	case *packet.Disconnect:
		ctx.Info().Str("reason", p.Reason.String()).Msg("client disconnected")
		ctx.Peer().CloseGracefully()
		return
	}

	if !pl.joined {
		ctx.Warn().Str("packet", packet.Name(p)).Msg("packet before handshake")
		ctx.Kick(&packet.Disconnect{Reason: packet.MustWireString("handshake required")})
		return
	}

	switch p := p.(type) {
	case *packet.Chat:
		l.say(ctx.Registry(), fmt.Sprintf("%s: %s", pl.name, p.Message))
	default:
		ctx.Debug().Str("packet", packet.Name(p)).Msg("ignored")
	}
}

func (l *Lobby) handshake(ctx *tick.Context, pl *player, name packet.WireString) {
	pl.name = name
	pl.joined = true

	msg := fmt.Sprintf("%s has joined the game.", name)
	ctx.Info().Str("player", name.String()).Msg(msg)

	y := int32(l.cfg.SpawnHeight)
	_ = ctx.Send(&packet.Login{ProtocolVersion: ProtocolVersion, Username: name})
	_ = ctx.Send(SpawnFloor(int8(y)))
	_ = ctx.Send(&packet.SpawnPosition{X: 0, Y: y, Z: 0})
	_ = ctx.Send(&packet.HumanSpawn{
		EntityID: int32(ctx.ID()),
		Username: name,
		Position: packet.EntityPosition{X: 0, Y: y, Z: 0},
	})

	l.say(ctx.Registry(), msg)
}

func (l *Lobby) OnLeave(ctx *tick.Context, err error) {
	pl := playerOf(ctx)
	if pl == nil || !pl.joined {
		return
	}
	ctx.Info().AnErr("reason", err).Msg("left")
	l.say(ctx.Registry(), fmt.Sprintf("%s has left the game.", pl.name))
}

func (l *Lobby) OnTick(t *tick.Tick) {
	l.worldTime++
	if l.cfg.TimeBroadcastTicks == 0 || t.Number%uint64(l.cfg.TimeBroadcastTicks) != 0 {
		return
	}
	update := &packet.UpdateTime{Time: l.worldTime}
	t.Registry.Each(func(ctx *tick.Context) {
		if pl := playerOf(ctx); pl != nil && pl.joined {
			_ = ctx.Send(update)
		}
	})
}

// say sends a chat line to every joined player.
func (l *Lobby) say(reg *tick.Registry, text string) {
	msg, err := packet.NewWireString(text)
	if err != nil {
		return
	}
	chat := &packet.Chat{Message: msg}
	reg.Each(func(ctx *tick.Context) {
		if pl := playerOf(ctx); pl != nil && pl.joined {
			_ = ctx.Send(chat)
		}
	})
}

// PackBlockPosition packs chunk-local coordinates the way ChunkBlockSet
// expects: x in bits 0-3, z in bits 4-7, y in bits 8-15.
func PackBlockPosition(x, y, z uint8) int16 {
	return int16(uint16(y)<<8 | uint16(z&0x0F)<<4 | uint16(x&0x0F))
}

// SpawnFloor returns the 16x16 layer of chunk 0,0 at height y.
func SpawnFloor(y int8) *packet.ChunkBlockSet {
	blocks := make([]packet.BlockChange, 0, 16*16)
	for x := uint8(0); x < 16; x++ {
		for z := uint8(0); z < 16; z++ {
			blocks = append(blocks, packet.BlockChange{Position: PackBlockPosition(x, uint8(y), z)})
		}
	}
	return &packet.ChunkBlockSet{Blocks: blocks}
}
