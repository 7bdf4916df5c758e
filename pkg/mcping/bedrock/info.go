package bedrock

import (
	"errors"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/haveachin/mcping/pkg/mcping"
)

// ErrInvalidServerInfo signals a server MOTD string that is missing
// information or carries unparseable numerics in a required position.
var ErrInvalidServerInfo = errors.New("server MOTD string is missing information")

// requiredComponents is the number of leading MOTD components every server
// must advertise.
const requiredComponents = 6

// ServerInfo is the advertisement a Bedrock Edition server answers an
// unconnected ping with, decoded from its semicolon-separated MOTD string.
type ServerInfo struct {
	// Edition is usually "MCPE", or "MCEE" for Education Edition.
	Edition         string
	Name            string
	ProtocolVersion uint32
	Version         string
	OnlinePlayers   uint32
	MaxPlayers      uint32

	// Everything past the player counts is optional.
	ServerID        *uint64
	MapName         *string
	GameMode        *string
	NumericGameMode *uint64
	IPv4Port        *uint16
	IPv6Port        *uint16

	// Extra holds any trailing components verbatim.
	Extra []string
}

// ParseServerInfo decodes a pong MOTD string. The first six components are
// required and their numerics must parse; optional components with
// unparseable numerics are treated as absent.
func ParseServerInfo(motd string) (*ServerInfo, error) {
	components := strings.Split(motd, ";")
	if len(components) < requiredComponents {
		return nil, pkgerrors.Wrapf(ErrInvalidServerInfo, "%d of %d required components", len(components), requiredComponents)
	}

	protocolVersion, err := strconv.ParseUint(components[2], 10, 32)
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrInvalidServerInfo, "protocol version %q is not a number", components[2])
	}
	onlinePlayers, err := strconv.ParseUint(components[4], 10, 32)
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrInvalidServerInfo, "online player count %q is not a number", components[4])
	}
	maxPlayers, err := strconv.ParseUint(components[5], 10, 32)
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrInvalidServerInfo, "max player count %q is not a number", components[5])
	}

	info := &ServerInfo{
		Edition:         components[0],
		Name:            components[1],
		ProtocolVersion: uint32(protocolVersion),
		Version:         components[3],
		OnlinePlayers:   uint32(onlinePlayers),
		MaxPlayers:      uint32(maxPlayers),
	}

	optional := components[requiredComponents:]
	if len(optional) > 0 {
		info.ServerID = optionalUint64(optional[0])
	}
	if len(optional) > 1 {
		info.MapName = &optional[1]
	}
	if len(optional) > 2 {
		info.GameMode = &optional[2]
	}
	if len(optional) > 3 {
		info.NumericGameMode = optionalUint64(optional[3])
	}
	if len(optional) > 4 {
		info.IPv4Port = optionalPort(optional[4])
	}
	if len(optional) > 5 {
		info.IPv6Port = optionalPort(optional[5])
	}
	if len(optional) > 6 {
		info.Extra = optional[6:]
	}

	return info, nil
}

func optionalUint64(s string) *uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func optionalPort(s string) *uint16 {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return nil
	}
	port := uint16(v)
	return &port
}

// JavaServerInfo converts the advertisement into the Java Edition status
// document shape, with the map name joined below the server name.
func (i *ServerInfo) JavaServerInfo() *mcping.JavaServerInfo {
	description := i.Name
	if i.MapName != nil {
		description += "\n§r" + *i.MapName
	}

	return &mcping.JavaServerInfo{
		Players: &mcping.ServerPlayers{
			Max:    int(i.MaxPlayers),
			Online: int(i.OnlinePlayers),
		},
		Description: &mcping.TextComponent{Text: description},
	}
}
