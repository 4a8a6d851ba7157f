package live

// MessageType is the first byte of every live protocol frame
type MessageType uint8

const (
	// FrameRule carries one inserted rule: [uvarint index][string sheet][string css]
	FrameRule MessageType = 0x00
	// FrameControl carries a named control message: [string name][payload]
	FrameControl MessageType = 0x02
)

// Control message names
const (
	ControlHello = "HELLO"
	ControlPing  = "PING"
	ControlPong  = "PONG"
)

// Rule is a decoded FrameRule
type Rule struct {
	Index int
	Sheet string
	CSS   string
}

// Control is a decoded FrameControl. Index is only set for HELLO.
type Control struct {
	Name  string
	Index int
}
