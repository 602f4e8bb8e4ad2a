package chat

// Kind tags the variant carried by an Event.
type Kind int

const (
	KindConnect Kind = iota + 1
	KindMessage
	KindDisconnect
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindMessage:
		return "message"
	case KindDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Event is one transport-level occurrence fed to the Dispatcher.
// Text is only meaningful for KindMessage.
type Event struct {
	Kind Kind
	Conn ConnID
	Text string
}

// Connect builds the event raised when the transport accepts id.
func Connect(id ConnID) Event {
	return Event{Kind: KindConnect, Conn: id}
}

// Message builds the event raised when id sends text.
func Message(id ConnID, text string) Event {
	return Event{Kind: KindMessage, Conn: id, Text: text}
}

// Disconnect builds the event raised when the transport loses id.
func Disconnect(id ConnID) Event {
	return Event{Kind: KindDisconnect, Conn: id}
}
