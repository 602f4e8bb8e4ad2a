// Package friendclient is a terminal client for the friend chat server.
package friendclient

import (
	"strings"

	"github.com/gookit/color"
)

// Kind classifies a line received from the server.
type Kind int

const (
	KindPlain Kind = iota
	KindNotice
	KindEcho
	KindChat
	KindPresence
)

func (k Kind) String() string {
	switch k {
	case KindNotice:
		return "notice"
	case KindEcho:
		return "echo"
	case KindChat:
		return "chat"
	case KindPresence:
		return "presence"
	default:
		return "plain"
	}
}

// Classify reports which kind of server line this is.
func Classify(line string) Kind {
	switch {
	case strings.HasPrefix(line, "<< ") && strings.HasSuffix(line, " >>"):
		return KindNotice
	case strings.HasPrefix(line, "I just said: "):
		return KindEcho
	case strings.HasPrefix(line, "[") && strings.Index(line, "] ") > 1:
		return KindChat
	case strings.HasPrefix(line, "Bye everyone from "),
		strings.HasPrefix(line, "Only ") && strings.HasSuffix(line, " friend(s) left"),
		strings.HasSuffix(line, " connected"):
		return KindPresence
	default:
		return KindPlain
	}
}

// Renderer formats server lines for a terminal.
type Renderer struct {
	Colours bool
}

// Render returns line, coloured by its Kind when colours are enabled.
func (r Renderer) Render(line string) string {
	if !r.Colours {
		return line
	}

	switch Classify(line) {
	case KindNotice:
		return color.FgCyan.Render(line)
	case KindEcho:
		return color.FgGray.Render(line)
	case KindChat:
		end := strings.Index(line, "] ") + 1
		return color.New(color.FgGreen, color.OpBold).Render(line[:end]) + line[end:]
	case KindPresence:
		return color.FgYellow.Render(line)
	default:
		return line
	}
}
