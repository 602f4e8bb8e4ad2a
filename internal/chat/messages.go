package chat

import "fmt"

// AdjustedCount is the friend count shown to clients for raw live
// connections: zero below two, otherwise raw minus two.
//
// The offset has no known rationale and is kept for parity with the
// existing client base. See DESIGN.md before changing it.
func AdjustedCount(raw int) int {
	if raw < 2 {
		return 0
	}
	return raw - 2
}

func welcomeText(nickname string) string {
	return fmt.Sprintf("<< I am %s >>", nickname)
}

func joinedText(nickname string) string {
	return nickname + " connected"
}

func countText(adjusted int) string {
	return fmt.Sprintf("<< There are now %d friends connected >>", adjusted)
}

func echoText(text string) string {
	return "I just said: " + text
}

func relayText(nickname, text string) string {
	return fmt.Sprintf("[%s] %s", nickname, text)
}

func byeText(nickname string) string {
	return "Bye everyone from " + nickname
}

func leftText(adjusted int) string {
	return fmt.Sprintf("Only %d friend(s) left", adjusted)
}
