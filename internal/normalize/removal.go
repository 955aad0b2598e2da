package normalize

import "strings"

// RemovalRule decides whether a decoded body announces that the route was
// removed, and returns the reason to display when it does.
//
// Optimizers signal removal only through free text today. Keeping the check
// behind this type lets a structured status field replace it without touching
// the renderers.
type RemovalRule func(body Body) (reason string, removed bool)

// MessageMentionsRemoved matches a "message" field containing "removed" in
// any letter case. Localized or reworded notices are not recognized.
func MessageMentionsRemoved(body Body) (string, bool) {
	msg, ok := body.Text(messageFields...)
	if !ok {
		return "", false
	}
	if !strings.Contains(strings.ToLower(msg), "removed") {
		return "", false
	}
	return msg, true
}
