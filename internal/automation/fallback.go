package automation

import (
	"fmt"
	"strings"
)

// FallbackReply is used when reply generation fails
const FallbackReply = "Thanks for the comment!"

// FallbackDirectMessage is used when DM generation fails. It always carries
// the exact asset URL so clients can still render the link card.
func FallbackDirectMessage(commenterName, assetName, assetURL string) string {
	return fmt.Sprintf("Hey %s, here is the %s you asked for: %s", commenterName, assetName, assetURL)
}

// EnsureURL appends url to text unless text already contains it verbatim
func EnsureURL(text, url string) string {
	if url == "" || strings.Contains(text, url) {
		return text
	}
	return strings.TrimSpace(text) + " " + url
}
