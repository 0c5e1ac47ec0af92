package models

import "strings"

// Channel is the canonical key identifying a social platform. The same key is
// used in the schema sent to the AI service, in the prompt and in stored data.
type Channel string

const (
	ChannelInstagram Channel = "INSTAGRAM"
	ChannelLinkedIn  Channel = "LINKEDIN"
	ChannelX         Channel = "X"
)

// DefaultChannels returns the channel set used when the caller supplies none.
func DefaultChannels() []Channel {
	return []Channel{ChannelInstagram, ChannelX, ChannelLinkedIn}
}

// ParseChannel resolves a caller-supplied channel name case-insensitively.
func ParseChannel(value string) (Channel, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "INSTAGRAM":
		return ChannelInstagram, true
	case "LINKEDIN":
		return ChannelLinkedIn, true
	case "X":
		return ChannelX, true
	}
	return "", false
}

// NormalizeChannels canonicalizes a caller-supplied channel list: names are
// matched case-insensitively, duplicates removed preserving first-seen order.
// Unknown names are returned separately so the caller can log them; they are
// dropped, not rejected.
func NormalizeChannels(values []string) (channels []Channel, unknown []string) {
	seen := make(map[Channel]bool, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		ch, ok := ParseChannel(v)
		if !ok {
			unknown = append(unknown, v)
			continue
		}
		if seen[ch] {
			continue
		}
		seen[ch] = true
		channels = append(channels, ch)
	}
	return channels, unknown
}

// ChannelKeys converts a channel list to its plain string keys.
func ChannelKeys(channels []Channel) []string {
	keys := make([]string, len(channels))
	for i, ch := range channels {
		keys[i] = string(ch)
	}
	return keys
}
