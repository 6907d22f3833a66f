package http

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"leadflow/internal/entities"
)

// MaxUsernameLength bounds registration usernames.
const MaxUsernameLength = 64

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,}$`)

// ValidUsername checks if a username is safe (alphanumeric + underscore + hyphen)
func ValidUsername(s string) bool {
	return len(s) <= MaxUsernameLength && usernameRe.MatchString(s)
}

// ValidStage reports whether s names a pipeline stage.
func ValidStage(s string) bool {
	switch s {
	case entities.StageNew, entities.StageQualified, entities.StageOutreach,
		entities.StageReplied, entities.StageMeetingScheduled,
		entities.StageWon, entities.StageLost:
		return true
	}
	return false
}

// ValidChannel reports whether s names an outreach channel.
func ValidChannel(s string) bool {
	switch s {
	case entities.ChannelEmail, entities.ChannelLinkedin,
		entities.ChannelTelegram, entities.ChannelWhatsApp:
		return true
	}
	return false
}

// ValidRuleOp reports whether s is a scoring rule operator.
func ValidRuleOp(s string) bool {
	switch s {
	case "contains", "not_contains", "equals", "prefix", "suffix":
		return true
	}
	return false
}

// SanitizeString removes null bytes and control characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Keep only valid UTF-8
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

