package security

import (
	"encoding/base64"
	"strings"
	"time"
)

const (
	// Humans cannot complete the multi-step quiz faster than this.
	minFillTime = 2 * time.Second
	// Sessions older than this are stale replays or abandoned tabs.
	maxSessionAge = time.Hour
)

// Denylist of User-Agent substrings associated with automation tooling.
// Unknown but non-matching agents pass.
var botAgentTokens = []string{
	"bot",
	"crawler",
	"spider",
	"scraper",
	"curl",
	"wget",
	"python",
	"java",
	"http",
	"postman",
}

// HoneypotFilled reports whether the hidden form field was populated.
// Humans never see it, so any non-blank value means a bot.
func HoneypotFilled(value string) bool {
	return strings.TrimSpace(value) != ""
}

// TimingHuman reports whether the elapsed time since the form mounted looks
// like a human filled it in: at least 2 seconds, at most an hour.
func TimingHuman(startTime int64, now time.Time) bool {
	elapsed := now.Sub(time.UnixMilli(startTime))
	return elapsed >= minFillTime && elapsed <= maxSessionAge
}

// IsBotUserAgent matches the User-Agent header against the denylist,
// case-insensitively. A missing header counts as a bot.
func IsBotUserAgent(userAgent string) bool {
	if userAgent == "" {
		return true
	}
	lower := strings.ToLower(userAgent)
	for _, token := range botAgentTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// Fingerprint derives an opaque identifier from passive request headers,
// used only for log correlation.
func Fingerprint(userAgent, acceptLanguage, acceptEncoding string) string {
	joined := strings.Join([]string{userAgent, acceptLanguage, acceptEncoding}, "|")
	return base64.StdEncoding.EncodeToString([]byte(joined))
}
