package domain

import (
	"strings"
	"time"
)

type VpnServer struct {
	ID          int64
	Title       string
	VpnURL      string
	BearerToken string
	Country     string
	Protocol    string
	CreatedAt   time.Time
}

// FlagEmoji renders the server's ISO 3166-1 alpha-2 country code as a flag
// emoji, or an empty string if the code is malformed.
func (s *VpnServer) FlagEmoji() string {
	code := strings.ToUpper(s.Country)
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return ""
	}
	return string(rune(0x1F1E6+int(code[0])-'A')) + string(rune(0x1F1E6+int(code[1])-'A'))
}
