package types

import "strings"

// Platform is the social network a briefcase or task targets.
type Platform string

const (
	PlatformYoutube   Platform = "Youtube"
	PlatformFacebook  Platform = "Facebook"
	PlatformInstagram Platform = "Instagram"
	PlatformX         Platform = "X"
)

var platformOrder = []Platform{
	PlatformYoutube,
	PlatformFacebook,
	PlatformInstagram,
	PlatformX,
}

// Platforms returns every supported platform in display order.
func Platforms() []Platform {
	return append([]Platform{}, platformOrder...)
}

func (p Platform) Valid() bool {
	for _, known := range platformOrder {
		if p == known {
			return true
		}
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

// ParsePlatform resolves a case-insensitive platform name. "twitter" is
// accepted as an alias for X.
func ParsePlatform(raw string) (Platform, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "twitter" {
		return PlatformX, true
	}
	for _, known := range platformOrder {
		if strings.ToLower(string(known)) == name {
			return known, true
		}
	}
	return "", false
}

// LoginURL is the landing page opened when signing a briefcase in.
func (p Platform) LoginURL() string {
	switch p {
	case PlatformFacebook:
		return "https://facebook.com/"
	case PlatformInstagram:
		return "https://instagram.com/"
	case PlatformYoutube:
		return "https://www.youtube.com/"
	case PlatformX:
		return "https://www.x.com/"
	default:
		return "https://example.com/"
	}
}
