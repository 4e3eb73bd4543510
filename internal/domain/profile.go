// File: internal/domain/profile.go
package domain

import (
	"errors"
	"strings"
)

// UserProfile identifies one of the two household members. It is the
// partition key for all persisted session data.
type UserProfile string

const (
	ProfileMarcelo  UserProfile = "Marcelo"
	ProfileFernanda UserProfile = "Fernanda"
)

// DefaultProfile is selected when the application starts.
const DefaultProfile = ProfileMarcelo

var ErrUnknownProfile = errors.New("unknown user profile")

// AllProfiles returns the closed set of profiles in display order.
func AllProfiles() []UserProfile {
	return []UserProfile{ProfileMarcelo, ProfileFernanda}
}

// ParseUserProfile matches a profile name case-insensitively.
func ParseUserProfile(name string) (UserProfile, error) {
	name = strings.TrimSpace(name)
	for _, p := range AllProfiles() {
		if strings.EqualFold(name, string(p)) {
			return p, nil
		}
	}
	return "", ErrUnknownProfile
}

func (p UserProfile) Valid() bool {
	return p == ProfileMarcelo || p == ProfileFernanda
}

// Partner returns the other member of the couple.
func (p UserProfile) Partner() UserProfile {
	if p == ProfileFernanda {
		return ProfileMarcelo
	}
	return ProfileFernanda
}

// withArticle returns the name preceded by its Portuguese definite article.
func (p UserProfile) withArticle() string {
	if p == ProfileFernanda {
		return "a " + string(p)
	}
	return "o " + string(p)
}

// SpouseNoun is the role word used in input placeholders ("esposo"/"esposa").
func (p UserProfile) SpouseNoun() string {
	if p == ProfileFernanda {
		return "esposa"
	}
	return "esposo"
}

func (p UserProfile) String() string {
	return string(p)
}
