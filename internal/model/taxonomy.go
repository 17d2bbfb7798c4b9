package model

// Theme is one of a fixed set of tags describing what a card is about.
type Theme string

const (
	ThemeFamily     Theme = "family"
	ThemeGrowth     Theme = "growth"
	ThemeChallenge  Theme = "challenge"
	ThemeAdventure  Theme = "adventure"
	ThemeLove       Theme = "love"
	ThemeLegacy     Theme = "legacy"
	ThemeIdentity   Theme = "identity"
	ThemeFriendship Theme = "friendship"

	DefaultTheme = ThemeGrowth
)

// Themes lists every theme in display order.
var Themes = []Theme{
	ThemeFamily,
	ThemeGrowth,
	ThemeChallenge,
	ThemeAdventure,
	ThemeLove,
	ThemeLegacy,
	ThemeIdentity,
	ThemeFriendship,
}

var themeLabels = map[Theme]string{
	ThemeFamily:     "Family",
	ThemeGrowth:     "Growth",
	ThemeChallenge:  "Challenge",
	ThemeAdventure:  "Adventure",
	ThemeLove:       "Love",
	ThemeLegacy:     "Legacy",
	ThemeIdentity:   "Identity",
	ThemeFriendship: "Friendship",
}

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	_, ok := themeLabels[t]
	return ok
}

// Label returns the display name, or the raw value for unknown themes.
func (t Theme) Label() string {
	if l, ok := themeLabels[t]; ok {
		return l
	}
	return string(t)
}

// OrDefault returns t, or DefaultTheme when t is empty.
func (t Theme) OrDefault() Theme {
	if t == "" {
		return DefaultTheme
	}
	return t
}

// Phase is one of a fixed set of life phases a card belongs to.
type Phase string

const (
	PhaseFamilyHistory  Phase = "FAMILY_HISTORY"
	PhaseChildhood      Phase = "CHILDHOOD"
	PhaseAdolescence    Phase = "ADOLESCENCE"
	PhaseEarlyAdulthood Phase = "EARLY_ADULTHOOD"
	PhaseMidlife        Phase = "MIDLIFE"
	PhasePresent        Phase = "PRESENT"

	DefaultPhase = PhasePresent
)

// Phases lists every phase in chronological order.
var Phases = []Phase{
	PhaseFamilyHistory,
	PhaseChildhood,
	PhaseAdolescence,
	PhaseEarlyAdulthood,
	PhaseMidlife,
	PhasePresent,
}

var phaseLabels = map[Phase]string{
	PhaseFamilyHistory:  "Family History",
	PhaseChildhood:      "Childhood",
	PhaseAdolescence:    "Adolescence",
	PhaseEarlyAdulthood: "Early Adulthood",
	PhaseMidlife:        "Midlife",
	PhasePresent:        "Present Day",
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	_, ok := phaseLabels[p]
	return ok
}

// Label returns the display name, or the raw value for unknown phases.
func (p Phase) Label() string {
	if l, ok := phaseLabels[p]; ok {
		return l
	}
	return string(p)
}

// OrDefault returns p, or DefaultPhase when p is empty.
func (p Phase) OrDefault() Phase {
	if p == "" {
		return DefaultPhase
	}
	return p
}
