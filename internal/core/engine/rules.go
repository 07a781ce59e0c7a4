// Package engine holds the configuration shared by the registration validator,
// the subscription request factory and the change processor
package engine

import (
	"fmt"
	"strings"

	"hellomama/internal/core/normalize"
	"hellomama/internal/platform/config"
	"hellomama/internal/platform/logger"
)

// Receiver roles a registration can address
const (
	ReceiverMotherOnly = "mother_only"
	ReceiverFatherOnly = "father_only"
	ReceiverFamilyOnly = "family_only"
	ReceiverFriendOnly = "friend_only"
)

// Rules is the tunable surface of the engine
type Rules struct {
	PrebirthMinWeeks  int
	PrebirthMaxWeeks  int
	PostbirthMinWeeks int
	PostbirthMaxWeeks int

	Languages     []string
	MsgTypes      []string
	ReceiverTypes []string
	LossReasons   []string
	VoiceDays     []string
	VoiceTimes    []string

	PublicHost  string
	WelcomeText string
	// WelcomeByLang overrides WelcomeText per language code
	WelcomeByLang map[string]string
}

// Defaults mirror the production campaign
func Defaults() Rules {
	return Rules{
		PrebirthMinWeeks:  10,
		PrebirthMaxWeeks:  42,
		PostbirthMinWeeks: 0,
		PostbirthMaxWeeks: 52,
		Languages:         []string{"eng_NG", "hau_NG", "ibo_NG", "yor_NG", "pcm_NG"},
		MsgTypes:          []string{"text", "audio"},
		ReceiverTypes: []string{
			ReceiverMotherOnly, ReceiverFatherOnly, ReceiverFamilyOnly, ReceiverFriendOnly,
			"mother_father", "mother_family", "mother_friend",
		},
		LossReasons: []string{"miscarriage", "stillborn", "baby_died"},
		VoiceDays:   []string{"mon_wed", "tue_thu"},
		VoiceTimes:  []string{"9_11", "2_5"},
		PublicHost:  "http://localhost:8000",
		WelcomeText: "Welcome to Hello Mama! You will receive messages to help you and your baby.",
	}
}

// FromConfig reads ENGINE_ keys over Defaults
func FromConfig(cfg config.Conf) Rules {
	c := cfg.Prefix("ENGINE_")
	d := Defaults()
	r := Rules{
		PrebirthMinWeeks:  c.MayInt("PREBIRTH_MIN_WEEKS", d.PrebirthMinWeeks),
		PrebirthMaxWeeks:  c.MayInt("PREBIRTH_MAX_WEEKS", d.PrebirthMaxWeeks),
		PostbirthMinWeeks: c.MayInt("POSTBIRTH_MIN_WEEKS", d.PostbirthMinWeeks),
		PostbirthMaxWeeks: c.MayInt("POSTBIRTH_MAX_WEEKS", d.PostbirthMaxWeeks),
		Languages:         c.MayCSV("LANGUAGES", d.Languages),
		MsgTypes:          c.MayCSV("MSG_TYPES", d.MsgTypes),
		ReceiverTypes:     c.MayCSV("RECEIVER_TYPES", d.ReceiverTypes),
		LossReasons:       c.MayCSV("LOSS_REASONS", d.LossReasons),
		VoiceDays:         c.MayCSV("VOICE_DAYS", d.VoiceDays),
		VoiceTimes:        c.MayCSV("VOICE_TIMES", d.VoiceTimes),
		PublicHost:        strings.TrimRight(c.MayString("PUBLIC_HOST", d.PublicHost), "/"),
		WelcomeText:       c.MayString("WELCOME_TEXT", d.WelcomeText),
		WelcomeByLang:     map[string]string{},
	}
	for _, lang := range r.Languages {
		if v := c.MayString("WELCOME_TEXT_"+strings.ToUpper(lang), ""); v != "" {
			r.WelcomeByLang[lang] = v
		}
	}
	r.checkLanguages()
	return r
}

// checkLanguages warns about configured codes that are not BCP 47 shaped
func (r Rules) checkLanguages() {
	log := logger.Named("engine")
	for _, l := range r.Languages {
		if _, err := normalize.LanguageTag(l); err != nil {
			log.Warn().Str("language", l).Err(err).Msg("configured language is not a valid tag")
		}
	}
}

// Welcome returns the welcome text for lang
func (r Rules) Welcome(lang string) string {
	if v, ok := r.WelcomeByLang[lang]; ok {
		return v
	}
	return r.WelcomeText
}

// WelcomeAudio is the clip the delivery system prepends to the first message
// of a track; stage is a registration stage or "household"
func (r Rules) WelcomeAudio(stage, lang string) string {
	return fmt.Sprintf("%s/static/audio/registration/%s/welcome_%s.mp3", r.PublicHost, stage, lang)
}

// ThirdParty reports whether role addresses someone other than the mother
func ThirdParty(role string) bool {
	switch role {
	case ReceiverFatherOnly, ReceiverFamilyOnly, ReceiverFriendOnly:
		return true
	}
	return false
}
