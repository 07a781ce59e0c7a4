package engine

import (
	"testing"

	"hellomama/internal/platform/config"
)

func TestFromConfigDefaultsAndOverrides(t *testing.T) {
	t.Setenv("ENGINE_PREBIRTH_MIN_WEEKS", "12")
	t.Setenv("ENGINE_LANGUAGES", "eng_NG,hau_NG")
	t.Setenv("ENGINE_PUBLIC_HOST", "https://hm.example.org/")
	t.Setenv("ENGINE_WELCOME_TEXT_HAU_NG", "Barka da zuwa")

	r := FromConfig(cfgRoot())
	if r.PrebirthMinWeeks != 12 || r.PrebirthMaxWeeks != 42 {
		t.Fatalf("weeks %d %d", r.PrebirthMinWeeks, r.PrebirthMaxWeeks)
	}
	if len(r.Languages) != 2 {
		t.Fatalf("languages %v", r.Languages)
	}
	if got := r.Welcome("hau_NG"); got != "Barka da zuwa" {
		t.Fatalf("welcome hau %q", got)
	}
	if got := r.Welcome("eng_NG"); got != Defaults().WelcomeText {
		t.Fatalf("welcome eng %q", got)
	}
	if got := r.WelcomeAudio("prebirth", "eng_NG"); got != "https://hm.example.org/static/audio/registration/prebirth/welcome_eng_NG.mp3" {
		t.Fatalf("audio %q", got)
	}
}

func TestThirdParty(t *testing.T) {
	for role, want := range map[string]bool{
		ReceiverFatherOnly: true,
		ReceiverFriendOnly: true,
		ReceiverFamilyOnly: true,
		ReceiverMotherOnly: false,
		"mother_father":    false,
		"":                 false,
	} {
		if got := ThirdParty(role); got != want {
			t.Fatalf("%q got %v", role, got)
		}
	}
}

func cfgRoot() config.Conf { return config.New() }
