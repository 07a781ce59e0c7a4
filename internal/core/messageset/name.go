package messageset

import (
	"fmt"
	"strings"
)

// Stage and role markers used in canonical names
const (
	StagePrebirth    = "prebirth"
	StagePostbirth   = "postbirth"
	StageMiscarriage = "miscarriage"

	RoleMother    = "mother"
	RoleHousehold = "household"

	MsgText  = "text"
	MsgAudio = "audio"
)

// Week buckets
const (
	BucketPrebirth       = "10_42"
	BucketMiscarriage    = "0_2"
	BucketHousehold      = "0_52"
	BucketPostbirthEarly = "0_12"
	BucketPostbirthLate  = "13_52"
)

// Household recipients always get this voice slot
const (
	HouseholdVoiceDays  = "fri"
	HouseholdVoiceTimes = "9_11"
)

// NameInput carries the attributes a canonical name is built from
type NameInput struct {
	Stage      string
	Role       string
	MsgType    string
	Weeks      int
	VoiceDays  string
	VoiceTimes string
}

// ResolveName returns the canonical short name for in.
// Household recipients always get audio. Weeks outside 0..52 for postbirth
// mothers must be rejected upstream; they land in the late bucket here
func ResolveName(in NameInput) string {
	msgType := in.MsgType
	if in.Role == RoleHousehold {
		msgType = MsgAudio
	}
	b := bucket(in.Stage, in.Role, in.Weeks)
	if msgType == MsgText {
		return fmt.Sprintf("%s.%s.text.%s", in.Stage, in.Role, b)
	}
	return fmt.Sprintf("%s.%s.audio.%s.%s.%s", in.Stage, in.Role, b, in.VoiceDays, in.VoiceTimes)
}

func bucket(stage, role string, weeks int) string {
	switch stage {
	case StagePrebirth:
		return BucketPrebirth
	case StageMiscarriage:
		return BucketMiscarriage
	}
	if role == RoleHousehold {
		return BucketHousehold
	}
	if weeks <= 12 {
		return BucketPostbirthEarly
	}
	return BucketPostbirthLate
}

// ParseName splits a canonical name back into its attributes. Weeks is not
// recoverable from a bucket and is left zero
func ParseName(shortName string) (NameInput, bool) {
	parts := strings.Split(shortName, ".")
	if len(parts) < 4 {
		return NameInput{}, false
	}
	in := NameInput{Stage: parts[0], Role: parts[1], MsgType: parts[2]}
	switch {
	case in.MsgType == MsgText && len(parts) == 4:
	case in.MsgType == MsgAudio && len(parts) == 6:
		in.VoiceDays, in.VoiceTimes = parts[4], parts[5]
	default:
		return NameInput{}, false
	}
	return in, true
}
