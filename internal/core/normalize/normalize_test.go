package normalize

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"identity", "audio", "audio"},
		{"case fold", "AUDIO", "audio"},
		{"trim and collapse", "  mother \t only ", "mother only"},
		{"zero widths", "te\u200bxt\ufeff", "text"},
		{"fullwidth", "ｔｅｘｔ", "text"},
		{"nfkc ligature", "ﬁle", "file"},
		{"invalid utf8 and controls", string([]byte{0xff, 'm', 'o', 'n', 0x00, '_', 'w', 'e', 'd'}), "mon_wed"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Fold(tc.in)
			if got != tc.out {
				t.Fatalf("Fold(%q) = %q, want %q", tc.in, got, tc.out)
			}
			if again := Fold(got); again != got {
				t.Fatalf("Fold not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	langs := []string{"eng_NG", "hau_NG", "ibo_NG", "yor_NG", "pcm_NG"}
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"eng_NG", "eng_NG", true},
		{" ENG_ng", "eng_NG", true},
		{"ｙｏｒ_ＮＧ", "yor_NG", true},
		{"fra_FR", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := Canonical(tc.in, langs)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("Canonical(%q) = %q %v, want %q %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestLanguageTag(t *testing.T) {
	for _, code := range []string{"eng_NG", "hau_NG", "ibo_NG", "yor_NG", "pcm_NG"} {
		tag, err := LanguageTag(code)
		if err != nil {
			t.Fatalf("LanguageTag(%q): %v", code, err)
		}
		if _, conf := tag.Region(); conf == 0 {
			t.Fatalf("LanguageTag(%q) lost region", code)
		}
	}
	if _, err := LanguageTag("not a language"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct{ in, out string }{
		{"clean", "clean"},
		{"a\x00b", "ab"},
		{"keep\ttabs\nand lines", "keep\ttabs\nand lines"},
		{"del\x7f", "del"},
		{"c1\u0085x", "c1x"},
		{string([]byte{'o', 0xff, 'k'}), "ok"},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.in); got != tc.out {
			t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
