package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "fr", want: "fr"},
		{in: " FR ", want: "fr"},
		{in: "french", want: "fr"},
		{in: "pt-BR", want: "pt"},
		{in: "japanese", want: "ja"},
		{in: "", wantErr: true},
		{in: "not-a-language", wantErr: true},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Normalize(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Normalize(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("fr"); got != "French" {
		t.Errorf("DisplayName(fr) = %q", got)
	}
	if got := DisplayName("de"); got != "German" {
		t.Errorf("DisplayName(de) = %q", got)
	}
}

func TestNormalizeListDedupes(t *testing.T) {
	got := NormalizeList([]string{"fr", "FR", "french", "xx!", "de"})
	if len(got) != 2 || got[0] != "fr" || got[1] != "de" {
		t.Errorf("NormalizeList = %v", got)
	}
}

func TestSupported(t *testing.T) {
	targets := []string{"en", "fr", "de"}
	if !Supported("FR", targets) {
		t.Error("FR not accepted")
	}
	if Supported("ja", targets) {
		t.Error("ja accepted outside target set")
	}
}
