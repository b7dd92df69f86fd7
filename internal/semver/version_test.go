package semver

import (
	"errors"
	"strings"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    SemVersion
		wantErr bool
	}{
		{input: "1.2.3", want: SemVersion{Major: 1, Minor: 2, Patch: 3}},
		{input: "v0.9.0", want: SemVersion{Minor: 9}},
		{input: "2.0.0-rc.1+build.7", want: SemVersion{Major: 2, PreRelease: "rc.1", Build: "build.7"}},
		{input: "2.2", wantErr: true},
		{input: "3.7", wantErr: true},
		{input: "01.2.3", wantErr: true},
		{input: "not-a-version", wantErr: true},
		{input: strings.Repeat("1", 200), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVersion) {
					t.Fatalf("error = %v, want ErrInvalidVersion", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSemVersion_String(t *testing.T) {
	v := SemVersion{Major: 1, Minor: 4, Patch: 0, PreRelease: "beta.2", Build: "sha.abc"}
	if got := v.String(); got != "1.4.0-beta.2+sha.abc" {
		t.Errorf("String() = %q", got)
	}
}

func TestIsSemVer(t *testing.T) {
	if !IsSemVer("1.0.0") {
		t.Error("IsSemVer(1.0.0) = false, want true")
	}
	if IsSemVer("2.2") {
		t.Error("IsSemVer(2.2) = true, want false")
	}
}

func TestSemVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"1.2.0", "1.1.9", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0", "1.0.0-rc.1", 1},
		{"1.0.0-alpha.1", "1.0.0-alpha.beta", -1},
		{"1.0.0-rc.2", "1.0.0-rc.10", -1},
		{"1.0.0-rc", "1.0.0-rc.1", -1},
		{"1.0.0+a", "1.0.0+b", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			a, err := ParseVersion(tt.a)
			if err != nil {
				t.Fatal(err)
			}
			b, err := ParseVersion(tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got := a.Compare(b); got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
