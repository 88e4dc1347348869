package cli

import (
	"reflect"
	"testing"

	"github.com/forPelevin/vclip/internal/config"
)

func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" proxy.internal ", []string{"proxy.internal"}},
		{"a.example, ,b.example,", []string{"a.example", "b.example"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("splitList(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestGetenvDefault(t *testing.T) {
	t.Setenv("VCLIP_TEST_VALUE", "")
	if got := getenvDefault("VCLIP_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
	t.Setenv("VCLIP_TEST_VALUE", "set")
	if got := getenvDefault("VCLIP_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("got %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		log, err := newLogger(verbose)
		if err != nil {
			t.Fatalf("newLogger(%v): %v", verbose, err)
		}
		if got := log.Core().Enabled(-1); got != verbose {
			t.Fatalf("debug enabled = %v, want %v", got, verbose)
		}
	}
}

func TestResolveStrategy(t *testing.T) {
	t.Parallel()

	clean := config.DefaultProfile()
	clean.Strategy = "clean"
	unset := config.DefaultProfile()
	unset.Strategy = ""

	tests := []struct {
		name    string
		flag    string
		flagSet bool
		profile config.Profile
		want    string
	}{
		{"profile wins over flag default", "basic", false, clean, "clean"},
		{"explicit flag wins", "basic", true, clean, "basic"},
		{"empty profile keeps flag default", "basic", false, unset, "basic"},
	}
	for _, tt := range tests {
		if got := resolveStrategy(tt.flag, tt.flagSet, tt.profile); got != tt.want {
			t.Fatalf("%s: got %q want %q", tt.name, got, tt.want)
		}
	}
}
