package envconfig

import (
	"os"
	"testing"
)

func TestDotallDefault(t *testing.T) {
	os.Unsetenv("GBNF_DOTALL")
	dotall = false
	LoadConfig()
	if Dotall() {
		t.Errorf("Dotall() = true, want false by default")
	}
}

func TestDotallFromEnv(t *testing.T) {
	os.Setenv("GBNF_DOTALL", "true")
	defer os.Unsetenv("GBNF_DOTALL")
	dotall = false
	LoadConfig()
	if !Dotall() {
		t.Errorf("Dotall() = false, want true")
	}
}

func TestDotallInvalidValueKeepsPrevious(t *testing.T) {
	dotall = true
	os.Setenv("GBNF_DOTALL", "not-a-bool")
	defer os.Unsetenv("GBNF_DOTALL")
	LoadConfig()
	if !Dotall() {
		t.Errorf("Dotall() = false, want previous value true to be kept on parse failure")
	}
}
