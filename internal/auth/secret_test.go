package auth

import (
	"bytes"
	"testing"
)

func TestResolveSecretPrefersEnvironment(t *testing.T) {
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
	t.Setenv(secretEnvVariable, "environment-secret-value-0123456789abcdef")

	got := ResolveSecret("configured-secret-value-0123456789abcdef")
	if string(got) != "environment-secret-value-0123456789abcdef" {
		t.Fatalf("expected environment secret, got %q", got)
	}
}

func TestResolveSecretFallsBackToConfigured(t *testing.T) {
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
	t.Setenv(secretEnvVariable, "")

	got := ResolveSecret("configured-secret-value-0123456789abcdef")
	if string(got) != "configured-secret-value-0123456789abcdef" {
		t.Fatalf("expected configured secret, got %q", got)
	}
}

func TestResolveSecretRejectsInsecureConfiguredValue(t *testing.T) {
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
	t.Setenv(secretEnvVariable, "")

	got := ResolveSecret("my-default-insecure-value")
	if string(got) != defaultSecret {
		t.Fatalf("expected built-in default, got %q", got)
	}
}

func TestResolveSecretDefaultWhenNothingSet(t *testing.T) {
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
	t.Setenv(secretEnvVariable, "")

	got := ResolveSecret("")
	if string(got) != defaultSecret {
		t.Fatalf("expected built-in default, got %q", got)
	}
}

func TestResolveSecretIsCached(t *testing.T) {
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
	t.Setenv(secretEnvVariable, "first-environment-secret-0123456789abcd")

	first := ResolveSecret("")
	t.Setenv(secretEnvVariable, "second-environment-secret-0123456789abc")
	second := ResolveSecret("something-else-entirely-0123456789abcdef")
	if !bytes.Equal(first, second) {
		t.Fatalf("secret changed after first resolution: %q vs %q", first, second)
	}
}
