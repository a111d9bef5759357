package auth

import (
	"os"
	"strings"
	"sync"

	"zenithcloud.org/internal/obs"
)

const (
	secretEnvVariable = "ZC_JWT_SECRET"

	// defaultSecret is for development only and must never reach
	// production; resolving it emits a security alert.
	defaultSecret = "dev-default-insecure-secret-change-in-production"

	minSecretLength = 32
)

var (
	secretMu sync.Mutex
	secret   cachedSecret
)

type cachedSecret struct {
	value []byte
	ready bool
}

// ResolveSecret returns the token-signing secret, resolved once per
// process and immutable thereafter. Resolution order: ZC_JWT_SECRET
// environment variable, then the configured value (unless it is the
// insecure default), then the built-in default with a loud alert.
func ResolveSecret(configured string) []byte {
	secretMu.Lock()
	defer secretMu.Unlock()
	if secret.ready {
		return secret.value
	}
	secret.value = []byte(resolveSecret(configured))
	secret.ready = true
	return secret.value
}

func resolveSecret(configured string) string {
	if env := strings.TrimSpace(os.Getenv(secretEnvVariable)); env != "" {
		if len(env) < minSecretLength {
			obs.LogEntry(map[string]any{
				"level": "warn",
				"msg":   "jwt secret from environment is shorter than 32 characters",
			})
		}
		obs.LogEntry(map[string]any{
			"level": "info",
			"msg":   "jwt secret source: environment variable " + secretEnvVariable,
		})
		return env
	}

	configured = strings.TrimSpace(configured)
	if configured != "" && !strings.Contains(configured, "default-insecure") {
		obs.LogEntry(map[string]any{
			"level": "info",
			"msg":   "jwt secret source: configuration value",
		})
		return configured
	}

	obs.LogEntry(map[string]any{
		"level": "error",
		"msg":   "SECURITY ALERT: using default jwt secret, set " + secretEnvVariable + " before running in production",
	})
	return defaultSecret
}

// ResetSecretForTests clears the cached secret value. Only intended for test use.
func ResetSecretForTests() {
	secretMu.Lock()
	defer secretMu.Unlock()
	secret = cachedSecret{}
}
