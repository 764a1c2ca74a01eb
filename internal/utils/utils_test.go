package utils_test

import (
	"testing"
	"time"

	"task-tracker/backend/internal/utils"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return token
}

func TestParseJWT_RoundTrip(t *testing.T) {
	subject := uuid.Must(uuid.NewV4()).String()
	token := signToken(t, "unit-secret", jwt.MapClaims{
		"user_id": subject,
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	claims, err := utils.ParseJWT(token, "unit-secret")
	if err != nil {
		t.Fatalf("Expected token to parse, got %v", err)
	}

	if claims["user_id"] != subject {
		t.Errorf("Expected user_id %s, got %v", subject, claims["user_id"])
	}
	if claims["role"] != "user" {
		t.Errorf("Expected role user, got %v", claims["role"])
	}
}

func TestParseJWT_Rejections(t *testing.T) {
	valid := signToken(t, "unit-secret", jwt.MapClaims{
		"user_id": "x",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, "unit-secret", jwt.MapClaims{
		"user_id": "x",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"garbage", "not.a.token", "unit-secret"},
		{"empty", "", "unit-secret"},
		{"wrong secret", valid, "other-secret"},
		{"expired", expired, "unit-secret"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := utils.ParseJWT(test.token, test.secret); err == nil {
				t.Error("Expected parse to fail")
			}
		})
	}
}

func TestIsValidUUID(t *testing.T) {
	if !utils.IsValidUUID(uuid.Must(uuid.NewV4()).String()) {
		t.Error("Expected a freshly generated UUID to validate")
	}

	for _, bad := range []string{"", "42", "task-123", "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"} {
		if utils.IsValidUUID(bad) {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TT_STRING", "postgres")
	if got := utils.GetEnv("TT_STRING", "fallback"); got != "postgres" {
		t.Errorf("Expected set value, got %q", got)
	}

	if got := utils.GetEnv("TT_STRING_UNSET", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %q", got)
	}

	// An empty value is still a set value.
	t.Setenv("TT_STRING_EMPTY", "")
	if got := utils.GetEnv("TT_STRING_EMPTY", "fallback"); got != "" {
		t.Errorf("Expected empty string to win over the fallback, got %q", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{"parses", "5432", true, 5432},
		{"negative", "-1", true, -1},
		{"garbage falls back", "fifty", true, 25},
		{"unset falls back", "", false, 25},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.set {
				t.Setenv("TT_INT", test.value)
			}
			if got := utils.GetEnvAsInt("TT_INT", 25); got != test.want {
				t.Errorf("Expected %d, got %d", test.want, got)
			}
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		set      bool
		fallback bool
		want     bool
	}{
		{"true", "true", true, false, true},
		{"numeric one", "1", true, false, true},
		{"false", "false", true, true, false},
		{"garbage falls back", "enabled", true, false, false},
		{"unset falls back", "", false, true, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.set {
				t.Setenv("TT_BOOL", test.value)
			}
			if got := utils.GetEnvAsBool("TT_BOOL", test.fallback); got != test.want {
				t.Errorf("Expected %v, got %v", test.want, got)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  time.Duration
	}{
		{"seconds", "45s", true, 45 * time.Second},
		{"compound", "1h30m", true, 90 * time.Minute},
		{"bare number falls back", "30", true, 15 * time.Second},
		{"unset falls back", "", false, 15 * time.Second},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.set {
				t.Setenv("TT_DURATION", test.value)
			}
			if got := utils.GetEnvAsDuration("TT_DURATION", 15*time.Second); got != test.want {
				t.Errorf("Expected %v, got %v", test.want, got)
			}
		})
	}
}
