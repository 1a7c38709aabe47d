package jwthandling

import (
	"testing"
	"time"
)

func TestPanelUserToken(t *testing.T) {
	secret := "test-sign-key"

	t.Run("round trip", func(t *testing.T) {
		token, err := GenerateNewPanelUserToken(time.Minute, "u1", "default", "pan-42", map[string]string{"locale": "en"}, secret, "s1")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		claims, valid, err := ValidatePanelUserToken(token, secret)
		if err != nil || !valid {
			t.Errorf("token should be valid, got valid=%v err=%v", valid, err)
			return
		}
		if claims.Subject != "u1" || claims.PanelistID != "pan-42" || claims.InstanceID != "default" {
			t.Errorf("unexpected claims: %+v", claims)
		}
		if claims.Payload["locale"] != "en" {
			t.Errorf("unexpected payload: %+v", claims.Payload)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateNewPanelUserToken(time.Minute, "u1", "default", "pan-42", nil, secret, "")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if _, valid, _ := ValidatePanelUserToken(token, "other-key"); valid {
			t.Error("token must not validate with a different key")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateNewPanelUserToken(-time.Minute, "u1", "default", "pan-42", nil, secret, "")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if _, valid, _ := ValidatePanelUserToken(token, secret); valid {
			t.Error("expired token must not validate")
		}
	})
}
