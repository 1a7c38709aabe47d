package jwthandling

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Information a token enocodes
type PanelUserClaims struct {
	InstanceID string            `json:"instance_id,omitempty"`
	PanelistID string            `json:"panelist_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Payload    map[string]string `json:"payload,omitempty"`
	jwt.RegisteredClaims
}

func GenerateNewPanelUserToken(
	expiresIn time.Duration,
	id string,
	instanceID string,
	panelistID string,
	payload map[string]string,
	secretKey string,
	sessionID string,
) (tokenString string, err error) {
	claims := PanelUserClaims{
		instanceID,
		panelistID,
		sessionID,
		payload,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   id,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(secretKey))
	return
}

func ValidatePanelUserToken(tokenString string, secretKey string) (claims *PanelUserClaims, valid bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &PanelUserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if token == nil {
		return
	}
	claims, valid = token.Claims.(*PanelUserClaims)
	valid = valid && token.Valid
	return
}
