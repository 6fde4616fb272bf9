// Package oauthstate signs and verifies the opaque state value carried
// through the OAuth redirect, so the callback can reject forged or replayed
// states without server-side storage.
package oauthstate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/bytedance/sonic"
)

type State struct {
	CSRF      string `json:"csrf"`
	Redirect  string `json:"redirect"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func Sign(secret string, state State) (string, error) {
	payload, err := sonic.Marshal(state)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	sig := mac.Sum(nil)

	combined := append(payload, sig...)
	return base64.URLEncoding.EncodeToString(combined), nil
}

func Verify(secret, encoded string) (*State, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.New("invalid base64 state")
	}
	if len(raw) < sha256.Size {
		return nil, errors.New("state too short")
	}

	payload := raw[:len(raw)-sha256.Size]
	sig := raw[len(raw)-sha256.Size:]

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, errors.New("state signature mismatch")
	}

	var st State
	if err := sonic.Unmarshal(payload, &st); err != nil {
		return nil, errors.New("malformed state payload")
	}
	if st.ExpiresAt > 0 && time.Now().Unix() > st.ExpiresAt {
		return nil, errors.New("state expired")
	}
	return &st, nil
}
