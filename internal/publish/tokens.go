package publish

import (
	"encoding/json"
	"os"
	"sort"

	"codeberg.org/vasker/fleetsim/internal/errors"
)

// Credential is a device access token as issued by the telemetry platform.
type Credential string

// TokenStore maps device IDs to their access tokens. A fallback token, when
// set, is used for any device without an explicit entry.
type TokenStore struct {
	tokens   map[string]Credential
	fallback Credential
}

// NewTokenStore builds a store from an explicit device-to-token map.
func NewTokenStore(tokens map[string]Credential) *TokenStore {
	s := &TokenStore{tokens: make(map[string]Credential, len(tokens))}
	for id, tok := range tokens {
		s.tokens[id] = tok
	}

	return s
}

// NewSingleToken builds a store where every device shares one token.
func NewSingleToken(token Credential) *TokenStore {
	return &TokenStore{tokens: map[string]Credential{}, fallback: token}
}

// LoadTokens reads a JSON file containing a flat device-to-token object.
func LoadTokens(path string) (*TokenStore, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errFactory.Wrap(ErrLoadTokens, err)
	}

	var tokens map[string]Credential
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, errFactory.Wrap(ErrLoadTokens, err)
	}

	return NewTokenStore(tokens), nil
}

// SetFallback sets the token used for devices without an explicit entry.
func (s *TokenStore) SetFallback(token Credential) {
	s.fallback = token
}

// Resolve returns the token for a device ID.
func (s *TokenStore) Resolve(deviceID string) (Credential, error) {
	if tok, ok := s.tokens[deviceID]; ok {
		return tok, nil
	}
	if s.fallback != "" {
		return s.fallback, nil
	}

	return "", errors.New().WithData(ErrMissingToken, deviceID)
}

// Validate checks that every given device ID can be resolved, returning the
// sorted list of unresolvable IDs in the error data.
func (s *TokenStore) Validate(deviceIDs []string) error {
	var missing []string
	for _, id := range deviceIDs {
		if _, err := s.Resolve(id); err != nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)

		return errors.New().WithData(ErrMissingToken, missing)
	}

	return nil
}
