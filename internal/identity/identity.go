// Package identity resolves bearer credentials to stable user
// identities. Credential issuing and rotation belong to the platform's
// account service; this package only consumes tokens.
package identity

import (
	"linguahub/internal/domain"
)

// Principal is the authenticated caller attached to every request and
// live connection.
type Principal struct {
	ID   string
	Name string
	Role domain.Role
}

// Verifier resolves a bearer token to a principal. Implementations must
// treat unknown or malformed tokens as domain.ErrInvalidToken.
type Verifier interface {
	Verify(token string) (Principal, error)
}

// StaticVerifier maps opaque tokens to principals. It backs local
// development and tests; production deployments plug in the platform's
// token service instead.
type StaticVerifier struct {
	tokens map[string]Principal
}

func NewStaticVerifier(tokens map[string]Principal) *StaticVerifier {
	cp := make(map[string]Principal, len(tokens))
	for k, v := range tokens {
		cp[k] = v
	}
	return &StaticVerifier{tokens: cp}
}

func (v *StaticVerifier) Verify(token string) (Principal, error) {
	if p, ok := v.tokens[token]; ok && token != "" {
		return p, nil
	}
	return Principal{}, domain.ErrInvalidToken
}
