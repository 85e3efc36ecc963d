package auth

import "sync"

// RevocationChecker reports whether a token's jti has been revoked. The
// middleware depends on this capability only; where revocations are stored
// is the caller's choice.
type RevocationChecker interface {
	IsRevoked(jti string) bool
}

// RevocationList is an in-memory RevocationChecker. Entries live until
// process restart, which outlasts the one-hour token TTL.
type RevocationList struct {
	mu   sync.RWMutex
	jtis map[string]struct{}
}

func NewRevocationList() *RevocationList {
	return &RevocationList{jtis: make(map[string]struct{})}
}

// Revoke marks a jti as no longer accepted.
func (l *RevocationList) Revoke(jti string) {
	if jti == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jtis[jti] = struct{}{}
}

func (l *RevocationList) IsRevoked(jti string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.jtis[jti]
	return ok
}
