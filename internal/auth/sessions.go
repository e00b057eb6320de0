// Package auth tracks live sessions. A session is created at login and
// lives until the process exits; there is no logout or revocation.
package auth

// SessionRegistry maps opaque signed tokens to usernames. One account may
// hold any number of concurrent sessions.
type SessionRegistry struct {
	sessions map[string]string
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]string)}
}

// Put records a freshly issued token.
func (r *SessionRegistry) Put(token, username string) {
	r.sessions[token] = username
}

// Resolve returns the username a token was issued to. A token that was
// never issued by this process resolves to nothing, even if its signature
// verifies. Sessions die with the process.
func (r *SessionRegistry) Resolve(token string) (string, bool) {
	username, ok := r.sessions[token]
	return username, ok
}
