// Package store holds the in-memory credential store. All state lives in
// process memory and dies with the process; callers are expected to
// serialize access (the core runs every handler under a single lock).
package store

import (
	"errors"

	"parlor/backend/internal/models"
)

var ErrDuplicateUsername = errors.New("username already exists")

// CredentialStore maps usernames to accounts. Accounts are handed out as
// live pointers; mutations go through the owning core.
type CredentialStore struct {
	accounts map[string]*models.Account
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{accounts: make(map[string]*models.Account)}
}

// Create adds a new account. The username is unique and immutable.
func (s *CredentialStore) Create(acct *models.Account) error {
	if _, exists := s.accounts[acct.Username]; exists {
		return ErrDuplicateUsername
	}
	s.accounts[acct.Username] = acct
	return nil
}

// Get returns the live account for a username, or nil if absent.
func (s *CredentialStore) Get(username string) *models.Account {
	return s.accounts[username]
}

// Count returns the number of registered accounts.
func (s *CredentialStore) Count() int {
	return len(s.accounts)
}

// Owner returns the account currently holding the owner role, or nil.
// At most one account holds owner at steady state.
func (s *CredentialStore) Owner() *models.Account {
	for _, acct := range s.accounts {
		if acct.Role == models.RoleOwner {
			return acct
		}
	}
	return nil
}
