package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"status-viewer/storage"
)

// Store is the persisted list of accounts.
type Store struct {
	mu       sync.RWMutex
	kv       storage.Store
	accounts []Account
	log      *zap.Logger
}

// NewStore loads the accounts from kv. When resetMalformed is set an
// undecodable list is discarded instead of failing.
func NewStore(ctx context.Context, kv storage.Store, log *zap.Logger, resetMalformed bool) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: kv, log: log, accounts: []Account{}}

	var loaded []Account
	if _, err := storage.LoadJSON(ctx, kv, StorageKey, &loaded); err != nil {
		if !errors.Is(err, storage.ErrMalformed) || !resetMalformed {
			return nil, fmt.Errorf("loading accounts: %w", err)
		}
		log.Warn("discarding malformed accounts", zap.Error(err))
		loaded = nil
	}
	if loaded != nil {
		s.accounts = loaded
	}
	return s, nil
}

// SignUp validates req and registers a new account.
func (s *Store) SignUp(ctx context.Context, req SignUpRequest) (Account, error) {
	if req.Password != req.ConfirmPassword {
		return Account{}, ErrPasswordMismatch
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return Account{}, ErrPasswordTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == req.Email {
			return Account{}, ErrEmailExists
		}
	}

	acct := Account{Username: req.Username, Email: req.Email, Password: req.Password}
	next := make([]Account, len(s.accounts), len(s.accounts)+1)
	copy(next, s.accounts)
	next = append(next, acct)
	if err := storage.SaveJSON(ctx, s.kv, StorageKey, next); err != nil {
		return Account{}, fmt.Errorf("persisting accounts: %w", err)
	}
	s.accounts = next
	s.log.Info("account created", zap.String("email", acct.Email))
	return acct, nil
}

// SignIn returns the account matching both email and password.
func (s *Store) SignIn(email, password string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Email == email && a.Password == password {
			return a, nil
		}
	}
	return Account{}, ErrInvalidCredentials
}

// Count returns the number of registered accounts.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
