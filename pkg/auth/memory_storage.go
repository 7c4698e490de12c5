package auth

import (
	"context"
	"sync"
)

// MemoryStorage is an in-process CredentialStorage.
type MemoryStorage struct {
	mu      sync.RWMutex
	byID    map[string]*Credential
	byEmail map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID:    make(map[string]*Credential),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStorage) CreateCredential(_ context.Context, c *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[c.Email]; ok {
		return ErrEmailAlreadyExists
	}
	cp := *c
	s.byID[c.ID] = &cp
	s.byEmail[c.Email] = c.ID
	return nil
}

func (s *MemoryStorage) GetCredentialByEmail(_ context.Context, email string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemoryStorage) GetCredentialByID(_ context.Context, id string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStorage) DeleteCredential(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return ErrCredentialNotFound
	}
	delete(s.byEmail, c.Email)
	delete(s.byID, id)
	return nil
}
