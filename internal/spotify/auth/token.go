package auth

import (
	"sync"

	"golang.org/x/oauth2"
)

// persistingSource saves every token the underlying source hands out that
// differs from the last one saved.
type persistingSource struct {
	base    oauth2.TokenSource
	storage *TokenStorage

	mu   sync.Mutex
	last string
}

func newPersistingSource(base oauth2.TokenSource, storage *TokenStorage, initial *oauth2.Token) *persistingSource {
	s := &persistingSource{base: base, storage: storage}
	if initial != nil {
		s.last = initial.AccessToken
	}
	return s
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		if err := s.storage.Save(token); err != nil {
			return nil, err
		}
		s.last = token.AccessToken
	}
	return token, nil
}
