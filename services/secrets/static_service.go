package secrets

import (
	"context"
	"fmt"
	"sync"
)

type (
	staticService struct {
		secrets   map[string]string
		secretsMu sync.Mutex
	}
)

// NewStaticService returns a Service backed by a fixed map of secrets, for
// local runs and tests.
func NewStaticService(secrets map[string]string) Service {
	s := &staticService{secrets: make(map[string]string, len(secrets))}
	for k, v := range secrets {
		s.secrets[k] = v
	}
	return s
}

func (s *staticService) Close() {
}

func (s *staticService) Read(ctx context.Context, id string) (string, error) {
	s.secretsMu.Lock()
	defer s.secretsMu.Unlock()

	secret, ok := s.secrets[id]
	if !ok {
		return "", fmt.Errorf("secret '%s' does not exist", id)
	}
	return secret, nil
}
