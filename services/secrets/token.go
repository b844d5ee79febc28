package secrets

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoToken is returned when neither a token nor a secret id is configured.
var ErrNoToken = errors.New("no token configured")

// ResolveToken returns token when it is set, and otherwise reads secretID
// through the service returned by open.
func ResolveToken(ctx context.Context, token, secretID string, open func(ctx context.Context) (Service, error)) (string, error) {
	if token != "" {
		return token, nil
	}
	if secretID == "" {
		return "", ErrNoToken
	}
	svc, err := open(ctx)
	if err != nil {
		return "", err
	}
	defer svc.Close()

	token, err = svc.Read(ctx, secretID)
	if err != nil {
		return "", fmt.Errorf("error reading token secret: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: secret '%s' is empty", ErrNoToken, secretID)
	}
	return token, nil
}
