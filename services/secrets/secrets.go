package secrets

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "google.golang.org/genproto/googleapis/cloud/secretmanager/v1"
)

type (
	// Service ...
	Service interface {
		Read(ctx context.Context, id string) (string, error)
		Close()
	}

	service struct {
		client *secretmanager.Client
	}
)

var (
	// ErrNilSecretPayload ...
	ErrNilSecretPayload = errors.New("nil secret payload")
)

// NewService ...
func NewService(ctx context.Context) (Service, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating secret manager client: %w", err)
	}
	return &service{client}, nil
}

func (s *service) Close() {
	s.client.Close()
}

// VersionName returns the secret version to access for id. A bare secret
// name (projects/<project>/secrets/<name>) resolves to its latest version, a
// name that already pins a version is kept as is.
func VersionName(id string) string {
	id = strings.TrimSuffix(id, "/")
	if strings.Contains(id, "/versions/") {
		return id
	}
	return id + "/versions/latest"
}

func (s *service) Read(ctx context.Context, id string) (string, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: VersionName(id),
	})
	if err != nil {
		return "", fmt.Errorf("error accessing secret version: %w", err)
	}
	payload := resp.GetPayload()
	if payload == nil {
		return "", ErrNilSecretPayload
	}
	if payload.DataCrc32C != nil {
		want := payload.GetDataCrc32C()
		got := int64(crc32.Checksum(payload.Data, crc32.MakeTable(crc32.Castagnoli)))
		if want != got {
			return "", fmt.Errorf("secret checksum mismatch, want %v, got %v", want, got)
		}
	}
	return strings.TrimSpace(string(payload.GetData())), nil
}
