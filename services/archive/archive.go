package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matheuscscp/groupsplit/models"

	"cloud.google.com/go/storage"
	"gopkg.in/yaml.v3"
)

type (
	// Service stores one-way snapshots of groups. Nothing is ever read back.
	Service interface {
		Export(ctx context.Context, userID int64, group *models.Group) (object string, err error)
		Close()
	}

	// Snapshot is the YAML document written for an export.
	Snapshot struct {
		UserID     int64         `yaml:"userID"`
		ExportedAt time.Time     `yaml:"exportedAt"`
		Group      *models.Group `yaml:"group"`
		Balances   []Balance     `yaml:"balances"`
		Payments   []Payment     `yaml:"payments"`
	}

	// Balance ...
	Balance struct {
		Name   string  `yaml:"name"`
		Amount float64 `yaml:"amount"`
	}

	// Payment ...
	Payment struct {
		From   string  `yaml:"from"`
		To     string  `yaml:"to"`
		Amount float64 `yaml:"amount"`
	}

	writerFunc func(ctx context.Context, object string) objectWriter

	objectWriter interface {
		Write(p []byte) (int, error)
		Close() error
	}

	service struct {
		newWriter writerFunc
		close     func()
		now       func() time.Time
	}
)

var (
	// ErrServiceNotConfigured ...
	ErrServiceNotConfigured = errors.New("the archive was not configured with a bucket")
)

// NewService returns a service that fails every Export with
// ErrServiceNotConfigured when bucket is empty.
func NewService(ctx context.Context, bucket string) (Service, error) {
	if bucket == "" {
		return &service{close: func() {}}, nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating cloud storage client: %w", err)
	}
	b := client.Bucket(bucket)
	return &service{
		newWriter: func(ctx context.Context, object string) objectWriter {
			w := b.Object(object).NewWriter(ctx)
			w.ContentType = "application/yaml"
			return w
		},
		close: func() { client.Close() },
		now:   time.Now,
	}, nil
}

// NewSnapshot builds the export document of a group.
func NewSnapshot(userID int64, group *models.Group, exportedAt time.Time) *Snapshot {
	balances := group.Balances()
	s := &Snapshot{
		UserID:     userID,
		ExportedAt: exportedAt.UTC(),
		Group:      group,
	}
	for _, b := range balances {
		s.Balances = append(s.Balances, Balance{Name: b.Name, Amount: b.Amount})
	}
	for _, p := range models.Plan(balances) {
		s.Payments = append(s.Payments, Payment{From: p.From, To: p.To, Amount: p.Amount})
	}
	return s
}

// ObjectName is where the export of userID taken at t is stored.
func ObjectName(userID int64, t time.Time) string {
	return fmt.Sprintf("groups/%d/%s.yml", userID, t.UTC().Format("20060102T150405Z"))
}

func (s *service) Close() {
	s.close()
}

func (s *service) Export(ctx context.Context, userID int64, group *models.Group) (string, error) {
	if s.newWriter == nil {
		return "", ErrServiceNotConfigured
	}
	now := s.now()
	object := ObjectName(userID, now)
	w := s.newWriter(ctx, object)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(NewSnapshot(userID, group, now)); err != nil {
		w.Close()
		return "", fmt.Errorf("error marshaling group snapshot: %w", err)
	}
	if err := encoder.Close(); err != nil {
		w.Close()
		return "", fmt.Errorf("error flushing group snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("error writing group snapshot: %w", err)
	}
	return object, nil
}
