// Package secrets resolves credentials by reference.
//
// The pipeline never reads credentials directly; it asks a Provider for the
// plaintext behind a name. In the function deployment names are Secret
// Manager resource paths, locally they are environment variable names.
package secrets

import (
	"context"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"

	"github.com/rbb-data/cpisync/am"
	"github.com/rbb-data/cpisync/errors"
)

// ErrNotFound is returned when a provider has no value for a name.
var ErrNotFound = errors.New("secret not found")

// Provider resolves a secret reference to its plaintext value.
type Provider interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// New returns the provider selected by cfg.Provider. The caller closes it
// when it implements io.Closer.
func New(ctx context.Context, cfg am.SecretsConfig) (Provider, error) {
	switch cfg.Provider {
	case "gcp":
		g, err := NewGCP(ctx)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "env", "":
		return Env{}, nil
	default:
		return nil, errors.Newf("unknown secrets provider %q", cfg.Provider)
	}
}

// accessor is the slice of the Secret Manager client GCP uses.
type accessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// GCP resolves names of the form projects/<p>/secrets/<s>/versions/<v>
// through Google Cloud Secret Manager.
type GCP struct {
	client accessor
}

// NewGCP creates a Secret Manager client using application default
// credentials.
func NewGCP(ctx context.Context) (*GCP, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create secret manager client")
	}
	return &GCP{client: client}, nil
}

// Resolve implements Provider
func (g *GCP) Resolve(ctx context.Context, name string) (string, error) {
	if !strings.HasPrefix(name, "projects/") {
		return "", errors.WithHint(
			errors.Newf("secret name %q is not a Secret Manager resource path", name),
			"use projects/<project>/secrets/<secret>/versions/latest")
	}

	resp, err := g.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", errors.Wrapf(err, "failed to access secret %s", name)
	}
	if resp.GetPayload() == nil {
		return "", errors.Wrapf(ErrNotFound, "secret %s has no payload", name)
	}
	return string(resp.GetPayload().GetData()), nil
}

// Close releases the underlying client
func (g *GCP) Close() error {
	return g.client.Close()
}

// Env resolves a name as an environment variable.
type Env struct{}

// Resolve implements Provider
func (Env) Resolve(_ context.Context, name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", errors.Wrapf(ErrNotFound, "environment variable %s is not set", name)
	}
	return value, nil
}

// Static resolves names from a fixed map.
type Static map[string]string

// Resolve implements Provider
func (s Static) Resolve(_ context.Context, name string) (string, error) {
	value, ok := s[name]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "secret %s", name)
	}
	return value, nil
}
