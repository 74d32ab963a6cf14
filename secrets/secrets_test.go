package secrets

import (
	"context"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbb-data/cpisync/am"
	"github.com/rbb-data/cpisync/errors"
)

type fakeAccessor struct {
	values map[string]string
	calls  []string
	closed bool
}

func (f *fakeAccessor) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.calls = append(f.calls, req.GetName())
	v, ok := f.values[req.GetName()]
	if !ok {
		return nil, errors.New("rpc error: code = NotFound")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Name:    req.GetName(),
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(v)},
	}, nil
}

func (f *fakeAccessor) Close() error {
	f.closed = true
	return nil
}

func TestGCPResolve(t *testing.T) {
	name := "projects/rbb-data-inflation/secrets/genesis-password/versions/latest"
	fake := &fakeAccessor{values: map[string]string{name: "s3cret"}}
	provider := &GCP{client: fake}

	value, err := provider.Resolve(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)
	assert.Equal(t, []string{name}, fake.calls)

	require.NoError(t, provider.Close())
	assert.True(t, fake.closed)
}

func TestGCPResolveErrors(t *testing.T) {
	fake := &fakeAccessor{values: map[string]string{}}
	provider := &GCP{client: fake}

	_, err := provider.Resolve(context.Background(), "GENESIS_PASSWORD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a Secret Manager resource path")
	assert.Empty(t, fake.calls, "malformed names never reach the API")

	_, err = provider.Resolve(context.Background(), "projects/p/secrets/missing/versions/1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to access secret")
}

func TestEnvResolve(t *testing.T) {
	t.Setenv("CPISYNC_TEST_TOKEN", "tok")

	value, err := Env{}.Resolve(context.Background(), "CPISYNC_TEST_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "tok", value)

	_, err = Env{}.Resolve(context.Background(), "CPISYNC_TEST_UNSET_TOKEN")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStaticResolve(t *testing.T) {
	s := Static{"a": "1"}

	value, err := s.Resolve(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "1", value)

	_, err = s.Resolve(context.Background(), "b")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewSelectsProvider(t *testing.T) {
	p, err := New(context.Background(), am.SecretsConfig{Provider: "env"})
	require.NoError(t, err)
	assert.IsType(t, Env{}, p)

	_, err = New(context.Background(), am.SecretsConfig{Provider: "vault"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown secrets provider")
}
