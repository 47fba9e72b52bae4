// internal/llm/interface_test.go
package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	initErr error
	config  map[string]string
}

func (f *fakeProvider) Initialize(config map[string]string) error {
	f.config = config
	return f.initErr
}

func (f *fakeProvider) GetName() string              { return "fake" }
func (f *fakeProvider) GetSupportedModels() []string { return []string{"fake-1", "fake-2"} }

func (f *fakeProvider) CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return &CompletionResponse{Text: "ok", ProviderName: "fake"}, nil
}

func TestGetProvider_UnknownName(t *testing.T) {
	_, err := GetProvider("从未注册过", nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRegisterAndGetProvider(t *testing.T) {
	Register("fake", func() Provider { return &fakeProvider{} })

	provider, err := GetProvider("fake", map[string]string{"api_key": "k"})
	require.NoError(t, err)
	assert.Equal(t, "fake", provider.GetName())
}

func TestGetProvider_InitializeFailurePropagates(t *testing.T) {
	initErr := errors.New("密钥无效")
	Register("fake-broken", func() Provider { return &fakeProvider{initErr: initErr} })

	_, err := GetProvider("fake-broken", nil)
	assert.ErrorIs(t, err, initErr)
}

func TestListProviders_ContainsRegistered(t *testing.T) {
	Register("fake-listed", func() Provider { return &fakeProvider{} })

	assert.Contains(t, ListProviders(), "fake-listed")
}

func TestGetSupportedModelsForProvider(t *testing.T) {
	Register("fake-models", func() Provider { return &fakeProvider{} })

	assert.Equal(t, []string{"fake-1", "fake-2"}, GetSupportedModelsForProvider("fake-models"))
	assert.Empty(t, GetSupportedModelsForProvider("从未注册过"))
}
