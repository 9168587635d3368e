package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/llm"
)

func TestProviderInterfaceCompliance(t *testing.T) {
	t.Run("MockProvider implements Provider", func(t *testing.T) {
		var p llm.Provider = llm.NewMockProvider()
		assert.NotNil(t, p)
	})
}

func TestNewProvider_SelectsBackend(t *testing.T) {
	p, err := llm.NewProvider("", llm.WithAPIKey("sk-test"))
	require.NoError(t, err)
	assert.IsType(t, &llm.OpenAIProvider{}, p)

	p, err = llm.NewProvider(llm.ProviderOpenAI, llm.WithAPIKey("sk-test"))
	require.NoError(t, err)
	assert.IsType(t, &llm.OpenAIProvider{}, p)

	p, err = llm.NewProvider(llm.ProviderAnthropic, llm.WithAPIKey("sk-ant-test"))
	require.NoError(t, err)
	assert.IsType(t, &llm.AnthropicProvider{}, p)
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := llm.NewProvider("bard", llm.WithAPIKey("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown provider "bard"`)
}

func TestNewProvider_MissingKey(t *testing.T) {
	for _, name := range []string{llm.ProviderOpenAI, llm.ProviderAnthropic} {
		_, err := llm.NewProvider(name)
		require.Error(t, err, name)
		assert.Equal(t, apperr.KindMissingCredential, apperr.KindOf(err), name)
	}
}

func TestNewFactory_BindsKey(t *testing.T) {
	f := llm.NewFactory(llm.ProviderOpenAI, llm.WithModel("gpt-4o"), llm.WithBaseURL("http://127.0.0.1:1/v1"))

	p, err := f("sk-bound")
	require.NoError(t, err)
	op, ok := p.(*llm.OpenAIProvider)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", op.Model())
	assert.Equal(t, "http://127.0.0.1:1/v1", op.BaseURL())

	_, err = f("")
	assert.True(t, apperr.Is(err, apperr.KindMissingCredential))
}

func TestWithModel_EmptyKeepsDefault(t *testing.T) {
	p, err := llm.NewOpenAIProvider(llm.WithAPIKey("sk"), llm.WithModel(""))
	require.NoError(t, err)
	assert.Equal(t, llm.DefaultOpenAIModel, p.Model())
}
