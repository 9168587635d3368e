package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus_Mapping(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{401, KindInvalidCredential},
		{429, KindRateLimited},
		{402, KindInsufficientBalance},
		{500, KindUpstreamUnavailable},
		{503, KindUpstreamUnavailable},
		{400, KindUpstream},
		{404, KindUpstream},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			e := FromStatus(tt.status, "")
			assert.Equal(t, tt.want, e.Kind)
			assert.Equal(t, tt.status, e.Status)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestFromStatus_KeepsUpstreamDetail(t *testing.T) {
	e := FromStatus(401, "Incorrect API key provided")
	assert.Contains(t, e.Error(), "verify your API key")
	assert.Contains(t, e.Error(), "Incorrect API key provided")
}

func TestFromStatus_SynthesizesDetailForGenericErrors(t *testing.T) {
	e := FromStatus(418, "")
	assert.Equal(t, KindUpstream, e.Kind)
	assert.Contains(t, e.Error(), "HTTP 418")
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := New(KindRateLimited, "slow down")
	wrapped := fmt.Errorf("completion: %w", base)

	assert.Equal(t, KindRateLimited, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindRateLimited))
	assert.False(t, Is(nil, KindRateLimited))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestWrap_Unwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	e := Wrap(KindNetwork, cause, "cannot reach %s", "endpoint")
	require.ErrorIs(t, e, cause)
	assert.Equal(t, "cannot reach endpoint", e.Error())
}

func TestNeedsCredentialSetup(t *testing.T) {
	assert.True(t, NeedsCredentialSetup(New(KindMissingCredential, "no key")))
	assert.True(t, NeedsCredentialSetup(FromStatus(401, "")))
	assert.False(t, NeedsCredentialSetup(FromStatus(429, "")))
	assert.False(t, NeedsCredentialSetup(errors.New("API Key 401 mentioned in text")))
}
