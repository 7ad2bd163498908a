package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/xterio/xdeploy/internal/domain/models"
)

func TestVerifyContract(t *testing.T) {
	req := models.VerificationRequest{
		Address:         tokenAddr,
		ContractID:      "contracts/XterToken.sol:XterToken",
		ConstructorArgs: []byte{0x01},
	}

	t.Run("verified", func(t *testing.T) {
		verifier := &mockVerifier{}
		verifier.On("Verify", mock.Anything, req).Return(&models.VerificationResult{URL: "https://explorer/address/x"}, nil)

		outcome := NewVerifyContract(verifier, NopProgress{}, discardLogger()).Verify(context.Background(), req, false)

		assert.Equal(t, VerifyStatusVerified, outcome.Status)
		assert.NoError(t, outcome.Err)
		assert.Equal(t, "https://explorer/address/x", outcome.Result.URL)
		verifier.AssertExpectations(t)
	})

	t.Run("failure is reported, not returned", func(t *testing.T) {
		verifier := &mockVerifier{}
		verifier.On("Verify", mock.Anything, req).Return(nil, errors.New("explorer unavailable"))

		outcome := NewVerifyContract(verifier, NopProgress{}, discardLogger()).Verify(context.Background(), req, false)

		assert.Equal(t, VerifyStatusFailed, outcome.Status)
		assert.EqualError(t, outcome.Err, "explorer unavailable")
		assert.Nil(t, outcome.Result)
	})

	t.Run("skipped", func(t *testing.T) {
		verifier := &mockVerifier{}

		outcome := NewVerifyContract(verifier, NopProgress{}, discardLogger()).Verify(context.Background(), req, true)

		assert.Equal(t, VerifyStatusSkipped, outcome.Status)
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})
}
