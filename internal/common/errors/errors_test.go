// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantRetries int
	}{
		{"catalog read is retried", NewCatalogReadFailedError("postgres", fmt.Errorf("boom")), 3},
		{"not found is final", NewInquiryNotFoundError("abc"), 0},
		{"validation is final", NewInquiryValidationFailedError("missing email"), 0},
		{"quote unavailable is final", NewQuoteUnavailableError("Zostel Goa"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, string(tt.err.Code), bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_NonRetryableOverride(t *testing.T) {
	e := NewCatalogReadFailedError("postgres", fmt.Errorf("boom"))
	e.Retryable = false
	assert.Equal(t, 0, ConvertToBPMNError(e).Retries)
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	e := NewInquiryNotFoundError("abc").WithMetadata("inquiryId", "abc")
	vars := ConvertToBPMNError(e).ToErrorVariables()
	assert.Equal(t, "abc", vars["inquiryId"])
	assert.Equal(t, "INQUIRY_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, false, vars["retryable"])
}

func TestAsStandardError_Wrapped(t *testing.T) {
	base := NewClaimFailedError("abc", fmt.Errorf("conn reset"))
	wrapped := fmt.Errorf("dispatch: %w", base)

	got, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeClaimFailed, got.Code)
	assert.True(t, HasCode(wrapped, ErrCodeClaimFailed))
	assert.False(t, HasCode(stderrors.New("plain"), ErrCodeClaimFailed))
}

func TestNormalize(t *testing.T) {
	n := Normalize(stderrors.New("kaboom"))
	assert.Equal(t, ErrCodeInternal, n.Code)
	assert.Equal(t, "kaboom", n.Details)

	orig := NewIndexNotFoundError("venues")
	assert.Same(t, orig, Normalize(fmt.Errorf("x: %w", orig)))
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeInquiryNotFound:         "INQUIRY",
		ErrCodeInvalidStatusTransition: "INQUIRY",
		ErrCodeClaimFailed:             "QUOTE",
		ErrCodeCatalogReadFailed:       "CATALOG",
		ErrCodeSearchQueryFailed:       "SEARCH",
		ErrCodeQueryExecutionFailed:    "DATABASE",
		ErrCodeNotificationSendFailed:  "NOTIFICATION",
		ErrCodeCallbackPayloadInvalid:  "NOTIFICATION",
		ErrCodeInternal:                "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}

func TestStandardError_Error(t *testing.T) {
	e := NewInquiryNotFoundError("abc")
	assert.Equal(t, "StandardError[INQUIRY_NOT_FOUND]: Inquiry not found", e.Error())
	assert.False(t, IsRetryableErrorCode(e.Code))
	assert.True(t, IsRetryableErrorCode(ErrCodeNotificationSendFailed))
}
