// internal/callback/payload.go
package callback

import (
	"strings"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/notification"

	"github.com/google/uuid"
)

// ParseData splits "<action>:<inquiryId>" and checks both halves.
func ParseData(data string) (action, inquiryID string, err error) {
	action, inquiryID, found := strings.Cut(strings.TrimSpace(data), ":")
	if !found {
		return "", "", errors.NewCallbackPayloadInvalidError(data)
	}

	switch action {
	case notification.ActionGenerateQuote, notification.ActionManualQuote:
	default:
		return "", "", errors.NewCallbackPayloadInvalidError(data)
	}

	if _, err := uuid.Parse(inquiryID); err != nil {
		return "", "", errors.NewCallbackPayloadInvalidError(data)
	}
	return action, inquiryID, nil
}
