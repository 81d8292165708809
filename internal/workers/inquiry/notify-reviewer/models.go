// internal/workers/inquiry/notify-reviewer/models.go
package notifyreviewer

type Input struct {
	InquiryID string `json:"inquiryId"`
}

type Output struct {
	InquiryID     string `json:"inquiryId"`
	Notified      bool   `json:"notified"`
	ChatID        int64  `json:"chatId,omitempty"`
	MessageID     int    `json:"messageId,omitempty"`
	InquiryStatus string `json:"inquiryStatus"`
}
