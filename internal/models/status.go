// internal/models/status.go
package models

import "fmt"

// InquiryStatus is the lifecycle state of an EventInquiry.
type InquiryStatus string

const (
	StatusNew        InquiryStatus = "new"
	StatusMatched    InquiryStatus = "matched"
	StatusReviewing  InquiryStatus = "reviewing"
	StatusQuoting    InquiryStatus = "quoting"
	StatusQuoted     InquiryStatus = "quoted"
	StatusPushFailed InquiryStatus = "push_failed"
)

var allStatuses = []InquiryStatus{
	StatusNew, StatusMatched, StatusReviewing, StatusQuoting, StatusQuoted, StatusPushFailed,
}

// transitions lists, for each state, the states it may move to.
// quoting is never a source of quoting: that is what makes a second claim lose.
var transitions = map[InquiryStatus][]InquiryStatus{
	StatusNew:        {StatusNew, StatusMatched, StatusReviewing, StatusPushFailed, StatusQuoting},
	StatusMatched:    {StatusNew, StatusMatched, StatusReviewing, StatusPushFailed, StatusQuoting},
	StatusReviewing:  {StatusReviewing, StatusQuoting},
	StatusPushFailed: {StatusPushFailed, StatusReviewing, StatusQuoting},
	StatusQuoting:    {StatusQuoted, StatusReviewing},
	StatusQuoted:     {},
}

func (s InquiryStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s InquiryStatus) String() string {
	return string(s)
}

func ParseInquiryStatus(s string) (InquiryStatus, error) {
	st := InquiryStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown inquiry status %q", s)
	}
	return st, nil
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to InquiryStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourcesOf returns every state that may move to target, in declaration order.
// Store writes use it as the status guard of their conditional UPDATE.
func SourcesOf(target InquiryStatus) []InquiryStatus {
	var out []InquiryStatus
	for _, from := range allStatuses {
		if CanTransition(from, target) {
			out = append(out, from)
		}
	}
	return out
}

// ManualReviewSources are the states a reviewer may escalate from by button.
// quoting is excluded so a manual press cannot race an in-flight quote.
func ManualReviewSources() []InquiryStatus {
	var out []InquiryStatus
	for _, from := range SourcesOf(StatusReviewing) {
		if from != StatusQuoting {
			out = append(out, from)
		}
	}
	return out
}

// CanPostCard reports whether a review card may be posted for an inquiry in s:
// any state that may still move to push_failed, which excludes reviewing.
func CanPostCard(s InquiryStatus) bool {
	return s != StatusReviewing && CanTransition(s, StatusPushFailed)
}

func StatusStrings(statuses []InquiryStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
