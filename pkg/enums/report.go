package enums

import "fmt"

// ReportStatus is the moderation state of an item report.
type ReportStatus string

const (
	ReportStatusPending     ReportStatus = "pending"
	ReportStatusUnderReview ReportStatus = "under-review"
	ReportStatusResolved    ReportStatus = "resolved"
	ReportStatusDismissed   ReportStatus = "dismissed"
)

var validReportStatuses = []ReportStatus{
	ReportStatusPending,
	ReportStatusUnderReview,
	ReportStatusResolved,
	ReportStatusDismissed,
}

func (s ReportStatus) String() string {
	return string(s)
}

func (s ReportStatus) IsValid() bool {
	for _, candidate := range validReportStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the report still blocks a new one for the same item.
func (s ReportStatus) IsActive() bool {
	return s == ReportStatusPending || s == ReportStatusUnderReview
}

func ParseReportStatus(value string) (ReportStatus, error) {
	for _, candidate := range validReportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report status %q", value)
}

func ActiveReportStatuses() []ReportStatus {
	return []ReportStatus{ReportStatusPending, ReportStatusUnderReview}
}

// ReportReason is why a user flagged an item.
type ReportReason string

const (
	ReportReasonIncorrectPrice       ReportReason = "incorrect-price"
	ReportReasonOutOfStock           ReportReason = "out-of-stock"
	ReportReasonWrongStore           ReportReason = "wrong-store"
	ReportReasonExpiredDeal          ReportReason = "expired-deal"
	ReportReasonMisleadingPromotion  ReportReason = "misleading-promotion"
	ReportReasonDuplicateItem        ReportReason = "duplicate-item"
	ReportReasonInappropriateContent ReportReason = "inappropriate-content"
	ReportReasonOther                ReportReason = "other"
)

var reportReasonLabels = []struct {
	reason ReportReason
	label  string
}{
	{ReportReasonIncorrectPrice, "Incorrect price"},
	{ReportReasonOutOfStock, "Item is out of stock"},
	{ReportReasonWrongStore, "Wrong store information"},
	{ReportReasonExpiredDeal, "Deal has expired"},
	{ReportReasonMisleadingPromotion, "Misleading promotion"},
	{ReportReasonDuplicateItem, "Duplicate item"},
	{ReportReasonInappropriateContent, "Inappropriate content"},
	{ReportReasonOther, "Other"},
}

func (r ReportReason) String() string {
	return string(r)
}

func (r ReportReason) IsValid() bool {
	for _, candidate := range reportReasonLabels {
		if candidate.reason == r {
			return true
		}
	}
	return false
}

func (r ReportReason) Label() string {
	for _, candidate := range reportReasonLabels {
		if candidate.reason == r {
			return candidate.label
		}
	}
	return string(r)
}

func ParseReportReason(value string) (ReportReason, error) {
	for _, candidate := range reportReasonLabels {
		if string(candidate.reason) == value {
			return candidate.reason, nil
		}
	}
	return "", fmt.Errorf("invalid report reason %q", value)
}

func ReportReasons() []ReportReason {
	out := make([]ReportReason, 0, len(reportReasonLabels))
	for _, candidate := range reportReasonLabels {
		out = append(out, candidate.reason)
	}
	return out
}
