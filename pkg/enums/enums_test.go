package enums

import "testing"

func TestParseRole(t *testing.T) {
	role, err := ParseRole("employee")
	if err != nil || role != RoleEmployee {
		t.Fatalf("expected employee role, got %q err=%v", role, err)
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Fatalf("expected owner to be rejected")
	}
	if !RoleAdmin.CanManageStock() || RoleUser.CanManageStock() {
		t.Fatalf("unexpected stock permissions")
	}
}

func TestStockStatusValues(t *testing.T) {
	for _, raw := range []string{"in-stock", "out-of-stock", "low-stock", "discontinued"} {
		if _, err := ParseStockStatus(raw); err != nil {
			t.Fatalf("expected %q to parse: %v", raw, err)
		}
	}
	if StockStatus("sold-out").IsValid() {
		t.Fatalf("expected sold-out to be invalid")
	}
}

func TestReportStatusActive(t *testing.T) {
	if !ReportStatusPending.IsActive() || !ReportStatusUnderReview.IsActive() {
		t.Fatalf("pending and under-review are active")
	}
	if ReportStatusResolved.IsActive() || ReportStatusDismissed.IsActive() {
		t.Fatalf("resolved and dismissed are not active")
	}
}

func TestReportReasonsHaveLabels(t *testing.T) {
	reasons := ReportReasons()
	if len(reasons) != 8 {
		t.Fatalf("expected 8 reasons got %d", len(reasons))
	}
	for _, reason := range reasons {
		if reason.Label() == "" || reason.Label() == string(reason) {
			t.Fatalf("reason %q has no label", reason)
		}
	}
}

func TestCategoryAndUnit(t *testing.T) {
	if _, err := ParseCategory("personal-care"); err != nil {
		t.Fatalf("expected personal-care to parse: %v", err)
	}
	if Category("toys").IsValid() {
		t.Fatalf("expected toys to be invalid")
	}
	if _, err := ParseUnit("gal"); err != nil {
		t.Fatalf("expected gal to parse: %v", err)
	}
	if len(Units()) != 10 {
		t.Fatalf("expected 10 units")
	}
}
