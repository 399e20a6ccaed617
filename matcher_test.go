package tollgate

import "testing"

func TestMatchPermission(t *testing.T) {
	cases := []struct {
		granted  Permission
		required Permission
		want     bool
	}{
		{PermManageDeals, PermManageDeals, true},
		{PermManageDeals, PermManagePayments, false},
		{"manage:*", PermManageDeals, true},
		{"manage:*", PermManageClients, true},
		{"manage:*", PermVerifyPayments, false},
		{"*", PermExportData, true},
		{"verify:*", PermVerifyInvoices, true},
		{"verify:*", PermViewReports, false},
		{"", PermManageDeals, false},
	}
	for _, c := range cases {
		if got := matchPermission(c.granted, c.required); got != c.want {
			t.Fatalf("matchPermission(%q, %q) = %v, want %v", c.granted, c.required, got, c.want)
		}
	}
}

func TestIsWildcard(t *testing.T) {
	if !isWildcard("manage:*") || !isWildcard("*") {
		t.Fatal("trailing glob should be detected")
	}
	if isWildcard(PermManageDeals) {
		t.Fatal("plain token is not a wildcard")
	}
}
