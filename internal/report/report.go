// Package report renders the invite-pending report as a fixed-width,
// human-readable listing. Non-ASCII names are preserved as-is.
package report

import (
	"fmt"
	"sort"
	"strings"

	"vn.io.arda/provisioner/internal/domain"
)

// Render formats the report with one section per tenant, tenants in sorted
// order and users in listing order. Each user line pads email to 35 columns
// and name to 25, followed by the platform id.
func Render(rep domain.PendingReport) string {
	var b strings.Builder
	b.WriteString("Invite Pending Users\n")

	tenants := make([]string, 0, len(rep))
	for name := range rep {
		tenants = append(tenants, name)
	}
	sort.Strings(tenants)

	for _, tenant := range tenants {
		fmt.Fprintf(&b, "=== %s ===\n", tenant)
		users := rep[tenant]
		if len(users) == 0 {
			b.WriteString("no invite-pending users\n")
			continue
		}
		for _, u := range users {
			name := u.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(&b, "%-35s %-25s id:%s\n", u.Email, name, u.ID)
		}
	}
	return b.String()
}
