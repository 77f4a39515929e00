package pack

import (
	"strings"
	"time"

	"tenancypack/internal/document"
	"tenancypack/internal/domain"
)

var summaryContents = []string{
	"Tenancy Agreement (completed)",
	"Energy Performance Certificate",
	"Gas Safety Certificate",
	"Electrical Safety Certificate",
	"Right to Rent Documentation",
	"Deposit Protection Evidence",
	"How to Rent Guide",
	"Compliance Checklist",
}

const timestampLayout = "02 January 2006 at 15:04"

// SummaryDocument lists the parties and the nominal contents of the pack.
func SummaryDocument(req *domain.TenancyRequest, now time.Time) *document.Document {
	doc := document.New("Tenancy Pack Summary", now).
		Headline("TENANCY PACK SUMMARY").
		Space(12).
		Body("Property: " + req.Property.Address()).
		Body("Landlord: " + req.Landlord.FullName.String()).
		Body("Tenant(s): " + strings.Join(req.TenantNames(), ", ")).
		Space(12).
		Subheading("Documents Included:")

	for _, item := range summaryContents {
		doc.Item(document.MarkBullet, item).Space(3)
	}

	return doc.Space(12).
		Body("Generated on: " + now.Format(timestampLayout))
}
