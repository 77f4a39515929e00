package pack

import (
	"time"

	"tenancypack/internal/document"
	"tenancypack/internal/domain"
)

type checklistItem struct {
	// key is empty for items that do not depend on a supporting document.
	key     domain.DocumentKey
	done    string
	pending string
}

var checklistItems = []checklistItem{
	{done: "Tenancy Agreement completed and signed"},
	{key: domain.DocumentEPC, done: "Energy Performance Certificate provided", pending: "Energy Performance Certificate outstanding"},
	{key: domain.DocumentGasSafety, done: "Gas Safety Certificate provided", pending: "Gas Safety Certificate outstanding"},
	{key: domain.DocumentEICR, done: "Electrical Installation Condition Report provided", pending: "Electrical Installation Condition Report outstanding"},
	{key: domain.DocumentRightToRent, done: "Right to Rent checks completed", pending: "Right to Rent checks outstanding"},
	{key: domain.DocumentDeposit, done: "Deposit protection arranged", pending: "Deposit protection outstanding"},
	{done: "How to Rent guide provided to tenants"},
}

const (
	allMet     = "All legal requirements met"
	notAllMet  = "Outstanding legal requirements remain"
	dateLayout = "02 January 2006"
)

// ChecklistDocument lays out the compliance checklist. Unless reflect is
// set every item is ticked; with reflect, certificate items follow the
// request's hasDocument flags.
func ChecklistDocument(req *domain.TenancyRequest, reflect bool, now time.Time) *document.Document {
	doc := document.New("Assured Shorthold Tenancy Checklist", now).
		Headline("ASSURED SHORTHOLD TENANCY CHECKLIST").
		Space(12)

	complete := true
	for _, item := range checklistItems {
		if reflect && item.key != "" && !req.Has(item.key) {
			complete = false
			doc.Item(document.MarkCross, item.pending).Space(6)
			continue
		}
		doc.Item(document.MarkTick, item.done).Space(6)
	}
	if complete {
		doc.Item(document.MarkTick, allMet).Space(6)
	} else {
		doc.Item(document.MarkCross, notAllMet).Space(6)
	}

	return doc.Space(12).
		Body("Generated on: " + now.Format(dateLayout))
}
