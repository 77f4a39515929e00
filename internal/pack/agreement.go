package pack

import (
	"fmt"
	"time"

	"tenancypack/internal/document"
	"tenancypack/internal/domain"
)

const signatureLine = "Date: ___________________"

// PaymentDates renders clause 1.3: a day of each month for monthly rent,
// otherwise a recurring day.
func PaymentDates(terms domain.RentalTerms) string {
	if terms.Monthly() {
		return fmt.Sprintf("the %s day of each month", terms.PaymentDay)
	}
	return fmt.Sprintf("every %s", terms.PaymentDay)
}

// AgreementDocument lays out the assured shorthold tenancy agreement.
// Parties are numbered with the landlord first and tenants from 2 in payload
// order.
func AgreementDocument(req *domain.TenancyRequest, now time.Time) *document.Document {
	address := req.Property.Address()
	terms := req.RentalTerms
	landlord := req.Landlord

	doc := document.New("Assured Shorthold Tenancy Agreement", now).
		Headline("ASSURED SHORTHOLD TENANCY AGREEMENT").
		Space(12).
		Body(address).
		Space(12).
		Body(fmt.Sprintf("THIS AGREEMENT is dated %s", terms.AgreementDate)).
		Space(12).
		Heading("PARTIES").
		Body(fmt.Sprintf("1. %s of %s, %s, %s (Landlord).", landlord.FullName, landlord.Address, landlord.Phone, landlord.Email)).
		Space(6)

	for i, t := range req.Tenants {
		doc.Body(fmt.Sprintf("%d. %s, of %s, %s, %s (Tenant).", i+2, t.FullName, t.Address, t.Phone, t.Email)).
			Space(6)
	}

	doc.Space(12).
		Heading("AGREED TERMS").
		Subheading("1. Particulars").
		Body(fmt.Sprintf("1.1 Property: %s", address)).
		Body(fmt.Sprintf("1.2 Rent: £%s per %s.", terms.RentAmount, terms.PaymentFrequency)).
		Body(fmt.Sprintf("1.3 Rent Payment Dates: %s.", PaymentDates(terms))).
		Body(fmt.Sprintf("1.4 First Rent Payment Date: %s.", terms.FirstPaymentDate)).
		Body(fmt.Sprintf("1.5 Deposit: £%s.", terms.DepositAmount)).
		Body(fmt.Sprintf("1.6 Term: a fixed term of %s months from and including %s.", terms.TenancyLength, terms.StartDate)).
		Space(12).
		Subheading("2. Standard Terms and Conditions").
		Body("This agreement creates an assured shorthold tenancy under Part I of Chapter II of the Housing Act 1988.").
		Body("The tenant agrees to pay rent in advance and maintain the property in good condition.").
		Body("The landlord agrees to provide quiet enjoyment and maintain the property structure.").
		Space(24).
		Heading("SIGNATURES OF THE PARTIES:").
		Body("This agreement has been entered into on the date stated at the beginning of it.").
		Space(12).
		Body("SIGNED BY:").
		Body(fmt.Sprintf("%s, Landlord", landlord.FullName)).
		Space(6).
		Body(signatureLine).
		Space(12).
		Body("SIGNED BY TENANT(S):")

	for i, t := range req.Tenants {
		doc.Body(fmt.Sprintf("%d. %s", i+1, t.FullName)).Space(6)
	}
	return doc.Body(signatureLine)
}
