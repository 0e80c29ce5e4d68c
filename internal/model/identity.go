package model

import (
	"fmt"
	"time"
)

// Address is the structured postal address captured during identity
// verification.  All five fields are required; the postal code is a 4-digit
// string validated by the identity package.
type Address struct {
	Street     string
	Barangay   string
	City       string
	Province   string
	PostalCode string
}

// String renders the address in the single-line form used on tickets and in
// stored seat records.
func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s, %s %s", a.Street, a.Barangay, a.City, a.Province, a.PostalCode)
}

// Identity is a verified customer record attached to a Taken seat.  It is
// immutable once produced by the verifier; corrections go through a fresh
// verification that yields a new value.
//
// IDNumber is retained for the record but must never appear in any output
// rendered to an end viewer (tickets, reports, audit details).  Only IDType
// is displayable.
type Identity struct {
	FirstName     string
	MiddleInitial string // single letter or empty
	Surname       string
	IDType        string
	IDNumber      string
	Contact       string // normalized 10-11 digit string
	Address       Address
	VerifiedAt    time.Time

	// Display holds the composed name when an identity is restored from a
	// backing record that only kept the display string.  Empty for
	// identities produced by the verifier.
	Display string
}

// DisplayName composes the canonical display string, e.g. "Juan D. Cruz" or
// "Juan Cruz" when no middle initial was given.  Restored identities return
// the stored display string as-is.
func (i Identity) DisplayName() string {
	if i.Display != "" {
		return i.Display
	}
	if i.MiddleInitial != "" {
		return fmt.Sprintf("%s %s. %s", i.FirstName, i.MiddleInitial, i.Surname)
	}
	return i.FirstName + " " + i.Surname
}

// Redacted returns the identity summary safe for audit details: display name
// and ID type only, never the ID number.
func (i Identity) Redacted() string {
	return fmt.Sprintf("%s - ID: %s", i.DisplayName(), i.IDType)
}
