// Package identity validates and normalizes customer identity details before
// a reservation may commit.  Verification is all-or-nothing: a complete
// model.Identity is produced only when every field passes its own validator,
// and every failure names the offending field so the operator can re-enter
// just that value.
package identity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iliyamo/seat-inventory/internal/model"
)

// FieldError reports a validation failure for one named field.  The verifier
// never returns a generic error for bad input.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErr(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Input is the raw, unvalidated field set collected from the operator.
type Input struct {
	FirstName     string
	MiddleInitial string
	Surname       string
	IDType        string
	IDNumber      string
	Contact       string
	Street        string
	Barangay      string
	City          string
	Province      string
	PostalCode    string
}

var (
	namePattern   = regexp.MustCompile(`^[a-zA-Z\s\-]+$`)
	streetPattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-#.,]+$`)
)

// IDTypeSpec describes one accepted government ID type: its display name,
// the regexp shape its numbers must match, and an example shown to the
// operator on rejection.  Some types carry a secondary structural check
// beyond the regexp.
type IDTypeSpec struct {
	Name    string
	Pattern *regexp.Regexp
	Example string
	check   func(number string) error
}

// idTypes is the fixed enumerated set of accepted government IDs.
var idTypes = []IDTypeSpec{
	{
		Name:    "Driver's License",
		Pattern: regexp.MustCompile(`^[A-Z]\d{2}-\d{2}-\d{2}-\d{6}$`),
		Example: "L12-34-56-789012",
		check:   checkDriversLicense,
	},
	{
		Name:    "Passport",
		Pattern: regexp.MustCompile(`^[A-Z]{1,2}\d{6,8}$`),
		Example: "AB123456",
		check: func(n string) error {
			if n == "" || !unicode.IsLetter(rune(n[0])) {
				return fmt.Errorf("passport must start with a letter")
			}
			return nil
		},
	},
	{Name: "National ID (PhilSys)", Pattern: regexp.MustCompile(`^\d{12}$`), Example: "123456789012"},
	{Name: "SSS ID", Pattern: regexp.MustCompile(`^\d{10}$`), Example: "1234567890"},
	{Name: "GSIS ID", Pattern: regexp.MustCompile(`^\d{10}$`), Example: "1234567890"},
	{Name: "UMID", Pattern: regexp.MustCompile(`^\d{12}$`), Example: "123456789012"},
	{Name: "Postal ID", Pattern: regexp.MustCompile(`^[A-Z]{2}\d{7}$`), Example: "AB1234567"},
	{Name: "PRC ID", Pattern: regexp.MustCompile(`^\d{6,8}$`), Example: "123456"},
	{Name: "Voter's ID", Pattern: regexp.MustCompile(`^\d{12}$`), Example: "123456789012"},
}

// IDTypes returns the accepted government ID types in menu order.
func IDTypes() []IDTypeSpec {
	out := make([]IDTypeSpec, len(idTypes))
	copy(out, idTypes)
	return out
}

// checkDriversLicense enforces the LTO segment structure LNN-NN-NN-NNNNNN on
// top of the regexp: first segment one letter plus two digits, remaining
// segments all digits of fixed width.
func checkDriversLicense(number string) error {
	parts := strings.Split(number, "-")
	if len(parts) != 4 {
		return fmt.Errorf("license must have 4 dash-separated segments")
	}
	if len(parts[0]) != 3 || !unicode.IsLetter(rune(parts[0][0])) || !allDigits(parts[0][1:]) {
		return fmt.Errorf("first segment must be one letter and two digits")
	}
	if len(parts[1]) != 2 || !allDigits(parts[1]) || len(parts[2]) != 2 || !allDigits(parts[2]) {
		return fmt.Errorf("middle segments must be two digits each")
	}
	if len(parts[3]) != 6 || !allDigits(parts[3]) {
		return fmt.Errorf("last segment must be six digits")
	}
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// titleCase uppercases the first letter of every word and lowercases the
// rest, treating any non-letter as a word boundary (matching how legal names
// like "dela-cruz" were normalized in the original records).
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// collapseSpaces trims and folds internal whitespace runs to single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ValidateName normalizes a first name or surname: letters, spaces and
// hyphens only, at least two characters, collapsed whitespace, title-cased.
// The field parameter names the failing field in errors.
func ValidateName(field, raw string) (string, error) {
	name := collapseSpaces(raw)
	if name == "" {
		return "", fieldErr(field, "is required")
	}
	if len(name) < 2 {
		return "", fieldErr(field, "must be at least 2 characters")
	}
	if !namePattern.MatchString(name) {
		return "", fieldErr(field, "may only contain letters, spaces and hyphens")
	}
	return titleCase(name), nil
}

// ValidateMiddleInitial accepts an empty value or exactly one letter, which
// is uppercased.
func ValidateMiddleInitial(raw string) (string, error) {
	mi := strings.TrimSpace(raw)
	if mi == "" {
		return "", nil
	}
	if len(mi) != 1 || !unicode.IsLetter(rune(mi[0])) {
		return "", fieldErr("middle_initial", "must be a single letter")
	}
	return strings.ToUpper(mi), nil
}

// ValidateGovernmentID checks the ID number against the declared type's
// shape and any secondary structural rule.  The number is uppercased before
// matching, mirroring operator entry.
func ValidateGovernmentID(idType, rawNumber string) (string, string, error) {
	var spec *IDTypeSpec
	for i := range idTypes {
		if strings.EqualFold(idTypes[i].Name, strings.TrimSpace(idType)) {
			spec = &idTypes[i]
			break
		}
	}
	if spec == nil {
		return "", "", fieldErr("id_type", "unknown government ID type %q", idType)
	}
	number := strings.ToUpper(strings.TrimSpace(rawNumber))
	if number == "" {
		return "", "", fieldErr("id_number", "is required")
	}
	if !spec.Pattern.MatchString(number) {
		return "", "", fieldErr("id_number", "invalid format, example: %s", spec.Example)
	}
	if spec.check != nil {
		if err := spec.check(number); err != nil {
			return "", "", fieldErr("id_number", "%v", err)
		}
	}
	return spec.Name, number, nil
}

// ValidateContact strips every non-digit and requires 10 to 11 remaining
// digits.
func ValidateContact(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	clean := digits.String()
	if clean == "" {
		return "", fieldErr("contact", "is required")
	}
	if len(clean) < 10 {
		return "", fieldErr("contact", "too short, minimum 10 digits")
	}
	if len(clean) > 11 {
		return "", fieldErr("contact", "too long, maximum 11 digits")
	}
	return clean, nil
}

// Postal code bounds for the target region.
const (
	postalMin = 800
	postalMax = 9820
)

// ValidatePostalCode requires exactly four digits within the valid range.
func ValidatePostalCode(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "", fieldErr("postal_code", "is required")
	}
	if len(code) != 4 || !allDigits(code) {
		return "", fieldErr("postal_code", "must be exactly 4 digits")
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < postalMin || n > postalMax {
		return "", fieldErr("postal_code", "outside the valid code range")
	}
	return code, nil
}

// ValidateAddress checks all five structured address fields and returns the
// normalized Address.  City and province names are title-cased; street text
// keeps the operator's casing but must use a restricted character set.
func ValidateAddress(street, barangay, city, province, postal string) (model.Address, error) {
	st := collapseSpaces(street)
	if st == "" {
		return model.Address{}, fieldErr("street", "is required")
	}
	if len(st) < 5 {
		return model.Address{}, fieldErr("street", "enter the complete street address")
	}
	if !streetPattern.MatchString(st) {
		return model.Address{}, fieldErr("street", "contains invalid characters")
	}
	brgy := collapseSpaces(barangay)
	if len(brgy) < 2 {
		return model.Address{}, fieldErr("barangay", "is required")
	}
	ct := collapseSpaces(city)
	if len(ct) < 2 {
		return model.Address{}, fieldErr("city", "is required")
	}
	pv := collapseSpaces(province)
	if len(pv) < 2 {
		return model.Address{}, fieldErr("province", "is required")
	}
	code, err := ValidatePostalCode(postal)
	if err != nil {
		return model.Address{}, err
	}
	return model.Address{
		Street:     st,
		Barangay:   brgy,
		City:       titleCase(ct),
		Province:   titleCase(pv),
		PostalCode: code,
	}, nil
}

// Verifier produces verified identities.  Now is injectable so tests can pin
// the VerifiedAt timestamp.
type Verifier struct {
	Now func() time.Time
}

// NewVerifier returns a Verifier stamping identities with time.Now in UTC.
func NewVerifier() *Verifier {
	return &Verifier{Now: func() time.Time { return time.Now().UTC() }}
}

// Verify runs every field validator and returns a complete Identity only when
// all of them pass.  The first failing field aborts verification; no partial
// Identity is ever returned.
func (v *Verifier) Verify(in Input) (model.Identity, error) {
	first, err := ValidateName("first_name", in.FirstName)
	if err != nil {
		return model.Identity{}, err
	}
	mi, err := ValidateMiddleInitial(in.MiddleInitial)
	if err != nil {
		return model.Identity{}, err
	}
	surname, err := ValidateName("surname", in.Surname)
	if err != nil {
		return model.Identity{}, err
	}
	idType, idNumber, err := ValidateGovernmentID(in.IDType, in.IDNumber)
	if err != nil {
		return model.Identity{}, err
	}
	contact, err := ValidateContact(in.Contact)
	if err != nil {
		return model.Identity{}, err
	}
	addr, err := ValidateAddress(in.Street, in.Barangay, in.City, in.Province, in.PostalCode)
	if err != nil {
		return model.Identity{}, err
	}
	return model.Identity{
		FirstName:     first,
		MiddleInitial: mi,
		Surname:       surname,
		IDType:        idType,
		IDNumber:      idNumber,
		Contact:       contact,
		Address:       addr,
		VerifiedAt:    v.Now(),
	}, nil
}
