package identity

import (
	"errors"

	"github.com/iliyamo/seat-inventory/internal/model"
)

// Step names one field of the interactive verification sequence.
type Step string

const (
	StepFirstName     Step = "first_name"
	StepMiddleInitial Step = "middle_initial"
	StepSurname       Step = "surname"
	StepIDType        Step = "id_type"
	StepIDNumber      Step = "id_number"
	StepContact       Step = "contact"
	StepStreet        Step = "street"
	StepBarangay      Step = "barangay"
	StepCity          Step = "city"
	StepProvince      Step = "province"
	StepPostalCode    Step = "postal_code"
)

// steps is the fixed entry order of the verification sequence.
var steps = []Step{
	StepFirstName, StepMiddleInitial, StepSurname,
	StepIDType, StepIDNumber, StepContact,
	StepStreet, StepBarangay, StepCity, StepProvince, StepPostalCode,
}

var (
	// ErrAborted is returned once a session has been explicitly abandoned.
	ErrAborted = errors.New("verification aborted")
	// ErrIncomplete is returned when Identity is requested before every
	// step has passed.
	ErrIncomplete = errors.New("verification incomplete")
)

// Session is a resumable verification sequence.  Each Submit validates the
// current field and advances on success; a failed Submit keeps the cursor in
// place for re-entry.  Back rewinds one step at a time and Abort abandons
// the whole sequence.  Nothing outside the session is mutated at any point,
// so aborting leaves no partial identity anywhere.
type Session struct {
	verifier *Verifier
	input    Input
	cursor   int
	aborted  bool
}

// NewSession starts a verification sequence at the first field.
func NewSession(v *Verifier) *Session {
	return &Session{verifier: v}
}

// Step returns the field currently awaiting input.
func (s *Session) Step() Step {
	if s.Done() {
		return ""
	}
	return steps[s.cursor]
}

// Done reports whether every step has been accepted.
func (s *Session) Done() bool {
	return !s.aborted && s.cursor >= len(steps)
}

// Aborted reports whether the session was abandoned.
func (s *Session) Aborted() bool { return s.aborted }

// Submit validates raw input for the current step.  On success the value is
// recorded and the cursor advances; on failure a FieldError is returned and
// the cursor stays so the operator can re-enter the same field.  The
// id_number step validates against the id_type chosen earlier, so rewinding
// past id_type and changing it re-checks the number on the next pass.
func (s *Session) Submit(raw string) error {
	if s.aborted {
		return ErrAborted
	}
	if s.Done() {
		return ErrIncomplete
	}
	switch steps[s.cursor] {
	case StepFirstName:
		v, err := ValidateName("first_name", raw)
		if err != nil {
			return err
		}
		s.input.FirstName = v
	case StepMiddleInitial:
		v, err := ValidateMiddleInitial(raw)
		if err != nil {
			return err
		}
		s.input.MiddleInitial = v
	case StepSurname:
		v, err := ValidateName("surname", raw)
		if err != nil {
			return err
		}
		s.input.Surname = v
	case StepIDType:
		found := false
		for _, spec := range idTypes {
			if spec.Name == raw {
				found = true
				break
			}
		}
		if !found {
			return fieldErr("id_type", "unknown government ID type %q", raw)
		}
		s.input.IDType = raw
	case StepIDNumber:
		_, number, err := ValidateGovernmentID(s.input.IDType, raw)
		if err != nil {
			return err
		}
		s.input.IDNumber = number
	case StepContact:
		v, err := ValidateContact(raw)
		if err != nil {
			return err
		}
		s.input.Contact = v
	case StepStreet, StepBarangay, StepCity, StepProvince:
		// Defer full address validation to the final Verify; here only
		// presence is enforced per field so the operator gets immediate
		// feedback.
		if collapseSpaces(raw) == "" {
			return fieldErr(string(steps[s.cursor]), "is required")
		}
		switch steps[s.cursor] {
		case StepStreet:
			s.input.Street = raw
		case StepBarangay:
			s.input.Barangay = raw
		case StepCity:
			s.input.City = raw
		case StepProvince:
			s.input.Province = raw
		}
	case StepPostalCode:
		v, err := ValidatePostalCode(raw)
		if err != nil {
			return err
		}
		s.input.PostalCode = v
	}
	s.cursor++
	return nil
}

// Back rewinds to the previous step so its value can be re-entered.  It
// reports false when already at the first step.
func (s *Session) Back() bool {
	if s.aborted || s.cursor == 0 {
		return false
	}
	s.cursor--
	return true
}

// Abort abandons the session.  A subsequent Identity call fails and no
// partial data escapes.
func (s *Session) Abort() {
	s.aborted = true
}

// Identity runs the full verifier over the collected fields and returns the
// completed identity.  It fails unless every step was accepted and the
// session was not aborted.
func (s *Session) Identity() (model.Identity, error) {
	if s.aborted {
		return model.Identity{}, ErrAborted
	}
	if !s.Done() {
		return model.Identity{}, ErrIncomplete
	}
	return s.verifier.Verify(s.input)
}
