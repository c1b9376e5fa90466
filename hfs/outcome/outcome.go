// Package outcome turns codec failures into OperationOutcome resources.
package outcome

import (
	"github.com/pkg/errors"

	"github.com/HeliosSoftware/hfs-sub000/hfs/codec"
	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
)

// How the issue affects the success of the action.
// See: http://hl7.org/fhir/issue-severity
const (
	Fatal       = "fatal"
	Error       = "error"
	Warning     = "warning"
	Information = "information"
)

// The issue-type codes the codec errors map to.
// See: http://hl7.org/fhir/issue-type
const (
	Invalid      = "invalid"
	Structure    = "structure"
	Required     = "required"
	Value        = "value"
	Processing   = "processing"
	NotSupported = "not-supported"
	TooCostly    = "too-costly"
	Exception    = "exception"
)

// Issue builds one OperationOutcome.issue entry. Empty diagnostics are left out.
func Issue(severity, code, diagnostics string, expression ...string) *fhir.Composite {
	issue := fhir.NewComposite("OperationOutcomeIssue").
		Set("severity", fhir.NewPrimitive(severity)).
		Set("code", fhir.NewPrimitive(code))
	if diagnostics != "" {
		issue.Set("diagnostics", fhir.NewPrimitive(diagnostics))
	}
	if len(expression) > 0 {
		list := make(fhir.List, 0, len(expression))
		for _, e := range expression {
			list = append(list, fhir.NewPrimitive(e))
		}
		issue.Set("expression", list)
	}
	return issue
}

// New wraps issues in an OperationOutcome.
func New(issues ...*fhir.Composite) *fhir.Resource {
	oo := fhir.NewResource("OperationOutcome")
	list := make(fhir.List, 0, len(issues))
	for _, i := range issues {
		list = append(list, i)
	}
	oo.Set("issue", list)
	return oo
}

// FromError reports err as a single error issue. Decode errors carry their
// location as the issue expression.
func FromError(err error) *fhir.Resource {
	var expression []string
	var located codec.DecodeError
	if errors.As(err, &located) && len(located.Location()) > 0 {
		expression = append(expression, located.Location().String())
	}
	return New(Issue(Error, IssueType(err), err.Error(), expression...))
}

// IssueType picks the issue-type code for err.
func IssueType(err error) string {
	var (
		lexical   *codec.LexicalError
		ambiguous *codec.AmbiguousChoiceError
		missing   *codec.MissingRequiredMemberError
		unknown   *codec.UnrecognizedMemberError
		noKind    *codec.MissingDiscriminatorError
		badKind   *codec.UnknownResourceKindError
		tooDeep   *codec.RecursionLimitExceededError
		encode    *codec.EncodeError
		syntax    *tree.SyntaxError
	)
	switch {
	case errors.As(err, &lexical):
		return Value
	case errors.As(err, &ambiguous), errors.As(err, &unknown):
		return Structure
	case errors.As(err, &missing), errors.As(err, &noKind):
		return Required
	case errors.As(err, &badKind):
		return NotSupported
	case errors.As(err, &tooDeep):
		return TooCostly
	case errors.As(err, &encode):
		return Processing
	case errors.As(err, &syntax):
		return Invalid
	}
	return Exception
}
