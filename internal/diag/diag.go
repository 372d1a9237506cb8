// Package diag defines the span-bearing error type shared by every
// compiler stage and the source-excerpt formatter used to render it.
package diag

import "fmt"

// Span is a half-open byte range within a named source file, plus the
// line/column the range starts at. Scanners and parsers attach spans
// to every token and node; the core never constructs a span itself,
// only threads the ones it is given.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// IsValid reports whether the span carries real location information.
func (s Span) IsValid() bool {
	return s.Line > 0
}

func (s Span) String() string {
	if !s.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
}

// Kind tags the category of a diagnostic. Values group by the
// component that raises them, matching spec §7's error categories.
type Kind string

const (
	// I/O & packaging
	KindPackageFile  Kind = "PACKAGE_FILE"
	KindSourceOpen   Kind = "SOURCE_OPEN"
	KindOutputWrite  Kind = "OUTPUT_WRITE"
	KindDependencyCycle Kind = "DEPENDENCY_CYCLE"

	// Lexical
	KindInvalidToken        Kind = "INVALID_TOKEN"
	KindInvalidLiteralSuffix Kind = "INVALID_LITERAL_SUFFIX"
	KindNonASCIIInLiteral   Kind = "NON_ASCII_IN_LITERAL"
	KindBadEscape           Kind = "BAD_ESCAPE"
	KindUnclosedLiteral     Kind = "UNCLOSED_LITERAL"

	// Syntactic
	KindExpectedToken      Kind = "EXPECTED_TOKEN"
	KindExpectedIdentifier Kind = "EXPECTED_IDENTIFIER"
	KindExpectedStatement  Kind = "EXPECTED_STATEMENT"
	KindExpectedOperand    Kind = "EXPECTED_OPERAND"
	KindExpectedType       Kind = "EXPECTED_TYPE"
	KindUnexpectedElse     Kind = "UNEXPECTED_ELSE"
	KindInvalidGlobImport  Kind = "INVALID_GLOB_IMPORT"

	// Name resolution
	KindUndefinedSymbol      Kind = "UNDEFINED_SYMBOL"
	KindGlobalSymbolConflict Kind = "GLOBAL_SYMBOL_CONFLICT"
	KindNotAType             Kind = "NOT_A_TYPE"
	KindAmbiguousSymbol      Kind = "AMBIGUOUS_SYMBOL"
	KindInvalidSuper         Kind = "INVALID_SUPER"
	KindNoSelfType           Kind = "NO_SELF_TYPE"

	// Type checking
	KindIncompatibleTypes         Kind = "INCOMPATIBLE_TYPES"
	KindInconvertibleTypes        Kind = "INCONVERTIBLE_TYPES"
	KindNonConstantArrayLength    Kind = "NON_CONSTANT_ARRAY_LENGTH"
	KindRecursiveTypeDefinition   Kind = "RECURSIVE_TYPE_DEFINITION"
	KindUnknownTypeSize           Kind = "UNKNOWN_TYPE_SIZE"
	KindUnknownTypeAlignment      Kind = "UNKNOWN_TYPE_ALIGNMENT"
	KindExpectedPointer           Kind = "EXPECTED_POINTER"
	KindExpectedInteger           Kind = "EXPECTED_INTEGER"
	KindExpectedArray             Kind = "EXPECTED_ARRAY"
	KindInvalidMemberAccess       Kind = "INVALID_MEMBER_ACCESS"
	KindMissingStructMembers      Kind = "MISSING_STRUCT_MEMBERS"
	KindExtraStructMembers        Kind = "EXTRA_STRUCT_MEMBERS"
	KindMustSpecifyTypeForGlobal  Kind = "MUST_SPECIFY_TYPE_FOR_GLOBAL"

	// Flow
	KindInvalidBreak        Kind = "INVALID_BREAK"
	KindInvalidContinue     Kind = "INVALID_CONTINUE"
	KindMissingReturnValue  Kind = "MISSING_RETURN_VALUE"
	KindExtraneousReturnValue Kind = "EXTRANEOUS_RETURN_VALUE"

	// Constancy
	KindNonConstantSymbol            Kind = "NON_CONSTANT_SYMBOL"
	KindUnsupportedConstantExpression Kind = "UNSUPPORTED_CONSTANT_EXPRESSION"

	// Function calls
	KindWrongArgumentCount Kind = "WRONG_ARGUMENT_COUNT"
	KindNoSuchMethod       Kind = "NO_SUCH_METHOD"

	// Bindings
	KindCannotMutateValue               Kind = "CANNOT_MUTATE_VALUE"
	KindExpectedLValue                  Kind = "EXPECTED_LVALUE"
	KindMustSpecifyTypeForUninitialized Kind = "MUST_SPECIFY_TYPE_FOR_UNINITIALIZED"
)

// Severity is how impactful a diagnostic is.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityNote  Severity = "note"
)

// Related is a secondary span attached to a diagnostic, e.g. the
// location of a conflicting prior declaration.
type Related struct {
	Span    Span
	Message string
}

// Error is the single error type returned by every fallible operation
// in the core. It implements the standard error interface so it
// composes with errors.Is/As and %w wrapping.
type Error struct {
	Kind     Kind
	Severity Severity
	Message  string
	Span     Span
	Related  []Related
	Help     string
}

// New builds an error-severity diagnostic.
func New(kind Kind, span Span, message string, args ...interface{}) *Error {
	return &Error{
		Kind:     kind,
		Severity: SeverityError,
		Message:  fmt.Sprintf(message, args...),
		Span:     span,
	}
}

// WithRelated appends a secondary, explanatory span.
func (e *Error) WithRelated(span Span, message string) *Error {
	e.Related = append(e.Related, Related{Span: span, Message: message})
	return e
}

// WithHelp attaches a one-line suggestion printed after the excerpt.
func (e *Error) WithHelp(help string) *Error {
	e.Help = help
	return e
}

func (e *Error) Error() string {
	if e.Span.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
