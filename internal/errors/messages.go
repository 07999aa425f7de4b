package errors

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys
const (
	KeyUnknown                      = "descres.unknown"
	KeyInterfaceConflict            = "descres.classify.interfaceconflict"
	KeyClassMismatch                = "descres.resolver.classmismatch"
	KeyKindMismatch                 = "descres.resolver.wrongtype"
	KeySessionTypeConflict          = "descres.resolver.sessiontypeconflict"
	KeyUnsupportedKind              = "descres.resolver.unsupportedkind"
	KeyInvalidHome                  = "descres.classify.invalidhome"
	KeyTooManyErrors                = "descres.processor.toomanyerrors"
	KeyIncompatibleSuperclassMarker = "descres.resolver.notcompsuperclass"
	KeyInapplicableMarker           = "descres.resolver.inapplicable"
	KeyInvalidMarker                = "descres.processor.invalidmarker"
	KeyMissingClass                 = "descres.processor.missingclass"
)

var codeKeys = map[Code]string{
	UnknownCode:                      KeyUnknown,
	InterfaceConflictCode:            KeyInterfaceConflict,
	ClassMismatchCode:                KeyClassMismatch,
	KindMismatchCode:                 KeyKindMismatch,
	SessionTypeConflictCode:          KeySessionTypeConflict,
	UnsupportedKindCode:              KeyUnsupportedKind,
	InvalidHomeCode:                  KeyInvalidHome,
	TooManyErrorsCode:                KeyTooManyErrors,
	IncompatibleSuperclassMarkerCode: KeyIncompatibleSuperclassMarker,
	InapplicableMarkerCode:           KeyInapplicableMarker,
	InvalidMarkerCode:                KeyInvalidMarker,
	MissingClassCode:                 KeyMissingClass,
}

// English messages. Argument order is fixed per key.
var englishMessages = map[string]string{
	KeyUnknown:                      "%v",
	KeyInterfaceConflict:            "The interface %s cannot be both a local and a remote business interface.",
	KeyClassMismatch:                "Component %[2]s declares class %[1]s but its component-defining marker is on %[3]s.",
	KeyKindMismatch:                 "Wrong marker @%s for %s component %s.",
	KeySessionTypeConflict:          "Component %s is %s and cannot become %s.",
	KeyUnsupportedKind:              "Unsupported component kind %s for component %s.",
	KeyInvalidHome:                  "Encountered invalid @%s interface %s.",
	KeyTooManyErrors:                "Too many errors (%d); processing of bundle %s was abandoned.",
	KeyIncompatibleSuperclassMarker: "The marker @%s defined in a superclass is not compatible with %s component %s.",
	KeyInapplicableMarker:           "@%s only applies to %s components; ignored on %s component %s.",
	KeyInvalidMarker:                "Invalid marker %s: %v",
	KeyMissingClass:                 "Class %s of component %s is not part of the deployment unit.",
}

var messageCatalog = catalog.NewBuilder(catalog.Fallback(language.English))

func init() {
	for key, msg := range englishMessages {
		if err := messageCatalog.SetString(language.English, key, msg); err != nil {
			panic(err)
		}
	}
}

// Key returns the message key of the code
func (c Code) Key() string {
	if key, ok := codeKeys[c]; ok {
		return key
	}
	return KeyUnknown
}

// SetMessage registers a translation of a message key
func SetMessage(tag language.Tag, key, msg string) error {
	return messageCatalog.SetString(tag, key, msg)
}

// Printer returns a message printer over the finding catalog
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messageCatalog))
}
