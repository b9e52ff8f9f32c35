package internal

import "github.com/sirupsen/logrus"

// RuntimeErrorKind classifies the runtime error taxonomy for programmatic
// dispatch by a driver, mirroring ResolveErrorKind.
type RuntimeErrorKind int

const (
	KindType RuntimeErrorKind = iota
	KindZeroDivision
	KindIndex
	KindArgument
	KindInternal
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case KindType:
		return "TypeError"
	case KindZeroDivision:
		return "ZeroDivisionError"
	case KindIndex:
		return "IndexError"
	case KindArgument:
		return "ArgumentError"
	case KindInternal:
		return "InternalError"
	default:
		return "RuntimeError"
	}
}

// ClassifyError maps one of the concrete error types this package raises to
// its RuntimeErrorKind and source position, for a driver that wants to log
// structured fields without a type switch of its own.
func ClassifyError(err error) (kind RuntimeErrorKind, pos Pos, ok bool) {
	switch e := err.(type) {
	case *TypeError:
		return KindType, e.Pos, true
	case *ZeroDivisionError:
		return KindZeroDivision, e.Pos, true
	case *IndexError:
		return KindIndex, e.Pos, true
	case *ArgumentError:
		return KindArgument, e.Pos, true
	case *InternalError:
		return KindInternal, Pos{}, true
	default:
		return 0, Pos{}, false
	}
}

// LogUnrecovered writes a structured diagnostic for an error that reached
// the top of the driver's error handling — a resolve error, an
// unrecovered runtime error, or a single parse error — using the fields
// a caller would filter on: line, col, kind.
func LogUnrecovered(log *logrus.Logger, err error) {
	if log == nil {
		return
	}
	if re, ok := err.(*ResolveError); ok {
		log.WithFields(logrus.Fields{
			"kind": re.Kind.String(),
			"line": re.Pos.Line,
			"col":  re.Pos.Col,
		}).Error(re.Msg)
		return
	}
	if pe, ok := err.(*ParseError); ok {
		log.WithFields(logrus.Fields{
			"kind": "ParseError",
			"line": pe.Pos.Line,
			"col":  pe.Pos.Col,
		}).Error(pe.Msg)
		return
	}
	if kind, pos, ok := ClassifyError(err); ok {
		log.WithFields(logrus.Fields{
			"kind": kind.String(),
			"line": pos.Line,
			"col":  pos.Col,
		}).Error(err.Error())
		return
	}
	log.WithField("kind", "unknown").Error(err.Error())
}
