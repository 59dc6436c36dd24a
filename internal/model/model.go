package model

import (
	"fmt"
	"strings"
	"time"
)

// Subject identifies a single measured operation by its owning type, method
// name and parameter signature. It is a comparable value type so it can be
// used as a map key; two Subjects with identical fields refer to the same
// operation regardless of where they were constructed.
type Subject struct {
	TypeName  string
	Method    string
	Signature string
}

// NewSubject builds a Subject from a type name, method name and the list of
// parameter type names.
func NewSubject(typeName, method string, paramTypes []string) Subject {
	return Subject{
		TypeName:  typeName,
		Method:    method,
		Signature: strings.Join(paramTypes, ","),
	}
}

// String renders the subject as "Type.Method(params)" for reports and logs.
func (s Subject) String() string {
	return fmt.Sprintf("%s.%s(%s)", s.TypeName, s.Method, s.Signature)
}

// Snapshot is the aggregate of one subject's sample window at one point in
// time. A window with no samples aggregates to the zero Snapshot.
type Snapshot struct {
	Count   int
	Average time.Duration
	Median  time.Duration
}

// Round maps every tracked subject to its aggregate for one snapshot pass.
// A subject that recorded no samples since tracking began is absent.
type Round map[Subject]Snapshot
