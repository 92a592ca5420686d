// internal/locator/address.go
package locator

import (
	"fmt"
	"reflect"
	"strings"
)

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return reflect.DeepEqual(a.Path, other.Path)
}

// Child returns a new address extended by a plain segment. The receiver is
// left untouched so sibling addresses can share a common prefix.
func (a *Address) Child(name string) *Address {
	return a.with(NewPathSegment(name))
}

// Index returns a new address extended by an indexed segment.
func (a *Address) Index(name string, index int) *Address {
	return a.with(NewPathSegmentWithIndex(name, index))
}

func (a *Address) with(segment PathSegment) *Address {
	var path []PathSegment
	if a != nil {
		path = make([]PathSegment, len(a.Path), len(a.Path)+1)
		copy(path, a.Path)
	}
	return &Address{Path: append(path, segment)}
}

// New builds a Locator for the given document and address.
func New(document string, addr *Address) Locator {
	return Locator{Document: document, Address: addr}
}

// String renders the locator in report form: `<document path> <address>`.
func (l Locator) String() string {
	if l.Address == nil || len(l.Address.Path) == 0 {
		return l.Document
	}
	return l.Document + " " + l.Address.String()
}

// Equal reports whether two locators point at the same place.
func (l Locator) Equal(other Locator) bool {
	return l.Document == other.Document && l.Address.Equal(other.Address)
}
