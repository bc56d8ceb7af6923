// Package numbers provides the identifiers that select an upstream number
// category and the shared categorization logic built on them.
package numbers

import (
	"errors"
	"strings"
)

// ErrInvalidIdentifier is returned when an identifier is not one of p, f, e or r.
var ErrInvalidIdentifier = errors.New("invalid number identifier")

// Identifier is the single-character selector of an upstream number category.
type Identifier string

// Recognized identifiers.
const (
	Primes    Identifier = "p"
	Fibonacci Identifier = "f"
	Even      Identifier = "e"
	Random    Identifier = "r"
)

// Category constants used in metric attributes and NATS subjects.
const (
	CategoryPrimes    = "primes"
	CategoryFibonacci = "fibonacci"
	CategoryEven      = "even"
	CategoryRandom    = "random"
	CategoryUnknown   = "unknown"
)

// All returns every recognized identifier in a stable order.
func All() []Identifier {
	return []Identifier{Primes, Fibonacci, Even, Random}
}

// ParseIdentifier validates s and returns it as an Identifier.
// Matching is exact: "P" or " p" are rejected.
func ParseIdentifier(s string) (Identifier, error) {
	id := Identifier(s)
	if !id.Valid() {
		return "", ErrInvalidIdentifier
	}
	return id, nil
}

// Valid reports whether id is one of the recognized identifiers.
func (id Identifier) Valid() bool {
	switch id {
	case Primes, Fibonacci, Even, Random:
		return true
	default:
		return false
	}
}

// Category returns the human readable category for id.
func (id Identifier) Category() string {
	switch id {
	case Primes:
		return CategoryPrimes
	case Fibonacci:
		return CategoryFibonacci
	case Even:
		return CategoryEven
	case Random:
		return CategoryRandom
	default:
		return CategoryUnknown
	}
}

func (id Identifier) String() string {
	return string(id)
}

// SanitizeSubjectName sanitizes a name for use in NATS subjects.
func SanitizeSubjectName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ".", "_")
	name = strings.ReplaceAll(name, "*", "_")
	name = strings.ReplaceAll(name, ">", "_")
	return name
}
