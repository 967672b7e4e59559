package market

import (
	"fmt"
	"regexp"
)

// Code is a KRX issue code, six digits ("005930" is Samsung Electronics).
type Code string

var codePattern = regexp.MustCompile(`^\d{6}$`)

// ParseCode validates s against the six-digit issue code pattern.
func ParseCode(s string) (Code, error) {
	if !codePattern.MatchString(s) {
		return "", fmt.Errorf("bad stock code %q: want six digits", s)
	}
	return Code(s), nil
}

// Valid reports whether the code matches the six-digit issue code pattern.
func (c Code) Valid() bool {
	return codePattern.MatchString(string(c))
}

func (c Code) String() string { return string(c) }
