package entry

import (
	"fmt"

	"github.com/arloliu/caplog/errs"
)

// ValidateName checks that name is a letter followed by letters, digits or underscores.
// Only ASCII letters and digits are accepted.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", errs.ErrInvalidName)
	}
	if !isLetter(name[0]) {
		return fmt.Errorf("%w: %q must start with a letter", errs.ErrInvalidName, name)
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return fmt.Errorf("%w: %q contains %q at position %d", errs.ErrInvalidName, name, c, i)
		}
	}

	return nil
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// describe wraps kind with the name and description of the offending entry.
func describe(kind error, name, desc string, format string, args ...any) error {
	return fmt.Errorf("%w: name:%s, description:%s: %s", kind, name, desc, fmt.Sprintf(format, args...))
}
