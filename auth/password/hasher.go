package password

import "errors"

var (
	// ErrEmptyPassword is returned by Hash for an empty input.
	ErrEmptyPassword = errors.New("password: empty password")
	// ErrPasswordTooLong is returned by Hash when the input exceeds the
	// algorithm's limit.
	ErrPasswordTooLong = errors.New("password: password too long")
)

// Hasher produces salted adaptive hashes and checks passwords against them.
type Hasher interface {
	// Hash returns a self-describing hash string. Two calls with the same
	// input return different strings.
	Hash(plain string) (string, error)

	// Verify reports whether plain matches hash in constant time.
	Verify(plain, hash string) bool
}

func checkLength(plain string, max int) error {
	if plain == "" {
		return ErrEmptyPassword
	}
	if len(plain) > max {
		return ErrPasswordTooLong
	}
	return nil
}
