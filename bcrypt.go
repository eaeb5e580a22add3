package auth

import (
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 14

// dummyHash is a valid bcrypt hash of a random string. Login paths compare
// against it when the account is missing or has no local credentials, so
// "no such user" and "wrong password" take the same time.
const dummyHash = "$2a$14$ajq8Q7fbtFRQvXpdCq7Jcuy.Rx1h/L4J60Otx.gyNLbAYctGMJ9tK"

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed password. Any failure, including a malformed hash, is reported
// as ErrInvalidCredentials.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// compareDummy burns the cost of a real comparison without revealing
// whether an account exists.
func compareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}

// Hasher is the default PasswordAuthenticator backed by bcrypt.
type Hasher struct{}

// HashPassword implements PasswordAuthenticator.
func (Hasher) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

// ComparePasswordAndHash implements PasswordAuthenticator.
func (Hasher) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

var _ PasswordAuthenticator = Hasher{}
