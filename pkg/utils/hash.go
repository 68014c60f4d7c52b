package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a staff account password with bcrypt at the default
// cost.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword reports whether plain matches the stored hash. Used by login
// only; the hash never leaves the auth repository.
func CheckPassword(plain, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
