package utils

import "golang.org/x/crypto/bcrypt"

const BcryptCost = 12

// HashPassword hashes a credential for the local fallback check. Password
// policy is the remote ERP's concern; locally we only store the hash.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func CheckPassword(hashedPassword string, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
