package identity

import "golang.org/x/crypto/bcrypt"

// PrepareCredential derives the stored hash for a plaintext password. Every
// write path that touches the password field goes through here, so a fresh
// salt is drawn on each change and no stale hash is ever reused.
func PrepareCredential(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
