package helpers

import (
	"crypto/md5"
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the one-way transform from plaintext to the stored password form.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(stored, plain string) bool
}

// NewHasher selects a hasher by scheme name. Unknown schemes fall back to
// bcrypt, the default for new stores.
func NewHasher(scheme string) Hasher {
	if strings.EqualFold(scheme, "legacy") {
		return LegacyHasher{}
	}
	return BcryptHasher{}
}

// BcryptHasher stores salted bcrypt hashes.
type BcryptHasher struct{}

func (BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (BcryptHasher) Compare(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

// LegacyHasher reproduces the unsalted digest format used by pre-existing
// user tables: an MD5 digest rendered as uppercase hex with leading zeros
// dropped per byte. Deterministic, fast and unsalted — only for stores that
// already hold such hashes; new deployments should keep the bcrypt default.
type LegacyHasher struct{}

func (LegacyHasher) Hash(plain string) (string, error) {
	sum := md5.Sum([]byte(plain))
	var sb strings.Builder
	for _, b := range sum {
		fmt.Fprintf(&sb, "%X", b)
	}
	return sb.String(), nil
}

func (h LegacyHasher) Compare(stored, plain string) bool {
	candidate, err := h.Hash(plain)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
