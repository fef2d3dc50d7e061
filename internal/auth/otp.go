package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

// otpTTL is how long a password-reset code stays valid.
const otpTTL = 10 * time.Minute

// GenerateOTP returns a random six-digit reset code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashOTP is how reset codes are stored; the plain code only ever travels by
// email.
func HashOTP(otp string) string {
	sum := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(sum[:])
}

// otpMatches checks a submitted code against the user's stored reset state.
func otpMatches(u domain.User, otp string, now time.Time) bool {
	if u.PasswordResetToken == "" || u.PasswordResetExpires == nil {
		return false
	}
	if now.After(*u.PasswordResetExpires) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(u.PasswordResetToken), []byte(HashOTP(otp))) == 1
}
