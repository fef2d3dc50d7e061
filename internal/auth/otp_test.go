package auth

import (
	"testing"
	"time"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

func TestGenerateOTPShape(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP: %v", err)
		}
		if len(otp) != 6 {
			t.Fatalf("otp %q must be six digits", otp)
		}
		for _, r := range otp {
			if r < '0' || r > '9' {
				t.Fatalf("otp %q contains a non-digit", otp)
			}
		}
	}
}

func TestOTPMatches(t *testing.T) {
	now := time.Now()
	expires := now.Add(otpTTL)
	u := domain.User{
		PasswordResetToken:   HashOTP("123456"),
		PasswordResetExpires: &expires,
	}

	if !otpMatches(u, "123456", now) {
		t.Fatalf("matching code must verify")
	}
	if otpMatches(u, "654321", now) {
		t.Fatalf("wrong code must not verify")
	}
	if otpMatches(u, "123456", now.Add(otpTTL+time.Minute)) {
		t.Fatalf("expired code must not verify")
	}

	if otpMatches(domain.User{}, "123456", now) {
		t.Fatalf("user without reset state must not verify")
	}
}

func TestSignTokenRoundTrip(t *testing.T) {
	u := domain.User{ID: "user-1", Role: domain.RoleSeller}
	token, err := SignToken(u, "secret", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}
}
