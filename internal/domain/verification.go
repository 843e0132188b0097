package domain

import "time"

// Verification tracks the lifecycle of one issued OTP for a phone number.
// PK: phone_number, SK: verification_id (ULID, so the newest record sorts last).
// PurgeAt is a Unix timestamp used as DynamoDB TTL.
type Verification struct {
	PhoneNumber    string     `json:"phone_number" dynamodbav:"phone_number"`
	VerificationID string     `json:"id" dynamodbav:"verification_id"`
	OTPCode        string     `json:"otp_code,omitempty" dynamodbav:"otp_code"`
	ExpiresAt      time.Time  `json:"expires_at" dynamodbav:"expires_at"`
	Verified       bool       `json:"verified" dynamodbav:"verified"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty" dynamodbav:"verified_at,omitempty"`
	Attempts       int        `json:"attempts" dynamodbav:"attempts"`
	CreatedAt      time.Time  `json:"created_at" dynamodbav:"created_at"`
	PurgeAt        int64      `json:"purge_at" dynamodbav:"purge_at"` // TTL (Unix seconds)
}

// Expired reports whether the code can no longer be used at instant now.
func (v *Verification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// Redacted returns a copy without the code, for operator views.
func (v Verification) Redacted() Verification {
	v.OTPCode = ""
	return v
}

type SendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTPCode     string `json:"otpCode"`
}
