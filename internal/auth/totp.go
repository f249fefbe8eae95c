package auth

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultIssuer labels the account in authenticator apps.
const DefaultIssuer = "Inkwell"

// qrSize is the edge length of the enrolment QR code in pixels.
const qrSize = 256

// Enrolment is what a user needs to add the account to an authenticator
// app: the raw secret for manual entry and a QR code of the otpauth URL.
type Enrolment struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	// QRCode is a base64-encoded PNG.
	QRCode string `json:"qr_code"`
}

// TwoFactor handles TOTP enrolment and verification for local accounts.
type TwoFactor struct {
	users  Users
	issuer string
}

// NewTwoFactor creates a TwoFactor. An empty issuer uses DefaultIssuer.
func NewTwoFactor(users Users, issuer string) *TwoFactor {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &TwoFactor{users: users, issuer: issuer}
}

// Setup generates a new secret for the user and stores it as pending.
// The secret becomes active once Verify accepts a code for it.
func (t *TwoFactor) Setup(ctx context.Context, userID uuid.UUID, email string) (*Enrolment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: email,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}

	if err := t.users.SetTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return nil, fmt.Errorf("save totp secret: %w", err)
	}

	return enrolment(key)
}

// Verify checks code against the user's secret and enables two-factor
// authentication on first success.
func (t *TwoFactor) Verify(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := t.users.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user lookup for 2fa: %w", err)
	}
	if user == nil {
		return ErrInvalidCredentials
	}
	if user.TOTPSecret == nil {
		return ErrNotEnrolled
	}

	if !totp.Validate(code, *user.TOTPSecret) {
		return ErrInvalidCode
	}

	if !user.TOTPEnabled {
		if err := t.users.EnableTOTP(ctx, user.ID); err != nil {
			return fmt.Errorf("enable totp: %w", err)
		}
	}
	return nil
}

func enrolment(key *otp.Key) (*Enrolment, error) {
	png, err := qrcode.Encode(key.URL(), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("qr code generation: %w", err)
	}
	return &Enrolment{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: base64.StdEncoding.EncodeToString(png),
	}, nil
}
