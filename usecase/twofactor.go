package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"

	"selfie/model"
	"selfie/utils"

	"github.com/pquerna/otp/totp"
)

// TwoFactorSetup is what a client needs to enrol an authenticator app.
type TwoFactorSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRCode string `json:"qr_code"`
}

type TwoFactorService struct {
	users  UserRepository
	issuer string
}

func NewTwoFactorService(users UserRepository, issuer string) *TwoFactorService {
	return &TwoFactorService{users: users, issuer: issuer}
}

// Setup generates a secret and stores it as pending until Enable confirms it.
func (s *TwoFactorService) Setup(ctx context.Context, userID string) (*TwoFactorSetup, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, model.ErrTwoFactorEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate 2FA secret: %w", err)
	}

	img, err := key.Image(200, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	if err := s.users.SetPendingTwoFactor(ctx, userID, key.Secret()); err != nil {
		return nil, err
	}

	return &TwoFactorSetup{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// Enable confirms the pending secret with a TOTP code and returns fresh
// recovery codes. Only their hashes are stored.
func (s *TwoFactorService) Enable(ctx context.Context, userID, code string) ([]string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, model.ErrTwoFactorEnabled
	}
	if user.TwoFactorPendingSecret == "" {
		return nil, model.ErrTwoFactorNotPending
	}
	if !totp.Validate(strings.TrimSpace(code), user.TwoFactorPendingSecret) {
		utils.TrackAuthAttempt("failure", "2fa_enable")
		return nil, model.ErrInvalidTwoFactorCode
	}

	codes, err := utils.GenerateRecoveryCodes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recovery codes: %w", err)
	}
	if err := s.users.EnableTwoFactor(ctx, userID, user.TwoFactorPendingSecret, utils.HashRecoveryCodes(codes)); err != nil {
		return nil, err
	}

	utils.TrackAuthAttempt("success", "2fa_enable")
	return codes, nil
}

// Disable turns 2FA off after checking a TOTP or recovery code.
func (s *TwoFactorService) Disable(ctx context.Context, userID, code string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return model.ErrTwoFactorDisabled
	}

	ok, err := s.Verify(ctx, user, code)
	if err != nil {
		return err
	}
	if !ok {
		utils.TrackAuthAttempt("failure", "2fa_disable")
		return model.ErrInvalidTwoFactorCode
	}
	return s.users.DisableTwoFactor(ctx, userID)
}

// Verify accepts a current TOTP code, or consumes a matching recovery code.
func (s *TwoFactorService) Verify(ctx context.Context, user *model.User, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}
	if totp.Validate(code, user.TwoFactorSecret) {
		return true, nil
	}
	return s.users.ConsumeRecoveryCode(ctx, user.UserID, utils.HashString(utils.NormalizeRecoveryCode(code)))
}
