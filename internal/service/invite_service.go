package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/repository"
)

var (
	// ErrNotOwner is returned when a non-owner tries to mint an invite code
	ErrNotOwner = errors.New("only the group owner can generate invite codes")
	// ErrInvalidOrExpiredCode is returned when a redeemed code is unknown, expired, or superseded
	ErrInvalidOrExpiredCode = errors.New("invite code is invalid or expired")
)

// inviteTTL is the lifetime of a freshly minted invite code.
const inviteTTL = 30 * time.Minute

// codeLength is the length of generated invite codes.
const codeLength = 8

// codeAlphabet omits 0/O and 1/I so codes survive being read aloud or
// written down.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeMintAttempts bounds retries when a generated code collides with
// a stored code of another group.
const codeMintAttempts = 5

// InviteService handles invite code generation and redemption
type InviteService struct {
	inviteRepo   *repository.InviteRepository
	groupRepo    *repository.GroupRepository
	emailService *EmailService
}

// NewInviteService creates a new invite service
func NewInviteService(inviteRepo *repository.InviteRepository, groupRepo *repository.GroupRepository, emailService *EmailService) *InviteService {
	return &InviteService{
		inviteRepo:   inviteRepo,
		groupRepo:    groupRepo,
		emailService: emailService,
	}
}

// GenerateCode mints a fresh invite code for the caller's group,
// superseding any previous code whether or not it expired. Only the
// owner may mint. When two owners' devices race, the last commit wins
// and earlier codes stop redeeming. If inviteEmail is set the code is
// mailed to the invitee best-effort; delivery failure never fails the
// mint, since the code can always be shared by hand.
func (s *InviteService) GenerateCode(ctx context.Context, userID, inviteEmail string) (*models.InviteCode, error) {
	membership, err := s.groupRepo.GetMembership(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if membership == nil {
		return nil, ErrNotInGroup
	}

	switch membership.Role {
	case models.RoleOwner:
	case models.RoleMember:
		return nil, ErrNotOwner
	default:
		return nil, fmt.Errorf("unknown membership role %q", membership.Role)
	}

	for attempt := 0; attempt < codeMintAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}

		now := time.Now().UTC()
		expiresAt := now.Add(inviteTTL)
		err = s.inviteRepo.ReplaceCode(membership.GroupID, code, now, expiresAt)
		if errors.Is(err, repository.ErrDuplicateCode) {
			// Collided with another group's stored code, mint again
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to store code: %w", err)
		}

		minted := &models.InviteCode{
			GroupID:   membership.GroupID,
			Code:      code,
			CreatedAt: now,
			ExpiresAt: expiresAt,
		}

		if inviteEmail != "" {
			s.emailInvite(ctx, membership.GroupID, inviteEmail, minted)
		}

		return minted, nil
	}

	return nil, fmt.Errorf("failed to generate a unique code after %d attempts", codeMintAttempts)
}

// RedeemCode joins the caller to the group whose live code matches.
// Codes compare case-insensitively and ignore surrounding whitespace.
// A code that is unknown, expired, or superseded fails identically so
// callers cannot probe which groups exist.
func (s *InviteService) RedeemCode(userID, code string) (*models.FamilyGroup, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidOrExpiredCode
	}

	group, err := s.inviteRepo.Redeem(userID, code, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, ErrInvalidOrExpiredCode
		}
		if errors.Is(err, repository.ErrDuplicateMembership) {
			return nil, ErrAlreadyInGroup
		}
		return nil, fmt.Errorf("failed to redeem code: %w", err)
	}

	return group, nil
}

// CodeStatus reports the group's current code to any member, including
// how long it remains redeemable. Returns nil when no live code exists.
func (s *InviteService) CodeStatus(userID string) (*models.InviteCode, error) {
	membership, err := s.groupRepo.GetMembership(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if membership == nil {
		return nil, ErrNotInGroup
	}

	code, err := s.inviteRepo.GetCode(membership.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get code: %w", err)
	}
	if code == nil || code.IsExpired() {
		return nil, nil
	}

	return code, nil
}

// emailInvite mails a freshly minted code to an invitee. Errors are
// logged, never returned.
func (s *InviteService) emailInvite(ctx context.Context, groupID, recipientEmail string, code *models.InviteCode) {
	groupName := ""
	group, err := s.groupRepo.GetGroupByID(groupID)
	if err != nil {
		log.Printf("Failed to load group %s for invite email: %v", groupID, err)
	} else if group != nil {
		groupName = group.Name
	}

	if err := s.emailService.SendInviteCodeEmail(ctx, recipientEmail, groupName, code.Code, code.ExpiresAt); err != nil {
		log.Printf("Failed to send invite email to %s: %v", recipientEmail, err)
	}
}

func randomCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, codeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}
