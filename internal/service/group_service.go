package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/repository"
)

var (
	// ErrInvalidName is returned when a group name is empty after trimming
	ErrInvalidName = errors.New("group name must not be empty")
	// ErrAlreadyInGroup is returned when the user already belongs to a group
	ErrAlreadyInGroup = errors.New("user already belongs to a group")
	// ErrNotInGroup is returned when the user has no group membership
	ErrNotInGroup = errors.New("user does not belong to a group")
	// ErrOwnerCannotLeave is returned when the owner tries to leave while other members remain
	ErrOwnerCannotLeave = errors.New("owner cannot leave while other members remain")
)

// GroupService handles family group membership logic
type GroupService struct {
	groupRepo *repository.GroupRepository
}

// NewGroupService creates a new group service
func NewGroupService(groupRepo *repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// CreateGroup creates a new family group with the user as its owner.
// Leading and trailing whitespace in the name is trimmed; interior
// whitespace and unicode are kept as-is.
func (s *GroupService) CreateGroup(userID, name string) (*models.FamilyGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	group, err := s.groupRepo.CreateGroupWithOwner(name, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateMembership) {
			return nil, ErrAlreadyInGroup
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// GetMyGroupState returns the user's group, role, and member roster,
// or nil when the user belongs to no group. Members without a profile
// display name get a short anonymized placeholder.
func (s *GroupService) GetMyGroupState(userID string) (*models.GroupState, error) {
	membership, err := s.groupRepo.GetMembership(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if membership == nil {
		return nil, nil
	}

	group, err := s.groupRepo.GetGroupByID(membership.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("membership references missing group %s", membership.GroupID)
	}

	roster, err := s.groupRepo.GetRoster(membership.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster: %w", err)
	}
	for i := range roster {
		if roster[i].DisplayName == "" {
			roster[i].DisplayName = anonymousName(roster[i].UserID)
		}
	}

	return &models.GroupState{
		Group:   *group,
		Role:    membership.Role,
		Members: roster,
	}, nil
}

// LeaveGroup removes the user's own membership. The owner may only
// leave once every other member has left; the group row itself is kept
// so its history survives.
func (s *GroupService) LeaveGroup(userID string) error {
	err := s.groupRepo.RemoveMember(userID)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return ErrNotInGroup
		}
		if errors.Is(err, repository.ErrOwnerHasMembers) {
			return ErrOwnerCannotLeave
		}
		return fmt.Errorf("failed to leave group: %w", err)
	}
	return nil
}

// anonymousName builds a stable placeholder from the user ID for
// members who never set a display name.
func anonymousName(userID string) string {
	if len(userID) > 4 {
		userID = userID[:4]
	}
	return "User-" + userID
}
