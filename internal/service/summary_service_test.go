package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/models"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/repository"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/validation"
)

func newSummaryEnv(t *testing.T) (*testEnv, *SummaryService) {
	t.Helper()
	env := newTestEnv(t)
	return env, NewSummaryService(repository.NewSummaryRepository(env.db))
}

// joinGroup puts member into owner's group via a live invite code
func joinGroup(t *testing.T, env *testEnv, owner, member string) {
	t.Helper()
	code, err := env.invites.GenerateCode(context.Background(), owner, "")
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}
	if _, err := env.invites.RedeemCode(member, code.Code); err != nil {
		t.Fatalf("RedeemCode() error = %v", err)
	}
}

func TestSummaryValidation(t *testing.T) {
	env, summaries := newSummaryEnv(t)
	user := env.createUser(t, "user@example.com")

	var valErr validation.ValidationError
	if _, err := summaries.CreateSummary(user, "", "content", "ja", false); !errors.As(err, &valErr) {
		t.Errorf("CreateSummary(empty title) error = %v, want ValidationError", err)
	}
	if _, err := summaries.CreateSummary(user, "Title", "  ", "ja", false); !errors.As(err, &valErr) {
		t.Errorf("CreateSummary(empty content) error = %v, want ValidationError", err)
	}

	s, err := summaries.CreateSummary(user, "Checkup", "All fine", "", false)
	if err != nil {
		t.Fatalf("CreateSummary() error = %v", err)
	}
	if s.Language != "ja" {
		t.Errorf("default language = %q, want ja", s.Language)
	}
}

func TestSummaryVisibility(t *testing.T) {
	env, summaries := newSummaryEnv(t)

	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")
	outsider := env.createUser(t, "outsider@example.com")

	if _, err := env.groups.CreateGroup(owner, "Tanaka family"); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	joinGroup(t, env, owner, member)

	shared, err := summaries.CreateSummary(owner, "Annual checkup", "Blood pressure normal", "ja", false)
	if err != nil {
		t.Fatalf("CreateSummary() error = %v", err)
	}
	private, err := summaries.CreateSummary(owner, "Specialist visit", "Details withheld", "ja", true)
	if err != nil {
		t.Fatalf("CreateSummary() error = %v", err)
	}

	// Author sees both
	own, err := summaries.ListSummaries(owner)
	if err != nil {
		t.Fatalf("ListSummaries(owner) error = %v", err)
	}
	if len(own) != 2 {
		t.Errorf("owner sees %d summaries, want 2", len(own))
	}

	// Groupmate sees only the shared one
	visible, err := summaries.ListSummaries(member)
	if err != nil {
		t.Fatalf("ListSummaries(member) error = %v", err)
	}
	if len(visible) != 1 || visible[0].ID != shared.ID {
		t.Errorf("member sees %v, want only the shared summary", summaryIDs(visible))
	}
	if _, err := summaries.GetSummary(private.ID, member); !errors.Is(err, ErrSummaryNotFound) {
		t.Errorf("GetSummary(private) by groupmate error = %v, want ErrSummaryNotFound", err)
	}

	// Outsider sees nothing
	none, err := summaries.ListSummaries(outsider)
	if err != nil {
		t.Fatalf("ListSummaries(outsider) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("outsider sees %d summaries, want 0", len(none))
	}

	// Only the author can flip privacy
	if err := summaries.SetPrivacy(shared.ID, member, true); !errors.Is(err, ErrSummaryNotFound) {
		t.Errorf("SetPrivacy() by non-author error = %v, want ErrSummaryNotFound", err)
	}
	if err := summaries.SetPrivacy(private.ID, owner, false); err != nil {
		t.Fatalf("SetPrivacy() by author error = %v", err)
	}
	visible, err = summaries.ListSummaries(member)
	if err != nil {
		t.Fatalf("ListSummaries(member) error = %v", err)
	}
	if len(visible) != 2 {
		t.Errorf("member sees %d summaries after unhiding, want 2", len(visible))
	}

	// Leaving the group cuts visibility immediately
	if err := env.groups.LeaveGroup(member); err != nil {
		t.Fatalf("LeaveGroup() error = %v", err)
	}
	visible, err = summaries.ListSummaries(member)
	if err != nil {
		t.Fatalf("ListSummaries(member) error = %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("former member sees %d summaries, want 0", len(visible))
	}
}

func summaryIDs(summaries []models.Summary) []string {
	ids := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
	}
	return ids
}
