package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

func seedUser(t *testing.T, repo *stubUserRepo, role string, points domain.Points) *domain.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &domain.User{
		Name:   "tester",
		Handle: "u" + role + "_" + string(rune('0'+repo.count())),
		Role:   role,
		Points: points,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestPointsLedger_DebitHappyPath(t *testing.T) {
	repo := newStubUserRepo()
	ledger := NewPointsLedger(repo, &stubSink{}, zerolog.Nop())
	u := seedUser(t, repo, domain.RoleUser, domain.WholePoints(10))

	updated, err := ledger.Debit(context.Background(), u.ID, domain.DownloadCost)
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if updated.Points != domain.WholePoints(9) {
		t.Fatalf("expected 9 points, got %v", updated.Points.Float())
	}
}

func TestPointsLedger_DebitNeverGoesNegative(t *testing.T) {
	repo := newStubUserRepo()
	ledger := NewPointsLedger(repo, &stubSink{}, zerolog.Nop())
	u := seedUser(t, repo, domain.RoleUser, domain.HalfPoint)

	if _, err := ledger.Debit(context.Background(), u.ID, domain.DownloadCost); !errors.Is(err, domain.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	after, _ := repo.FindByID(context.Background(), u.ID)
	if after.Points != domain.HalfPoint {
		t.Fatalf("failed debit must not mutate the balance, got %v", after.Points.Float())
	}
}

func TestPointsLedger_AdminExemptFromDebit(t *testing.T) {
	repo := newStubUserRepo()
	ledger := NewPointsLedger(repo, &stubSink{}, zerolog.Nop())
	admin := seedUser(t, repo, domain.RoleAdmin, domain.WholePoints(domain.AdminBalance))

	updated, err := ledger.Debit(context.Background(), admin.ID, domain.DownloadCost)
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if updated.Points != domain.WholePoints(domain.AdminBalance) {
		t.Fatalf("admin balance must be untouched, got %v", updated.Points.Float())
	}
}

func TestPointsLedger_CreditRejectsNonPositive(t *testing.T) {
	repo := newStubUserRepo()
	ledger := NewPointsLedger(repo, &stubSink{}, zerolog.Nop())
	u := seedUser(t, repo, domain.RoleUser, 0)

	for _, amount := range []domain.Points{0, -domain.HalfPoint} {
		if _, err := ledger.Credit(context.Background(), u.ID, amount); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestPointsLedger_HalfPointCreditsStayExact(t *testing.T) {
	repo := newStubUserRepo()
	ledger := NewPointsLedger(repo, &stubSink{}, zerolog.Nop())
	u := seedUser(t, repo, domain.RoleUser, 0)

	// many 0.5 bonuses must never drift
	for i := 0; i < 101; i++ {
		if _, err := ledger.Credit(context.Background(), u.ID, domain.HalfPoint); err != nil {
			t.Fatalf("credit %d failed: %v", i, err)
		}
	}
	after, _ := repo.FindByID(context.Background(), u.ID)
	if after.Points.Float() != 50.5 {
		t.Fatalf("expected 50.5 points, got %v", after.Points.Float())
	}
}

func TestPointsLedger_Recharge(t *testing.T) {
	repo := newStubUserRepo()
	sink := &stubSink{}
	ledger := NewPointsLedger(repo, sink, zerolog.Nop())
	admin := seedUser(t, repo, domain.RoleAdmin, domain.WholePoints(domain.AdminBalance))
	member := seedUser(t, repo, domain.RoleUser, domain.WholePoints(1))

	updated, err := ledger.Recharge(context.Background(), admin, member.ID, "2.5")
	if err != nil {
		t.Fatalf("recharge failed: %v", err)
	}
	if updated.Points.Float() != 3.5 {
		t.Fatalf("expected 3.5 points, got %v", updated.Points.Float())
	}
	if len(sink.byAction(domain.ActionGrantPoints)) != 1 {
		t.Fatalf("expected one grant_points activity event")
	}
}

func TestPointsLedger_RechargeValidation(t *testing.T) {
	repo := newStubUserRepo()
	ledger := NewPointsLedger(repo, &stubSink{}, zerolog.Nop())
	admin := seedUser(t, repo, domain.RoleAdmin, 0)
	member := seedUser(t, repo, domain.RoleUser, 0)

	for _, amount := range []string{"abc", "-5", "0.25", ""} {
		if _, err := ledger.Recharge(context.Background(), admin, member.ID, amount); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("amount %q: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	after, _ := repo.FindByID(context.Background(), member.ID)
	if after.Points != 0 {
		t.Fatalf("rejected recharge must not mutate the balance")
	}

	if _, err := ledger.Recharge(context.Background(), member, member.ID, "5"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-admin recharge must be forbidden, got %v", err)
	}
}
