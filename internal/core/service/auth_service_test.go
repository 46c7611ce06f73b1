package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

type authFixture struct {
	auth     *AuthService
	users    *stubUserRepo
	designs  *stubDesignRepo
	sessions *SessionManager
}

func newAuthFixture() *authFixture {
	users := newStubUserRepo()
	designs := newStubDesignRepo()
	sessions := NewSessionManager(time.Minute, zerolog.Nop())
	sink := &stubSink{}
	ledger := NewPointsLedger(users, sink, zerolog.Nop())
	downloads := NewDownloads(designs, ledger, newStubLocker(), sessions, sink, zerolog.Nop())
	auth := NewAuthService(
		users,
		sessions,
		downloads,
		AdminCredentials{Username: "fahim4mm", Password: "@Mdfahim44"},
		"secret",
		time.Hour,
		zerolog.Nop(),
	)
	return &authFixture{auth: auth, users: users, designs: designs, sessions: sessions}
}

func TestAuthService_AdminFirstLoginProvisions(t *testing.T) {
	f := newAuthFixture()

	res, err := f.auth.Login(context.Background(), ports.LoginInput{Username: "fahim4mm", Password: "@Mdfahim44"})
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if res.User.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", res.User.Role)
	}
	if res.User.Points != domain.WholePoints(domain.AdminBalance) {
		t.Fatalf("expected admin balance, got %v", res.User.Points.Float())
	}
	if res.User.IsBanned {
		t.Fatalf("admin must not be provisioned banned")
	}
	if CanDownload(res.User) != DownloadAllow {
		t.Fatalf("admin must be allowed to download immediately")
	}

	// second login must not re-provision
	res2, err := f.auth.Login(context.Background(), ports.LoginInput{Username: "fahim4mm", Password: "@Mdfahim44"})
	if err != nil {
		t.Fatalf("second admin login failed: %v", err)
	}
	if f.users.count() != 1 {
		t.Fatalf("expected one admin profile, got %d users", f.users.count())
	}
	if res2.User.ID != res.User.ID {
		t.Fatalf("expected the same profile, got %s and %s", res.User.ID, res2.User.ID)
	}
}

func TestAuthService_AdminWrongConstants(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.auth.Login(context.Background(), ports.LoginInput{Username: "fahim4mm", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if f.users.count() != 0 {
		t.Fatalf("failed admin login must not provision a profile")
	}
}

func TestAuthService_SignupProvisionsStartingBalance(t *testing.T) {
	f := newAuthFixture()

	res, err := f.auth.Signup(context.Background(), ports.SignupInput{Name: "Karim", AccessCode: "123456"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	u := res.User
	if u.Role != domain.RoleUser || u.IsBanned {
		t.Fatalf("unexpected profile: role=%s banned=%v", u.Role, u.IsBanned)
	}
	if u.Points != domain.WholePoints(10) {
		t.Fatalf("expected 10 points, got %v", u.Points.Float())
	}
	if u.AccessCodeHash == "123456" {
		t.Fatalf("access code must be hashed")
	}
	if CanDownload(u) != DownloadAllow {
		t.Fatalf("fresh member with 10 points must be allowed to download")
	}
}

func TestAuthService_SignupRejectsShortCode(t *testing.T) {
	f := newAuthFixture()
	for _, code := range []string{"", "12345", "abcdef"} {
		if _, err := f.auth.Signup(context.Background(), ports.SignupInput{Name: "Karim", AccessCode: code}); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("code %q: expected ErrInvalidCredentials, got %v", code, err)
		}
	}
}

func TestAuthService_SignupDuplicateHandle(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.auth.Signup(context.Background(), ports.SignupInput{Name: "Karim", AccessCode: "123456"}); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, err := f.auth.Signup(context.Background(), ports.SignupInput{Name: "Rahim", AccessCode: "123456"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_CodeLoginRoundTrip(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.auth.Signup(context.Background(), ports.SignupInput{Name: "Karim", AccessCode: "123456"}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	res, err := f.auth.Login(context.Background(), ports.LoginInput{AccessCode: "123456"})
	if err != nil {
		t.Fatalf("code login failed: %v", err)
	}
	if res.User.Name != "Karim" {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != domain.RoleUser {
		t.Fatalf("expected role %s, got %v", domain.RoleUser, claims["role"])
	}

	if _, err := f.auth.Login(context.Background(), ports.LoginInput{AccessCode: "999999"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown code, got %v", err)
	}
}

func TestAuthService_BannedMemberCannotLogin(t *testing.T) {
	f := newAuthFixture()
	res, err := f.auth.Signup(context.Background(), ports.SignupInput{Name: "Karim", AccessCode: "123456"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if err := f.users.SetBanned(context.Background(), res.User.ID, true); err != nil {
		t.Fatalf("ban failed: %v", err)
	}

	if _, err := f.auth.Login(context.Background(), ports.LoginInput{AccessCode: "123456"}); !errors.Is(err, domain.ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}
	if _, err := f.auth.Resolve(context.Background(), res.User.ID); !errors.Is(err, domain.ErrBanned) {
		t.Fatalf("session resolution must reject banned member, got %v", err)
	}
}

func TestAuthService_DeferredDownloadReplayedOnce(t *testing.T) {
	f := newAuthFixture()
	design, _ := f.designs.Create(context.Background(), &domain.Design{
		Title:      "Argentina Home",
		Tag:        domain.TagCollar,
		SourceLink: "drive.example.com/argentina",
		Status:     domain.StatusApproved,
		CreatedAt:  time.Now(),
	})

	// guest attempts a download, then signs up
	f.sessions.Capture("guest_1", domain.DeferredCommand{Kind: domain.CommandDownload, DesignID: design.ID})

	res, err := f.auth.Signup(context.Background(), ports.SignupInput{Name: "Karim", AccessCode: "123456", GuestSession: "guest_1"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if res.Replay == nil || res.Replay.Download == nil {
		t.Fatalf("expected a replayed download, got %+v", res.Replay)
	}
	if res.Replay.Download.SourceLink != "https://drive.example.com/argentina" {
		t.Fatalf("unexpected link: %s", res.Replay.Download.SourceLink)
	}
	if res.User.Points != domain.WholePoints(9) {
		t.Fatalf("replayed download must debit one point, balance %v", res.User.Points.Float())
	}

	// a fresh login on the same guest session must not replay again
	res2, err := f.auth.Login(context.Background(), ports.LoginInput{AccessCode: "123456", GuestSession: "guest_1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res2.Replay != nil {
		t.Fatalf("command replayed twice")
	}
	if res2.User.Points != domain.WholePoints(9) {
		t.Fatalf("balance must be unchanged by second login, got %v", res2.User.Points.Float())
	}
}
