package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

const minAccessCodeLen = 6

// AdminCredentials is the fixed username/password pair that unlocks the
// single admin profile. The profile itself is provisioned on first login.
type AdminCredentials struct {
	Username string
	Password string
}

// AuthService implements signup and both login modes: the fixed admin
// credential pair and member access codes.
type AuthService struct {
	repo      ports.UserRepository
	sessions  *SessionManager
	downloads ports.DownloadService
	admin     AdminCredentials
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	sessions *SessionManager,
	downloads ports.DownloadService,
	admin AdminCredentials,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		downloads: downloads,
		admin:     admin,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// handleFromCode maps a numeric access code deterministically to the login
// handle it was registered under.
func handleFromCode(code string) string {
	return "u" + code
}

func validAccessCode(code string) bool {
	if len(code) < minAccessCodeLen {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Login authenticates either mode. A request carrying a username takes the
// admin branch; otherwise the access code is looked up as a member handle.
func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
	var (
		user *domain.User
		err  error
	)
	switch {
	case input.Username != "":
		user, err = s.adminLogin(ctx, input.Username, input.Password)
	case input.AccessCode != "":
		user, err = s.codeLogin(ctx, input.AccessCode)
	default:
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, user, input.GuestSession)
}

// Signup provisions a new member profile with the fixed starting balance and
// immediately establishes a session for it.
func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) (*ports.AuthResult, error) {
	if input.Name == "" || !validAccessCode(input.AccessCode) {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.AccessCode), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:           input.Name,
		Handle:         handleFromCode(input.AccessCode),
		AccessCodeHash: string(hash),
		Role:           domain.RoleUser,
		Points:         domain.WholePoints(domain.StartingBalance),
		IsBanned:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", created.ID).Str("name", created.Name).Msg("member signed up")

	return s.establish(ctx, created, input.GuestSession)
}

// Logout discards any deferred command captured for the guest session.
func (s *AuthService) Logout(guestSession string) {
	s.sessions.Clear(guestSession)
}

// Resolve loads the identity behind an authenticated subject and enforces
// ban state. Banned non-admins never hold an active session.
func (s *AuthService) Resolve(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SessionBlocked() {
		return nil, domain.ErrBanned
	}
	return user, nil
}

func (s *AuthService) adminLogin(ctx context.Context, username, password string) (*domain.User, error) {
	if username != s.admin.Username || password != s.admin.Password {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	user, err := s.repo.EnsureAdmin(ctx, &domain.User{
		Name:      username,
		Handle:    username,
		Role:      domain.RoleAdmin,
		Points:    domain.WholePoints(domain.AdminBalance),
		IsBanned:  false,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) codeLogin(ctx context.Context, code string) (*domain.User, error) {
	user, err := s.repo.FindByHandle(ctx, handleFromCode(code))
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.AccessCodeHash), []byte(code)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// establish completes session resolution: ban check, token issue, and the
// at-most-once replay of a deferred command captured before login.
func (s *AuthService) establish(ctx context.Context, user *domain.User, guestSession string) (*ports.AuthResult, error) {
	if user.SessionBlocked() {
		return nil, domain.ErrBanned
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	result := &ports.AuthResult{Token: token, User: user}
	if replay := s.replayDeferred(ctx, user, guestSession); replay != nil {
		result.Replay = replay
		// the replayed download may have changed the balance
		if replay.Download != nil {
			result.User.Points = replay.Download.Remaining
		}
	}
	return result, nil
}

func (s *AuthService) replayDeferred(ctx context.Context, user *domain.User, guestSession string) *ports.ReplayOutcome {
	cmd, ok := s.sessions.TakeReplay(guestSession)
	if !ok {
		return nil
	}

	outcome := &ports.ReplayOutcome{Command: cmd}
	switch cmd.Kind {
	case domain.CommandDownload:
		res, err := s.downloads.Download(ctx, user, cmd.DesignID)
		outcome.Download = res
		outcome.Err = err
	default:
		outcome.Err = errors.New("unknown deferred command")
	}
	if outcome.Err != nil {
		s.log.Warn().Err(outcome.Err).Str("user_id", user.ID).Str("kind", string(cmd.Kind)).Msg("deferred command replay failed")
	}
	return outcome
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": user.Role,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
