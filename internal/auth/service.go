package auth

import (
	"errors"
	"regexp"

	"github.com/google/uuid"

	"github.com/mrlokans/backend-template/internal/config"
	"github.com/mrlokans/backend-template/internal/entities"
	"github.com/mrlokans/backend-template/internal/httperr"
)

// usernamePattern: 3-64 chars, alphanumeric plus underscore/hyphen.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

// UserRepository defines the user directory operations the service needs.
type UserRepository interface {
	Create(user *entities.User) error
	GetByID(id string) (*entities.User, error)
	GetByUsername(username string) (*entities.User, error)
	List() ([]entities.User, error)
	UpdatePassword(id, passwordHash string) error
	Delete(id string) error
}

// ErrNotFound is returned by UserRepository implementations when no
// record matches.
var ErrNotFound = errors.New("user not found")

// ErrDuplicateUsername is returned by UserRepository implementations when
// the storage-level uniqueness constraint rejects a create.
var ErrDuplicateUsername = errors.New("username already exists")

// Service implements the account operations: register, login, password
// update, and directory access. All failures it returns carry a taxonomy
// kind.
type Service struct {
	repo   UserRepository
	tokens *TokenService
	cost   int

	// dummyHash is verified against when a login names an unknown user,
	// so both unknown-user and wrong-password paths cost one bcrypt
	// comparison. Prevents timing-based username enumeration.
	dummyHash string
}

// NewService creates the account service.
func NewService(repo UserRepository, tokens *TokenService, cfg config.Auth) (*Service, error) {
	dummyHash, err := HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	return &Service{
		repo:      repo,
		tokens:    tokens,
		cost:      cfg.BcryptCost,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a new user. The existing record is never altered when
// the username is already taken.
func (s *Service) Register(username, password string) (*entities.User, error) {
	if username == "" || password == "" {
		return nil, httperr.Validation("Username and password are required")
	}
	if !usernamePattern.MatchString(username) {
		return nil, httperr.Validation("Username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	}
	if len(password) > MaxPasswordLength {
		return nil, httperr.Validation("Password exceeds maximum length of 72 bytes")
	}

	if _, err := s.repo.GetByUsername(username); err == nil {
		return nil, httperr.Validation("Username already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, httperr.Internal("").WithCause(err)
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return nil, httperr.Internal("Error hashing password").WithCause(err)
	}

	user := &entities.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
	}

	if err := s.repo.Create(user); err != nil {
		// The unique index backstops the check above under concurrency.
		if errors.Is(err, ErrDuplicateUsername) {
			return nil, httperr.Validation("Username already exists")
		}
		return nil, httperr.Internal("").WithCause(err)
	}

	return user, nil
}

// Login verifies credentials and issues a bearer token. Unknown username
// and wrong password yield identical errors to resist enumeration; the
// unknown-user path still performs a bcrypt comparison against a dummy
// hash to keep response times comparable.
func (s *Service) Login(username, password string) (string, *entities.User, error) {
	if username == "" || password == "" {
		return "", nil, httperr.Validation("Username and password are required")
	}

	targetHash := s.dummyHash
	user, err := s.repo.GetByUsername(username)
	switch {
	case err == nil:
		targetHash = user.PasswordHash
	case errors.Is(err, ErrNotFound):
		user = nil
	default:
		return "", nil, httperr.Internal("").WithCause(err)
	}

	match, err := CheckPassword(password, targetHash)
	if err != nil && user != nil {
		return "", nil, httperr.Internal("Error comparing password").WithCause(err)
	}
	if user == nil || !match {
		return "", nil, httperr.Unauthorized("Invalid username or password")
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, httperr.TokenIssuance("").WithCause(err)
	}

	return token, user, nil
}

// UpdatePassword verifies the old password for the authenticated user and
// persists a hash of the new one. The stored hash is left untouched on any
// failure.
func (s *Service) UpdatePassword(userID, oldPassword, newPassword string) (*entities.User, error) {
	if oldPassword == "" || newPassword == "" {
		return nil, httperr.Validation("Old password and new password are required")
	}
	if len(newPassword) > MaxPasswordLength {
		return nil, httperr.Validation("Password exceeds maximum length of 72 bytes")
	}

	user, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httperr.NotFound("User not found")
		}
		return nil, httperr.Internal("").WithCause(err)
	}

	match, err := CheckPassword(oldPassword, user.PasswordHash)
	if err != nil {
		return nil, httperr.Internal("Error comparing password").WithCause(err)
	}
	if !match {
		return nil, httperr.PasswordMismatch("Old password is incorrect")
	}

	hash, err := HashPassword(newPassword, s.cost)
	if err != nil {
		return nil, httperr.Internal("Error hashing password").WithCause(err)
	}

	if err := s.repo.UpdatePassword(user.ID, hash); err != nil {
		return nil, httperr.Internal("").WithCause(err)
	}

	return user, nil
}

// Get returns a single user by id.
func (s *Service) Get(id string) (*entities.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httperr.NotFound("User not found")
		}
		return nil, httperr.Internal("").WithCause(err)
	}
	return user, nil
}

// List returns all users.
func (s *Service) List() ([]entities.User, error) {
	users, err := s.repo.List()
	if err != nil {
		return nil, httperr.Internal("").WithCause(err)
	}
	return users, nil
}

// Delete removes a user. Callers may only delete their own account.
func (s *Service) Delete(requesterID, targetID string) error {
	if requesterID != targetID {
		return httperr.Authorization("You may only delete your own account")
	}

	if err := s.repo.Delete(targetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound("User not found")
		}
		return httperr.Internal("").WithCause(err)
	}
	return nil
}
