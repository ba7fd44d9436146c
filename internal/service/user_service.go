package service

import (
	"context"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
	images   BlobStore
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func NewUserService(userRepo repository.UserRepository, images BlobStore) *UserService {
	return &UserService{userRepo: userRepo, images: images}
}

// Register validates the signup fields, checks both unique columns up front
// for friendlier errors, and stores a bcrypt hash of the password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fields := map[string]string{}
	if err := validation.ValidateUsername(in.Username); err != nil {
		fields["username"] = err.Error()
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		fields["email"] = err.Error()
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username is already taken")
	}
	existing, err = s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the credentials and returns the user. The error is
// deliberately the same whether the username or the password is wrong.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// DeleteUser removes the account with all its cascading rows, then sweeps
// the image blobs of the removed posts. Blob failures are logged, not
// surfaced: the rows are already gone.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	imagePaths, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	for _, path := range imagePaths {
		if err := s.images.Delete(path); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove image of deleted user's post",
				"path", path, "user_id", id, "error", err)
		}
	}
	return nil
}
