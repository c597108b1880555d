package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	errs "shopfront/internal/errors"
	"shopfront/internal/model"
	"shopfront/internal/repository"
)

// UserInput carries the fields of an admin-side user create or update.
// Password is required on create and optional on update.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// UserService exposes admin user management. Deletes refuse the two
// lockout cases: an admin removing their own account, and removing the
// last remaining admin.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	Create(ctx context.Context, in *UserInput) (*model.User, error)
	Update(ctx context.Context, id uint, in *UserInput) (*model.User, error)
	Delete(ctx context.Context, id, actorID uint) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, in *UserInput) (*model.User, error) {
	if err := s.validate(ctx, in, 0, true); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id uint, in *UserInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}

	if err := s.validate(ctx, in, id, false); err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.Email = in.Email
	user.Role = in.Role
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id, actorID uint) error {
	if id == actorID {
		return errs.ErrOwnAccount
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrUserNotFound
		}
		return err
	}

	if user.Role == model.RoleAdmin {
		admins, err := s.repo.CountByRole(ctx, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins <= 1 {
			return errs.ErrLastAdmin
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *userService) validate(ctx context.Context, in *UserInput, excludeID uint, requirePassword bool) error {
	ve := errs.NewValidationError()

	if in.Name == "" {
		ve.Add("name", "The name field is required.")
	} else if len(in.Name) > 255 {
		ve.Add("name", "The name may not be greater than 255 characters.")
	}

	if in.Email == "" {
		ve.Add("email", "The email field is required.")
	} else if taken, err := s.repo.EmailTaken(ctx, in.Email, excludeID); err != nil {
		return fmt.Errorf("check email: %w", err)
	} else if taken {
		ve.Add("email", "The email has already been taken.")
	}

	if requirePassword && in.Password == "" {
		ve.Add("password", "The password field is required.")
	}
	if in.Password != "" && len(in.Password) < 8 {
		ve.Add("password", "The password must be at least 8 characters.")
	}

	if !in.Role.Valid() {
		ve.Add("role", "The selected role is invalid.")
	}

	return ve.Err()
}
