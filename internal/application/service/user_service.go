package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
	"github.com/sangkips/enquiry-api/internal/domain/enum"
	"github.com/sangkips/enquiry-api/internal/domain/repository"
	"github.com/sangkips/enquiry-api/pkg/apperror"
	"github.com/sangkips/enquiry-api/pkg/pagination"
	"github.com/sangkips/enquiry-api/pkg/utils"
)

const minPasswordLength = 8

// UserService handles user management operations
type UserService struct {
	userRepo repository.UserRepository
	execRepo repository.ExecutiveServiceRepository
	log      *logrus.Logger
	now      func() time.Time
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, execRepo repository.ExecutiveServiceRepository, log *logrus.Logger) *UserService {
	return &UserService{userRepo: userRepo, execRepo: execRepo, log: log, now: time.Now}
}

// ListUsers returns a page of users, optionally of one role
func (s *UserService) ListUsers(ctx context.Context, role enum.Role, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.User], error) {
	users, total, err := s.userRepo.List(ctx, role, params)
	if err != nil {
		return nil, err
	}
	return paginate(users, total, params), nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// CreateUserInput represents the create user input
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     enum.Role
	Region   string
}

// CreateUser creates a staff account
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	now := s.now().UTC()
	user := &entity.User{
		ID:        primitive.NewObjectID(),
		Name:      trimmed(input.Name),
		Email:     normalizeEmail(input.Email),
		Role:      input.Role,
		Region:    trimmed(input.Region),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateStruct(user); err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperror.NewFieldError("password", "password must be at least 8 characters")
	}

	existing, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapDuplicate(err, "Email already registered")
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "role": user.Role}).Info("user created")
	return user, nil
}

// UpdateUserInput represents the update user input
type UpdateUserInput struct {
	ID       primitive.ObjectID
	Name     *string
	Role     *enum.Role
	Region   *string
	Active   *bool
	Password *string
}

// UpdateUser applies the supplied fields
func (s *UserService) UpdateUser(ctx context.Context, actor entity.Principal, input *UpdateUserInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	set := map[string]any{}
	if v := trimPtr(input.Name); v != nil {
		user.Name = *v
		set["name"] = *v
	}
	if input.Role != nil {
		user.Role = *input.Role
		set["role"] = *input.Role
	}
	if v := trimPtr(input.Region); v != nil {
		user.Region = *v
		set["region"] = *v
	}
	if input.Active != nil {
		if !*input.Active && actor.ID == user.ID.Hex() {
			return nil, apperror.NewBadRequestError("You cannot deactivate your own account")
		}
		user.Active = *input.Active
		set["active"] = *input.Active
	}
	if err := validateStruct(user); err != nil {
		return nil, err
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return nil, apperror.NewFieldError("password", "password must be at least 8 characters")
		}
		hash, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		set["passwordHash"] = hash
	}
	if len(set) == 0 {
		return user, nil
	}
	set["updatedAt"] = s.now().UTC()

	updated, err := s.userRepo.Update(ctx, input.ID, repository.Patch{Set: set})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return updated, nil
}

// DeleteUser removes a staff account. Assignments naming the user keep
// their display name.
func (s *UserService) DeleteUser(ctx context.Context, actor entity.Principal, id primitive.ObjectID) error {
	if actor.ID == id.Hex() {
		return apperror.NewBadRequestError("You cannot delete your own account")
	}
	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NewNotFoundError("User")
	}
	return nil
}

// ExecutiveServices returns the service categories a customer executive covers
func (s *UserService) ExecutiveServices(ctx context.Context, id primitive.ObjectID) (*entity.ExecutiveServices, error) {
	if _, err := s.customerExecutive(ctx, id); err != nil {
		return nil, err
	}
	assignment, err := s.execRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return &entity.ExecutiveServices{ExecutiveID: id, Services: []string{}}, nil
	}
	return assignment, nil
}

// SetExecutiveServices replaces the service categories a customer executive covers
func (s *UserService) SetExecutiveServices(ctx context.Context, actor entity.Principal, id primitive.ObjectID, services []string) (*entity.ExecutiveServices, error) {
	if _, err := s.customerExecutive(ctx, id); err != nil {
		return nil, err
	}
	assignment := &entity.ExecutiveServices{
		ExecutiveID: id,
		Services:    cleanList(services),
		UpdatedAt:   s.now().UTC(),
		UpdatedBy:   actor.Name,
	}
	if err := s.execRepo.Set(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *UserService) customerExecutive(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != enum.RoleCustomerExecutive {
		return nil, apperror.NewBadRequestError("Service assignments apply to customer executives only")
	}
	return user, nil
}
