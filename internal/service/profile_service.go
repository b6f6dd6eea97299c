package service

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

// ============================================
// Profile Service
// ============================================

// ProfileService is the staff directory plus the admin-only role and
// suspension controls
type ProfileService interface {
	GetByID(ctx context.Context, actorID, id string) (*repository.Profile, error)
	List(ctx context.Context, actorID string) ([]*repository.Profile, error)
	UpdateName(ctx context.Context, actorID, fullName string) (*repository.Profile, error)
	ChangePassword(ctx context.Context, actorID, currentPassword, newPassword string) error
	UpdateRole(ctx context.Context, actorID, id, role string) error
	SetActive(ctx context.Context, actorID, id string, active bool) error
	Delete(ctx context.Context, actorID, id string) error
}

type profileService struct {
	profileRepo repository.ProfileRepository
	scopeSvc    ScopeService
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo repository.ProfileRepository, scopeSvc ScopeService) ProfileService {
	return &profileService{profileRepo: profileRepo, scopeSvc: scopeSvc}
}

func (s *profileService) GetByID(ctx context.Context, actorID, id string) (*repository.Profile, error) {
	minRole := types.RoleStaff
	if actorID == id {
		minRole = types.RoleViewer
	}
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, minRole); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}
	profile.Password = ""
	return profile, nil
}

func (s *profileService) List(ctx context.Context, actorID string) ([]*repository.Profile, error) {
	if _, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleStaff); err != nil {
		return nil, err
	}

	profiles, err := s.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, profile := range profiles {
		profile.Password = ""
	}
	return profiles, nil
}

func (s *profileService) UpdateName(ctx context.Context, actorID, fullName string) (*repository.Profile, error) {
	profile, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer)
	if err != nil {
		return nil, err
	}
	if fullName == "" {
		return nil, validationErr("full_name", "is required")
	}

	profile.FullName = fullName
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, classifyWriteError(err)
	}
	profile.Password = ""
	return profile, nil
}

func (s *profileService) ChangePassword(ctx context.Context, actorID, currentPassword, newPassword string) error {
	profile, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleViewer)
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return validationErr("new_password", "must be at least 8 characters")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return classifyWriteError(s.profileRepo.UpdatePassword(ctx, profile.ID, string(hashed)))
}

func (s *profileService) UpdateRole(ctx context.Context, actorID, id, role string) error {
	admin, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleAdmin)
	if err != nil {
		return err
	}
	if !types.IsValidRole(role) {
		return validationErr("role", "is not a valid role")
	}
	// An admin demoting themselves could lock everyone out.
	if admin.ID == id && role != types.RoleAdmin {
		return validationErr("role", "cannot demote your own account")
	}

	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrUserNotFound
	}

	return classifyWriteError(s.profileRepo.UpdateRole(ctx, id, role))
}

func (s *profileService) SetActive(ctx context.Context, actorID, id string, active bool) error {
	admin, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleAdmin)
	if err != nil {
		return err
	}
	if admin.ID == id && !active {
		return validationErr("is_active", "cannot suspend your own account")
	}

	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrUserNotFound
	}

	return classifyWriteError(s.profileRepo.SetActive(ctx, id, active))
}

// Delete hard-deletes a profile. When referential constraints hold the row
// in place (decided approvals, coached teams), the profile is archived
// instead: fields scrubbed, role viewer, account inactive. Either outcome
// is reported as success.
func (s *profileService) Delete(ctx context.Context, actorID, id string) error {
	admin, _, err := s.scopeSvc.RequireRole(ctx, actorID, types.RoleAdmin)
	if err != nil {
		return err
	}
	if admin.ID == id {
		return validationErr("id", "cannot delete your own account")
	}

	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrUserNotFound
	}

	err = s.profileRepo.Delete(ctx, id)
	if repository.IsForeignKeyViolation(err) {
		log.Printf("[Profile] Hard delete blocked for %s, archiving instead", id)
		return classifyWriteError(s.profileRepo.Archive(ctx, id))
	}
	return classifyWriteError(err)
}
