package businessflow

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/cargo-certificates/app/dto"
	"github.com/amirphl/cargo-certificates/models"
	"github.com/amirphl/cargo-certificates/repository"
	"github.com/amirphl/cargo-certificates/utils"
	"github.com/google/uuid"
)

// ProfileFlow resolves identities and manages user profiles
type ProfileFlow interface {
	ResolveIdentity(ctx context.Context, profileID uuid.UUID) (*Identity, error)
	EnsureProfile(ctx context.Context, profileID uuid.UUID) (*Identity, error)
	GetMyProfile(ctx context.Context, identity *Identity) (*dto.ProfileResponse, error)
	UpdateMyProfile(ctx context.Context, identity *Identity, req *dto.UpdateMyProfileRequest) (*dto.ProfileResponse, error)
	ListProfiles(ctx context.Context, identity *Identity, req *dto.ListProfilesRequest) (*dto.ListProfilesResponse, error)
	GetProfile(ctx context.Context, identity *Identity, id uuid.UUID) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, identity *Identity, id uuid.UUID, req *dto.AdminUpdateProfileRequest) (*dto.ProfileResponse, error)
	ListBrokers(ctx context.Context, identity *Identity) ([]dto.BrokerOption, error)
}

// ProfileFlowImpl implements ProfileFlow
type ProfileFlowImpl struct {
	profileRepo      repository.ProfileRepository
	bootstrapAdminID uuid.UUID
	bootstrapName    string
	now              func() time.Time
}

// NewProfileFlow constructs a ProfileFlow. A profile first seen with bootstrapAdminID is provisioned as admin.
func NewProfileFlow(profileRepo repository.ProfileRepository, bootstrapAdminID uuid.UUID, bootstrapName string) ProfileFlow {
	return &ProfileFlowImpl{
		profileRepo:      profileRepo,
		bootstrapAdminID: bootstrapAdminID,
		bootstrapName:    bootstrapName,
		now:              utils.UTCNow,
	}
}

// ResolveIdentity loads the profile behind an authenticated subject
func (f *ProfileFlowImpl) ResolveIdentity(ctx context.Context, profileID uuid.UUID) (*Identity, error) {
	profile, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		log.Printf("failed to load profile %s: %v", profileID, err)
		return nil, newPersistenceError("Failed to load profile", err)
	}
	if profile == nil {
		return nil, NewBusinessError(CodeNotAuthenticated, "Not authenticated", ErrNotAuthenticated)
	}
	return NewIdentity(profile), nil
}

// EnsureProfile returns the caller's identity, provisioning a broker profile without a code on first sight
func (f *ProfileFlowImpl) EnsureProfile(ctx context.Context, profileID uuid.UUID) (*Identity, error) {
	if profileID == uuid.Nil {
		return nil, NewBusinessError(CodeNotAuthenticated, "Not authenticated", ErrNotAuthenticated)
	}

	profile, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		log.Printf("failed to load profile %s: %v", profileID, err)
		return nil, newPersistenceError("Failed to load profile", err)
	}
	if profile != nil {
		return NewIdentity(profile), nil
	}

	now := f.now()
	profile = &models.Profile{
		ID:        profileID,
		Role:      models.RoleBroker,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if f.bootstrapAdminID != uuid.Nil && profileID == f.bootstrapAdminID {
		profile.Role = models.RoleAdmin
		profile.FullName = utils.NilIfEmpty(&f.bootstrapName)
	}

	if err := f.profileRepo.Save(ctx, profile); err != nil {
		if repository.IsDuplicateKey(err) {
			// provisioned concurrently by another request
			return f.ResolveIdentity(ctx, profileID)
		}
		log.Printf("failed to provision profile %s: %v", profileID, err)
		return nil, newPersistenceError("Failed to create profile", err)
	}

	log.Printf("provisioned %s profile %s", profile.Role, profileID)
	return NewIdentity(profile), nil
}

// GetMyProfile returns the caller's own profile
func (f *ProfileFlowImpl) GetMyProfile(ctx context.Context, identity *Identity) (*dto.ProfileResponse, error) {
	if identity == nil {
		return nil, NewBusinessError(CodeNotAuthenticated, "Not authenticated", ErrNotAuthenticated)
	}
	profile, err := f.load(ctx, identity.ProfileID)
	if err != nil {
		return nil, err
	}
	resp := toProfileResponse(profile)
	return &resp, nil
}

// UpdateMyProfile changes the caller's display name; role and broker code are admin managed
func (f *ProfileFlowImpl) UpdateMyProfile(ctx context.Context, identity *Identity, req *dto.UpdateMyProfileRequest) (*dto.ProfileResponse, error) {
	if identity == nil {
		return nil, NewBusinessError(CodeNotAuthenticated, "Not authenticated", ErrNotAuthenticated)
	}
	if err := checkOptionalText("Full name", req.FullName, 100); err != nil {
		return nil, err
	}

	profile, err := f.load(ctx, identity.ProfileID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		profile.FullName = utils.NilIfEmpty(req.FullName)
	}
	profile.UpdatedAt = f.now()

	if err := f.profileRepo.Update(ctx, profile); err != nil {
		log.Printf("failed to update profile %s: %v", profile.ID, err)
		return nil, newPersistenceError("Failed to update profile", err)
	}

	resp := toProfileResponse(profile)
	return &resp, nil
}

// ListProfiles returns a page of profiles; admin only
func (f *ProfileFlowImpl) ListProfiles(ctx context.Context, identity *Identity, req *dto.ListProfilesRequest) (*dto.ListProfilesResponse, error) {
	if err := Decide(identity, ActionManageProfiles, nil).Err(); err != nil {
		return nil, err
	}

	filter := models.ProfileFilter{}
	if req.Role != nil && *req.Role != "" {
		role := models.Role(*req.Role)
		if !role.Valid() {
			return nil, NewValidationError("Role must be admin or broker")
		}
		filter.Role = &role
	}

	page, pageSize, offset := normalizePage(req.PaginationRequest)
	total, err := f.profileRepo.Count(ctx, filter)
	if err != nil {
		return nil, newPersistenceError("Failed to list users", err)
	}
	profiles, err := f.profileRepo.ByFilter(ctx, filter, "", pageSize, offset)
	if err != nil {
		return nil, newPersistenceError("Failed to list users", err)
	}

	items := make([]dto.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, toProfileResponse(p))
	}
	return &dto.ListProfilesResponse{
		Items:      items,
		Pagination: dto.NewPaginationInfo(page, pageSize, total),
	}, nil
}

// GetProfile returns any profile; admin only
func (f *ProfileFlowImpl) GetProfile(ctx context.Context, identity *Identity, id uuid.UUID) (*dto.ProfileResponse, error) {
	if err := Decide(identity, ActionManageProfiles, nil).Err(); err != nil {
		return nil, err
	}
	profile, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProfileResponse(profile)
	return &resp, nil
}

// UpdateProfile changes role, broker code and name of a profile; admin only.
// Promoting to admin clears the broker code; an empty broker code clears it too.
func (f *ProfileFlowImpl) UpdateProfile(ctx context.Context, identity *Identity, id uuid.UUID, req *dto.AdminUpdateProfileRequest) (*dto.ProfileResponse, error) {
	if err := Decide(identity, ActionManageProfiles, nil).Err(); err != nil {
		return nil, err
	}
	if err := checkOptionalText("Full name", req.FullName, 100); err != nil {
		return nil, err
	}
	if err := checkOptionalText("Broker code", req.BrokerCode, 50); err != nil {
		return nil, err
	}

	profile, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		role := models.Role(*req.Role)
		if !role.Valid() {
			return nil, NewValidationError("Role must be admin or broker")
		}
		if profile.ID == identity.ProfileID && role != profile.Role {
			return nil, NewValidationError("Admins cannot change their own role")
		}
		profile.Role = role
	}

	if req.BrokerCode != nil {
		profile.BrokerCode = utils.NilIfEmpty(req.BrokerCode)
	}
	if profile.Role == models.RoleAdmin {
		profile.BrokerCode = nil
	}

	if profile.BrokerCode != nil {
		owner, err := f.profileRepo.ByBrokerCode(ctx, *profile.BrokerCode)
		if err != nil {
			return nil, newPersistenceError("Failed to check broker code", err)
		}
		if owner != nil && owner.ID != profile.ID {
			return nil, brokerCodeExists()
		}
	}

	if req.FullName != nil {
		profile.FullName = utils.NilIfEmpty(req.FullName)
	}
	profile.UpdatedAt = f.now()

	if err := f.profileRepo.Update(ctx, profile); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, brokerCodeExists()
		}
		log.Printf("failed to update profile %s: %v", profile.ID, err)
		return nil, newPersistenceError("Failed to update user", err)
	}

	resp := toProfileResponse(profile)
	return &resp, nil
}

// ListBrokers returns brokers that have a code, ordered by code; admin only
func (f *ProfileFlowImpl) ListBrokers(ctx context.Context, identity *Identity) ([]dto.BrokerOption, error) {
	if err := Decide(identity, ActionManageProfiles, nil).Err(); err != nil {
		return nil, err
	}

	role := models.RoleBroker
	hasCode := true
	profiles, err := f.profileRepo.ByFilter(ctx, models.ProfileFilter{Role: &role, HasBrokerCode: &hasCode}, "broker_code ASC", 0, 0)
	if err != nil {
		return nil, newPersistenceError("Failed to list brokers", err)
	}

	brokers := make([]dto.BrokerOption, 0, len(profiles))
	for _, p := range profiles {
		brokers = append(brokers, dto.BrokerOption{
			ID:         p.ID.String(),
			BrokerCode: *p.BrokerCode,
			FullName:   p.FullName,
		})
	}
	return brokers, nil
}

func (f *ProfileFlowImpl) load(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := f.profileRepo.ByID(ctx, id)
	if err != nil {
		log.Printf("failed to load profile %s: %v", id, err)
		return nil, newPersistenceError("Failed to load profile", err)
	}
	if profile == nil {
		return nil, NewBusinessError(CodeProfileNotFound, "Profile not found", ErrProfileNotFound)
	}
	return profile, nil
}

func brokerCodeExists() error {
	return NewBusinessError(CodeBrokerCodeExists, "Broker code is already assigned to another user", ErrBrokerCodeExists)
}
