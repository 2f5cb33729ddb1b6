package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// ClaimGuard abstracts the cross-process one-time claim lock (Redis SetNX).
// The registry repository remains the durable source of truth; the guard
// only short-circuits the race window between processes.
type ClaimGuard interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// RegistryService implements registration, identity, and the approval
// workflow over the user registry.
type RegistryService struct {
	users     ports.UserRepository
	claims    ClaimGuard
	audit     ports.AuditPublisher
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewRegistryService(users ports.UserRepository, claims ClaimGuard, audit ports.AuditPublisher, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *RegistryService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &RegistryService{
		users:     users,
		claims:    claims,
		audit:     auditOrNop(audit),
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

func (s *RegistryService) RegisterClient(ctx context.Context, in ports.RegisterClientInput) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	return s.register(ctx, &domain.User{
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		CompanyBisnis: in.CompanyBisnis,
		Role:          domain.RoleClient,
	}, in.Password)
}

func (s *RegistryService) RegisterPartner(ctx context.Context, in ports.RegisterPartnerInput) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	return s.register(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		KotaDomisili: in.KotaDomisili,
		Role:         domain.RolePartner,
	}, in.Password)
}

func (s *RegistryService) RegisterInternal(ctx context.Context, in ports.RegisterInternalInput) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !domain.IsInternalRole(in.RequestedRole) {
		return nil, domain.ErrInvalidRole
	}
	// A caller-chosen principal is the admin staff-registration path.
	if in.Principal != "" {
		if _, err := requireActor(ctx, s.users, in.Actor, domain.RoleAdmin, domain.RoleSuperadmin); err != nil {
			return nil, err
		}
	}
	return s.register(ctx, &domain.User{
		Principal: in.Principal,
		Name:      in.Name,
		Email:     in.Email,
		Role:      in.RequestedRole,
	}, in.Password)
}

// register creates the user in pending. The repository rejects duplicate
// principals, which also closes the door on re-registration after rejection.
func (s *RegistryService) register(ctx context.Context, u *domain.User, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if u.Principal == "" {
		u.Principal = uuid.NewString()
	}
	u.PasswordHash = string(hash)
	u.Status = domain.UserPending
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info().Str("principal", u.Principal).Str("role", string(u.Role)).Msg("user registered")
	s.audit.Publish(domain.AuditEvent{
		EntityKind: "user", EntityID: u.Principal, Action: "register",
		Actor: u.Principal, Detail: string(u.Role), Timestamp: now,
	})
	return u, nil
}

func (s *RegistryService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *RegistryService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.Principal,
		"role": string(user.Role),
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *RegistryService) GetUser(ctx context.Context, principal string) (*domain.User, error) {
	return s.users.FindByPrincipal(ctx, principal)
}

// ClaimSuperadmin is a single irreversible global transition: the first
// caller wins, every later call fails with ErrAlreadyClaimed.
func (s *RegistryService) ClaimSuperadmin(ctx context.Context, principal string) error {
	caller, err := s.users.FindByPrincipal(ctx, principal)
	if err != nil {
		return domain.ErrUnauthorized
	}

	acquired := false
	if s.claims != nil {
		ok, err := s.claims.Acquire(ctx)
		if err != nil {
			// Guard unavailable: fall through to the durable check.
			s.log.Warn().Err(err).Msg("claim guard unavailable, relying on registry")
		} else if !ok {
			return domain.ErrAlreadyClaimed
		} else {
			acquired = true
		}
	}

	if err := s.users.ClaimSuperadmin(ctx, caller.Principal); err != nil {
		// The guard key never expires; holding it across a failed registry
		// write would lock everyone out of a claim that never happened.
		if acquired && !errors.Is(err, domain.ErrAlreadyClaimed) {
			if relErr := s.claims.Release(ctx); relErr != nil {
				s.log.Error().Err(relErr).Msg("claim guard release failed")
			}
		}
		return err
	}

	s.log.Info().Str("principal", caller.Principal).Msg("superadmin claimed")
	s.audit.Publish(domain.AuditEvent{
		EntityKind: "user", EntityID: caller.Principal, Action: "claim_superadmin",
		Actor: caller.Principal, Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *RegistryService) UpdateUserRole(ctx context.Context, actor, target string, role domain.Role) error {
	admin, err := requireActor(ctx, s.users, actor, domain.RoleAdmin, domain.RoleSuperadmin)
	if err != nil {
		return err
	}
	// Superadmin cannot be granted by role update, only claimed.
	if !domain.ValidRole(role) || role == domain.RoleSuperadmin {
		return domain.ErrInvalidRole
	}

	if err := s.users.UpdateRole(ctx, target, role); err != nil {
		return err
	}

	s.audit.Publish(domain.AuditEvent{
		EntityKind: "user", EntityID: target, Action: "update_role",
		Actor: admin.Principal, Detail: string(role), Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *RegistryService) ApproveUser(ctx context.Context, actor, target string) error {
	return s.SetApproval(ctx, actor, target, domain.UserActive)
}

func (s *RegistryService) RejectUser(ctx context.Context, actor, target, reason string) error {
	return s.setApproval(ctx, actor, target, domain.UserRejected, reason)
}

func (s *RegistryService) SetApproval(ctx context.Context, actor, target string, status domain.UserStatus) error {
	return s.setApproval(ctx, actor, target, status, "")
}

// setApproval applies the terminal approval decision. Each decision is final
// for that registration attempt; only pending users are eligible.
func (s *RegistryService) setApproval(ctx context.Context, actor, target string, status domain.UserStatus, reason string) error {
	admin, err := requireActor(ctx, s.users, actor, domain.RoleAdmin, domain.RoleSuperadmin)
	if err != nil {
		return err
	}
	if status != domain.UserActive && status != domain.UserRejected {
		return domain.ErrInvalidUserTransition
	}

	now := time.Now().UTC()
	info := &domain.ApprovalInfo{DecidedBy: admin.Principal, DecidedAt: now, Reason: reason}
	if err := s.users.UpdateStatus(ctx, target, domain.UserPending, status, info); err != nil {
		return err
	}

	s.log.Info().Str("principal", target).Str("decision", string(status)).Str("by", admin.Principal).Msg("approval decided")
	s.audit.Publish(domain.AuditEvent{
		EntityKind: "user", EntityID: target, Action: "approval_" + string(status),
		Actor: admin.Principal, Detail: reason, Timestamp: now,
	})
	return nil
}

func (s *RegistryService) ListApprovals(ctx context.Context, actor string) ([]ports.ApprovalView, error) {
	if _, err := requireActor(ctx, s.users, actor, domain.RoleAdmin, domain.RoleSuperadmin); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ports.ApprovalView, 0, len(users))
	for _, u := range users {
		views = append(views, ports.ApprovalView{
			Principal: u.Principal,
			Name:      u.Name,
			Role:      u.Role,
			Status:    u.Status,
		})
	}
	return views, nil
}

func (s *RegistryService) PendingRequests(ctx context.Context, actor string) ([]*domain.User, error) {
	if _, err := requireActor(ctx, s.users, actor, domain.RoleAdmin, domain.RoleSuperadmin); err != nil {
		return nil, err
	}
	return s.users.ListByStatus(ctx, domain.UserPending)
}
