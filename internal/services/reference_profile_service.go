package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/repositories"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/types"
	"pvb-admin/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReferenceProfileServiceInterface interface {
	Query(ctx context.Context, query repositories.ProfileQuery, filter types.Filter) ([]entities.ReferenceProfile, uint64, error)
	// Active lists active profiles for the request form. Relation counts are read live.
	Active(ctx context.Context) ([]entities.ReferenceProfile, error)
	ByDivision(ctx context.Context, division string) ([]entities.ReferenceProfile, error)
	Get(ctx context.Context, id uint64) (*dto.ReferenceProfileDetailDTO, error)
	Hardware(ctx context.Context, id uint64) ([]entities.Hardware, error)
	Software(ctx context.Context, id uint64) ([]entities.Software, error)
	SapRoles(ctx context.Context, id uint64) ([]entities.SapRole, error)
	Create(ctx context.Context, payload dto.CreateReferenceProfileDTO) (*dto.ReferenceProfileDetailDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateReferenceProfileDTO) (*dto.ReferenceProfileDetailDTO, error)
	Deactivate(ctx context.Context, id uint64) error
}

type ReferenceProfileService struct {
	repository repositories.ReferenceProfileRepositoryInterface
	hardware   repositories.HardwareRepositoryInterface
	software   repositories.SoftwareRepositoryInterface
	sapRoles   repositories.SapRoleRepositoryInterface
	txManager  repositories.TxManagerInterface
	logger     *zap.Logger
}

func NewReferenceProfileService(
	repository repositories.ReferenceProfileRepositoryInterface,
	hardware repositories.HardwareRepositoryInterface,
	software repositories.SoftwareRepositoryInterface,
	sapRoles repositories.SapRoleRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) ReferenceProfileServiceInterface {
	return &ReferenceProfileService{
		repository: repository,
		hardware:   hardware,
		software:   software,
		sapRoles:   sapRoles,
		txManager:  txManager,
		logger:     logger,
	}
}

func (s *ReferenceProfileService) Query(ctx context.Context, query repositories.ProfileQuery, filter types.Filter) ([]entities.ReferenceProfile, uint64, error) {
	return s.repository.List(ctx, query, filter)
}

func (s *ReferenceProfileService) Active(ctx context.Context) ([]entities.ReferenceProfile, error) {
	items, _, err := s.repository.List(ctx, repositories.ProfileQuery{Active: utils.ToPtr(true)}, types.Filter{})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []entities.ReferenceProfile{}
	}
	return items, nil
}

// ByDivision filters the active list; division matches the name case-insensitively or the id.
func (s *ReferenceProfileService) ByDivision(ctx context.Context, division string) ([]entities.ReferenceProfile, error) {
	all, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	division = strings.TrimSpace(division)
	id, idErr := strconv.ParseUint(division, 10, 64)

	out := make([]entities.ReferenceProfile, 0)
	for _, p := range all {
		if (idErr == nil && p.DivisionID.Valid && p.DivisionID.Uint64 == id) ||
			(p.DivisionName.Valid && strings.EqualFold(p.DivisionName.String, division)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ReferenceProfileService) Get(ctx context.Context, id uint64) (*dto.ReferenceProfileDetailDTO, error) {
	profile, err := s.repository.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	detail, err := s.itemsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.ReferenceProfileDTO = dto.NewReferenceProfileDTO(*profile)
	return detail, nil
}

// itemsOf loads the three memberships of a profile into a detail DTO.
func (s *ReferenceProfileService) itemsOf(ctx context.Context, id uint64) (*dto.ReferenceProfileDetailDTO, error) {
	detail := &dto.ReferenceProfileDetailDTO{}
	var err error
	if detail.Hardware, _, err = s.hardware.List(ctx, profileFilter("profile", id)); err != nil {
		return nil, fmt.Errorf("hardware of profile %d: %w", id, err)
	}
	if detail.Software, _, err = s.software.List(ctx, profileFilter("profile", id)); err != nil {
		return nil, fmt.Errorf("software of profile %d: %w", id, err)
	}
	if detail.SapRoles, _, err = s.sapRoles.List(ctx, profileFilter("profile", id)); err != nil {
		return nil, fmt.Errorf("SAP roles of profile %d: %w", id, err)
	}
	return detail, nil
}

func (s *ReferenceProfileService) Hardware(ctx context.Context, id uint64) ([]entities.Hardware, error) {
	if _, err := s.repository.Find(ctx, id); err != nil {
		return nil, err
	}
	items, _, err := s.hardware.List(ctx, profileFilter("profile", id))
	return items, err
}

func (s *ReferenceProfileService) Software(ctx context.Context, id uint64) ([]entities.Software, error) {
	if _, err := s.repository.Find(ctx, id); err != nil {
		return nil, err
	}
	items, _, err := s.software.List(ctx, profileFilter("profile", id))
	return items, err
}

func (s *ReferenceProfileService) SapRoles(ctx context.Context, id uint64) ([]entities.SapRole, error) {
	if _, err := s.repository.Find(ctx, id); err != nil {
		return nil, err
	}
	items, _, err := s.sapRoles.List(ctx, profileFilter("profile", id))
	return items, err
}

// normalizeRelations dedupes the requested ids; a nil list stays nil (untouched).
func normalizeRelations(relations map[entities.ProfileRelation][]uint64) map[entities.ProfileRelation][]uint64 {
	out := make(map[entities.ProfileRelation][]uint64, len(relations))
	for rel, ids := range relations {
		out[rel] = utils.UniqueIDs(ids)
	}
	return out
}

func (s *ReferenceProfileService) checkItemsInTx(ctx context.Context, tx pgx.Tx, relations map[entities.ProfileRelation][]uint64) error {
	verr := &apperrors.ValidationError{}
	for _, rel := range entities.ProfileRelations {
		ids, ok := relations[rel]
		if !ok || len(ids) == 0 {
			continue
		}
		missing, err := s.repository.MissingItemsInTx(ctx, tx, rel, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			verr.Add(repositories.RelationField(rel), "unknown ids: "+joinIDs(missing))
		}
	}
	return verr.OrNil()
}

func (s *ReferenceProfileService) syncInTx(ctx context.Context, tx pgx.Tx, id uint64, relations map[entities.ProfileRelation][]uint64) error {
	for _, rel := range entities.ProfileRelations {
		ids, ok := relations[rel]
		if !ok {
			continue
		}
		added, removed, err := s.repository.SyncRelationInTx(ctx, tx, id, rel, ids)
		if err != nil {
			return err
		}
		if added > 0 || removed > 0 {
			s.logger.Debug("profile relation synced",
				zap.Uint64("profile_id", id),
				zap.String("relation", string(rel)),
				zap.Int("added", added),
				zap.Int("removed", removed),
			)
		}
	}
	return nil
}

func (s *ReferenceProfileService) Create(ctx context.Context, payload dto.CreateReferenceProfileDTO) (*dto.ReferenceProfileDetailDTO, error) {
	relations := normalizeRelations(map[entities.ProfileRelation][]uint64{
		entities.RelationHardware: payload.HardwareIDs,
		entities.RelationSoftware: payload.SoftwareIDs,
		entities.RelationSapRoles: payload.SapRoleIDs,
	})
	fields := repositories.ProfileFields{
		Name:        &payload.Name,
		DivisionID:  payload.DivisionID,
		Description: payload.Description,
		Active:      payload.Active,
	}

	var id uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.checkItemsInTx(ctx, tx, relations); err != nil {
			return err
		}
		var err error
		if id, err = s.repository.CreateInTx(ctx, tx, fields); err != nil {
			return err
		}
		return s.syncInTx(ctx, tx, id, relations)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reference profile created", zap.Uint64("id", id), zap.String("name", payload.Name))
	return s.Get(ctx, id)
}

func (s *ReferenceProfileService) Update(ctx context.Context, id uint64, payload dto.UpdateReferenceProfileDTO) (*dto.ReferenceProfileDetailDTO, error) {
	relations := normalizeRelations(payload.Relations())
	fields := repositories.ProfileFields{
		Name:        payload.Name,
		DivisionID:  payload.DivisionID,
		Description: payload.Description,
		Active:      payload.Active,
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.repository.LockInTx(ctx, tx, id); err != nil {
			return err
		}
		if err := s.checkItemsInTx(ctx, tx, relations); err != nil {
			return err
		}
		if err := s.repository.UpdateInTx(ctx, tx, id, fields); err != nil {
			return err
		}
		return s.syncInTx(ctx, tx, id, relations)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reference profile updated", zap.Uint64("id", id))
	return s.Get(ctx, id)
}

// Deactivate is the soft delete of a profile; memberships are kept.
func (s *ReferenceProfileService) Deactivate(ctx context.Context, id uint64) error {
	if err := s.repository.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.logger.Info("reference profile deactivated", zap.Uint64("id", id))
	return nil
}

func joinIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ", ")
}
