package services

import (
	"context"
	"testing"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/repositories"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/types"
	"pvb-admin/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProfileService(profiles repositories.ReferenceProfileRepositoryInterface) ReferenceProfileServiceInterface {
	return NewReferenceProfileService(profiles, fakeHardware{}, fakeSoftware{}, fakeSapRoles{}, &fakeTx{}, zap.NewNop())
}

func TestCreateProfileSyncsEveryRelation(t *testing.T) {
	profiles := newFakeProfiles()
	svc := newProfileService(profiles)

	got, err := svc.Create(context.Background(), dto.CreateReferenceProfileDTO{
		Name:        "Vertrieb Innendienst",
		HardwareIDs: []uint64{1, 2, 1},
		SoftwareIDs: []uint64{3},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got.ID)

	assert.Equal(t, []string{"create", "sync:hardware", "sync:software", "sync:sap_roles"}, profiles.calls)
	assert.Equal(t, []uint64{1, 2}, profiles.members[entities.RelationHardware])
	assert.Empty(t, profiles.members[entities.RelationSapRoles])
}

func TestCreateProfileRejectsUnknownItems(t *testing.T) {
	profiles := newFakeProfiles()
	svc := newProfileService(profiles)

	_, err := svc.Create(context.Background(), dto.CreateReferenceProfileDTO{
		Name:        "Kaputt",
		HardwareIDs: []uint64{1, 4, 9},
		SapRoleIDs:  []uint64{6},
	})
	verr, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "unknown ids: 4, 9", verr.Fields["hardware_ids"])
	assert.Equal(t, "unknown ids: 6", verr.Fields["sap_role_ids"])
	assert.Empty(t, profiles.calls)
}

func TestUpdateProfileTouchesOnlySubmittedRelations(t *testing.T) {
	profiles := newFakeProfiles()
	svc := newProfileService(profiles)

	_, err := svc.Update(context.Background(), 42, dto.UpdateReferenceProfileDTO{
		Name:        utils.ToPtr("Neu"),
		SoftwareIDs: []uint64{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "update", "sync:software"}, profiles.calls)
	assert.Empty(t, profiles.members[entities.RelationSoftware])
	assert.NotContains(t, profiles.members, entities.RelationHardware)
}

func TestUpdateUnknownProfile(t *testing.T) {
	profiles := newFakeProfiles()
	svc := newProfileService(profiles)

	_, err := svc.Update(context.Background(), 7, dto.UpdateReferenceProfileDTO{HardwareIDs: []uint64{1}})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, []string{"lock"}, profiles.calls)
}

func TestByDivisionMatchesNameOrID(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.active = []entities.ReferenceProfile{
		{ID: 1, Name: "A", DivisionID: null.Uint64From(3), DivisionName: null.StringFrom("Vertrieb")},
		{ID: 2, Name: "B", DivisionID: null.Uint64From(4), DivisionName: null.StringFrom("Einkauf")},
		{ID: 3, Name: "C"},
	}
	svc := newProfileService(profiles)

	byName, err := svc.ByDivision(context.Background(), " vertrieb ")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, uint64(1), byName[0].ID)

	byID, err := svc.ByDivision(context.Background(), "4")
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, uint64(2), byID[0].ID)

	none, err := svc.ByDivision(context.Background(), "Lager")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

// stalledProfiles derives hardware counts from the membership like the COUNT subquery
// does. The first List call snapshots the count and waits for release.
type stalledProfiles struct {
	*fakeProfiles
	started chan struct{}
	release chan struct{}
	calls   int
}

func (f *stalledProfiles) List(context.Context, repositories.ProfileQuery, types.Filter) ([]entities.ReferenceProfile, uint64, error) {
	row := entities.ReferenceProfile{ID: 42, Name: "Standard-IT", Active: true, HardwareCount: int64(len(f.members[entities.RelationHardware]))}
	f.calls++
	if f.calls == 1 {
		close(f.started)
		<-f.release
	}
	return []entities.ReferenceProfile{row}, 1, nil
}

func TestActiveReportsCountsCommittedDuringSlowRead(t *testing.T) {
	profiles := &stalledProfiles{fakeProfiles: newFakeProfiles(), started: make(chan struct{}), release: make(chan struct{})}
	profiles.members[entities.RelationHardware] = []uint64{1}
	svc := newProfileService(profiles)
	ctx := context.Background()

	slow := make(chan []entities.ReferenceProfile, 1)
	go func() {
		items, _ := svc.Active(ctx)
		slow <- items
	}()
	<-profiles.started

	_, err := svc.Update(ctx, 42, dto.UpdateReferenceProfileDTO{HardwareIDs: []uint64{1, 2, 3}})
	require.NoError(t, err)
	close(profiles.release)
	assert.EqualValues(t, 1, (<-slow)[0].HardwareCount)

	items, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 3, items[0].HardwareCount)
}

func TestActiveNeverReturnsNil(t *testing.T) {
	items, err := newProfileService(newFakeProfiles()).Active(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
