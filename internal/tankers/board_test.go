package tankers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petroflow/petroflow/internal/platform/httpx"
	"github.com/petroflow/petroflow/internal/shared"
)

type fakeRepo struct {
	tankers      map[int64]Tanker
	statusWrites int
}

func newFakeRepo(ts ...Tanker) *fakeRepo {
	m := make(map[int64]Tanker, len(ts))
	for _, t := range ts {
		m[t.ID] = t
	}
	return &fakeRepo{tankers: m}
}

func (f *fakeRepo) List(context.Context, int64, shared.ListFilters) ([]Tanker, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) ListAll(_ context.Context, ownerID int64) ([]Tanker, error) {
	var out []Tanker
	for _, t := range f.tankers {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, ownerID, id int64) (Tanker, error) {
	t, ok := f.tankers[id]
	if !ok || t.OwnerID != ownerID {
		return Tanker{}, httpx.ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) Create(_ context.Context, t Tanker) (Tanker, error) { return t, nil }

func (f *fakeRepo) Update(_ context.Context, t Tanker, _ int64) (Tanker, error) { return t, nil }

func (f *fakeRepo) UpdateStatus(_ context.Context, ownerID, id int64, status string, baseVersion int64) (Tanker, error) {
	t, ok := f.tankers[id]
	if !ok || t.OwnerID != ownerID {
		return Tanker{}, httpx.ErrNotFound
	}
	if t.Version != baseVersion {
		return t, httpx.ErrStaleVersion
	}
	f.statusWrites++
	t.Status = status
	t.Version++
	f.tankers[id] = t
	return t, nil
}

func (f *fakeRepo) Delete(context.Context, int64, int64) error { return nil }

func fleet() []Tanker {
	return []Tanker{
		{ID: 1, OwnerID: 7, Registration: "AA-101-BB", Status: StatusAvailable, Version: 1},
		{ID: 2, OwnerID: 7, Registration: "CC-202-DD", Status: StatusInDelivery, Version: 1},
		{ID: 3, OwnerID: 7, Registration: "EE-303-FF", Status: StatusMaintenance, Version: 1},
		{ID: 4, OwnerID: 7, Registration: "GG-404-HH", Status: StatusInDelivery, Version: 3},
	}
}

func TestPartitionIsTotalAndDisjoint(t *testing.T) {
	board := Partition(fleet())

	require.Len(t, board.Available, 2)
	require.Len(t, board.InDelivery, 2)
	require.Equal(t, len(fleet()), len(board.Available)+len(board.InDelivery))

	seen := map[int64]bool{}
	for _, tk := range append(board.Available, board.InDelivery...) {
		require.False(t, seen[tk.ID], "tanker %d appears in both columns", tk.ID)
		seen[tk.ID] = true
	}
}

func TestPartitionMaintenanceRidesInAvailableColumn(t *testing.T) {
	board := Partition(fleet())

	var ids []int64
	for _, tk := range board.Available {
		ids = append(ids, tk.ID)
	}
	require.Contains(t, ids, int64(3))
	require.Equal(t, ColumnAvailable, ColumnFor(StatusMaintenance))
}

func TestMoveSameColumnIsNoOp(t *testing.T) {
	repo := newFakeRepo(fleet()...)
	svc := NewService(repo, nil)

	// A maintenance tanker already sits in the available column.
	result, err := svc.Move(context.Background(), 7, 3, ColumnAvailable, 1)
	require.NoError(t, err)
	require.False(t, result.Moved)
	require.Zero(t, repo.statusWrites)
	require.Equal(t, StatusMaintenance, repo.tankers[3].Status)
}

func TestMoveCrossColumnSingleWrite(t *testing.T) {
	repo := newFakeRepo(fleet()...)
	svc := NewService(repo, nil)

	result, err := svc.Move(context.Background(), 7, 1, ColumnInDelivery, 1)
	require.NoError(t, err)
	require.True(t, result.Moved)
	require.Equal(t, 1, repo.statusWrites)
	require.Equal(t, StatusInDelivery, result.Tanker.Status)
	require.Equal(t, int64(2), result.Tanker.Version)
}

func TestMoveStaleVersionConflicts(t *testing.T) {
	repo := newFakeRepo(fleet()...)
	svc := NewService(repo, nil)

	// Tanker 4 is at version 3; a client holding version 1 lost the race.
	result, err := svc.Move(context.Background(), 7, 4, ColumnAvailable, 1)
	require.ErrorIs(t, err, httpx.ErrStaleVersion)
	require.Zero(t, repo.statusWrites)
	require.Equal(t, int64(3), result.Tanker.Version)
}

func TestMoveUnknownColumnRejected(t *testing.T) {
	repo := newFakeRepo(fleet()...)
	svc := NewService(repo, nil)

	_, err := svc.Move(context.Background(), 7, 1, "garage", 1)
	require.ErrorIs(t, err, httpx.ErrValidation)
}
