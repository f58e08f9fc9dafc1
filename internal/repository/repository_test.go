package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/telehealth-core/internal/database"
	"github.com/iliyamo/telehealth-core/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.DialectSQLite))
	return db
}

func TestAccountRepo_CreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepo(newTestDB(t))

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, model.Account{Username: "dr1", PasswordHash: "h1", Role: model.RoleDoctor, CreatedAt: now}))

	err := repo.Create(ctx, model.Account{Username: "dr1", PasswordHash: "h2", Role: model.RolePatient, CreatedAt: now})
	require.ErrorIs(t, err, ErrDuplicate)

	got, err := repo.GetByUsername(ctx, "dr1")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)
	assert.Equal(t, model.RoleDoctor, got.Role)
	assert.False(t, got.IsLoggedIn)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountRepo_ListLoggedIn(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepo(newTestDB(t))
	now := time.Now().UTC()
	for _, a := range []model.Account{
		{Username: "pat2", Role: model.RolePatient},
		{Username: "pat1", Role: model.RolePatient},
		{Username: "pat3", Role: model.RolePatient},
		{Username: "dr1", Role: model.RoleDoctor},
	} {
		a.PasswordHash, a.CreatedAt = "x", now
		require.NoError(t, repo.Create(ctx, a))
	}
	require.NoError(t, repo.SetLoggedIn(ctx, "pat2", true))
	require.NoError(t, repo.SetLoggedIn(ctx, "pat1", true))
	require.NoError(t, repo.SetLoggedIn(ctx, "dr1", true))
	require.NoError(t, repo.SetLoggedIn(ctx, "ghost", true))

	names, err := repo.ListLoggedIn(ctx, model.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, []string{"pat1", "pat2"}, names)

	require.NoError(t, repo.SetLoggedIn(ctx, "pat2", false))
	names, err = repo.ListLoggedIn(ctx, model.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, []string{"pat1"}, names)

	names, err = repo.ListLoggedIn(ctx, model.RoleCommunityHealthWorker)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMessageRepo_ListBetweenOrdersByTimestampThenID(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepo(newTestDB(t))
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	msgs := []model.Message{
		{Sender: "a", Receiver: "b", Body: "second", SentAt: base.Add(time.Second)},
		{Sender: "b", Receiver: "a", Body: "first", SentAt: base},
		{Sender: "a", Receiver: "b", Body: "tie-1", SentAt: base.Add(2 * time.Second)},
		{Sender: "b", Receiver: "a", Body: "tie-2", SentAt: base.Add(2 * time.Second)},
		{Sender: "a", Receiver: "c", Body: "other pair", SentAt: base},
	}
	for i := range msgs {
		require.NoError(t, repo.Create(ctx, &msgs[i]))
		require.NotZero(t, msgs[i].ID)
	}

	got, err := repo.ListBetween(ctx, "a", "b")
	require.NoError(t, err)
	bodies := make([]string, 0, len(got))
	for _, m := range got {
		bodies = append(bodies, m.Body)
	}
	assert.Equal(t, []string{"first", "second", "tie-1", "tie-2"}, bodies)
	assert.True(t, got[0].SentAt.Equal(base))
}

func TestPrescriptionRepo_ResolveOnce(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPrescriptionRepo(db)
	now := time.Now().UTC()

	p := model.Prescription{Doctor: "dr1", Patient: "pat1", Text: "Drug_X", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, &p))
	require.Equal(t, model.StatusPending, p.Status)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	ok, err := repo.ResolveTx(ctx, tx, p.ID, model.StatusAffordable, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ResolveTx(ctx, tx, p.ID, model.StatusUnaffordable, now)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.ResolveTx(ctx, tx, 9999, model.StatusAffordable, now)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, tx.Commit())

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAffordable, got.Status)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrescriptionRepo_ListByPatientAndDoctor(t *testing.T) {
	ctx := context.Background()
	repo := NewPrescriptionRepo(newTestDB(t))
	now := time.Now().UTC()
	for _, p := range []model.Prescription{
		{Doctor: "dr1", Patient: "pat1", Text: "A"},
		{Doctor: "dr2", Patient: "pat1", Text: "B"},
		{Doctor: "dr1", Patient: "pat2", Text: "C"},
	} {
		p.CreatedAt, p.UpdatedAt = now, now
		require.NoError(t, repo.Create(ctx, &p))
	}

	mine, err := repo.ListByPatient(ctx, "pat1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "A", mine[0].Text)
	assert.Equal(t, "B", mine[1].Text)

	issued, err := repo.ListByDoctor(ctx, "dr1")
	require.NoError(t, err)
	require.Len(t, issued, 2)
	assert.Equal(t, "pat2", issued[1].Patient)

	none, err := repo.ListByPatient(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
