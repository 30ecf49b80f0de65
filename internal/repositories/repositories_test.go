package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resume-screener/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestEvaluationRepository_FindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "evaluations" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewEvaluationRepository(db).FindByID(uuid.New())

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepository_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "evaluations" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role_id", "status", "score_without_chatgpt", "matched_skills"}).
			AddRow(id.String(), "backend-engineer", "completed", 46.67, `["Go","PostgreSQL"]`))

	got, err := NewEvaluationRepository(db).FindByID(id)

	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.ScoreWithoutChatGPT)
	assert.InDelta(t, 46.67, *got.ScoreWithoutChatGPT, 0.001)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, got.MatchedSkills)
}

func TestEvaluationRepository_UpdateError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "evaluations" SET .*"error_kind"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewEvaluationRepository(db).UpdateError(uuid.New(), "UNKNOWN_ROLE", "unknown role")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepository_UpdateResultMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "evaluations" SET .*"score_with_chatgpt"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewEvaluationRepository(db).UpdateResult(uuid.New(), &models.ScoringOutcome{
		ScoreWithoutChatGPT: 40,
		ScoreWithChatGPT:    55,
		Summary:             "solid",
	})

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepository_UpdateResultRejectsNil(t *testing.T) {
	db, _ := newMockDB(t)

	assert.Error(t, NewEvaluationRepository(db).UpdateResult(uuid.New(), nil))
}

func TestDocumentRepository_FindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "documents" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewDocumentRepository(db).FindByID(uuid.New())

	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRoleRepository_FindAll(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "role_profiles" ORDER BY role_id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"role_id", "title", "required_skills", "synonyms"}).
			AddRow("backend-engineer", "Backend Engineer", `["Go"]`, `{"Go":["Golang"]}`).
			AddRow("data-scientist", "Data Scientist", `["Python"]`, `{}`))

	got, err := NewRoleRepository(db).FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "backend-engineer", got[0].RoleID)
	assert.Equal(t, []string{"Go"}, got[0].RequiredSkills)
	assert.Equal(t, []string{"Golang"}, got[0].Synonyms["Go"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_FindAllError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "role_profiles"`).WillReturnError(errors.New("connection refused"))

	_, err := NewRoleRepository(db).FindAll(context.Background())

	assert.ErrorContains(t, err, "connection refused")
}

func TestEvaluationRepository_Claim(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	mock.ExpectExec(`UPDATE "evaluations" SET .*"status".* WHERE .*id = .*status = `).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), id, models.StatusQueued).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "evaluations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewEvaluationRepository(db)

	claimed, err := repo.Claim(id)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.Claim(id)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
