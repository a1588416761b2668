package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkaravaev/workhub-backend/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func expectScopeInsertConflict(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO project_scopes")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()
}

func expectScopeInsertSuccess(mock sqlmock.Sqlmock, scope *models.ProjectScope, version int, convID uuid.UUID) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO project_scopes")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "created_at"}).
			AddRow(uuid.New().String(), version, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE projects SET")).
		WithArgs(scope.ProjectID, scope.Price, scope.Deadline).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM conversations WHERE project_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(convID.String()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestProjectRepository_CreateScopeVersion_ResetsAcceptanceInSameTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	price := 250.0
	scope := &models.ProjectScope{
		ProjectID: uuid.New(),
		AuthorID:  uuid.New(),
		Title:     "Вторая редакция",
		Price:     &price,
	}

	// Сброс флагов принятия обязан идти той же транзакцией, что и вставка
	// версии: между ExpectBegin и ExpectCommit.
	expectScopeInsertSuccess(mock, scope, 2, uuid.New())

	created, err := repo.CreateScopeVersion(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 2, created.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateScopeVersion_RetriesOnceOnVersionRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	scope := &models.ProjectScope{
		ProjectID: uuid.New(),
		AuthorID:  uuid.New(),
		Title:     "Гонка версий",
	}

	expectScopeInsertConflict(mock)
	expectScopeInsertSuccess(mock, scope, 4, uuid.New())

	created, err := repo.CreateScopeVersion(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 4, created.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateScopeVersion_ConflictAfterRetry(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	scope := &models.ProjectScope{
		ProjectID: uuid.New(),
		AuthorID:  uuid.New(),
		Title:     "Гонка версий",
	}

	expectScopeInsertConflict(mock)
	expectScopeInsertConflict(mock)

	_, err := repo.CreateScopeVersion(ctx, scope)
	assert.ErrorIs(t, err, ErrScopeVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateScopeVersion_OtherErrorNotRetried(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	scope := &models.ProjectScope{ProjectID: uuid.New(), AuthorID: uuid.New(), Title: "x"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO project_scopes")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.CreateScopeVersion(ctx, scope)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrScopeVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_AcceptProposal_CreatesProjectAtomically(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	req := &models.ServiceRequest{
		ID:       uuid.New(),
		ClientID: uuid.New(),
		Title:    "Сайт-визитка",
		Status:   models.RequestStatusOpen,
	}
	price := 500.0
	prop := &models.Proposal{
		ID:            uuid.New(),
		RequestID:     req.ID,
		FreelancerID:  uuid.New(),
		ProposedPrice: &price,
		Status:        models.ProposalStatusPending,
	}
	loser1, loser2 := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE service_requests SET status = $2")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("RETURNING freelancer_id")).
		WillReturnRows(sqlmock.NewRows([]string{"freelancer_id"}).
			AddRow(loser1.String()).
			AddRow(loser2.String()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE proposals SET status = $2")).
		WithArgs(prop.ID, models.ProposalStatusAccepted, models.ProposalStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(uuid.New().String(), time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO conversations")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(uuid.New().String(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO project_scopes")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(uuid.New().String(), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.AcceptProposal(ctx, req, prop)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPendingContract, res.Project.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, res.Project.PaymentStatus)
	assert.False(t, res.Project.ClientAccepted)
	assert.False(t, res.Project.FreelancerAccepted)
	assert.Equal(t, 1, res.Scope.Version)
	assert.Equal(t, []uuid.UUID{loser1, loser2}, res.RejectedFreelancers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_AcceptProposal_AlreadyDecidedRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	req := &models.ServiceRequest{ID: uuid.New(), ClientID: uuid.New(), Title: "Логотип"}
	prop := &models.Proposal{ID: uuid.New(), RequestID: req.ID, FreelancerID: uuid.New()}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE service_requests SET status = $2")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("RETURNING freelancer_id")).
		WillReturnRows(sqlmock.NewRows([]string{"freelancer_id"}))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE proposals SET status = $2")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.AcceptProposal(ctx, req, prop)
	assert.ErrorIs(t, err, ErrProposalNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
