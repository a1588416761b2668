package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/repository/common"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProposalNotPending   = errors.New("proposal is not pending")
	ErrScopeNotFound        = errors.New("project scope not found")
	ErrScopeVersionConflict = errors.New("scope version conflict")
	ErrStatusNotEligible    = errors.New("project status is not eligible for this transition")
)

type ProjectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := r.db.GetContext(ctx, &p, `SELECT * FROM projects WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	return &p, err
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.SelectContext(ctx, &projects, `
		SELECT * FROM projects WHERE client_id = $1 OR freelancer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return projects, err
}

// AcceptProposalResult — итог атомарного принятия предложения.
type AcceptProposalResult struct {
	Project             *models.Project
	Conversation        *models.Conversation
	Scope               *models.ProjectScope
	RejectedFreelancers []uuid.UUID
}

// AcceptProposal выполняет принятие предложения одной транзакцией:
// заявка помечается принятой, остальные предложения отклоняются, целевое
// принимается, создаются проект в статусе pending_contract, беседа, версия
// условий №1 и системное сообщение. Частичное применение не наблюдаемо:
// любая ошибка откатывает всё.
func (r *ProjectRepository) AcceptProposal(ctx context.Context, req *models.ServiceRequest, p *models.Proposal) (*AcceptProposalResult, error) {
	res := &AcceptProposalResult{}

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE service_requests SET status = $2, updated_at = NOW() WHERE id = $1
		`, req.ID, models.RequestStatusAccepted); err != nil {
			return fmt.Errorf("accept request: %w", err)
		}

		rows, err := tx.QueryContext(ctx, `
			UPDATE proposals SET status = $3, updated_at = NOW()
			WHERE request_id = $1 AND id <> $2 AND status = $4
			RETURNING freelancer_id
		`, req.ID, p.ID, models.ProposalStatusRejected, models.ProposalStatusPending)
		if err != nil {
			return fmt.Errorf("reject sibling proposals: %w", err)
		}
		for rows.Next() {
			var freelancerID uuid.UUID
			if err := rows.Scan(&freelancerID); err != nil {
				rows.Close()
				return err
			}
			res.RejectedFreelancers = append(res.RejectedFreelancers, freelancerID)
		}
		if err := rows.Close(); err != nil {
			return err
		}

		accepted, err := tx.ExecContext(ctx, `
			UPDATE proposals SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3
		`, p.ID, models.ProposalStatusAccepted, models.ProposalStatusPending)
		if err != nil {
			return fmt.Errorf("accept proposal: %w", err)
		}
		if n, err := accepted.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrProposalNotPending
		}

		project := &models.Project{
			ClientID:         req.ClientID,
			FreelancerID:     p.FreelancerID,
			RequestID:        req.ID,
			ProposalID:       p.ID,
			Title:            req.Title,
			Status:           models.ProjectStatusPendingContract,
			ContractPrice:    p.ProposedPrice,
			ContractDeadline: p.ProposedDeadline,
			PaymentStatus:    models.PaymentStatusUnpaid,
		}
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO projects (client_id, freelancer_id, request_id, proposal_id, title, status,
				contract_price, contract_deadline, client_accepted, freelancer_accepted, payment_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, false, $9)
			RETURNING id, created_at, updated_at
		`, project.ClientID, project.FreelancerID, project.RequestID, project.ProposalID,
			project.Title, project.Status, project.ContractPrice, project.ContractDeadline,
			project.PaymentStatus).
			Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		res.Project = project

		conv := &models.Conversation{
			ProjectID:    &project.ID,
			RequestID:    &req.ID,
			ClientID:     req.ClientID,
			FreelancerID: p.FreelancerID,
		}
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO conversations (project_id, request_id, client_id, freelancer_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`, conv.ProjectID, conv.RequestID, conv.ClientID, conv.FreelancerID).
			Scan(&conv.ID, &conv.CreatedAt); err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		res.Conversation = conv

		scope := &models.ProjectScope{
			ProjectID:    project.ID,
			Version:      1,
			AuthorID:     p.FreelancerID,
			Title:        req.Title,
			Description:  req.Description,
			Deliverables: p.ScopeText,
			Deadline:     p.ProposedDeadline,
			Price:        p.ProposedPrice,
		}
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO project_scopes (project_id, version, author_id, title, description, deliverables, exclusions, deadline, price)
			VALUES ($1, 1, $2, $3, $4, $5, '', $6, $7)
			RETURNING id, created_at
		`, scope.ProjectID, scope.AuthorID, scope.Title, scope.Description,
			scope.Deliverables, scope.Deadline, scope.Price).
			Scan(&scope.ID, &scope.CreatedAt); err != nil {
			return fmt.Errorf("create scope v1: %w", err)
		}
		res.Scope = scope

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (conversation_id, author_type, content)
			VALUES ($1, $2, $3)
		`, conv.ID, models.AuthorTypeSystem,
			"Предложение принято, проект создан. Согласуйте условия договора перед оплатой."); err != nil {
			return fmt.Errorf("create system message: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CreateScopeVersion создаёт новую версию условий одной транзакцией:
// номер версии считается как max+1 внутри транзакции, флаги принятия обеих
// сторон сбрасываются, цена и срок договора перезаписываются при наличии
// новых значений, в беседу пишется системное сообщение. Гонка двух
// одновременных версий разрешается UNIQUE(project_id, version): проигравший
// повторяет попытку один раз и затем получает ErrScopeVersionConflict.
func (r *ProjectRepository) CreateScopeVersion(ctx context.Context, scope *models.ProjectScope) (*models.ProjectScope, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		created, err := r.insertScopeVersion(ctx, scope)
		if err == nil {
			return created, nil
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			lastErr = ErrScopeVersionConflict
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (r *ProjectRepository) insertScopeVersion(ctx context.Context, scope *models.ProjectScope) (*models.ProjectScope, error) {
	created := *scope

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO project_scopes (project_id, version, author_id, title, description, deliverables, exclusions, revision_limit, deadline, price)
			VALUES ($1,
				(SELECT COALESCE(MAX(version), 0) + 1 FROM project_scopes WHERE project_id = $1),
				$2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, version, created_at
		`, scope.ProjectID, scope.AuthorID, scope.Title, scope.Description,
			scope.Deliverables, scope.Exclusions, scope.RevisionLimit, scope.Deadline, scope.Price).
			Scan(&created.ID, &created.Version, &created.CreatedAt); err != nil {
			return err
		}

		// Любое изменение условий обнуляет взаимное принятие: обе стороны
		// обязаны подтвердить договор заново перед оплатой.
		if _, err := tx.ExecContext(ctx, `
			UPDATE projects SET
				client_accepted = false,
				freelancer_accepted = false,
				contract_price = COALESCE($2, contract_price),
				contract_deadline = COALESCE($3, contract_deadline),
				updated_at = NOW()
			WHERE id = $1
		`, scope.ProjectID, scope.Price, scope.Deadline); err != nil {
			return fmt.Errorf("reset acceptance flags: %w", err)
		}

		var convID uuid.UUID
		if err := tx.GetContext(ctx, &convID, `SELECT id FROM conversations WHERE project_id = $1`, scope.ProjectID); err != nil {
			return fmt.Errorf("find conversation: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (conversation_id, author_type, content)
			VALUES ($1, $2, $3)
		`, convID, models.AuthorTypeSystem,
			fmt.Sprintf("Предложена новая версия условий №%d. Требуется повторное подтверждение обеих сторон.", created.Version)); err != nil {
			return fmt.Errorf("create system message: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ProjectRepository) GetCurrentScope(ctx context.Context, projectID uuid.UUID) (*models.ProjectScope, error) {
	var scope models.ProjectScope
	err := r.db.GetContext(ctx, &scope, `
		SELECT * FROM project_scopes WHERE project_id = $1 ORDER BY version DESC LIMIT 1
	`, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScopeNotFound
	}
	return &scope, err
}

func (r *ProjectRepository) ListScopes(ctx context.Context, projectID uuid.UUID) ([]models.ProjectScope, error) {
	var scopes []models.ProjectScope
	err := r.db.SelectContext(ctx, &scopes, `
		SELECT * FROM project_scopes WHERE project_id = $1 ORDER BY version ASC
	`, projectID)
	return scopes, err
}

// SetPartyAccepted выставляет флаг принятия договора для роли стороны.
// Обновление условное по статусу, чтобы не принять договор после оплаты.
func (r *ProjectRepository) SetPartyAccepted(ctx context.Context, projectID uuid.UUID, isClient bool, eligibleStatuses []string) (*models.Project, error) {
	column := "freelancer_accepted"
	if isClient {
		column = "client_accepted"
	}

	var p models.Project
	err := r.db.GetContext(ctx, &p, `
		UPDATE projects SET `+column+` = true, updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
		RETURNING *
	`, projectID, pq.Array(eligibleStatuses))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatusNotEligible
	}
	return &p, err
}

// CapturePayment переводит проект в работу после подтверждения оплаты.
// Условие по статусу и обоим флагам принятия исполняется тем же оператором,
// что и запись: повторный захват или гонка со сменой условий дают ноль строк.
func (r *ProjectRepository) CapturePayment(ctx context.Context, projectID uuid.UUID, eligibleStatuses []string) (*models.Project, error) {
	var p models.Project
	err := r.db.GetContext(ctx, &p, `
		UPDATE projects SET
			status = $2,
			payment_status = $3,
			contract_accepted_at = NOW(),
			started_at = COALESCE(started_at, NOW()),
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($4) AND client_accepted = true AND freelancer_accepted = true
		RETURNING *
	`, projectID, models.ProjectStatusInProgress, models.PaymentStatusPaid, pq.Array(eligibleStatuses))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatusNotEligible
	}
	return &p, err
}

// Complete переводит проект в completed, если все результаты работы одобрены.
// Проверка и переход выполняются в одной транзакции.
func (r *ProjectRepository) Complete(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var p models.Project

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var unapproved int
		if err := tx.GetContext(ctx, &unapproved, `
			SELECT COUNT(*) FROM deliverables WHERE project_id = $1 AND approved_by_client = false
		`, projectID); err != nil {
			return err
		}
		if unapproved > 0 {
			return fmt.Errorf("%w: остались неодобренные результаты работы", ErrStatusNotEligible)
		}

		err := tx.GetContext(ctx, &p, `
			UPDATE projects SET status = $2, completed_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $3
			RETURNING *
		`, projectID, models.ProjectStatusCompleted, models.ProjectStatusInProgress)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrStatusNotEligible
		}
		if err != nil {
			return err
		}

		var convID uuid.UUID
		if err := tx.GetContext(ctx, &convID, `SELECT id FROM conversations WHERE project_id = $1`, projectID); err != nil {
			return fmt.Errorf("find conversation: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (conversation_id, author_type, content)
			VALUES ($1, $2, 'Клиент принял все результаты, проект завершён.')
		`, convID, models.AuthorTypeSystem); err != nil {
			return fmt.Errorf("create system message: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Reopen возвращает завершённый проект в работу после принятого спора.
func (r *ProjectRepository) Reopen(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := r.db.GetContext(ctx, &p, `
		UPDATE projects SET status = $2, completed_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING *
	`, projectID, models.ProjectStatusInProgress, models.ProjectStatusCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatusNotEligible
	}
	return &p, err
}
