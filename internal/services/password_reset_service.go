package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Shehriyar31/pp-Live/internal/events"
	"github.com/Shehriyar31/pp-Live/internal/models"
)

// PasswordResetService tracks reset submissions as persisted,
// account-keyed records resolved exactly once by an admin. No password
// material passes through it; the identity collaborator owns credentials.
type PasswordResetService struct {
	db     *sql.DB
	events events.Publisher
}

func NewPasswordResetService(db *sql.DB, pub events.Publisher) *PasswordResetService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &PasswordResetService{db: db, events: pub}
}

// Create files a reset request for the account.
func (s *PasswordResetService) Create(accountID string) (*models.PasswordResetRequest, error) {
	var username string
	err := s.db.QueryRow(`SELECT username FROM accounts WHERE id = $1`, accountID).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}

	request := &models.PasswordResetRequest{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Username:  username,
		Status:    models.RequestPending,
	}
	err = s.db.QueryRow(`
		INSERT INTO password_resets (id, account_id, username, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at`,
		request.ID, request.AccountID, request.Username, request.Status,
	).Scan(&request.CreatedAt)
	if err != nil {
		return nil, err
	}

	s.events.Publish(models.EventPasswordResetCreated, request)
	return request, nil
}

// List returns all reset requests, newest first.
func (s *PasswordResetService) List() ([]models.PasswordResetRequest, error) {
	rows, err := s.db.Query(`
		SELECT id, account_id, username, status, created_at, resolved_at
		FROM password_resets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.PasswordResetRequest{}
	for rows.Next() {
		var r models.PasswordResetRequest
		if err := rows.Scan(&r.ID, &r.AccountID, &r.Username, &r.Status, &r.CreatedAt, &r.ResolvedAt); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// Resolve marks a pending reset request approved or rejected. Resolving a
// request twice fails cleanly.
func (s *PasswordResetService) Resolve(requestID string, approve bool) error {
	status := models.RequestRejected
	if approve {
		status = models.RequestApproved
	}

	result, err := s.db.Exec(`
		UPDATE password_resets SET status = $1, resolved_at = NOW()
		WHERE id = $2 AND status = $3`,
		status, requestID, models.RequestPending)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var existing string
		err := s.db.QueryRow(`SELECT status FROM password_resets WHERE id = $1`, requestID).Scan(&existing)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrRequestNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: reset request %s is %s", models.ErrRequestAlreadyResolved, requestID, existing)
	}

	logrus.Infof("[PASSWORD] Reset request %s resolved as %s", requestID, status)
	return nil
}
