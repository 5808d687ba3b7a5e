package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/parammap-backend/internal/domain"
)

// MapError maps infrastructure failures into domain error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NewError(domain.CodeNotFound, op, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.NewError(domain.CodeConflict, op, "duplicate key", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.Wrap(domain.CodeInternal, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return domain.NewError(domain.CodeConflict, op, "duplicate key", err) // unique_violation
		case "22P02":
			return domain.NewError(domain.CodeValidation, op, "invalid input syntax", err) // invalid_text_representation
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "duplicate key") {
		return domain.NewError(domain.CodeConflict, op, "duplicate key", err)
	}
	return domain.Wrap(domain.CodeInternal, op, err)
}
