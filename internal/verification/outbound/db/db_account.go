package db

import (
	"context"

	"github.com/ogerihealth/healthrecord/internal/verification/entity"
)

func (s *DB) GetAccountByEmail(ctx context.Context, email string) (acct *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByEmail")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, email, full_name, role, date_of_birth
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`

	var row entity.Account
	err = s.conn.QueryRow(ctx, query, email).Scan(
		&row.ID, &row.Email, &row.FullName, &row.Role, &row.DateOfBirth,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &row, nil
}
