package db

import (
	"context"

	"github.com/ogerihealth/healthrecord/internal/verification/entity"
)

func (s *DB) GetCode(ctx context.Context, email string, p entity.Purpose) (otc *entity.OneTimeCode, err error) {
	ctx, span := s.startSpan(ctx, "GetCode")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, email, purpose, code_hash, issued_at, expires_at
		FROM verification_codes
		WHERE email = $1 AND purpose = $2`

	var row entity.OneTimeCode
	err = s.conn.QueryRow(ctx, query, email, p).Scan(
		&row.ID, &row.Email, &row.Purpose, &row.CodeHash, &row.IssuedAt, &row.ExpiresAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &row, nil
}

func (s *DB) UpsertCode(ctx context.Context, code entity.OneTimeCode) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertCode")
	defer func() { s.endSpan(span, err) }()

	// One live code per (email, purpose); issuing again replaces the row.
	query := `
		INSERT INTO verification_codes (id, email, purpose, code_hash, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email, purpose) DO UPDATE
		SET id = EXCLUDED.id,
			code_hash = EXCLUDED.code_hash,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at`

	_, err = s.conn.Exec(ctx, query, code.ID, code.Email, code.Purpose, code.CodeHash, code.IssuedAt, code.ExpiresAt)
	return s.mapError(err)
}

func (s *DB) DeleteCodeIfMatch(ctx context.Context, email string, p entity.Purpose, codeHash string) (deleted bool, err error) {
	ctx, span := s.startSpan(ctx, "DeleteCodeIfMatch")
	defer func() { s.endSpan(span, err) }()

	query := `
		DELETE FROM verification_codes
		WHERE email = $1 AND purpose = $2 AND code_hash = $3`

	tag, err := s.conn.Exec(ctx, query, email, p, codeHash)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}
