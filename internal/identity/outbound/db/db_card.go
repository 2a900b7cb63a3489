package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/ogerihealth/healthrecord/internal/identity/entity"
)

func (s *DB) CreateCardNumbers(ctx context.Context, cards []entity.CardNumber) (created int64, err error) {
	ctx, span := s.startSpan(ctx, "CreateCardNumbers")
	defer func() { s.endSpan(span, err) }()

	// Random numbers can collide with previously generated ones; those rows
	// are silently skipped.
	query := `
		INSERT INTO card_numbers (id, number, status, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (number) DO NOTHING`

	batch := &pgx.Batch{}
	for _, c := range cards {
		batch.Queue(query, c.ID, c.Number, c.Status.String(), c.CreatedAt)
	}

	res := s.conn.SendBatch(ctx, batch)
	defer res.Close()

	for range cards {
		tag, execErr := res.Exec()
		if execErr != nil {
			err = s.mapError(execErr)
			return created, err
		}
		created += tag.RowsAffected()
	}

	return created, nil
}

// AssignCardNumber atomically picks an unused card, marks it used and stamps
// it on the patient row. FOR UPDATE SKIP LOCKED keeps concurrent assignments
// from fighting over the same card.
func (s *DB) AssignCardNumber(ctx context.Context, userID string) (number string, err error) {
	ctx, span := s.startSpan(ctx, "AssignCardNumber")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		pick := `
			SELECT number FROM card_numbers
			WHERE status = 'unused'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED`
		if err := tx.QueryRow(ctx, pick).Scan(&number); err != nil {
			return err
		}

		mark := `UPDATE card_numbers SET status = 'used', assigned_to = $2 WHERE number = $1`
		if _, err := tx.Exec(ctx, mark, number, userID); err != nil {
			return err
		}

		stamp := `UPDATE users SET card_number = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
		tag, err := tx.Exec(ctx, stamp, userID, number)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		return nil
	})
	if err != nil {
		return "", s.mapError(err)
	}

	return number, nil
}
