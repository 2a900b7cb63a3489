package db

import (
	"context"

	"github.com/ogerihealth/healthrecord/internal/clinical/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
)

const consultationColumns = `id, patient_id, health_worker_id, complaint, diagnosis, treatment, notes, consulted_at, created_at, updated_at`

func (s *DB) scanConsultation(row interface{ Scan(dest ...any) error }) (*entity.Consultation, error) {
	var c entity.Consultation
	err := row.Scan(&c.ID, &c.PatientID, &c.HealthWorkerID, &c.Complaint, &c.Diagnosis,
		&c.Treatment, &c.Notes, &c.ConsultedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &c, nil
}

func (s *DB) NewConsultation(ctx context.Context, c entity.Consultation) (err error) {
	ctx, span := s.startSpan(ctx, "NewConsultation")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO consultations (id, patient_id, health_worker_id, complaint, diagnosis, treatment, notes, consulted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.conn.Exec(ctx, query, c.ID, c.PatientID, c.HealthWorkerID, c.Complaint,
		c.Diagnosis, c.Treatment, c.Notes, c.ConsultedAt)

	return s.mapError(err)
}

func (s *DB) GetConsultation(ctx context.Context, id int64) (c *entity.Consultation, err error) {
	ctx, span := s.startSpan(ctx, "GetConsultation")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + consultationColumns + ` FROM consultations WHERE id = $1`
	return s.scanConsultation(s.conn.QueryRow(ctx, query, id))
}

func (s *DB) GetConsultations(ctx context.Context, filter entity.ConsultationListFilter) (cs []entity.Consultation, total int64, err error) {
	ctx, span := s.startSpan(ctx, "GetConsultations")
	defer func() { s.endSpan(span, err) }()

	where := ` WHERE TRUE`
	args := []any{}

	if filter.PatientID != "" {
		args = append(args, filter.PatientID)
		where += ` AND patient_id = ` + placeholder(len(args))
	}
	if filter.HealthWorkerID != "" {
		args = append(args, filter.HealthWorkerID)
		where += ` AND health_worker_id = ` + placeholder(len(args))
	}

	if err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM consultations`+where, args...).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	args = append(args, filter.Size, filter.Offset)
	query := `SELECT ` + consultationColumns + ` FROM consultations` + where +
		` ORDER BY consulted_at DESC LIMIT ` + placeholder(len(args)-1) + ` OFFSET ` + placeholder(len(args))

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := s.scanConsultation(rows)
		if err != nil {
			return nil, 0, err
		}
		cs = append(cs, *c)
	}

	return cs, total, s.mapError(rows.Err())
}

func (s *DB) UpdateConsultation(ctx context.Context, c entity.Consultation) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateConsultation")
	defer func() { s.endSpan(span, err) }()

	query := `
		UPDATE consultations
		SET diagnosis = $2, treatment = $3, notes = $4, updated_at = NOW()
		WHERE id = $1`
	tag, err := s.conn.Exec(ctx, query, c.ID, c.Diagnosis, c.Treatment, c.Notes)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
