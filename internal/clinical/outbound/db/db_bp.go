package db

import (
	"context"
	"strconv"

	"github.com/ogerihealth/healthrecord/internal/clinical/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
)

const bpColumns = `id, patient_id, systolic, diastolic, pulse_rate, notes, recorded_by, recorded_at, created_at, updated_at`

func (s *DB) scanBPReading(row interface{ Scan(dest ...any) error }) (*entity.BPReading, error) {
	var r entity.BPReading
	err := row.Scan(&r.ID, &r.PatientID, &r.Systolic, &r.Diastolic, &r.PulseRate,
		&r.Notes, &r.RecordedBy, &r.RecordedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &r, nil
}

func (s *DB) NewBPReading(ctx context.Context, reading entity.BPReading) (err error) {
	ctx, span := s.startSpan(ctx, "NewBPReading")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO bp_readings (id, patient_id, systolic, diastolic, pulse_rate, notes, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.conn.Exec(ctx, query, reading.ID, reading.PatientID, reading.Systolic,
		reading.Diastolic, reading.PulseRate, reading.Notes, reading.RecordedBy, reading.RecordedAt)

	return s.mapError(err)
}

func (s *DB) GetBPReading(ctx context.Context, id int64) (r *entity.BPReading, err error) {
	ctx, span := s.startSpan(ctx, "GetBPReading")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + bpColumns + ` FROM bp_readings WHERE id = $1`
	return s.scanBPReading(s.conn.QueryRow(ctx, query, id))
}

func (s *DB) GetBPReadings(ctx context.Context, filter entity.BPListFilter) (readings []entity.BPReading, total int64, err error) {
	ctx, span := s.startSpan(ctx, "GetBPReadings")
	defer func() { s.endSpan(span, err) }()

	where := ` WHERE patient_id = $1`
	args := []any{filter.PatientID}

	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += ` AND recorded_at >= ` + placeholder(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += ` AND recorded_at <= ` + placeholder(len(args))
	}

	if err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM bp_readings`+where, args...).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	args = append(args, filter.Size, filter.Offset)
	query := `SELECT ` + bpColumns + ` FROM bp_readings` + where +
		` ORDER BY recorded_at DESC LIMIT ` + placeholder(len(args)-1) + ` OFFSET ` + placeholder(len(args))

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := s.scanBPReading(rows)
		if err != nil {
			return nil, 0, err
		}
		readings = append(readings, *r)
	}

	return readings, total, s.mapError(rows.Err())
}

func (s *DB) GetAllBPReadings(ctx context.Context, patientID string) (readings []entity.BPReading, err error) {
	ctx, span := s.startSpan(ctx, "GetAllBPReadings")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + bpColumns + ` FROM bp_readings WHERE patient_id = $1 ORDER BY recorded_at ASC`

	rows, err := s.conn.Query(ctx, query, patientID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := s.scanBPReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *r)
	}

	return readings, s.mapError(rows.Err())
}

func (s *DB) UpdateBPReading(ctx context.Context, reading entity.BPReading) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateBPReading")
	defer func() { s.endSpan(span, err) }()

	query := `
		UPDATE bp_readings
		SET systolic = $2, diastolic = $3, pulse_rate = $4, notes = $5, updated_at = NOW()
		WHERE id = $1`
	tag, err := s.conn.Exec(ctx, query, reading.ID, reading.Systolic, reading.Diastolic,
		reading.PulseRate, reading.Notes)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
