package db

import (
	"context"

	"github.com/ogerihealth/healthrecord/internal/clinical/entity"
)

func (s *DB) NewMedicationRecord(ctx context.Context, m entity.MedicationRecord) (err error) {
	ctx, span := s.startSpan(ctx, "NewMedicationRecord")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO medication_records (id, patient_id, prescribed_by, name, dosage, frequency, start_date, end_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = s.conn.Exec(ctx, query, m.ID, m.PatientID, m.PrescribedBy, m.Name,
		m.Dosage, m.Frequency, m.StartDate, m.EndDate, m.Notes)

	return s.mapError(err)
}

func (s *DB) GetMedicationRecords(ctx context.Context, patientID string) (ms []entity.MedicationRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetMedicationRecords")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, patient_id, prescribed_by, name, dosage, frequency, start_date, end_date, notes, created_at
		FROM medication_records
		WHERE patient_id = $1
		ORDER BY created_at DESC`

	rows, err := s.conn.Query(ctx, query, patientID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var m entity.MedicationRecord
		err = rows.Scan(&m.ID, &m.PatientID, &m.PrescribedBy, &m.Name, &m.Dosage,
			&m.Frequency, &m.StartDate, &m.EndDate, &m.Notes, &m.CreatedAt)
		if err != nil {
			return nil, s.mapError(err)
		}
		ms = append(ms, m)
	}

	return ms, s.mapError(rows.Err())
}
