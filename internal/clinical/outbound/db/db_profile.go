package db

import (
	"context"

	"github.com/ogerihealth/healthrecord/internal/clinical/entity"
)

func (s *DB) UpsertHealthWorkerProfile(ctx context.Context, p entity.HealthWorkerProfile) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertHealthWorkerProfile")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO health_worker_profiles (user_id, specialty, license_number, years_experience, bio)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET specialty = EXCLUDED.specialty,
			license_number = EXCLUDED.license_number,
			years_experience = EXCLUDED.years_experience,
			bio = EXCLUDED.bio,
			updated_at = NOW()`
	_, err = s.conn.Exec(ctx, query, p.UserID, p.Specialty, p.LicenseNumber, p.YearsExperience, p.Bio)

	return s.mapError(err)
}

func (s *DB) GetHealthWorkerProfile(ctx context.Context, userID string) (p *entity.HealthWorkerProfile, err error) {
	ctx, span := s.startSpan(ctx, "GetHealthWorkerProfile")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT user_id, specialty, license_number, years_experience, bio, updated_at
		FROM health_worker_profiles
		WHERE user_id = $1`

	var row entity.HealthWorkerProfile
	err = s.conn.QueryRow(ctx, query, userID).Scan(&row.UserID, &row.Specialty,
		&row.LicenseNumber, &row.YearsExperience, &row.Bio, &row.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &row, nil
}
