package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ogerihealth/healthrecord/internal/identity/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/storage"
	"github.com/ogerihealth/healthrecord/internal/shared/constant"
)

const patientExportPageSize int32 = 1_000

type PatientExportOutput struct {
	ObjectKey   string
	DownloadURL string
	Total       int64
}

// PatientExport writes the full patient directory as a CSV object and returns
// a presigned download link. Administrator only.
func (s *Usecase) PatientExport(ctx context.Context) (*PatientExportOutput, error) {
	ctx, span := s.startSpan(ctx, "PatientExport")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermIdentityUsers, constant.PermActManage); err != nil {
		return nil, err
	}

	filter := entity.UserListFilter{
		Role: entity.RolePatient,
		Size: patientExportPageSize,
	}

	var (
		patients []entity.User
		page     int32 = 1
		total    int64
	)

	for {
		filter.Offset = (page - 1) * patientExportPageSize

		pageUsers, count, err := s.repoDB.GetUserList(ctx, filter)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo export patients", "error", err)
			return nil, goerror.NewServer(err)
		}

		if page == 1 {
			total = count
			if total == 0 {
				break
			}
			patients = make([]entity.User, 0, min(total, int64(patientExportPageSize)))
		}

		patients = append(patients, pageUsers...)

		if int64(len(patients)) >= total || len(pageUsers) == 0 {
			break
		}

		page++
	}

	buf, err := patientsCSV(patients)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode patient export", "error", err)
		return nil, goerror.NewServer(err)
	}

	bucket := s.cfg.GetString("modules.identity.export_bucket")
	key := fmt.Sprintf("exports/patients-%s.csv", s.clock.Now().UTC().Format("20060102-150405"))

	if _, err := s.storage.PutObject(ctx, bucket, key, buf, storage.PutOptions{
		Size:        int64(buf.Len()),
		ContentType: "text/csv",
	}); err != nil {
		slog.ErrorContext(ctx, "failed to store patient export", "bucket", bucket, "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	url, err := s.storage.PresignGet(ctx, bucket, key, s.cfg.GetMinute("modules.identity.export_url_ttl_minutes"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to presign patient export", "bucket", bucket, "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &PatientExportOutput{ObjectKey: key, DownloadURL: url, Total: total}, nil
}

func patientsCSV(patients []entity.User) (*bytes.Buffer, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "email", "full_name", "gender", "date_of_birth", "phone_number", "card_number", "registered_at"}); err != nil {
		return nil, err
	}

	for _, p := range patients {
		dob := ""
		if p.DateOfBirth != nil {
			dob = p.DateOfBirth.Format(time.DateOnly)
		}
		card := ""
		if p.CardNumber != nil {
			card = *p.CardNumber
		}

		if err := w.Write([]string{
			p.ID,
			p.Email,
			p.FullName,
			p.Gender.String(),
			dob,
			p.PhoneNumber,
			card,
			strconv.FormatInt(p.CreatedAt.Unix(), 10),
		}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return &buf, w.Error()
}
