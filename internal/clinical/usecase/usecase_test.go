package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/ogerihealth/healthrecord/internal/clinical/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/instrument"
	"github.com/ogerihealth/healthrecord/internal/pkg/jwt"
	"github.com/ogerihealth/healthrecord/internal/pkg/validator"
	"github.com/ogerihealth/healthrecord/internal/shared/constant"
	verentity "github.com/ogerihealth/healthrecord/internal/verification/entity"
	verification "github.com/ogerihealth/healthrecord/internal/verification/usecase"
)

const (
	patientID = "2c2e9f3a-0000-7000-8000-000000000001"
	workerID  = "2c2e9f3a-0000-7000-8000-000000000002"
	adminID   = "2c2e9f3a-0000-7000-8000-000000000003"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type seqID struct{ next int64 }

func (s *seqID) Generate() int64 {
	s.next++
	return s.next
}

type fakeRepo struct {
	patients map[string]string
	readings map[int64]entity.BPReading
	consults map[int64]entity.Consultation

	allReadings []entity.BPReading

	lastBPFilter      entity.BPListFilter
	lastConsultFilter entity.ConsultationListFilter

	createReadingErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		patients: make(map[string]string),
		readings: make(map[int64]entity.BPReading),
		consults: make(map[int64]entity.Consultation),
	}
}

func (r *fakeRepo) GetPatientIDByEmail(_ context.Context, email string) (string, error) {
	id, ok := r.patients[email]
	if !ok {
		return "", goerror.ErrNotFound
	}
	return id, nil
}

func (r *fakeRepo) NewBPReading(_ context.Context, reading entity.BPReading) error {
	if r.createReadingErr != nil {
		return r.createReadingErr
	}
	r.readings[reading.ID] = reading
	return nil
}

func (r *fakeRepo) GetBPReading(_ context.Context, id int64) (*entity.BPReading, error) {
	reading, ok := r.readings[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &reading, nil
}

func (r *fakeRepo) GetBPReadings(_ context.Context, filter entity.BPListFilter) ([]entity.BPReading, int64, error) {
	r.lastBPFilter = filter
	return nil, 0, nil
}

func (r *fakeRepo) GetAllBPReadings(_ context.Context, _ string) ([]entity.BPReading, error) {
	return r.allReadings, nil
}

func (r *fakeRepo) UpdateBPReading(_ context.Context, reading entity.BPReading) error {
	if _, ok := r.readings[reading.ID]; !ok {
		return goerror.ErrNotFound
	}
	r.readings[reading.ID] = reading
	return nil
}

func (r *fakeRepo) NewConsultation(_ context.Context, c entity.Consultation) error {
	r.consults[c.ID] = c
	return nil
}

func (r *fakeRepo) GetConsultation(_ context.Context, id int64) (*entity.Consultation, error) {
	c, ok := r.consults[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &c, nil
}

func (r *fakeRepo) GetConsultations(_ context.Context, filter entity.ConsultationListFilter) ([]entity.Consultation, int64, error) {
	r.lastConsultFilter = filter
	return nil, 0, nil
}

func (r *fakeRepo) UpdateConsultation(_ context.Context, c entity.Consultation) error {
	if _, ok := r.consults[c.ID]; !ok {
		return goerror.ErrNotFound
	}
	r.consults[c.ID] = c
	return nil
}

func (r *fakeRepo) NewMedicationRecord(_ context.Context, _ entity.MedicationRecord) error {
	return nil
}

func (r *fakeRepo) GetMedicationRecords(_ context.Context, _ string) ([]entity.MedicationRecord, error) {
	return nil, nil
}

func (r *fakeRepo) UpsertHealthWorkerProfile(_ context.Context, _ entity.HealthWorkerProfile) error {
	return nil
}

func (r *fakeRepo) GetHealthWorkerProfile(_ context.Context, _ string) (*entity.HealthWorkerProfile, error) {
	return nil, goerror.ErrNotFound
}

type fakeOTP struct {
	issued   []verification.IssueInput
	issueErr error

	consumed   []verification.VerifyInput
	consumeErr error
	expiresAt  time.Time
}

func (o *fakeOTP) Issue(_ context.Context, in verification.IssueInput) (*verification.IssueOutput, error) {
	if o.issueErr != nil {
		return nil, o.issueErr
	}
	o.issued = append(o.issued, in)
	return &verification.IssueOutput{Email: in.Email, ExpiresAt: o.expiresAt}, nil
}

func (o *fakeOTP) Consume(ctx context.Context, in verification.VerifyInput, action func(ctx context.Context) error) error {
	if o.consumeErr != nil {
		return o.consumeErr
	}
	if err := action(ctx); err != nil {
		return err
	}
	o.consumed = append(o.consumed, in)
	return nil
}

func testEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()

	const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		t.Fatalf("failed to build casbin model: %v", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("failed to build enforcer: %v", err)
	}

	policies := [][]string{
		{"role:patient", constant.PermClinicalRecords, constant.PermActRead},
		{"role:patient", constant.PermClinicalRecords, constant.PermActWrite},
		{"role:patient", constant.PermClinicalConsults, constant.PermActRead},

		{"role:health_worker", constant.PermClinicalRecords, constant.PermActRead},
		{"role:health_worker", constant.PermClinicalRecords, constant.PermActManage},
		{"role:health_worker", constant.PermClinicalConsults, constant.PermActRead},
		{"role:health_worker", constant.PermClinicalConsults, constant.PermActWrite},

		{"role:admin", "*", "*"},
	}
	if _, err := e.AddPolicies(policies); err != nil {
		t.Fatalf("failed to seed policies: %v", err)
	}

	return e
}

type fixture struct {
	uc    *Usecase
	repo  *fakeRepo
	otp   *fakeOTP
	clock *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	repo := newFakeRepo()
	clk := &fakeClock{now: time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)}
	otp := &fakeOTP{expiresAt: clk.now.Add(15 * time.Minute)}

	uc := New(Dependency{
		RepoDB:     repo,
		OTP:        otp,
		Validator:  v,
		UID:        &seqID{},
		Clock:      clk,
		Instrument: instrument.NewNoop(),
		Enforcer:   testEnforcer(t),
	})

	return &fixture{uc: uc, repo: repo, otp: otp, clock: clk}
}

func asRole(userID, role string) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID, UserRole: role})
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.StatusCode() != status {
		t.Fatalf("status = %d, want %d (error: %v)", gerr.StatusCode(), status, err)
	}
}

func TestBPRecordStoresOwnReading(t *testing.T) {
	f := newFixture(t)
	ctx := asRole(patientID, "patient")

	out, err := f.uc.BPRecord(ctx, BPRecordInput{Systolic: 120, Diastolic: 80, PulseRate: 72})
	if err != nil {
		t.Fatalf("BPRecord() error = %v", err)
	}

	if out.PatientID != patientID || out.RecordedBy != patientID {
		t.Fatalf("reading must belong to the caller, got %+v", out)
	}
	if !out.RecordedAt.Equal(f.clock.now) {
		t.Fatalf("recorded_at = %v, want clock time %v", out.RecordedAt, f.clock.now)
	}
	if _, ok := f.repo.readings[out.ID]; !ok {
		t.Fatal("reading was not persisted")
	}
}

func TestBPRecordRequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.BPRecord(context.Background(), BPRecordInput{Systolic: 120, Diastolic: 80})
	wantStatus(t, err, 401)
}

func TestBPRecordRejectsStaff(t *testing.T) {
	f := newFixture(t)
	ctx := asRole(adminID, "admin")

	_, err := f.uc.BPRecord(ctx, BPRecordInput{Systolic: 120, Diastolic: 80})
	wantStatus(t, err, 403)
}

func TestBPRecordRejectsFutureTime(t *testing.T) {
	f := newFixture(t)
	ctx := asRole(patientID, "patient")

	future := f.clock.now.Add(time.Hour)
	_, err := f.uc.BPRecord(ctx, BPRecordInput{Systolic: 120, Diastolic: 80, RecordedAt: &future})
	wantStatus(t, err, 400)
}

func TestBPListScopesPatientToSelf(t *testing.T) {
	f := newFixture(t)
	ctx := asRole(patientID, "patient")

	// A patient asking for someone else's readings still only gets their own.
	if _, err := f.uc.BPList(ctx, BPListInput{PatientID: "someone-else"}); err != nil {
		t.Fatalf("BPList() error = %v", err)
	}
	if f.repo.lastBPFilter.PatientID != patientID {
		t.Fatalf("filter patient = %q, want %q", f.repo.lastBPFilter.PatientID, patientID)
	}
}

func TestBPListRequiresPatientIDForStaff(t *testing.T) {
	f := newFixture(t)
	ctx := asRole(workerID, "health_worker")

	_, err := f.uc.BPList(ctx, BPListInput{})
	wantStatus(t, err, 400)
}

func TestBPDetailHidesForeignReading(t *testing.T) {
	f := newFixture(t)
	f.repo.readings[7] = entity.BPReading{ID: 7, PatientID: "someone-else"}

	_, err := f.uc.BPDetail(asRole(patientID, "patient"), BPDetailInput{ID: 7})
	wantStatus(t, err, 404)
}

func TestSummarizeLatestByMeasurementTime(t *testing.T) {
	base := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)

	// The most recent measurement sits in the middle of the slice; insertion
	// order must not decide which reading is latest.
	readings := []entity.BPReading{
		{ID: 1, Systolic: 120, Diastolic: 80, RecordedAt: base},
		{ID: 2, Systolic: 140, Diastolic: 90, RecordedAt: base.Add(48 * time.Hour)},
		{ID: 3, Systolic: 130, Diastolic: 85, RecordedAt: base.Add(24 * time.Hour)},
	}

	out := summarize(readings)

	if out.Count != 3 {
		t.Fatalf("count = %d, want 3", out.Count)
	}
	if out.AverageSystolic != 130 || out.AverageDiastolic != 85 {
		t.Fatalf("averages = %v/%v, want 130/85", out.AverageSystolic, out.AverageDiastolic)
	}
	if out.Latest == nil || out.Latest.ID != 2 {
		t.Fatalf("latest = %+v, want reading 2", out.Latest)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	out := summarize(nil)

	if out.Count != 0 || out.Latest != nil {
		t.Fatalf("empty summary = %+v, want zero values", out)
	}
}

func TestBPAuthorizeIssuesPatientCode(t *testing.T) {
	f := newFixture(t)
	ctx := asRole(workerID, "health_worker")
	dob := time.Date(1990, time.May, 12, 0, 0, 0, 0, time.UTC)

	out, err := f.uc.BPAuthorize(ctx, BPAuthorizeInput{PatientEmail: "ada@example.com", DateOfBirth: dob})
	if err != nil {
		t.Fatalf("BPAuthorize() error = %v", err)
	}

	if len(f.otp.issued) != 1 {
		t.Fatalf("expected 1 issued code, got %d", len(f.otp.issued))
	}
	issued := f.otp.issued[0]
	if issued.Purpose != verentity.PurposeBPAuthorization || issued.Email != "ada@example.com" {
		t.Fatalf("unexpected issue input: %+v", issued)
	}
	if issued.DateOfBirth == nil || !issued.DateOfBirth.Equal(dob) {
		t.Fatalf("date of birth not forwarded: %+v", issued.DateOfBirth)
	}
	if !out.ExpiresAt.Equal(f.otp.expiresAt) {
		t.Fatalf("expiry = %v, want %v", out.ExpiresAt, f.otp.expiresAt)
	}
}

func TestBPAuthorizeForbiddenForPatients(t *testing.T) {
	f := newFixture(t)
	ctx := asRole(patientID, "patient")

	_, err := f.uc.BPAuthorize(ctx, BPAuthorizeInput{
		PatientEmail: "ada@example.com",
		DateOfBirth:  time.Date(1990, time.May, 12, 0, 0, 0, 0, time.UTC),
	})
	wantStatus(t, err, 403)
}

func TestBPRecordForPatientPersistsThenConsumes(t *testing.T) {
	f := newFixture(t)
	f.repo.patients["ada@example.com"] = patientID
	ctx := asRole(workerID, "health_worker")

	out, err := f.uc.BPRecordForPatient(ctx, BPRecordForPatientInput{
		PatientEmail: "ada@example.com",
		Code:         "111111",
		Systolic:     135,
		Diastolic:    88,
	})
	if err != nil {
		t.Fatalf("BPRecordForPatient() error = %v", err)
	}

	if out.PatientID != patientID || out.RecordedBy != workerID {
		t.Fatalf("reading attribution wrong: %+v", out)
	}
	if _, ok := f.repo.readings[out.ID]; !ok {
		t.Fatal("reading was not persisted")
	}
	if len(f.otp.consumed) != 1 || f.otp.consumed[0].Code != "111111" {
		t.Fatalf("consumed = %+v, want the submitted code", f.otp.consumed)
	}
	if f.otp.consumed[0].Purpose != verentity.PurposeBPAuthorization {
		t.Fatalf("purpose = %v, want bp authorization", f.otp.consumed[0].Purpose)
	}
}

func TestBPRecordForPatientFailedInsertKeepsCode(t *testing.T) {
	f := newFixture(t)
	f.repo.patients["ada@example.com"] = patientID
	f.repo.createReadingErr = errors.New("connection reset")
	ctx := asRole(workerID, "health_worker")

	_, err := f.uc.BPRecordForPatient(ctx, BPRecordForPatientInput{
		PatientEmail: "ada@example.com",
		Code:         "111111",
		Systolic:     135,
		Diastolic:    88,
	})
	if !errors.Is(err, f.repo.createReadingErr) {
		t.Fatalf("BPRecordForPatient() error = %v, want the insert error", err)
	}

	// The failed insert must leave the code unconsumed for a retry.
	if len(f.otp.consumed) != 0 {
		t.Fatalf("code consumed despite failed insert: %+v", f.otp.consumed)
	}
}

func TestBPRecordForPatientUnknownPatient(t *testing.T) {
	f := newFixture(t)
	ctx := asRole(workerID, "health_worker")

	_, err := f.uc.BPRecordForPatient(ctx, BPRecordForPatientInput{
		PatientEmail: "ghost@example.com",
		Code:         "111111",
		Systolic:     135,
		Diastolic:    88,
	})
	wantStatus(t, err, 404)

	if len(f.otp.consumed) != 0 {
		t.Fatal("no code may be consumed for an unknown patient")
	}
}

func TestConsultationUpdateOnlyConductingWorker(t *testing.T) {
	f := newFixture(t)
	f.repo.consults[5] = entity.Consultation{ID: 5, PatientID: patientID, HealthWorkerID: workerID}

	other := asRole("2c2e9f3a-0000-7000-8000-000000000009", "health_worker")
	err := f.uc.ConsultationUpdate(other, ConsultationUpdateInput{ID: 5, Diagnosis: "hypertension"})
	wantStatus(t, err, 404)

	// Admins amend any visit.
	if err := f.uc.ConsultationUpdate(asRole(adminID, "admin"), ConsultationUpdateInput{ID: 5, Diagnosis: "hypertension"}); err != nil {
		t.Fatalf("admin ConsultationUpdate() error = %v", err)
	}
	if f.repo.consults[5].Diagnosis != "hypertension" {
		t.Fatal("diagnosis was not updated")
	}
}

func TestConsultationListScopes(t *testing.T) {
	f := newFixture(t)

	if _, err := f.uc.ConsultationList(asRole(patientID, "patient"), ConsultationListInput{PatientID: "someone-else"}); err != nil {
		t.Fatalf("patient ConsultationList() error = %v", err)
	}
	if f.repo.lastConsultFilter.PatientID != patientID {
		t.Fatalf("patient filter = %+v, want own history", f.repo.lastConsultFilter)
	}

	if _, err := f.uc.ConsultationList(asRole(workerID, "health_worker"), ConsultationListInput{}); err != nil {
		t.Fatalf("worker ConsultationList() error = %v", err)
	}
	if f.repo.lastConsultFilter.HealthWorkerID != workerID {
		t.Fatalf("worker filter = %+v, want own visits", f.repo.lastConsultFilter)
	}
}
