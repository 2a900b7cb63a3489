package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogerihealth/healthrecord/internal/pkg/config"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/hash"
	"github.com/ogerihealth/healthrecord/internal/pkg/idempotency"
	"github.com/ogerihealth/healthrecord/internal/pkg/instrument"
	"github.com/ogerihealth/healthrecord/internal/pkg/validator"
	"github.com/ogerihealth/healthrecord/internal/verification/entity"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type seqID struct{ next int64 }

func (s *seqID) Generate() int64 {
	s.next++
	return s.next
}

type seqCodes struct {
	codes []string
	idx   int
}

func (s *seqCodes) Generate() (string, error) {
	if s.idx >= len(s.codes) {
		return "999999", nil
	}
	c := s.codes[s.idx]
	s.idx++
	return c, nil
}

type passIdemp struct{}

func (passIdemp) Exec(ctx context.Context, _ string, fn func(context.Context) error, _ ...idempotency.Option) error {
	return fn(ctx)
}

type stubConfig struct{ config.Config }

func (stubConfig) GetMinute(key string) time.Duration {
	if key == "modules.verification.bp_authorization_ttl_minutes" {
		return 15 * time.Minute
	}
	return 10 * time.Minute
}

type fakeRepo struct {
	accounts  map[string]entity.Account
	codes     map[string]entity.OneTimeCode
	deleteRes *bool
	deleteErr error
}

func newFakeRepo(accounts ...entity.Account) *fakeRepo {
	r := &fakeRepo{
		accounts: make(map[string]entity.Account),
		codes:    make(map[string]entity.OneTimeCode),
	}
	for _, a := range accounts {
		r.accounts[a.Email] = a
	}
	return r
}

func codeKey(email string, p entity.Purpose) string { return email + "|" + p.String() }

func (r *fakeRepo) GetAccountByEmail(_ context.Context, email string) (*entity.Account, error) {
	a, ok := r.accounts[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &a, nil
}

func (r *fakeRepo) GetCode(_ context.Context, email string, p entity.Purpose) (*entity.OneTimeCode, error) {
	c, ok := r.codes[codeKey(email, p)]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &c, nil
}

func (r *fakeRepo) UpsertCode(_ context.Context, code entity.OneTimeCode) error {
	r.codes[codeKey(code.Email, code.Purpose)] = code
	return nil
}

func (r *fakeRepo) DeleteCodeIfMatch(_ context.Context, email string, p entity.Purpose, codeHash string) (bool, error) {
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	if r.deleteRes != nil {
		return *r.deleteRes, nil
	}
	c, ok := r.codes[codeKey(email, p)]
	if !ok || c.CodeHash != codeHash {
		return false, nil
	}
	delete(r.codes, codeKey(email, p))
	return true, nil
}

type sentMail struct {
	to      string
	purpose entity.Purpose
	code    string
	ttl     time.Duration
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendCode(_ context.Context, to entity.Account, p entity.Purpose, code string, ttl time.Duration) error {
	m.sent = append(m.sent, sentMail{to: to.Email, purpose: p, code: code, ttl: ttl})
	return m.err
}

type fixture struct {
	uc     *Usecase
	repo   *fakeRepo
	mailer *fakeMailer
	clock  *fakeClock
	codes  *seqCodes
}

func dob(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newFixture(t *testing.T, accounts ...entity.Account) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	repo := newFakeRepo(accounts...)
	mailer := &fakeMailer{}
	clk := &fakeClock{now: time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)}
	codes := &seqCodes{codes: []string{"111111", "222222", "333333"}}

	uc := New(Dependency{
		RepoDB:      repo,
		RepoMail:    mailer,
		Idempotency: passIdemp{},
		Validator:   v,
		Config:      stubConfig{},
		HMAC:        hash.NewHMACSHA256("test-secret"),
		Codes:       codes,
		UID:         &seqID{},
		Clock:       clk,
		Instrument:  instrument.NewNoop(),
	})

	return &fixture{uc: uc, repo: repo, mailer: mailer, clock: clk, codes: codes}
}

func patient(email string) entity.Account {
	return entity.Account{
		ID:          "2c2e9f3a-0000-7000-8000-000000000001",
		Email:       email,
		FullName:    "Ada Obi",
		Role:        "patient",
		DateOfBirth: dob(1990, time.May, 12),
	}
}

func TestIssueStoresHashAndSendsCode(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	out, err := f.uc.Issue(ctx, IssueInput{Email: "Ada@Example.com", Purpose: entity.PurposePasswordReset})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(f.mailer.sent))
	}
	sent := f.mailer.sent[0]
	if sent.code != "111111" || sent.to != "ada@example.com" {
		t.Fatalf("unexpected delivery: %+v", sent)
	}

	stored := f.repo.codes[codeKey("ada@example.com", entity.PurposePasswordReset)]
	if stored.CodeHash == "" || stored.CodeHash == sent.code {
		t.Fatalf("code must be stored hashed, got %q", stored.CodeHash)
	}

	wantExpiry := f.clock.now.Add(10 * time.Minute)
	if !out.ExpiresAt.Equal(wantExpiry) || !stored.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expiry = %v, want %v", out.ExpiresAt, wantExpiry)
	}

	if err := f.uc.Verify(ctx, VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "111111"}); err != nil {
		t.Fatalf("Verify() after issue error = %v", err)
	}
}

func TestIssueUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Issue(context.Background(), IssueInput{Email: "ghost@example.com", Purpose: entity.PurposePasswordReset})
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("Issue() error = %v, want ErrRecipientNotFound", err)
	}
}

func TestIssueBPAuthorizationTTL(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))

	out, err := f.uc.Issue(context.Background(), IssueInput{
		Email:       "ada@example.com",
		Purpose:     entity.PurposeBPAuthorization,
		DateOfBirth: dob(1990, time.May, 12),
	})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if want := f.clock.now.Add(15 * time.Minute); !out.ExpiresAt.Equal(want) {
		t.Fatalf("expiry = %v, want %v", out.ExpiresAt, want)
	}
}

func TestIssueBPAuthorizationRejectsNonPatient(t *testing.T) {
	worker := patient("worker@example.com")
	worker.Role = "health_worker"
	f := newFixture(t, worker)

	_, err := f.uc.Issue(context.Background(), IssueInput{Email: "worker@example.com", Purpose: entity.PurposeBPAuthorization})
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("Issue() error = %v, want ErrRecipientNotFound", err)
	}
}

func TestIssueBPAuthorizationRequiresDateOfBirth(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))

	// Omitting the second factor must not bypass the check.
	_, err := f.uc.Issue(context.Background(), IssueInput{Email: "ada@example.com", Purpose: entity.PurposeBPAuthorization})
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("Issue() error = %v, want ErrRecipientNotFound", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("no code may be delivered without a date of birth, sent %d", len(f.mailer.sent))
	}
}

func TestIssueBPAuthorizationRejectsDateOfBirthMismatch(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))

	_, err := f.uc.Issue(context.Background(), IssueInput{
		Email:       "ada@example.com",
		Purpose:     entity.PurposeBPAuthorization,
		DateOfBirth: dob(1991, time.May, 12),
	})
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("Issue() error = %v, want ErrRecipientNotFound", err)
	}
}

func TestIssueDeliveryFailureKeepsCode(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	f.mailer.err = errors.New("smtp connection refused")
	ctx := context.Background()

	_, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("Issue() error = %v, want ErrDeliveryFailed", err)
	}

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.StatusCode() != 500 {
		t.Fatalf("delivery failure must surface as a server error, got %v", err)
	}

	// The stored code survives the failed delivery.
	if err := f.uc.Verify(ctx, VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "111111"}); err != nil {
		t.Fatalf("Verify() after failed delivery error = %v", err)
	}
}

func TestIssueSupersedesPreviousCode(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()
	in := IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}

	if _, err := f.uc.Issue(ctx, in); err != nil {
		t.Fatalf("first Issue() error = %v", err)
	}
	if _, err := f.uc.Issue(ctx, in); err != nil {
		t.Fatalf("second Issue() error = %v", err)
	}

	if err := f.uc.Verify(ctx, VerifyInput{Email: in.Email, Purpose: in.Purpose, Code: "111111"}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("Verify() superseded code error = %v, want ErrInvalidCode", err)
	}
	if err := f.uc.Verify(ctx, VerifyInput{Email: in.Email, Purpose: in.Purpose, Code: "222222"}); err != nil {
		t.Fatalf("Verify() latest code error = %v", err)
	}
}

func TestVerifyWrongCode(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	if _, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	err := f.uc.Verify(ctx, VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "654321"})
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("Verify() error = %v, want ErrInvalidCode", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	if _, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	f.clock.now = f.clock.now.Add(10*time.Minute + time.Second)

	err := f.uc.Verify(ctx, VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "111111"})
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("Verify() error = %v, want ErrCodeExpired", err)
	}
}

func TestVerifyExpiryBoundaryIsExclusive(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	if _, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Exactly at expiry the code is already dead.
	f.clock.now = f.clock.now.Add(10 * time.Minute)

	err := f.uc.Verify(ctx, VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "111111"})
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("Verify() error = %v, want ErrCodeExpired", err)
	}
}

func TestVerifyWrongCodeBeatsExpiry(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	if _, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	f.clock.now = f.clock.now.Add(time.Hour)

	// The stored code is long expired, but the mismatch must win.
	err := f.uc.Verify(ctx, VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "654321"})
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("Verify() error = %v, want ErrInvalidCode", err)
	}
}

func TestVerifyDoesNotConsume(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	if _, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	in := VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "111111"}
	for range 3 {
		if err := f.uc.Verify(ctx, in); err != nil {
			t.Fatalf("repeated Verify() error = %v", err)
		}
	}
}

func TestConsumeRunsActionThenDeletes(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	if _, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var ran bool
	in := VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "111111"}
	if err := f.uc.Consume(ctx, in, func(context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if !ran {
		t.Fatal("bound action did not run")
	}

	// Single use: a second consume with the same code is rejected.
	err := f.uc.Consume(ctx, in, func(context.Context) error { return nil })
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("second Consume() error = %v, want ErrInvalidCode", err)
	}
}

func TestConsumeActionErrorKeepsCode(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	if _, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	actionErr := errors.New("password update rejected")
	in := VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "111111"}

	err := f.uc.Consume(ctx, in, func(context.Context) error { return actionErr })
	if !errors.Is(err, actionErr) {
		t.Fatalf("Consume() error = %v, want the action error unchanged", err)
	}

	// The code survives a failed action and the whole consume can be retried.
	if err := f.uc.Consume(ctx, in, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("retried Consume() error = %v", err)
	}
}

func TestConsumeExpiredCodeSkipsAction(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	if _, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	f.clock.now = f.clock.now.Add(time.Hour)

	var ran bool
	in := VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "111111"}
	err := f.uc.Consume(ctx, in, func(context.Context) error {
		ran = true
		return nil
	})
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("Consume() error = %v, want ErrCodeExpired", err)
	}
	if ran {
		t.Fatal("bound action must not run for an expired code")
	}
}

func TestConsumeToleratesConcurrentSupersession(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	if _, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Another issuance won the race between verify and delete; zero rows
	// deleted must not fail the call because the action already succeeded.
	noRows := false
	f.repo.deleteRes = &noRows

	in := VerifyInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset, Code: "111111"}
	if err := f.uc.Consume(ctx, in, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
}

func TestPurposesAreIsolated(t *testing.T) {
	f := newFixture(t, patient("ada@example.com"))
	ctx := context.Background()

	if _, err := f.uc.Issue(ctx, IssueInput{Email: "ada@example.com", Purpose: entity.PurposePasswordReset}); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// The password reset code cannot authorize a blood pressure reading.
	err := f.uc.Verify(ctx, VerifyInput{Email: "ada@example.com", Purpose: entity.PurposeBPAuthorization, Code: "111111"})
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("Verify() cross-purpose error = %v, want ErrInvalidCode", err)
	}
}
