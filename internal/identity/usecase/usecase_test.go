package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/ogerihealth/healthrecord/internal/identity/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
	"github.com/ogerihealth/healthrecord/internal/pkg/instrument"
	"github.com/ogerihealth/healthrecord/internal/pkg/jwt"
	"github.com/ogerihealth/healthrecord/internal/pkg/validator"
	"github.com/ogerihealth/healthrecord/internal/shared/constant"
	verentity "github.com/ogerihealth/healthrecord/internal/verification/entity"
	verification "github.com/ogerihealth/healthrecord/internal/verification/usecase"
)

const (
	adaID   = "2c2e9f3a-0000-7000-8000-000000000001"
	adminID = "2c2e9f3a-0000-7000-8000-000000000003"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type seqID struct{ next int64 }

func (s *seqID) Generate() int64 {
	s.next++
	return s.next
}

type fixedUUID struct{ id string }

func (f *fixedUUID) Generate() string { return f.id }

type fakeHash struct{}

func (fakeHash) Hash(str string) ([]byte, error) { return []byte("h:" + str), nil }

func (fakeHash) Verify(hashed, str string) bool { return hashed == "h:"+str }

type fakeJWT struct{ err error }

func (f *fakeJWT) Generate(uid, email, role string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token:" + uid + ":" + role, nil
}

func (f *fakeJWT) Verify(string) (jwt.Claims, error) { return jwt.Claims{}, errors.New("unused") }

type fakeRepo struct {
	users     map[string]entity.User
	passwords map[string]string

	assignResults []any // string numbers or errors, consumed in order
	passwordErr   error
	roleUpdated   map[string]entity.Role
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       make(map[string]entity.User),
		passwords:   make(map[string]string),
		roleUpdated: make(map[string]entity.Role),
	}
}

func (r *fakeRepo) addUser(u entity.User, password string) {
	r.users[u.ID] = u
	r.passwords[u.ID] = "h:" + password
}

func (r *fakeRepo) GetUserLoginInfo(_ context.Context, email string) (*entity.UserLoginInfo, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &entity.UserLoginInfo{ID: u.ID, Email: u.Email, Password: r.passwords[u.ID], Role: u.Role}, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}

func (r *fakeRepo) GetUserByCardNumber(_ context.Context, number string) (*entity.User, error) {
	for _, u := range r.users {
		if u.CardNumber != nil && *u.CardNumber == number {
			return &u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserList(_ context.Context, _ entity.UserListFilter) ([]entity.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeRepo) NewUser(_ context.Context, user entity.NewUser, passwordHash string) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return goerror.ErrConflict
		}
	}
	r.users[user.ID] = entity.User{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role,
		Gender:      user.Gender,
		DateOfBirth: user.DateOfBirth,
	}
	r.passwords[user.ID] = passwordHash
	return nil
}

func (r *fakeRepo) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	if r.passwordErr != nil {
		return r.passwordErr
	}
	if _, ok := r.users[id]; !ok {
		return goerror.ErrNotFound
	}
	r.passwords[id] = passwordHash
	return nil
}

func (r *fakeRepo) UpdateUserBiodata(_ context.Context, id string, bio entity.Biodata) error {
	u, ok := r.users[id]
	if !ok {
		return goerror.ErrNotFound
	}
	u.Gender = bio.Gender
	u.DateOfBirth = bio.DateOfBirth
	u.PhoneNumber = bio.PhoneNumber
	u.Address = bio.Address
	r.users[id] = u
	return nil
}

func (r *fakeRepo) UpdateUserRole(_ context.Context, id string, role entity.Role) error {
	u, ok := r.users[id]
	if !ok {
		return goerror.ErrNotFound
	}
	u.Role = role
	r.users[id] = u
	r.roleUpdated[id] = role
	return nil
}

func (r *fakeRepo) CreateCardNumbers(_ context.Context, cards []entity.CardNumber) (int64, error) {
	return int64(len(cards)), nil
}

func (r *fakeRepo) AssignCardNumber(_ context.Context, userID string) (string, error) {
	if len(r.assignResults) == 0 {
		return "", goerror.ErrNotFound
	}
	next := r.assignResults[0]
	r.assignResults = r.assignResults[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	number := next.(string)
	u := r.users[userID]
	u.CardNumber = &number
	r.users[userID] = u
	return number, nil
}

type fakeMessaging struct {
	published []UserRegisteredEvent
	err       error
}

func (m *fakeMessaging) PublishUserRegistered(_ context.Context, msg UserRegisteredEvent) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

type fakeOTP struct {
	issued   []verification.IssueInput
	verified []verification.VerifyInput
	consumed []verification.VerifyInput

	issueErr   error
	verifyErr  error
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

func (o *fakeOTP) Verify(_ context.Context, in verification.VerifyInput) error {
	if o.verifyErr != nil {
		return o.verifyErr
	}
	o.verified = append(o.verified, in)
	return nil
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
		{"role:health_worker", constant.PermIdentityUsers, constant.PermActRead},
		{"role:health_worker", constant.PermIdentityCards, constant.PermActRead},
		{"role:admin", "*", "*"},
	}
	if _, err := e.AddPolicies(policies); err != nil {
		t.Fatalf("failed to seed policies: %v", err)
	}

	return e
}

type fixture struct {
	uc        *Usecase
	repo      *fakeRepo
	otp       *fakeOTP
	messaging *fakeMessaging
	jwt       *fakeJWT
	clock     *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	repo := newFakeRepo()
	otp := &fakeOTP{expiresAt: time.Date(2026, time.March, 9, 12, 10, 0, 0, time.UTC)}
	messaging := &fakeMessaging{}
	fjwt := &fakeJWT{}
	clk := &fakeClock{now: time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)}

	uc := New(Dependency{
		RepoDB:        repo,
		RepoMessaging: messaging,
		OTP:           otp,
		Validator:     v,
		Bcrypt:        fakeHash{},
		UUID:          &fixedUUID{id: adaID},
		UID:           &seqID{},
		Clock:         clk,
		JWT:           fjwt,
		Instrument:    instrument.NewNoop(),
		Enforcer:      testEnforcer(t),
	})

	return &fixture{uc: uc, repo: repo, otp: otp, messaging: messaging, jwt: fjwt, clock: clk}
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

func ada() entity.User {
	return entity.User{ID: adaID, Email: "ada@example.com", FullName: "Ada Obi", Role: entity.RolePatient}
}

func TestRegisterCreatesPatient(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.Register(context.Background(), RegisterInput{
		Email:    "  Ada@Example.com ",
		Password: "s3cret-enough",
		FullName: "Ada Obi",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	stored := f.repo.users[out.UserID]
	if stored.Email != "ada@example.com" {
		t.Fatalf("email = %q, want normalized lowercase", stored.Email)
	}
	if stored.Role != entity.RolePatient {
		t.Fatalf("role = %v, every registration starts as a patient", stored.Role)
	}
	if f.repo.passwords[out.UserID] == "s3cret-enough" {
		t.Fatal("password must be stored hashed")
	}

	if len(f.messaging.published) != 1 || f.messaging.published[0].Email != "ada@example.com" {
		t.Fatalf("published = %+v, want one registration event", f.messaging.published)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "whatever-pass")

	_, err := f.uc.Register(context.Background(), RegisterInput{
		Email:    "ada@example.com",
		Password: "s3cret-enough",
		FullName: "Ada Obi",
	})
	wantStatus(t, err, 409)
}

func TestRegisterSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.messaging.err = errors.New("nats: connection closed")

	// The account exists either way; the welcome email is best effort.
	out, err := f.uc.Register(context.Background(), RegisterInput{
		Email:    "ada@example.com",
		Password: "s3cret-enough",
		FullName: "Ada Obi",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, ok := f.repo.users[out.UserID]; !ok {
		t.Fatal("user was not persisted")
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "s3cret-enough")

	out, err := f.uc.Login(context.Background(), LoginInput{Email: "Ada@Example.com", Password: "s3cret-enough"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if out.AccessToken != "token:"+adaID+":patient" {
		t.Fatalf("token = %q", out.AccessToken)
	}
	if out.Role != "patient" || out.UserID != adaID {
		t.Fatalf("unexpected login output: %+v", out)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "s3cret-enough")

	_, err := f.uc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "wrong-password"})
	wantStatus(t, err, 401)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	// Unknown account and wrong password are indistinguishable to the caller.
	_, err := f.uc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "s3cret-enough"})
	wantStatus(t, err, 401)
}

func TestPasswordForgotIssuesResetCode(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.PasswordForgot(context.Background(), PasswordForgotInput{Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("PasswordForgot() error = %v", err)
	}

	if len(f.otp.issued) != 1 || f.otp.issued[0].Purpose != verentity.PurposePasswordReset {
		t.Fatalf("issued = %+v, want one password reset code", f.otp.issued)
	}
	if !out.ExpiresAt.Equal(f.otp.expiresAt) {
		t.Fatalf("expiry = %v, want %v", out.ExpiresAt, f.otp.expiresAt)
	}
}

func TestPasswordVerifyOTPDoesNotConsume(t *testing.T) {
	f := newFixture(t)

	if err := f.uc.PasswordVerifyOTP(context.Background(), PasswordVerifyInput{Email: "ada@example.com", Code: "111111"}); err != nil {
		t.Fatalf("PasswordVerifyOTP() error = %v", err)
	}

	if len(f.otp.verified) != 1 {
		t.Fatalf("verified = %+v, want one check", f.otp.verified)
	}
	if len(f.otp.consumed) != 0 {
		t.Fatal("the pre-check must not burn the code")
	}
}

func TestPasswordResetUpdatesThenConsumes(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "old-password")

	err := f.uc.PasswordReset(context.Background(), PasswordResetInput{
		Email:       "Ada@Example.com",
		Code:        "111111",
		NewPassword: "brand-new-pass",
	})
	if err != nil {
		t.Fatalf("PasswordReset() error = %v", err)
	}

	if f.repo.passwords[adaID] != "h:brand-new-pass" {
		t.Fatalf("password = %q, want the new hash", f.repo.passwords[adaID])
	}
	if len(f.otp.consumed) != 1 || f.otp.consumed[0].Purpose != verentity.PurposePasswordReset {
		t.Fatalf("consumed = %+v, want the reset code", f.otp.consumed)
	}
}

func TestPasswordResetFailedUpdateKeepsCode(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "old-password")
	f.repo.passwordErr = errors.New("connection reset")

	err := f.uc.PasswordReset(context.Background(), PasswordResetInput{
		Email:       "ada@example.com",
		Code:        "111111",
		NewPassword: "brand-new-pass",
	})
	if err == nil {
		t.Fatal("PasswordReset() must surface the failed update")
	}

	if len(f.otp.consumed) != 0 {
		t.Fatal("code consumed despite the failed password update")
	}
	if f.repo.passwords[adaID] != "h:old-password" {
		t.Fatal("old password must survive the failed reset")
	}
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.uc.PasswordReset(context.Background(), PasswordResetInput{
		Email:       "ghost@example.com",
		Code:        "111111",
		NewPassword: "brand-new-pass",
	})
	wantStatus(t, err, 404)
}

func TestRoleChange(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "whatever-pass")

	err := f.uc.RoleChange(asRole(adminID, "admin"), RoleChangeInput{UserID: adaID, Role: "health_worker"})
	if err != nil {
		t.Fatalf("RoleChange() error = %v", err)
	}
	if f.repo.users[adaID].Role != entity.RoleHealthWorker {
		t.Fatalf("role = %v, want health_worker", f.repo.users[adaID].Role)
	}
}

func TestRoleChangeRejectsSelf(t *testing.T) {
	f := newFixture(t)
	admin := entity.User{ID: adminID, Email: "root@example.com", FullName: "Root Admin", Role: entity.RoleAdmin}
	f.repo.addUser(admin, "whatever-pass")

	err := f.uc.RoleChange(asRole(adminID, "admin"), RoleChangeInput{UserID: adminID, Role: "patient"})
	wantStatus(t, err, 403)
}

func TestRoleChangeSameRoleIsNoop(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "whatever-pass")

	if err := f.uc.RoleChange(asRole(adminID, "admin"), RoleChangeInput{UserID: adaID, Role: "patient"}); err != nil {
		t.Fatalf("RoleChange() error = %v", err)
	}
	if _, ok := f.repo.roleUpdated[adaID]; ok {
		t.Fatal("no update may be issued when the role is unchanged")
	}
}

func TestRoleChangeForbiddenForWorkers(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "whatever-pass")

	err := f.uc.RoleChange(asRole("worker-1", "health_worker"), RoleChangeInput{UserID: adaID, Role: "admin"})
	wantStatus(t, err, 403)
}

func TestCardGenerate(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.CardGenerate(asRole(adminID, "admin"), CardGenerateInput{Count: 10})
	if err != nil {
		t.Fatalf("CardGenerate() error = %v", err)
	}
	if out.Requested != 10 || out.Created == 0 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestCardAssign(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "whatever-pass")
	f.repo.assignResults = []any{"OHF-1A2B3C4D"}

	out, err := f.uc.CardAssign(asRole(adminID, "admin"), CardAssignInput{UserID: adaID})
	if err != nil {
		t.Fatalf("CardAssign() error = %v", err)
	}
	if out.CardNumber != "OHF-1A2B3C4D" {
		t.Fatalf("card = %q", out.CardNumber)
	}
}

func TestCardAssignRetriesOnRace(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "whatever-pass")

	// Two concurrent assignments grabbed the same row first; the retry must
	// pick a fresh one.
	f.repo.assignResults = []any{goerror.ErrConflict, goerror.ErrConflict, "OHF-99887766"}

	out, err := f.uc.CardAssign(asRole(adminID, "admin"), CardAssignInput{UserID: adaID})
	if err != nil {
		t.Fatalf("CardAssign() error = %v", err)
	}
	if out.CardNumber != "OHF-99887766" {
		t.Fatalf("card = %q", out.CardNumber)
	}
}

func TestCardAssignEmptyPool(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(ada(), "whatever-pass")

	_, err := f.uc.CardAssign(asRole(adminID, "admin"), CardAssignInput{UserID: adaID})
	wantStatus(t, err, 409)
}

func TestCardAssignRejectsSecondCard(t *testing.T) {
	f := newFixture(t)
	holder := ada()
	number := "OHF-EXISTING"
	holder.CardNumber = &number
	f.repo.addUser(holder, "whatever-pass")

	_, err := f.uc.CardAssign(asRole(adminID, "admin"), CardAssignInput{UserID: adaID})
	wantStatus(t, err, 409)
}

func TestCardAssignRejectsStaff(t *testing.T) {
	f := newFixture(t)
	worker := ada()
	worker.Role = entity.RoleHealthWorker
	f.repo.addUser(worker, "whatever-pass")

	_, err := f.uc.CardAssign(asRole(adminID, "admin"), CardAssignInput{UserID: adaID})
	wantStatus(t, err, 422)
}

func TestCardVerify(t *testing.T) {
	f := newFixture(t)
	holder := ada()
	number := "OHF-1A2B3C4D"
	holder.CardNumber = &number
	f.repo.addUser(holder, "whatever-pass")

	out, err := f.uc.CardVerify(asRole("worker-1", "health_worker"), CardVerifyInput{CardNumber: " ohf-1a2b3c4d "})
	if err != nil {
		t.Fatalf("CardVerify() error = %v", err)
	}
	if out.PatientID != adaID || out.FullName != "Ada Obi" {
		t.Fatalf("unexpected holder: %+v", out)
	}
}

func TestCardVerifyUnknownCard(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CardVerify(asRole("worker-1", "health_worker"), CardVerifyInput{CardNumber: "OHF-00000000"})
	wantStatus(t, err, 404)
}
