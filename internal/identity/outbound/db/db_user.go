package db

import (
	"context"
	"strconv"

	"github.com/ogerihealth/healthrecord/internal/identity/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/goerror"
)

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

const userColumns = `id, email, full_name, role, gender, date_of_birth, phone_number, address, card_number, created_at, updated_at`

func (s *DB) scanUser(row interface{ Scan(dest ...any) error }) (*entity.User, error) {
	var (
		u    entity.User
		role string
		gen  string
	)

	err := row.Scan(&u.ID, &u.Email, &u.FullName, &role, &gen, &u.DateOfBirth,
		&u.PhoneNumber, &u.Address, &u.CardNumber, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	u.Role = entity.ParseRole(role)
	u.Gender = entity.ParseGender(gen)
	return &u, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (u *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	return s.scanUser(s.conn.QueryRow(ctx, query, email))
}

func (s *DB) GetUserByID(ctx context.Context, id string) (u *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return s.scanUser(s.conn.QueryRow(ctx, query, id))
}

func (s *DB) GetUserByCardNumber(ctx context.Context, number string) (u *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByCardNumber")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT ` + userColumns + ` FROM users WHERE card_number = $1 AND deleted_at IS NULL`
	return s.scanUser(s.conn.QueryRow(ctx, query, number))
}

func (s *DB) GetUserLoginInfo(ctx context.Context, email string) (info *entity.UserLoginInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetUserLoginInfo")
	defer func() { s.endSpan(span, err) }()

	query := `SELECT id, email, password, role FROM users WHERE email = $1 AND deleted_at IS NULL`

	var (
		row  entity.UserLoginInfo
		role string
	)
	if err = s.conn.QueryRow(ctx, query, email).Scan(&row.ID, &row.Email, &row.Password, &role); err != nil {
		return nil, s.mapError(err)
	}

	row.Role = entity.ParseRole(role)
	return &row, nil
}

func (s *DB) GetUserList(ctx context.Context, filter entity.UserListFilter) (users []entity.User, total int64, err error) {
	ctx, span := s.startSpan(ctx, "GetUserList")
	defer func() { s.endSpan(span, err) }()

	args := []any{filter.Role.String()}
	where := `WHERE role = $1 AND deleted_at IS NULL`
	if filter.IsFilterBySearch {
		args = append(args, "%"+filter.Search+"%")
		where += ` AND (full_name ILIKE $2 OR email ILIKE $2 OR card_number ILIKE $2)`
	}

	countQuery := `SELECT COUNT(*) FROM users ` + where
	if err = s.conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	query := `SELECT ` + userColumns + ` FROM users ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, filter.Size, filter.Offset)

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := s.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}

	return users, total, s.mapError(rows.Err())
}

func (s *DB) NewUser(ctx context.Context, user entity.NewUser, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "NewUser")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO users (id, email, full_name, password, role, gender, date_of_birth, phone_number, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.conn.Exec(ctx, query,
		user.ID, user.Email, user.FullName, passwordHash, user.Role.String(),
		user.Gender.String(), user.DateOfBirth, user.PhoneNumber, user.Address,
	)
	return s.mapError(err)
}

func (s *DB) UpdateUserPassword(ctx context.Context, id, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserPassword")
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := s.conn.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

func (s *DB) UpdateUserBiodata(ctx context.Context, id string, bio entity.Biodata) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserBiodata")
	defer func() { s.endSpan(span, err) }()

	query := `
		UPDATE users
		SET gender = $2, date_of_birth = $3, phone_number = $4, address = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := s.conn.Exec(ctx, query, id, bio.Gender.String(), bio.DateOfBirth, bio.PhoneNumber, bio.Address)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}

func (s *DB) UpdateUserRole(ctx context.Context, id string, role entity.Role) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserRole")
	defer func() { s.endSpan(span, err) }()

	query := `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := s.conn.Exec(ctx, query, id, role.String())
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}
