package db

import (
	"context"

	"github.com/otavioph/otpbank/internal/auth/entity"
)

const queryGetUserByEmail = `
SELECT id, full_name, email, password, created_at, updated_at
FROM users
WHERE email = $1
`

func (s *DB) GetUserByEmail(ctx context.Context, email string) (out *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	err = s.conn.QueryRow(ctx, queryGetUserByEmail, email).Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &u, nil
}

const queryGetUserByID = `
SELECT id, full_name, email, password, created_at, updated_at
FROM users
WHERE id = $1
`

func (s *DB) GetUserByID(ctx context.Context, id int64) (out *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	err = s.conn.QueryRow(ctx, queryGetUserByID, id).Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &u, nil
}

const queryCreateUser = `
INSERT INTO users (id, full_name, email, password)
VALUES ($1, $2, $3, $4)
RETURNING id, full_name, email, password, created_at, updated_at
`

func (s *DB) CreateUser(ctx context.Context, in entity.User) (out *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	err = s.conn.QueryRow(ctx, queryCreateUser, s.uid.Generate(), in.FullName, in.Email, in.Password).Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &u, nil
}
