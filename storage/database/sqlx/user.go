package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/user"
)

var userOrderFields = map[string]bool{
	"name": true, "username": true, "email": true, "created_at": true, "last_login": true,
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	q := `SELECT username, email FROM "user" WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]interface{}, len(excludedUsers))
		for i, usr := range excludedUsers {
			ids[i] = usr.ID
		}
		q += " AND id NOT IN (" + inPlaceholders(3, len(ids)) + ")"
		args = append(args, ids...)
	}

	rows, err := repo.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var uname, mail string
		if err = rows.Scan(&uname, &mail); err != nil {
			return errors.Wrap(err, "checking username uniqueness")
		}
		if username != "" && uname == username {
			return user.ErrUsernameExists
		}
		if mail == email {
			return user.ErrEmailExists
		}
	}
	return errors.Wrap(rows.Err(), "checking username uniqueness")
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO "user" (id, name, username, email, is_active, is_admin, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :name, :username, :email, :is_active, :is_admin, :password_hash, :created_at, :updated_at, :last_login)`,
		usr,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) getUser(ctx context.Context, where string, args ...interface{}) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE `+where, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, "id = $1", id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, "username = $1", username)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, "email = $1", email)
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, "username = $1 OR email = $1", username)
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	q := `SELECT * FROM "user" WHERE true`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			ph := arg("%" + filter.Search + "%")
			q += " AND (name ILIKE " + ph + " OR username ILIKE " + ph + " OR email ILIKE " + ph + ")"
		}
		if filter.IsActive != nil {
			q += " AND is_active = " + arg(*filter.IsActive)
		}
		if filter.IsAdmin != nil {
			q += " AND is_admin = " + arg(*filter.IsAdmin)
		}
		if !filter.CreatedFrom.IsZero() {
			q += " AND created_at >= " + arg(filter.CreatedFrom)
		}
		if !filter.CreatedTo.IsZero() {
			q += " AND created_at <= " + arg(filter.CreatedTo)
		}
	}
	q += orderByClause(ordering, userOrderFields)

	users := make([]user.User, 0)
	if err := repo.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive, isAdmin *bool) (user.User, error) {
	if isActive != nil {
		usr.IsActive = *isActive
	}
	if isAdmin != nil {
		usr.IsAdmin = *isAdmin
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE "user"
		SET name = :name, username = :username, email = :email, is_active = :is_active,
		    is_admin = :is_admin, password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id`,
		usr,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	_, err := repo.db.ExecContext(ctx, `UPDATE "user" SET last_login = $1 WHERE id = $2`, usr.LastLogin, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting last login")
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id IN (`+inPlaceholders(1, len(ids))+`)`, args...)
	return errors.Wrap(err, "deleting users")
}
