package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/principal"
	"github.com/trezcool/academia/storage/database"
)

const principalColumns = "id, role, username, name, full_name, phone_number, profile_picture, password_hash, semester"

var principalOrderings = map[string]string{
	"id":       "id",
	"username": "username",
	"name":     "name",
	"role":     "role",
}

type principalRepository struct {
	exec core.DBExecutor
}

var _ principal.Repository = (*principalRepository)(nil) // interface compliance check

func NewPrincipalRepository(exec core.DBExecutor) *principalRepository {
	return &principalRepository{exec: exec}
}

// trapNoRowsErr maps "no rows" err to principal.ErrNotFound
func (repo principalRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return principal.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo principalRepository) UsernameExists(ctx context.Context, username string, exec ...core.DBExecutor) (bool, error) {
	ex := getExec(repo.exec, exec)
	var exists bool
	q := ex.Rebind("SELECT EXISTS(SELECT 1 FROM principals WHERE username = ?)")
	if err := sqlx.GetContext(ctx, ex, &exists, q, username); err != nil {
		return false, errors.Wrap(err, "checking username")
	}
	return exists, nil
}

func (repo principalRepository) CreatePrincipal(ctx context.Context, p principal.Principal, exec ...core.DBExecutor) (principal.Principal, error) {
	ex := getExec(repo.exec, exec)
	q := ex.Rebind(`INSERT INTO principals (role, username, name, full_name, phone_number, profile_picture, password_hash, semester)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := ex.QueryRowxContext(ctx, q,
		string(p.Role), p.Username, p.Name, p.FullName, p.PhoneNumber, p.ProfilePicture, p.PasswordHash, p.Semester,
	).Scan(&p.ID)
	if err != nil {
		return principal.Principal{}, errors.Wrap(database.TranslateError(err), "inserting principal")
	}
	return p, nil
}

func (repo principalRepository) GetPrincipal(ctx context.Context, filter principal.GetFilter, exec ...core.DBExecutor) (principal.Principal, error) {
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if filter.ID != 0 {
		conds = append(conds, "id = ?")
		args = append(args, filter.ID)
	}
	if filter.Username != "" {
		conds = append(conds, "username = ?")
		args = append(args, filter.Username)
	}
	if len(conds) == 0 {
		return principal.Principal{}, principal.ErrNotFound
	}
	if filter.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, string(filter.Role))
	}

	ex := getExec(repo.exec, exec)
	q := ex.Rebind("SELECT " + principalColumns + " FROM principals WHERE " + strings.Join(conds, " AND "))
	var p principal.Principal
	if err := sqlx.GetContext(ctx, ex, &p, q, args...); err != nil {
		return principal.Principal{}, repo.trapNoRowsErr(err, "selecting principal")
	}
	return p, nil
}

func (repo principalRepository) QueryPrincipals(ctx context.Context, filter principal.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]principal.Principal, error) {
	q := "SELECT " + principalColumns + " FROM principals"
	var args []interface{}
	if len(filter.Roles) > 0 {
		roles := make([]string, 0, len(filter.Roles))
		for _, r := range filter.Roles {
			roles = append(roles, string(r))
		}
		var err error
		if q, args, err = sqlx.In(q+" WHERE role IN (?)", roles); err != nil {
			return nil, errors.Wrap(err, "building query")
		}
	}
	q += orderBy(ordering, principalOrderings, "id ASC")

	ex := getExec(repo.exec, exec)
	principals := make([]principal.Principal, 0)
	if err := sqlx.SelectContext(ctx, ex, &principals, ex.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting principals")
	}
	return principals, nil
}

func (repo principalRepository) UpdatePassword(ctx context.Context, id int, hash string, exec ...core.DBExecutor) error {
	ex := getExec(repo.exec, exec)
	res, err := ex.ExecContext(ctx, ex.Rebind("UPDATE principals SET password_hash = ? WHERE id = ?"), hash, id)
	if err != nil {
		return errors.Wrap(database.TranslateError(err), "updating password")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "updating password")
	} else if n == 0 {
		return principal.ErrNotFound
	}
	return nil
}
