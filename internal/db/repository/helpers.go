// Package repository implements the domain repository interfaces using SQLite.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"teamgate/internal/domain"
)

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &domain.ConflictError{Message: "resource already exists"}
	}
	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return &domain.NotFoundError{Message: "referenced resource not found"}
	}
	return err
}

// userTables names the storage partition for one user kind: the user table
// and its membership and direct-permission join tables.
type userTables struct {
	users string
	teams string
	perms string
}

// tablesFor is the single dispatch point routing a principal kind to its
// storage partition. Table names are compile-time constants, never caller
// input.
func tablesFor(kind domain.PrincipalKind) (userTables, error) {
	switch kind {
	case domain.KindManaged:
		return userTables{"managed_users", "managed_user_teams", "managed_user_permissions"}, nil
	case domain.KindDirectory:
		return userTables{"directory_users", "directory_user_teams", "directory_user_permissions"}, nil
	case domain.KindOidc:
		return userTables{"oidc_users", "oidc_user_teams", "oidc_user_permissions"}, nil
	default:
		return userTables{}, domain.ErrValidation("no user storage partition for principal kind %q", kind)
	}
}
