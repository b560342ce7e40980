package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/tgyn-admin-api/internal/models"
)

// usersSheet is the worksheet holding staff accounts
const usersSheet = "Users"

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	api           SheetAPI
	spreadsheetID string
}

// NewUserRepo creates a new user repository over the portal spreadsheet
func NewUserRepo(api SheetAPI, spreadsheetID string) UserRepository {
	return &userRepo{api: api, spreadsheetID: spreadsheetID}
}

// List returns every account in the Users worksheet
func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.api.ReadSheet(ctx, r.spreadsheetID, usersSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	users := make([]*models.User, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			// header row
			continue
		}
		username := strings.TrimSpace(cell(row, 0))
		if username == "" {
			continue
		}
		users = append(users, &models.User{
			Username: username,
			Password: cell(row, 1),
			Role:     strings.TrimSpace(cell(row, 2)),
			Email:    strings.TrimSpace(cell(row, 3)),
			Row:      i + 1,
		})
	}
	return users, nil
}

// GetByUsername returns the account matching the username, ignoring case
// and surrounding whitespace. A miss returns nil without error.
func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(strings.TrimSpace(username))
	for _, u := range users {
		if strings.ToLower(u.Username) == want {
			return u, nil
		}
	}
	return nil, nil
}

// UpdatePassword overwrites the password cell of the given worksheet row.
// The row is 1-indexed as reported by List.
func (r *userRepo) UpdatePassword(ctx context.Context, row int, password string) error {
	if row < 2 {
		return fmt.Errorf("refusing to write password to row %d", row)
	}
	return r.api.UpdateCell(ctx, r.spreadsheetID, usersSheet, row-1, 1, password)
}
