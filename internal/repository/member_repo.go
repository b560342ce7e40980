package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/tgyn-admin-api/internal/models"
)

// memberRepo is the concrete implementation of MemberRepository. The roster
// lives in the first worksheet of the members spreadsheet; header names vary
// between exports, so column discovery is forgiving.
type memberRepo struct {
	api           SheetAPI
	spreadsheetID string
}

// NewMemberRepo creates a new member repository
func NewMemberRepo(api SheetAPI, spreadsheetID string) MemberRepository {
	return &memberRepo{api: api, spreadsheetID: spreadsheetID}
}

// List returns the roster with salutations. Members with a blank name cell
// are skipped.
func (r *memberRepo) List(ctx context.Context) ([]*models.Member, error) {
	title, err := r.api.SheetTitle(ctx, r.spreadsheetID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve members worksheet: %w", err)
	}

	rows, err := r.api.ReadSheet(ctx, r.spreadsheetID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}
	if len(rows) == 0 {
		return []*models.Member{}, nil
	}

	// Build header map for flexible column lookup
	headerMap := make(map[string]int)
	for i, h := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(h))] = i
	}

	nameIdx := 0
	if idx, ok := headerMap["name"]; ok {
		nameIdx = idx
	}
	addrIdx := -1
	for _, key := range []string{"how to address", "how_to_address", "address"} {
		if idx, ok := headerMap[key]; ok {
			addrIdx = idx
			break
		}
	}

	members := make([]*models.Member, 0, len(rows))
	for _, row := range rows[1:] {
		name := strings.TrimSpace(cell(row, nameIdx))
		if name == "" {
			continue
		}
		switch strings.ToLower(name) {
		case "nan", "none":
			continue
		}

		addressAs := name
		if addrIdx >= 0 {
			if addr := strings.TrimSpace(cell(row, addrIdx)); addr != "" {
				addressAs = addr
			}
		}
		members = append(members, &models.Member{Name: name, AddressAs: addressAs})
	}
	return members, nil
}
