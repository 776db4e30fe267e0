package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtrella/outlay/internal/model"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name: "service account",
			config: Config{
				ServiceAccountPath: "/etc/outlay/sa.json",
				SpreadsheetID:      "abc",
				SheetName:          "Expenses",
			},
		},
		{
			name: "oauth credentials",
			config: Config{
				ClientID:      "id",
				ClientSecret:  "secret",
				RefreshToken:  "token",
				SpreadsheetID: "abc",
				SheetName:     "Expenses",
			},
		},
		{
			name:    "no auth",
			config:  Config{SpreadsheetID: "abc", SheetName: "Expenses"},
			wantErr: "no authentication",
		},
		{
			name: "both auth methods",
			config: Config{
				ServiceAccountPath: "/etc/outlay/sa.json",
				ClientID:           "id",
				ClientSecret:       "secret",
				RefreshToken:       "token",
				SpreadsheetID:      "abc",
				SheetName:          "Expenses",
			},
			wantErr: "multiple authentication",
		},
		{
			name: "missing spreadsheet",
			config: Config{
				ServiceAccountPath: "/etc/outlay/sa.json",
				SheetName:          "Expenses",
			},
			wantErr: "spreadsheet ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestBuildRows(t *testing.T) {
	createdAt := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	expenses := []model.Expense{
		{
			CreatedAt:    createdAt,
			Description:  "Coffee at Starbucks USD 5.50",
			Category:     "Food",
			Amount:       5.50,
			CurrencyCode: "USD",
			Provenance:   model.ProvenanceAutoClassified,
			Confidence:   0.9,
		},
	}

	rows := buildRows(expenses)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], len(header))
	assert.Equal(t, "2026-03-15", rows[0][0])
	assert.Equal(t, "Food", rows[0][2])
	assert.Equal(t, 5.50, rows[0][3])
	assert.Equal(t, "AUTO_CLASSIFIED", rows[0][5])
}
