package setup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/coinsight/config"
)

func TestAnswers_ConfigTmp(t *testing.T) {
	a := defaultAnswers()
	a.input = "listing.json"
	a.top = "3"

	conf, err := a.configTmp().Config()
	require.NoError(t, err)

	assert.Equal(t, "listing.json", conf.Input)
	assert.Equal(t, 3, conf.Top)
	assert.Equal(t, config.DefaultLookbackDays, conf.LookbackDays)
	assert.Equal(t, int64(0), conf.Seed)
	assert.Equal(t, config.OutputTable, conf.Output)
}

func TestValidators(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "listing.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0o644))

	tests := []struct {
		name    string
		fn      func(string) error
		input   string
		wantErr bool
	}{
		{"input ok", validateInput, file, false},
		{"input empty", validateInput, "", true},
		{"input missing", validateInput, filepath.Join(dir, "nope.json"), true},
		{"input directory", validateInput, dir, true},
		{"positive ok", validatePositive, "90", false},
		{"positive zero", validatePositive, "0", true},
		{"positive text", validatePositive, "ninety", true},
		{"non-negative zero", validateNonNegative, "0", false},
		{"non-negative negative", validateNonNegative, "-1", true},
		{"seed ok", validateSeed, "-42", false},
		{"seed float", validateSeed, "4.2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
