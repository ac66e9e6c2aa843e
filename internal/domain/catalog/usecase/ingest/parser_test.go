package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	broadcastentities "github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	catalogerrors "github.com/RaShaimardanov/franky/internal/domain/catalog/errors"
)

func TestParseLink(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		roleName    string
		releaseType broadcastentities.ReleaseType
		date        string
		comment     string
	}{
		{
			name:        "full form",
			text:        "14.03.15 (Фрагмент) Бабушка",
			roleName:    "Бабушка",
			releaseType: broadcastentities.ReleaseTypeFragment,
			date:        "2015-03-14",
		},
		{
			name:        "no type",
			text:        "01.09.12 Учительница музыки",
			roleName:    "Учительница музыки",
			releaseType: broadcastentities.ReleaseTypeFull,
			date:        "2012-09-01",
		},
		{
			name:        "type case-insensitive",
			text:        "31.12.19 (праздник) Дед Мороз",
			roleName:    "Дед Мороз",
			releaseType: broadcastentities.ReleaseTypeFestival,
			date:        "2019-12-31",
		},
		{
			name:        "year token",
			text:        "=2009= Дедушка",
			roleName:    "Дедушка",
			releaseType: broadcastentities.ReleaseTypeFull,
			comment:     "=2009=",
		},
		{
			name:        "impossible date",
			text:        "31.02.15 Директор",
			roleName:    "Директор",
			releaseType: broadcastentities.ReleaseTypeFull,
			comment:     "31.02.15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseLink("  " + tt.text + " ")
			require.NoError(t, err)

			assert.Equal(t, tt.roleName, parsed.RoleName)
			assert.Equal(t, tt.releaseType, parsed.ReleaseType)

			if tt.date != "" {
				require.NotNil(t, parsed.ReleaseDate)
				assert.Equal(t, tt.date, parsed.ReleaseDate.Format(time.DateOnly))
				assert.Nil(t, parsed.Comment)
			} else {
				assert.Nil(t, parsed.ReleaseDate)
				require.NotNil(t, parsed.Comment)
				assert.Equal(t, tt.comment, *parsed.Comment)
			}
		})
	}
}

func TestParseLink_Invalid(t *testing.T) {
	for _, text := range []string{
		"",
		"Бабушка",
		"2015 Бабушка",
		"14.03.15 (Концерт) Бабушка",
	} {
		_, err := ParseLink(text)
		assert.ErrorIs(t, err, catalogerrors.ErrInvalidLink, text)
	}
}

func TestParseLink_TruncatesLongNames(t *testing.T) {
	parsed, err := ParseLink("14.03.15 " + strings.Repeat("я", 200))
	require.NoError(t, err)
	assert.Equal(t, maxTextLength, len([]rune(parsed.RoleName)))
}
