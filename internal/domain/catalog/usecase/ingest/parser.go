package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	broadcastentities "github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/entities"
	catalogerrors "github.com/RaShaimardanov/franky/internal/domain/catalog/errors"
)

// ReleaseDateLayout is the date format used in link texts
const ReleaseDateLayout = "02.01.06"

const maxTextLength = 128

var linkPattern = regexp.MustCompile(`^(?P<release_date>\d{2}\.\d{2}\.\d{2}|=\d{4}=)\s*(\((?P<release_type>[^)]+)\)\s*)?(?P<role_name>.+)$`)

// ParseLink extracts catalog fields from a link text like "14.03.15 (Фрагмент) Бабушка"
func ParseLink(text string) (*entities.ParsedLink, error) {
	text = strings.TrimSpace(text)
	match := linkPattern.FindStringSubmatch(text)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", catalogerrors.ErrInvalidLink, text)
	}

	groups := make(map[string]string, 3)
	for i, name := range linkPattern.SubexpNames() {
		if name != "" {
			groups[name] = match[i]
		}
	}

	roleName := strings.TrimSpace(groups["role_name"])
	if roleName == "" {
		return nil, fmt.Errorf("%w: empty role name in %q", catalogerrors.ErrInvalidLink, text)
	}

	parsed := &entities.ParsedLink{
		RoleName:    truncate(roleName, maxTextLength),
		ReleaseType: broadcastentities.ReleaseTypeFull,
	}

	if label := groups["release_type"]; label != "" {
		releaseType, ok := broadcastentities.ParseReleaseType(label)
		if !ok {
			return nil, fmt.Errorf("%w: unknown release type %q", catalogerrors.ErrInvalidLink, label)
		}
		parsed.ReleaseType = releaseType
	}

	token := groups["release_date"]
	if date, err := time.Parse(ReleaseDateLayout, token); err == nil {
		parsed.ReleaseDate = &date
	} else {
		parsed.Comment = &token
	}

	return parsed, nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
