package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// NormalizeTagName trims name and checks its length.
func NormalizeTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is empty", common.ErrInvalidTagName)
	}
	if utf8.RuneCountInString(name) > models.MaxTagNameLength {
		return "", fmt.Errorf("%w: longer than %d characters", common.ErrInvalidTagName, models.MaxTagNameLength)
	}
	return name, nil
}

// NormalizeTagColor accepts RRGGBB with or without '#'. Empty input yields
// the default color.
func NormalizeTagColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return models.DefaultTagColor, nil
	}
	if !hexColor.MatchString(color) {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidTagColor, color)
	}
	return "#" + strings.ToUpper(strings.TrimPrefix(color, "#")), nil
}
