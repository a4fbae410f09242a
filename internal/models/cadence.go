package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
)

// Cadence is the closed set of retention policies.
type Cadence uint8

const (
	CadenceNever Cadence = iota
	CadenceEvery24Hours
	CadenceEvery3Days
	CadenceEveryWeek
	CadenceEveryMonth
)

type cadenceInfo struct {
	key      string
	display  string
	duration time.Duration
	aliases  []string
}

var cadences = [...]cadenceInfo{
	CadenceNever:        {key: "never", display: "Never", aliases: []string{"off", "none"}},
	CadenceEvery24Hours: {key: "every_24_hours", display: "Every 24 hours", duration: 24 * time.Hour, aliases: []string{"24h", "1d", "daily"}},
	CadenceEvery3Days:   {key: "every_3_days", display: "Every 3 days", duration: 3 * 24 * time.Hour, aliases: []string{"3d", "72h"}},
	CadenceEveryWeek:    {key: "every_week", display: "Every week", duration: 7 * 24 * time.Hour, aliases: []string{"7d", "1w", "weekly"}},
	CadenceEveryMonth:   {key: "every_month", display: "Every month", duration: 30 * 24 * time.Hour, aliases: []string{"30d", "monthly"}},
}

// Cadences lists every value in ascending duration order.
func Cadences() []Cadence {
	return []Cadence{CadenceNever, CadenceEvery24Hours, CadenceEvery3Days, CadenceEveryWeek, CadenceEveryMonth}
}

func (c Cadence) valid() bool {
	return int(c) < len(cadences)
}

// String returns the canonical storage key.
func (c Cadence) String() string {
	if !c.valid() {
		return fmt.Sprintf("cadence(%d)", uint8(c))
	}
	return cadences[c].key
}

// Display returns the human-readable label.
func (c Cadence) Display() string {
	if !c.valid() {
		return c.String()
	}
	return cadences[c].display
}

// Duration returns the age threshold; zero for CadenceNever.
func (c Cadence) Duration() time.Duration {
	if !c.valid() {
		return 0
	}
	return cadences[c].duration
}

// Enabled reports whether the cadence triggers any purge.
func (c Cadence) Enabled() bool {
	return c.valid() && c != CadenceNever
}

// ParseCadence converts user input into a Cadence. It accepts canonical keys,
// display labels and short aliases, ignoring case and surrounding space.
// It belongs to the command layer; stores only ever see canonical keys.
func ParseCadence(s string) (Cadence, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	for i, info := range cadences {
		if in == info.key || in == strings.ToLower(info.display) {
			return Cadence(i), nil
		}
		for _, a := range info.aliases {
			if in == a {
				return Cadence(i), nil
			}
		}
	}
	return CadenceNever, fmt.Errorf("%w: %q", common.ErrInvalidCadence, s)
}

func cadenceFromKey(key string) (Cadence, error) {
	for i, info := range cadences {
		if key == info.key {
			return Cadence(i), nil
		}
	}
	return CadenceNever, fmt.Errorf("%w: stored value %q", common.ErrInvalidCadence, key)
}

// Value implements driver.Valuer.
func (c Cadence) Value() (driver.Value, error) {
	if !c.valid() {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidCadence, uint8(c))
	}
	return c.String(), nil
}

// Scan implements sql.Scanner. Only canonical keys are accepted.
func (c *Cadence) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = CadenceNever
		return nil
	case string:
		parsed, err := cadenceFromKey(v)
		*c = parsed
		return err
	case []byte:
		parsed, err := cadenceFromKey(string(v))
		*c = parsed
		return err
	default:
		return fmt.Errorf("unsupported cadence column type %T", src)
	}
}
