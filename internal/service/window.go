package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/persistorai/auditlens/internal/models"
)

// WindowUnit is the granularity a dashboard window is expressed in.
type WindowUnit struct {
	Name    string
	Step    time.Duration
	Default int
	Max     int
}

// Window units. Security and performance use hours, analytics uses days.
var (
	Hours = WindowUnit{Name: "hours", Step: time.Hour, Default: 24, Max: 8760}
	Days  = WindowUnit{Name: "days", Step: 24 * time.Hour, Default: 30, Max: 365}
)

// WindowSince resolves a raw windowSize into the window ending at now.
// Empty means the unit's default; anything non-numeric, non-positive, or
// above the unit's maximum is a FilterError on windowSize.
func WindowSince(now time.Time, raw string, unit WindowUnit) (models.Window, error) {
	size := unit.Default

	if raw = strings.TrimSpace(raw); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.Window{}, models.NewFilterError("windowSize", "must be a whole number of "+unit.Name)
		}
		if n <= 0 {
			return models.Window{}, models.NewFilterError("windowSize", "must be positive")
		}
		if n > unit.Max {
			return models.Window{}, models.NewFilterError("windowSize", fmt.Sprintf("must be at most %d %s", unit.Max, unit.Name))
		}
		size = n
	}

	now = now.UTC()

	return models.Window{
		Size:  size,
		Unit:  unit.Name,
		Since: now.Add(-time.Duration(size) * unit.Step),
		Until: now,
	}, nil
}
