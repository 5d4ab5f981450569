package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/edvin/backhaul/internal/model"
)

var (
	ErrUnknownKind       = errors.New("unknown schedule kind")
	ErrInvalidExpression = errors.New("invalid cron expression")
)

// exprParser accepts standard 5-field expressions and 6-field expressions
// with a leading seconds field.
var exprParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

const defaultTimeOfDay = "02:00"

// DeriveExpression translates a schedule definition into its cron trigger
// expression. Custom schedules pass their expression through verbatim;
// validation happens separately before a timer is armed.
func DeriveExpression(schedule *model.Schedule) (string, error) {
	switch schedule.Kind {
	case model.ScheduleDaily, model.ScheduleWeekly, model.ScheduleMonthly:
	case model.ScheduleCustom:
		return schedule.CronExpression, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, schedule.Kind)
	}

	hour, minute := parseTimeOfDay(schedule.TimeOfDay)

	switch schedule.Kind {
	case model.ScheduleDaily:
		return fmt.Sprintf("%d %d * * *", minute, hour), nil
	case model.ScheduleWeekly:
		day := 0 // Sunday
		if schedule.Day != nil {
			day = *schedule.Day
		}
		return fmt.Sprintf("%d %d * * %d", minute, hour, day), nil
	default: // monthly
		day := 1
		if schedule.Day != nil {
			day = *schedule.Day
		}
		return fmt.Sprintf("%d %d %d * *", minute, hour, day), nil
	}
}

// parseTimeOfDay splits "HH:MM", falling back to 02:00 when the value is
// absent or malformed.
func parseTimeOfDay(timeOfDay *string) (hour, minute int) {
	hour, minute = 2, 0
	if timeOfDay == nil || *timeOfDay == "" {
		return hour, minute
	}
	parts := strings.SplitN(*timeOfDay, ":", 2)
	if len(parts) != 2 {
		return 2, 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 2, 0
	}
	return h, m
}

// ValidateExpression checks field count (5 or 6 whitespace-separated
// fields) and then the cron grammar itself.
func ValidateExpression(expression string) error {
	fields := strings.Fields(expression)
	if len(fields) != 5 && len(fields) != 6 {
		return fmt.Errorf("%w: expected 5 or 6 fields, got %d", ErrInvalidExpression, len(fields))
	}
	if _, err := exprParser.Parse(expression); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return nil
}

// parseExpression returns the parsed schedule for a pre-validated
// expression.
func parseExpression(expression string) (cron.Schedule, error) {
	if err := ValidateExpression(expression); err != nil {
		return nil, err
	}
	return exprParser.Parse(expression)
}
