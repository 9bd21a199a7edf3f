// Package command decodes the argument text of bot commands.
package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/fenggwsx/ReminderBot/internal/storage"
)

// DateLayout is the day-month-year hour:minute format accepted by /register.
const DateLayout = "02-01-2006 15:04"

// DefaultListAmount is used when /list does not specify an amount.
const DefaultListAmount = 10

// ErrMalformed is returned when the argument text does not follow the command grammar.
var ErrMalformed = errors.New("malformed command")

// RegisterPayload is the decoded argument of /register.
type RegisterPayload struct {
	Date    time.Time
	Title   string
	Message string
}

// ParseRegisterPayload splits "date|title|message" and parses the date.
func ParseRegisterPayload(text string) (RegisterPayload, error) {
	parts := strings.Split(text, "|")
	if len(parts) != 3 {
		return RegisterPayload{}, errors.Wrapf(ErrMalformed, "expected 3 segments, got %d", len(parts))
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return RegisterPayload{}, errors.Wrapf(ErrMalformed, "date %q", strings.TrimSpace(parts[0]))
	}
	return RegisterPayload{
		Date:    date,
		Title:   strings.TrimSpace(parts[1]),
		Message: strings.TrimSpace(parts[2]),
	}, nil
}

// ParseListPayload decodes "[amount] [filter]". An amount of 0 means all events.
func ParseListPayload(text string) (int, storage.DateFilter, error) {
	args := strings.Fields(text)
	switch len(args) {
	case 0:
		return DefaultListAmount, storage.DateFilterFuture, nil
	case 1:
		if amount, err := parseAmount(args[0]); err == nil {
			if amount == 0 {
				return 0, storage.DateFilterNone, nil
			}
			return amount, storage.DateFilterFuture, nil
		}
		filter, err := parseFilter(args[0])
		if err != nil {
			return 0, "", err
		}
		return DefaultListAmount, filter, nil
	case 2:
		amount, err := parseAmount(args[0])
		if err != nil {
			return 0, "", err
		}
		filter, err := parseFilter(args[1])
		if err != nil {
			return 0, "", err
		}
		return amount, filter, nil
	default:
		return 0, "", errors.Wrapf(ErrMalformed, "expected at most 2 arguments, got %d", len(args))
	}
}

// ParseEventID decodes the argument of /event.
func ParseEventID(text string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformed, "event id %q", strings.TrimSpace(text))
	}
	return id, nil
}

func parseAmount(token string) (int, error) {
	if strings.EqualFold(token, "all") {
		return 0, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformed, "amount %q", token)
	}
	if n < 0 {
		n = -n
	}
	// -MinInt overflows back to itself.
	if n < 0 {
		return 0, errors.Wrapf(ErrMalformed, "amount %q out of range", token)
	}
	return n, nil
}

func parseFilter(token string) (storage.DateFilter, error) {
	switch storage.DateFilter(token) {
	case storage.DateFilterPast, storage.DateFilterFuture:
		return storage.DateFilter(token), nil
	}
	return "", errors.Wrapf(ErrMalformed, "filter %q", token)
}
