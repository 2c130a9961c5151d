// Package common provides shared utilities used across CLI and server packages.
package common

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidTicketNumber is returned when a ticket number doesn't match the expected format.
var ErrInvalidTicketNumber = errors.New("invalid ticket number format (expected PREFIX-NUMBER)")

// ticketNumberRegex validates ticket numbers like "GT-062" or "TM-01"
var ticketNumberRegex = regexp.MustCompile(`^([A-Z][A-Z0-9]*)-(\d+)$`)

// FormatTicketNumber renders a counter value as a fixed-width ticket number,
// e.g. FormatTicketNumber("GT", 62) == "GT-062".
func FormatTicketNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

// ParseTicketNumber parses a ticket number like "GT-062" into prefix and number.
// Input is trimmed and upper-cased first.
func ParseTicketNumber(ref string) (prefix string, number int, err error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))

	matches := ticketNumberRegex.FindStringSubmatch(ref)
	if matches == nil {
		return "", 0, ErrInvalidTicketNumber
	}
	number, err = strconv.Atoi(matches[2])
	if err != nil {
		return "", 0, ErrInvalidTicketNumber
	}
	return matches[1], number, nil
}

// ParseTicketRef interprets a user-supplied ticket reference. A plain
// positive integer is a ticket id; anything else must be a ticket number.
func ParseTicketRef(ref string) (id int64, number string, err error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil && n > 0 {
		return n, "", nil
	}
	if _, _, err := ParseTicketNumber(ref); err != nil {
		return 0, "", err
	}
	return 0, strings.ToUpper(ref), nil
}
