package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// InputDateLayout: формат, в котором пользователь вводит дату: ДД.ММ.ГГГГ ЧЧ:ММ
	InputDateLayout = "02.01.2006 15:04"
	// StorageDateLayout: каноничное представление даты в хранилище.
	StorageDateLayout = "2006-01-02 15:04:05"
)

type Event struct {
	EventID     int64     `json:"event_id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OccursAt    time.Time `json:"occurs_at"`
	Location    string    `json:"location"`
	Link        string    `json:"link"`
}

var linkPattern = regexp.MustCompile(`(?i)^(https?://)?(www\.)?[a-z0-9-]+(\.[a-z0-9-]+)+(:\d+)?(/\S*)?$`)

func IsValidLink(link string) bool {
	return linkPattern.MatchString(strings.TrimSpace(link))
}

// LinkURL returns the link with a scheme so it can back a URL button.
func LinkURL(link string) string {
	link = strings.TrimSpace(link)
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return "https://" + link
}

func IsValidDate(date string) bool {
	_, err := ParseEventDate(date)
	return err == nil
}

// ParseEventDate parses user input in the strict "02.01.2006 15:04" layout.
// The result carries the wall clock as entered, in UTC.
func ParseEventDate(dateStr string) (time.Time, error) {
	parsed, err := time.ParseInLocation(InputDateLayout, strings.TrimSpace(dateStr), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, dateStr)
	}
	return parsed, nil
}

func FormatEventDate(t time.Time) string {
	return t.Format(InputDateLayout)
}

// FormatStorageDate normalizes t to the canonical storage representation.
func FormatStorageDate(t time.Time) string {
	return t.UTC().Format(StorageDateLayout)
}

func ParseStorageDate(value string) (time.Time, error) {
	return time.ParseInLocation(StorageDateLayout, value, time.UTC)
}

// Validate reports whether every user-supplied field of the event is populated and well formed.
func (e Event) Validate() error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("title is required")
	case strings.TrimSpace(e.Description) == "":
		return fmt.Errorf("description is required")
	case e.OccursAt.IsZero():
		return fmt.Errorf("occurs_at is required")
	case strings.TrimSpace(e.Location) == "":
		return fmt.Errorf("location is required")
	case !IsValidLink(e.Link):
		return ErrInvalidLink
	}
	return nil
}
