package repos

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"applestore/internal/domain"
)

// StringList is a []string stored as a JSON array.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(src any) error {
	return scanJSON(src, (*[]string)(s))
}

type SectionList []domain.Section

func (s SectionList) Value() (driver.Value, error) {
	b, err := json.Marshal([]domain.Section(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SectionList) Scan(src any) error {
	return scanJSON(src, (*[]domain.Section)(s))
}

type FinancingJSON domain.FinancingOptions

func (f FinancingJSON) Value() (driver.Value, error) {
	b, err := json.Marshal(domain.FinancingOptions(f))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FinancingJSON) Scan(src any) error {
	return scanJSON(src, (*domain.FinancingOptions)(f))
}

func scanJSON(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

// Timestamps are stored as RFC 3339 text in UTC.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", "2006-01-02T15:04:05.999999Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t := parseTime(*s)
	if t.IsZero() {
		return nil
	}
	return &t
}
