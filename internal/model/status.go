package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Status values are closed variants. Text from clients and the database is
// parsed once, case-insensitively; anything unknown is an ErrValidation.

func parseName(names []string, kind, s string) (int, error) {
	s = strings.TrimSpace(s)
	for i, name := range names {
		if i > 0 && strings.EqualFold(name, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrValidation, kind, s)
}

func scanName(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot scan %T into status", src)
	}
}

// RentalStatus is the lifecycle state of a rental.
type RentalStatus uint8

const (
	RentalPending RentalStatus = iota + 1
	RentalActive
	RentalEnded
	RentalTerminated
	RentalRejected
)

var rentalStatusNames = []string{"", "pending", "active", "ended", "terminated", "rejected"}

// ParseRentalStatus parses a rental status name.
func ParseRentalStatus(s string) (RentalStatus, error) {
	i, err := parseName(rentalStatusNames, "rental status", s)
	return RentalStatus(i), err
}

func (s RentalStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("RentalStatus(%d)", uint8(s))
	}
	return rentalStatusNames[s]
}

// Valid reports whether s is one of the declared statuses.
func (s RentalStatus) Valid() bool { return s >= RentalPending && s <= RentalRejected }

// Closed reports whether s carries an end date (ended or terminated).
func (s RentalStatus) Closed() bool { return s == RentalEnded || s == RentalTerminated }

// Terminal reports whether no transition leaves s.
func (s RentalStatus) Terminal() bool { return s != RentalPending && s != RentalActive }

func (s RentalStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid rental status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *RentalStatus) UnmarshalText(b []byte) error {
	v, err := ParseRentalStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s RentalStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid rental status %d", uint8(s))
	}
	return s.String(), nil
}

func (s *RentalStatus) Scan(src any) error {
	name, err := scanName(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(name))
}

// PropertyStatus is the availability of a property.
type PropertyStatus uint8

const (
	PropertyAvailable PropertyStatus = iota + 1
	PropertyRented
	PropertyReserved
	PropertyMaintenance
)

var propertyStatusNames = []string{"", "available", "rented", "reserved", "maintenance"}

// ParsePropertyStatus parses a property status name.
func ParsePropertyStatus(s string) (PropertyStatus, error) {
	i, err := parseName(propertyStatusNames, "property status", s)
	return PropertyStatus(i), err
}

func (s PropertyStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("PropertyStatus(%d)", uint8(s))
	}
	return propertyStatusNames[s]
}

// Valid reports whether s is one of the declared statuses.
func (s PropertyStatus) Valid() bool { return s >= PropertyAvailable && s <= PropertyMaintenance }

func (s PropertyStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid property status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *PropertyStatus) UnmarshalText(b []byte) error {
	v, err := ParsePropertyStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s PropertyStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid property status %d", uint8(s))
	}
	return s.String(), nil
}

func (s *PropertyStatus) Scan(src any) error {
	name, err := scanName(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(name))
}

// InquiryStatus is the handling state of an inquiry.
type InquiryStatus uint8

const (
	InquiryNew InquiryStatus = iota + 1
	InquiryAccepted
	InquiryRejected
	InquiryConverted
)

var inquiryStatusNames = []string{"", "new", "accepted", "rejected", "converted"}

// ParseInquiryStatus parses an inquiry status name.
func ParseInquiryStatus(s string) (InquiryStatus, error) {
	i, err := parseName(inquiryStatusNames, "inquiry status", s)
	return InquiryStatus(i), err
}

func (s InquiryStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("InquiryStatus(%d)", uint8(s))
	}
	return inquiryStatusNames[s]
}

// Valid reports whether s is one of the declared statuses.
func (s InquiryStatus) Valid() bool { return s >= InquiryNew && s <= InquiryConverted }

func (s InquiryStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid inquiry status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *InquiryStatus) UnmarshalText(b []byte) error {
	v, err := ParseInquiryStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s InquiryStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid inquiry status %d", uint8(s))
	}
	return s.String(), nil
}

func (s *InquiryStatus) Scan(src any) error {
	name, err := scanName(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(name))
}
