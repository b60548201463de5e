package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRentalStatus(t *testing.T) {
	tests := []struct {
		in   string
		want RentalStatus
		ok   bool
	}{
		{"pending", RentalPending, true},
		{"Active", RentalActive, true},
		{"  ENDED ", RentalEnded, true},
		{"terminated", RentalTerminated, true},
		{"rejected", RentalRejected, true},
		{"", 0, false},
		{"approved", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseRentalStatus(tt.in)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("ParseRentalStatus(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, ErrValidation) {
			t.Errorf("ParseRentalStatus(%q) error = %v, want ErrValidation", tt.in, err)
		}
	}
}

func TestRentalStatusPredicates(t *testing.T) {
	for _, s := range []RentalStatus{RentalEnded, RentalTerminated} {
		if !s.Closed() || !s.Terminal() {
			t.Errorf("%v should be closed and terminal", s)
		}
	}
	if RentalRejected.Closed() {
		t.Error("rejected rentals carry no end date")
	}
	if !RentalRejected.Terminal() {
		t.Error("rejected should be terminal")
	}
	for _, s := range []RentalStatus{RentalPending, RentalActive} {
		if s.Terminal() {
			t.Errorf("%v should not be terminal", s)
		}
	}
	if RentalStatus(0).Valid() || RentalStatus(42).Valid() {
		t.Error("out-of-range values must be invalid")
	}
}

func TestStatusJSON(t *testing.T) {
	var v struct {
		Rental   RentalStatus   `json:"rental"`
		Property PropertyStatus `json:"property"`
		Inquiry  InquiryStatus  `json:"inquiry"`
	}
	if err := json.Unmarshal([]byte(`{"rental":"ACTIVE","property":"Maintenance","inquiry":"converted"}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.Rental != RentalActive || v.Property != PropertyMaintenance || v.Inquiry != InquiryConverted {
		t.Errorf("unexpected decode: %+v", v)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"rental":"active","property":"maintenance","inquiry":"converted"}`
	if string(out) != want {
		t.Errorf("Marshal = %s, want %s", out, want)
	}

	if err := json.Unmarshal([]byte(`{"rental":"borrowed"}`), &v); err == nil {
		t.Error("expected error for unknown rental status")
	}
}

func TestStatusScan(t *testing.T) {
	var s PropertyStatus
	if err := s.Scan([]byte("rented")); err != nil || s != PropertyRented {
		t.Errorf("Scan([]byte) = %v, %v", s, err)
	}
	if err := s.Scan(int64(1)); err == nil {
		t.Error("expected error scanning integer")
	}
	if _, err := PropertyStatus(0).Value(); err == nil {
		t.Error("expected error valuing zero status")
	}
}
