package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSession_ResetIsIdempotent(t *testing.T) {
	s := Session{UserID: "U1", Step: StepAwaitingTheme, Name: "花子", Birth: "1993-07-21", Theme: "恋愛運"}

	once := s.Reset()
	twice := once.Reset()

	if once != twice {
		t.Fatalf("reset not idempotent: %+v vs %+v", once, twice)
	}
	if !once.IsDefault() {
		t.Errorf("expected default session after reset, got %+v", once)
	}
	if once.UserID != "U1" {
		t.Errorf("reset must keep the user id, got %q", once.UserID)
	}
}

func TestSession_Validate(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{"default", NewSession("U1"), false},
		{"awaiting birth without birth", Session{Step: StepAwaitingBirth, Name: "花子"}, false},
		{"awaiting theme complete", Session{Step: StepAwaitingTheme, Name: "花子", Birth: "1993-07-21"}, false},
		{"awaiting theme missing birth", Session{Step: StepAwaitingTheme, Name: "花子"}, true},
		{"generating missing name", Session{Step: StepGenerating, Birth: "1993-07-21"}, true},
		{"out of range", Session{Step: Step(7)}, true},
		{"negative", Session{Step: Step(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidStep) {
				t.Errorf("expected ErrInvalidStep, got %v", err)
			}
		})
	}
}

func TestSession_JSONShape(t *testing.T) {
	s := Session{UserID: "U1", Step: StepAwaitingBirth, Name: "花子"}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"step":2,"name":"花子","birth":"","theme":""}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestStep_Valid(t *testing.T) {
	for s := StepStart; s <= StepGenerating; s++ {
		if !s.Valid() {
			t.Errorf("step %d should be valid", s)
		}
	}
	if Step(5).Valid() {
		t.Error("step 5 should be invalid")
	}
}

func TestParseTheme(t *testing.T) {
	for _, th := range Themes() {
		got, err := ParseTheme(string(th))
		if err != nil || got != th {
			t.Errorf("ParseTheme(%q) = %q, %v", th, got, err)
		}
	}

	if _, err := ParseTheme("宝くじ運"); !errors.Is(err, ErrInvalidTheme) {
		t.Errorf("expected ErrInvalidTheme, got %v", err)
	}
}
