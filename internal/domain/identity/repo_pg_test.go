package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeRow feeds canned column values to a scan helper. Like pgx it
// refuses to place NULL anywhere but a pointer destination.
type fakeRow struct{ values []any }

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r.values) {
		return fmt.Errorf("expected %d destinations, got %d", len(r.values), len(dest))
	}
	for i, v := range r.values {
		d := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			if d.Kind() != reflect.Pointer {
				return fmt.Errorf("cannot scan NULL into %T", dest[i])
			}
			d.Set(reflect.Zero(d.Type()))
			continue
		}
		d.Set(reflect.ValueOf(v))
	}
	return nil
}

// Profiles are inserted without a picture, so the column is NULL until
// the first upload. Reading such a row must not fail.
func TestScanProfiles_NullPicture(t *testing.T) {
	id, accountID := uuid.New(), uuid.New()
	now := time.Now()

	t.Run("patient", func(t *testing.T) {
		p, err := scanPatient(fakeRow{values: []any{
			id, accountID, "Amine", "Ben Salah", "", nil,
			"patient@example.com", "", "", false, "", nil,
			now, now,
		}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ProfilePicture != "" {
			t.Fatalf("expected empty picture, got %q", p.ProfilePicture)
		}
		if p.DOB != nil {
			t.Fatalf("expected nil dob, got %v", p.DOB)
		}
	})

	t.Run("doctor", func(t *testing.T) {
		d, err := scanDoctor(fakeRow{values: []any{
			id, accountID, "Amine", "Ben Salah", "doctor@example.com", "", "",
			"cardiology", "", "", VerificationPending, nil,
			now, now,
		}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.ProfilePicture != "" {
			t.Fatalf("expected empty picture, got %q", d.ProfilePicture)
		}
	})

	t.Run("laboratory", func(t *testing.T) {
		l, err := scanLaboratory(fakeRow{values: []any{
			id, accountID, "BioLab", "lab@example.com", "", "", []string{"lipid panel"},
			"", VerificationPending, nil, now, now,
		}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.ProfilePicture != "" {
			t.Fatalf("expected empty picture, got %q", l.ProfilePicture)
		}
	})

	t.Run("imaging", func(t *testing.T) {
		s, err := scanImaging(fakeRow{values: []any{
			id, accountID, "RadioCenter", "imaging@example.com", "", "", []string{"MRI"},
			nil, now, now,
		}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.ProfilePicture != "" {
			t.Fatalf("expected empty picture, got %q", s.ProfilePicture)
		}
	})
}

// The CHECK constraint in the profiles migration must accept every
// status SetVerificationStatus can write.
func TestProfilesMigration_VerificationStatuses(t *testing.T) {
	ddl, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "002_profiles.sql"))
	if err != nil {
		t.Fatalf("failed to read profiles migration: %v", err)
	}
	for _, status := range []string{VerificationPending, VerificationVerified, VerificationRejected} {
		if !strings.Contains(string(ddl), "'"+status+"'") {
			t.Errorf("status %q rejected by the profiles schema", status)
		}
	}
}

func TestScanDoctor_WithPicture(t *testing.T) {
	pic := "abc123.jpg"
	d, err := scanDoctor(fakeRow{values: []any{
		uuid.New(), uuid.New(), "Amine", "Ben Salah", "doctor@example.com", "", "",
		"cardiology", "", "", VerificationVerified, &pic,
		time.Now(), time.Now(),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ProfilePicture != pic {
		t.Fatalf("expected %q, got %q", pic, d.ProfilePicture)
	}
}
