package identity

import (
	"strings"
	"testing"
)

func baseRegister() *RegisterRequest {
	return &RegisterRequest{
		Email:     "user@example.com",
		Password:  "Str0ng!pass",
		Role:      "patient",
		FirstName: "Amine",
		LastName:  "Ben Salah",
	}
}

func TestRegisterRequest_Validate_OK(t *testing.T) {
	req := baseRegister()
	if fields := req.Validate(); len(fields) != 0 {
		t.Fatalf("expected no field errors, got %v", fields)
	}
}

func TestRegisterRequest_Validate_NormalizesEmail(t *testing.T) {
	req := baseRegister()
	req.Email = "  User@Example.COM "
	if fields := req.Validate(); len(fields) != 0 {
		t.Fatalf("expected no field errors, got %v", fields)
	}
	if req.Email != "user@example.com" {
		t.Fatalf("expected trimmed lowercase email, got %q", req.Email)
	}
}

func TestRegisterRequest_Validate_Missing(t *testing.T) {
	req := &RegisterRequest{}
	fields := req.Validate()
	for _, key := range []string{"email", "password", "role", "firstName", "lastName"} {
		if fields[key] == "" {
			t.Errorf("expected error for %s, got none", key)
		}
	}
}

func TestRegisterRequest_Validate_BadRole(t *testing.T) {
	req := baseRegister()
	req.Role = "superuser"
	if fields := req.Validate(); fields["role"] == "" {
		t.Fatal("expected role error")
	}
}

func TestRegisterRequest_Validate_Lengths(t *testing.T) {
	req := baseRegister()
	req.FirstName = strings.Repeat("a", 51)
	req.LastName = strings.Repeat("b", 51)
	req.Address = strings.Repeat("c", 256)
	fields := req.Validate()
	for _, key := range []string{"firstName", "lastName", "address"} {
		if fields[key] == "" {
			t.Errorf("expected length error for %s", key)
		}
	}
}

func TestRegisterRequest_Validate_Phone(t *testing.T) {
	valid := []string{"+21612345678", "+3312345678901", "+121255501234"}
	invalid := []string{"21612345678", "+216 12 345 678", "+2161234567", "phone"}

	for _, p := range valid {
		req := baseRegister()
		req.Phone = p
		if fields := req.Validate(); fields["phone"] != "" {
			t.Errorf("expected %q to be valid, got %q", p, fields["phone"])
		}
	}
	for _, p := range invalid {
		req := baseRegister()
		req.Phone = p
		if fields := req.Validate(); fields["phone"] == "" {
			t.Errorf("expected %q to be rejected", p)
		}
	}
}

func TestRegisterRequest_Validate_DOBFormat(t *testing.T) {
	req := baseRegister()
	req.DOB = "1990-05-17"
	if fields := req.Validate(); fields["dob"] != "" {
		t.Fatalf("expected valid date, got %q", fields["dob"])
	}

	req = baseRegister()
	req.DOB = "17/05/1990"
	if fields := req.Validate(); fields["dob"] == "" {
		t.Fatal("expected date format error")
	}
}

func TestValidPassword(t *testing.T) {
	valid := []string{"Str0ng!pass", "Aa1@aaaa", "Xy9#longerpassword", "Pass_word1", "Br(ckets1A"}
	invalid := []string{
		"alllower1!",   // no upper
		"ALLUPPER1!",   // no lower
		"NoDigits!!",   // no digit
		"NoSpecial11A", // no special
		"Aa1!a",        // too short
	}

	for _, p := range valid {
		if !ValidPassword(p) {
			t.Errorf("expected %q to be accepted", p)
		}
	}
	for _, p := range invalid {
		if ValidPassword(p) {
			t.Errorf("expected %q to be rejected", p)
		}
	}
}

func TestValidVerificationStatus(t *testing.T) {
	for _, s := range []string{VerificationPending, VerificationVerified, VerificationRejected} {
		if !ValidVerificationStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidVerificationStatus("approved") {
		t.Error("expected unknown status to be rejected")
	}
}

func TestRegisterRequest_OrgName(t *testing.T) {
	req := baseRegister()
	if got := req.OrgName(); got != "Amine Ben Salah" {
		t.Fatalf("expected combined name, got %q", got)
	}
}
