package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinichub/clinichub/internal/domain/identity"
	"github.com/clinichub/clinichub/internal/platform/httperr"
)

type mockRepo struct {
	doctors      []*identity.DoctorProfile
	laboratories []*identity.LaboratoryProfile
	imaging      []*identity.ImagingServiceProfile
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (m *mockRepo) Search(ctx context.Context, query string) (*Result, error) {
	result := &Result{
		Doctors:         []*identity.DoctorProfile{},
		Laboratories:    []*identity.LaboratoryProfile{},
		ImagingServices: []*identity.ImagingServiceProfile{},
	}
	for _, d := range m.doctors {
		if contains(d.FirstName, query) || contains(d.LastName, query) || contains(d.Specialty, query) {
			result.Doctors = append(result.Doctors, d)
		}
	}
	for _, l := range m.laboratories {
		if contains(l.Name, query) {
			result.Laboratories = append(result.Laboratories, l)
			continue
		}
		for _, s := range l.Services {
			if contains(s, query) {
				result.Laboratories = append(result.Laboratories, l)
				break
			}
		}
	}
	for _, i := range m.imaging {
		if contains(i.Name, query) {
			result.ImagingServices = append(result.ImagingServices, i)
		}
	}
	return result, nil
}

func newTestService() *Service {
	return NewService(&mockRepo{
		doctors: []*identity.DoctorProfile{
			{FirstName: "Sana", LastName: "Gharbi", Specialty: "Cardiology"},
			{FirstName: "Karim", LastName: "Mejri", Specialty: "Dermatology"},
		},
		laboratories: []*identity.LaboratoryProfile{
			{Name: "BioLab Tunis", Services: []string{"blood count", "lipid panel"}},
		},
		imaging: []*identity.ImagingServiceProfile{
			{Name: "Radio Carthage", Services: []string{"MRI", "CT scan"}},
		},
	})
}

func TestSearch_MatchesAcrossKinds(t *testing.T) {
	svc := newTestService()

	result, err := svc.Search(context.Background(), "cardio")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Doctors) != 1 || result.Doctors[0].Specialty != "Cardiology" {
		t.Fatalf("expected the cardiologist, got %v", result.Doctors)
	}
	if len(result.Laboratories) != 0 || len(result.ImagingServices) != 0 {
		t.Fatal("expected no laboratory or imaging matches")
	}

	result, err = svc.Search(context.Background(), "lipid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Laboratories) != 1 {
		t.Fatalf("expected laboratory matched on service, got %v", result.Laboratories)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newTestService()

	_, err := svc.Search(context.Background(), "   ")
	var appErr *httperr.Error
	if !errors.As(err, &appErr) || appErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_Search(t *testing.T) {
	h := NewHandler(newTestService())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?query=radio", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Search(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var envlp struct {
		Data struct {
			Doctors         []json.RawMessage `json:"doctors"`
			Laboratories    []json.RawMessage `json:"laboratories"`
			ImagingServices []json.RawMessage `json:"imagingServices"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envlp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(envlp.Data.ImagingServices) != 1 {
		t.Fatalf("expected one imaging service, got %d", len(envlp.Data.ImagingServices))
	}
	if envlp.Data.Doctors == nil || envlp.Data.Laboratories == nil {
		t.Fatal("expected empty groups serialized as arrays")
	}
}
