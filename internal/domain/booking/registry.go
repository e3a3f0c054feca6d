package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinichub/clinichub/internal/platform/httperr"
)

// ProviderRegistry resolves a service id to its provider kind. When the
// caller names a kind, only that probe is consulted; otherwise the kinds are
// probed in a fixed order and the first match wins.
type ProviderRegistry struct {
	order  []string
	probes map[string]ProviderProbe
}

func NewProviderRegistry(doctors, laboratories, imaging ProviderProbe) *ProviderRegistry {
	return &ProviderRegistry{
		order: []string{KindDoctor, KindLaboratory, KindImagingService},
		probes: map[string]ProviderProbe{
			KindDoctor:         doctors,
			KindLaboratory:     laboratories,
			KindImagingService: imaging,
		},
	}
}

// Resolve returns the provider kind owning id. kind narrows the lookup to a
// single probe; an empty kind tries doctor, laboratory, imaging_service in
// that order.
func (r *ProviderRegistry) Resolve(ctx context.Context, id uuid.UUID, kind string) (string, error) {
	if kind != "" {
		probe, ok := r.probes[kind]
		if !ok {
			return "", httperr.BadRequest("unknown service kind")
		}
		found, err := probe.Exists(ctx, id)
		if err != nil {
			return "", httperr.Internal(err)
		}
		if !found {
			return "", httperr.NotFound("service not found")
		}
		return kind, nil
	}

	for _, k := range r.order {
		found, err := r.probes[k].Exists(ctx, id)
		if err != nil {
			return "", httperr.Internal(err)
		}
		if found {
			return k, nil
		}
	}
	return "", httperr.NotFound("service not found")
}
