package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"renolead-backend/pkg/clients/gohighlevel"
	"renolead-backend/pkg/models"
)

// LeadResult reports what happened to a submitted lead. Created is false
// when an existing CRM contact absorbed the submission.
type LeadResult struct {
	Contact *gohighlevel.Contact
	Created bool
}

// LeadService defines the interface for forwarding sanitized leads to the CRM.
type LeadService interface {
	SubmitLead(ctx context.Context, lead models.SanitizedLead, correlationID string) (*LeadResult, error)
}

type leadServiceImpl struct {
	crm gohighlevel.Client
}

// NewLeadService creates a new lead service backed by the given CRM client.
func NewLeadService(crm gohighlevel.Client) LeadService {
	return &leadServiceImpl{crm: crm}
}

// SubmitLead creates the contact in the CRM unless one already exists.
// Dedupe looks up by email first, then phone; either match counts as success
// without creating a duplicate. No retries: a transient CRM failure surfaces
// immediately.
func (s *leadServiceImpl) SubmitLead(ctx context.Context, lead models.SanitizedLead, correlationID string) (*LeadResult, error) {
	existing, err := s.crm.SearchByEmail(ctx, lead.Email, correlationID)
	if err != nil {
		return nil, fmt.Errorf("searching contact by email: %w", err)
	}
	if existing == nil {
		existing, err = s.crm.SearchByPhone(ctx, lead.Phone, correlationID)
		if err != nil {
			return nil, fmt.Errorf("searching contact by phone: %w", err)
		}
	}

	if existing != nil {
		log.Info().
			Str("correlation_id", correlationID).
			Str("contact_id", existing.ID).
			Msg("Contact already exists, skipping creation")
		return &LeadResult{Contact: existing, Created: false}, nil
	}

	contact, err := s.crm.CreateContact(ctx, lead, correlationID)
	if err != nil {
		return nil, fmt.Errorf("creating contact: %w", err)
	}
	return &LeadResult{Contact: contact, Created: true}, nil
}
