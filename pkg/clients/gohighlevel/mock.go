package gohighlevel

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"renolead-backend/pkg/models"
)

// mockClient simulates the CRM when credentials are absent or mock mode is
// on: lookups never match and creation always succeeds.
type mockClient struct{}

func (m *mockClient) SearchByEmail(ctx context.Context, email, correlationID string) (*Contact, error) {
	log.Info().Str("correlation_id", correlationID).Msg("[MOCK] Searching contact by email, simulating not found")
	return nil, nil
}

func (m *mockClient) SearchByPhone(ctx context.Context, phone, correlationID string) (*Contact, error) {
	log.Info().Str("correlation_id", correlationID).Msg("[MOCK] Searching contact by phone, simulating not found")
	return nil, nil
}

func (m *mockClient) CreateContact(ctx context.Context, lead models.SanitizedLead, correlationID string) (*Contact, error) {
	log.Info().Str("correlation_id", correlationID).Msg("[MOCK] Creating new contact, simulating success")
	return &Contact{
		ID:        fmt.Sprintf("mock-contact-id-%d", time.Now().UnixMilli()),
		Email:     lead.Email,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Tags:      []string{websiteLeadTag},
	}, nil
}
