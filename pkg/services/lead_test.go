package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renolead-backend/pkg/clients/gohighlevel"
	"renolead-backend/pkg/models"
)

type fakeCRM struct {
	byEmail      *gohighlevel.Contact
	byPhone      *gohighlevel.Contact
	searchErr    error
	createErr    error
	emailCalls   int
	phoneCalls   int
	createCalls  int
	lastCreated  models.SanitizedLead
}

func (f *fakeCRM) SearchByEmail(ctx context.Context, email, correlationID string) (*gohighlevel.Contact, error) {
	f.emailCalls++
	return f.byEmail, f.searchErr
}

func (f *fakeCRM) SearchByPhone(ctx context.Context, phone, correlationID string) (*gohighlevel.Contact, error) {
	f.phoneCalls++
	return f.byPhone, f.searchErr
}

func (f *fakeCRM) CreateContact(ctx context.Context, lead models.SanitizedLead, correlationID string) (*gohighlevel.Contact, error) {
	f.createCalls++
	f.lastCreated = lead
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &gohighlevel.Contact{ID: "new-contact", Email: lead.Email}, nil
}

func testLead() models.SanitizedLead {
	return models.SanitizedLead{
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     "marie@example.com",
		Phone:     "0612345678",
		Postcode:  "75011",
	}
}

func TestSubmitLeadCreatesWhenAbsent(t *testing.T) {
	crm := &fakeCRM{}
	svc := NewLeadService(crm)

	result, err := svc.SubmitLead(context.Background(), testLead(), "cid")
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, "new-contact", result.Contact.ID)
	assert.Equal(t, 1, crm.emailCalls)
	assert.Equal(t, 1, crm.phoneCalls)
	assert.Equal(t, 1, crm.createCalls)
	assert.Equal(t, "marie@example.com", crm.lastCreated.Email)
}

func TestSubmitLeadDedupesByEmail(t *testing.T) {
	crm := &fakeCRM{byEmail: &gohighlevel.Contact{ID: "existing-by-email"}}
	svc := NewLeadService(crm)

	result, err := svc.SubmitLead(context.Background(), testLead(), "cid")
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Equal(t, "existing-by-email", result.Contact.ID)
	// Email match short-circuits: no phone lookup, no create.
	assert.Equal(t, 0, crm.phoneCalls)
	assert.Equal(t, 0, crm.createCalls)
}

func TestSubmitLeadDedupesByPhoneFallback(t *testing.T) {
	crm := &fakeCRM{byPhone: &gohighlevel.Contact{ID: "existing-by-phone"}}
	svc := NewLeadService(crm)

	result, err := svc.SubmitLead(context.Background(), testLead(), "cid")
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Equal(t, "existing-by-phone", result.Contact.ID)
	assert.Equal(t, 1, crm.emailCalls)
	assert.Equal(t, 0, crm.createCalls)
}

func TestSubmitLeadPropagatesSearchError(t *testing.T) {
	crm := &fakeCRM{searchErr: errors.New("upstream down")}
	svc := NewLeadService(crm)

	_, err := svc.SubmitLead(context.Background(), testLead(), "cid")
	require.Error(t, err)
	assert.Equal(t, 0, crm.createCalls)
}

func TestSubmitLeadPropagatesCreateError(t *testing.T) {
	crm := &fakeCRM{createErr: errors.New("upstream down")}
	svc := NewLeadService(crm)

	_, err := svc.SubmitLead(context.Background(), testLead(), "cid")
	require.Error(t, err)
}
