package gohighlevel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"renolead-backend/pkg/config"
	"renolead-backend/pkg/models"
)

// Tag attached at creation time so CRM automation recognizes the contact as
// a web-originated lead. It must be part of the creation payload, not added
// afterwards, or the workflow trigger never fires.
const websiteLeadTag = "website_lead"

// apiVersion is required by the GoHighLevel v2 API.
const apiVersion = "2021-07-28"

// defaultRegion is used when parsing national phone numbers.
const defaultRegion = "FR"

// Contact is a CRM contact as returned by the GoHighLevel API. The id is
// opaque; the contact's lifecycle is owned entirely by the CRM.
type Contact struct {
	ID        string   `json:"id"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Client defines the interface for the GoHighLevel contact API. Lookups
// return nil when no contact matches.
type Client interface {
	SearchByEmail(ctx context.Context, email, correlationID string) (*Contact, error)
	SearchByPhone(ctx context.Context, phone, correlationID string) (*Contact, error)
	CreateContact(ctx context.Context, lead models.SanitizedLead, correlationID string) (*Contact, error)
}

// NewClient selects the implementation at construction time: the real HTTP
// client when credentials are configured, the mock otherwise.
func NewClient(cfg *config.Config) Client {
	if cfg.IsMockCRM() {
		log.Warn().Msg("GoHighLevel client running in mock mode, no CRM calls will be made")
		return &mockClient{}
	}
	return &httpClient{
		baseURL:    cfg.GHLAPIBaseURL,
		apiKey:     cfg.GHLAPIKey,
		locationID: cfg.GHLLocationID,
		client:     &http.Client{Timeout: cfg.GHLTimeout},
	}
}

type httpClient struct {
	baseURL    string
	apiKey     string
	locationID string
	client     *http.Client
}

type customField struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type createContactPayload struct {
	LocationID   string        `json:"locationId"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Tags         []string      `json:"tags"`
	CustomFields []customField `json:"customFields"`
}

// NormalizePhone formats a phone number as E.164, assuming French numbers
// when no country prefix is present. If parsing fails the cleaned digits are
// returned with a + prefix rather than dropping the lead.
func NormalizePhone(phone string) string {
	parsed, err := phonenumbers.Parse(phone, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		log.Warn().Str("phone", phone).Msg("Phone normalization failed, using raw digits")
		return "+" + phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func (c *httpClient) searchContacts(ctx context.Context, params url.Values, correlationID string) (*Contact, error) {
	endpoint := fmt.Sprintf("%s/contacts/?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching contacts: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Str("correlation_id", correlationID).
			Int("status", resp.StatusCode).
			Msg("GoHighLevel contact search failed")
		return nil, fmt.Errorf("contact search returned status %d", resp.StatusCode)
	}

	var result struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	if len(result.Contacts) == 0 {
		return nil, nil
	}
	return &result.Contacts[0], nil
}

func (c *httpClient) SearchByEmail(ctx context.Context, email, correlationID string) (*Contact, error) {
	log.Info().Str("correlation_id", correlationID).Msg("Searching contact by email")

	params := url.Values{}
	params.Set("locationId", c.locationID)
	params.Set("email", email)
	return c.searchContacts(ctx, params, correlationID)
}

func (c *httpClient) SearchByPhone(ctx context.Context, phone, correlationID string) (*Contact, error) {
	log.Info().Str("correlation_id", correlationID).Msg("Searching contact by phone")

	params := url.Values{}
	params.Set("locationId", c.locationID)
	params.Set("phone", NormalizePhone(phone))
	return c.searchContacts(ctx, params, correlationID)
}

func (c *httpClient) CreateContact(ctx context.Context, lead models.SanitizedLead, correlationID string) (*Contact, error) {
	payload := createContactPayload{
		LocationID: c.locationID,
		FirstName:  lead.FirstName,
		LastName:   lead.LastName,
		Email:      lead.Email,
		Phone:      NormalizePhone(lead.Phone),
		Tags:       []string{websiteLeadTag},
		CustomFields: []customField{
			{ID: "postcode", Value: lead.Postcode},
			{ID: "occupancyStatus", Value: lead.QuizData.OccupancyStatus},
			{ID: "heatingType", Value: lead.QuizData.HeatingType},
			{ID: "professionalSituation", Value: lead.QuizData.ProfessionalSituation},
			{ID: "source", Value: "website_quiz"},
			{ID: "submissionDate", Value: time.Now().UTC().Format(time.RFC3339)},
		},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding contact payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contacts/", bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("creating contact request: %w", err)
	}
	c.setHeaders(req)

	log.Info().Str("correlation_id", correlationID).Msg("Creating new contact with website_lead tag")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("creating contact: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading create response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Error().
			Str("correlation_id", correlationID).
			Int("status", resp.StatusCode).
			Msg("GoHighLevel contact creation failed")
		return nil, fmt.Errorf("contact creation returned status %d", resp.StatusCode)
	}

	var result struct {
		Contact Contact `json:"contact"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing create response: %w", err)
	}

	log.Info().
		Str("correlation_id", correlationID).
		Str("contact_id", result.Contact.ID).
		Msg("Contact created")
	return &result.Contact, nil
}

func (c *httpClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Version", apiVersion)
}
