package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renolead-backend/pkg/models"
)

const testSecret = "test-signing-secret"

func testEnvelope(now time.Time) models.SignedEnvelope {
	return models.SignedEnvelope{
		FirstName:             "Marie",
		LastName:              "Dupont",
		Email:                 "marie.dupont@example.com",
		Phone:                 "0612345678",
		Postcode:              "75011",
		OccupancyStatus:       "Propriétaire",
		HeatingType:           "Fioul",
		ProfessionalSituation: "Salarié",
		ProjectType:           "Pompe à chaleur",
		SurfaceArea:           "120",
		HouseAge:              "Plus de 15 ans",
		Timeline:              "Moins de 3 mois",
		StartTime:             now.Add(-30 * time.Second).UnixMilli(),
		Timestamp:             now.UnixMilli(),
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	now := time.Now()
	signer := NewSigner(testSecret)
	env := testEnvelope(now)

	sig, err := signer.Sign(env)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	require.NoError(t, signer.Verify(env, sig, now))
}

func TestSignMatchesClientSerialization(t *testing.T) {
	// The client signs the raw JSON.stringify output. The server must produce
	// the identical byte string: fixed field order, no spaces, no escaping.
	env := models.SignedEnvelope{
		FirstName: "Jean",
		LastName:  "Martin",
		Email:     "jean@example.com",
		Phone:     "0712345678",
		Postcode:  "33000",
		StartTime: 1700000000000,
		Timestamp: 1700000001000,
	}

	expectedPayload := `{"firstName":"Jean","lastName":"Martin","email":"jean@example.com",` +
		`"phone":"0712345678","postcode":"33000","occupancyStatus":"","heatingType":"",` +
		`"professionalSituation":"","projectType":"","surfaceArea":"","houseAge":"",` +
		`"timeline":"","startTime":1700000000000,"timestamp":1700000001000}`

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(expectedPayload))
	want := hex.EncodeToString(mac.Sum(nil))

	got, err := NewSigner(testSecret).Sign(env)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerifyFreshnessWindow(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	signer := NewSigner(testSecret)

	tests := []struct {
		name      string
		timestamp time.Time
		wantErr   error
	}{
		{"fresh", now.Add(-10 * time.Second), nil},
		{"at max age", now.Add(-300 * time.Second), nil},
		{"one past max age", now.Add(-301 * time.Second), ErrExpired},
		{"at skew bound", now.Add(60 * time.Second), nil},
		{"one past skew bound", now.Add(61 * time.Second), ErrFutureTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testEnvelope(now)
			env.Timestamp = tt.timestamp.UnixMilli()

			sig, err := signer.Sign(env)
			require.NoError(t, err)

			err = signer.Verify(env, sig, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestVerifyRejectsTamperedEnvelope(t *testing.T) {
	now := time.Now()
	signer := NewSigner(testSecret)
	env := testEnvelope(now)

	sig, err := signer.Sign(env)
	require.NoError(t, err)

	mutations := map[string]func(*models.SignedEnvelope){
		"first name": func(e *models.SignedEnvelope) { e.FirstName = "Maria" },
		"last name":  func(e *models.SignedEnvelope) { e.LastName = "Dupond" },
		"email":      func(e *models.SignedEnvelope) { e.Email = "marie.dupont@example.org" },
		"phone digit": func(e *models.SignedEnvelope) { e.Phone = "0612345679" },
		"postcode":   func(e *models.SignedEnvelope) { e.Postcode = "75012" },
		"quiz field": func(e *models.SignedEnvelope) { e.HeatingType = "Gaz" },
		"start time": func(e *models.SignedEnvelope) { e.StartTime++ },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			tampered := env
			mutate(&tampered)
			assert.ErrorIs(t, signer.Verify(tampered, sig, now), ErrBadSignature)
		})
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	now := time.Now()
	env := testEnvelope(now)

	sig, err := NewSigner(testSecret).Sign(env)
	require.NoError(t, err)

	assert.ErrorIs(t, NewSigner("other-secret").Verify(env, sig, now), ErrBadSignature)
}

func TestVerifyRejectsGarbageSignature(t *testing.T) {
	now := time.Now()
	signer := NewSigner(testSecret)

	assert.ErrorIs(t, signer.Verify(testEnvelope(now), "not-a-hex-digest", now), ErrBadSignature)
	assert.ErrorIs(t, signer.Verify(testEnvelope(now), "", now), ErrBadSignature)
}
