package models

// LeadSubmission is the data structure coming from the landing page quiz.
// Bounds mirror the client-side schema; violations never echo back to the
// caller in detail.
type LeadSubmission struct {
	FirstName string `json:"firstName" binding:"required,min=1,max=50"`
	LastName  string `json:"lastName" binding:"required,min=1,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Phone     string `json:"phone" binding:"required,min=8,max=20"`
	Postcode  string `json:"postcode" binding:"required,min=3,max=10"`

	// Quiz qualification answers, all optional
	OccupancyStatus       string `json:"occupancyStatus"`
	HeatingType           string `json:"heatingType"`
	ProfessionalSituation string `json:"professionalSituation"`
	ProjectType           string `json:"projectType"`
	SurfaceArea           string `json:"surfaceArea"`
	HouseAge              string `json:"houseAge"`
	Timeline              string `json:"timeline"`

	// Security fields
	WebsiteURL string `json:"website_url"` // honeypot, must stay empty
	Timestamp  int64  `json:"timestamp" binding:"required"` // signing instant, Unix ms
	StartTime  int64  `json:"startTime" binding:"required"` // form mount instant, Unix ms
	Signature  string `json:"signature" binding:"required"`
}

// SignedEnvelope is the exact field set covered by the submission signature:
// the payload minus honeypot and signature, ending with startTime and the
// signing timestamp. Field order is part of the contract — the client signs
// JSON.stringify output in this order, and the server must reproduce the
// bytes exactly. Unanswered quiz fields serialize as empty strings on both
// sides.
type SignedEnvelope struct {
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	Postcode              string `json:"postcode"`
	OccupancyStatus       string `json:"occupancyStatus"`
	HeatingType           string `json:"heatingType"`
	ProfessionalSituation string `json:"professionalSituation"`
	ProjectType           string `json:"projectType"`
	SurfaceArea           string `json:"surfaceArea"`
	HouseAge              string `json:"houseAge"`
	Timeline              string `json:"timeline"`
	StartTime             int64  `json:"startTime"`
	Timestamp             int64  `json:"timestamp"`
}

// Envelope extracts the signed field set from a submission.
func (s *LeadSubmission) Envelope() SignedEnvelope {
	return SignedEnvelope{
		FirstName:             s.FirstName,
		LastName:              s.LastName,
		Email:                 s.Email,
		Phone:                 s.Phone,
		Postcode:              s.Postcode,
		OccupancyStatus:       s.OccupancyStatus,
		HeatingType:           s.HeatingType,
		ProfessionalSituation: s.ProfessionalSituation,
		ProjectType:           s.ProjectType,
		SurfaceArea:           s.SurfaceArea,
		HouseAge:              s.HouseAge,
		Timeline:              s.Timeline,
		StartTime:             s.StartTime,
		Timestamp:             s.Timestamp,
	}
}

// QuizData groups the qualification answers forwarded to the CRM as
// auxiliary attributes.
type QuizData struct {
	OccupancyStatus       string `json:"occupancyStatus"`
	HeatingType           string `json:"heatingType"`
	ProfessionalSituation string `json:"professionalSituation"`
	ProjectType           string `json:"projectType"`
	SurfaceArea           string `json:"surfaceArea"`
	HouseAge              string `json:"houseAge"`
	Timeline              string `json:"timeline"`
}

// SanitizedLead is the cleaned representation of a submission. It is the
// only form of the data that gets logged or forwarded downstream.
type SanitizedLead struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Postcode  string   `json:"postcode"`
	QuizData  QuizData `json:"quizData"`
}
