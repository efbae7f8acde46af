package model

import "time"

// Gender of a supervisor, as shown on profile cards.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Supervision types.
const (
	SupervisionIndividual = "individual"
	SupervisionGroup      = "group"
)

// Target groups a supervisor works with.
const (
	TargetChild      = "child"
	TargetAdolescent = "adolescent"
	TargetAdult      = "adult"
	TargetCouple     = "couple"
	TargetFamily     = "family"
	TargetElderly    = "elderly"
)

// SupervisionTypes lists every supervision type.
var SupervisionTypes = []string{SupervisionIndividual, SupervisionGroup}

// TargetGroups lists every target group.
var TargetGroups = []string{TargetChild, TargetAdolescent, TargetAdult, TargetCouple, TargetFamily, TargetElderly}

// Supervisor is the public profile of a counseling supervisor.
// NationalProgram marks participation in the government-subsidized
// counseling program (전마투).
type Supervisor struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	Name             string        `json:"name"`
	Gender           Gender        `json:"gender"`
	BirthYear        int           `json:"birth_year,omitempty"`
	Certification    string        `json:"certification"`
	Association      string        `json:"association,omitempty"`
	Region           string        `json:"region"`
	OnlineAvailable  bool          `json:"online_available"`
	OfflineAvailable bool          `json:"offline_available"`
	NationalProgram  bool          `json:"national_program"`
	SupervisionTypes []string      `json:"supervision_types"`
	TargetGroups     []string      `json:"target_groups"`
	Specialties      []string      `json:"specialties"`
	Approaches       []string      `json:"approaches"`
	ExperienceYears  int           `json:"experience_years"`
	FeePerSession    int           `json:"fee_per_session"`
	Introduction     string        `json:"introduction,omitempty"`
	ContactEmail     string        `json:"contact_email,omitempty"`
	KakaoID          string        `json:"kakao_id,omitempty"`
	PhotoKey         string        `json:"-"`
	PhotoURL         string        `json:"photo_url,omitempty"`
	CredentialKey    string        `json:"-"`
	CredentialURL    string        `json:"credential_url,omitempty"`
	Status           AccountStatus `json:"status"`
	RejectReason     string        `json:"reject_reason,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// SupervisorPatch carries the profile fields a supervisor may edit.
// Nil fields are left unchanged.
type SupervisorPatch struct {
	Name             *string
	Gender           *Gender
	BirthYear        *int
	Certification    *string
	Association      *string
	Region           *string
	OnlineAvailable  *bool
	OfflineAvailable *bool
	NationalProgram  *bool
	SupervisionTypes []string
	TargetGroups     []string
	Specialties      []string
	Approaches       []string
	ExperienceYears  *int
	FeePerSession    *int
	Introduction     *string
	ContactEmail     *string
	KakaoID          *string
}

// Apply copies the set fields of p onto s.
func (p SupervisorPatch) Apply(s *Supervisor) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Gender != nil {
		s.Gender = *p.Gender
	}
	if p.BirthYear != nil {
		s.BirthYear = *p.BirthYear
	}
	if p.Certification != nil {
		s.Certification = *p.Certification
	}
	if p.Association != nil {
		s.Association = *p.Association
	}
	if p.Region != nil {
		s.Region = *p.Region
	}
	if p.OnlineAvailable != nil {
		s.OnlineAvailable = *p.OnlineAvailable
	}
	if p.OfflineAvailable != nil {
		s.OfflineAvailable = *p.OfflineAvailable
	}
	if p.NationalProgram != nil {
		s.NationalProgram = *p.NationalProgram
	}
	if p.SupervisionTypes != nil {
		s.SupervisionTypes = p.SupervisionTypes
	}
	if p.TargetGroups != nil {
		s.TargetGroups = p.TargetGroups
	}
	if p.Specialties != nil {
		s.Specialties = p.Specialties
	}
	if p.Approaches != nil {
		s.Approaches = p.Approaches
	}
	if p.ExperienceYears != nil {
		s.ExperienceYears = *p.ExperienceYears
	}
	if p.FeePerSession != nil {
		s.FeePerSession = *p.FeePerSession
	}
	if p.Introduction != nil {
		s.Introduction = *p.Introduction
	}
	if p.ContactEmail != nil {
		s.ContactEmail = *p.ContactEmail
	}
	if p.KakaoID != nil {
		s.KakaoID = *p.KakaoID
	}
}

// FilterOptions are the values the search facets can take.
type FilterOptions struct {
	Genders          []string `json:"genders"`
	Regions          []string `json:"regions"`
	Certifications   []string `json:"certifications"`
	Specialties      []string `json:"specialties"`
	TargetGroups     []string `json:"target_groups"`
	SupervisionTypes []string `json:"supervision_types"`
}
