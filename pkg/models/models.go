package models

import "time"

// Profile is the complete set of professional data about one person,
// as produced by a profile source. All fields except the name are
// optional; missing data propagates as omission, never as an error.
type Profile struct {
	ProfileID         string                `json:"profile_id"`
	FirstName         string                `json:"first_name"`
	LastName          string                `json:"last_name"`
	Email             string                `json:"email"`
	Headline          string                `json:"headline"`
	Summary           string                `json:"summary"`
	Location          string                `json:"location"`
	Industry          string                `json:"industry"`
	ProfilePictureURL string                `json:"profile_picture_url"`
	Positions         []Position            `json:"positions"`
	Education         []Education           `json:"education"`
	Skills            []Skill               `json:"skills"`
	Certifications    []Certification       `json:"certifications"`
	Publications      []Publication         `json:"publications"`
	Volunteer         []VolunteerExperience `json:"volunteer"`
	Honors            []Honor               `json:"honors"`
	Languages         []Language            `json:"languages"`
}

// FullName joins the first and last name, tolerating either being empty.
func (p *Profile) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// Position is a single work experience entry
type Position struct {
	CompanyName      string     `json:"company_name"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Responsibilities string     `json:"responsibilities"`
	StartDate        time.Time  `json:"start_date"` // zero value = unknown
	EndDate          *time.Time `json:"end_date"`   // nil = ongoing
	Location         string     `json:"location"`
	EmploymentType   string     `json:"employment_type"`
	CompanyURL       string     `json:"company_url"`
	CompanyLogoURL   string     `json:"company_logo_url"`
}

// Education is a single education entry
type Education struct {
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"field_of_study"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Grade        string     `json:"grade"`
	Activities   string     `json:"activities"`
	Description  string     `json:"description"`
}

// Skill is a named skill with an optional endorsement count.
// Endorsement counts are only available from the API source; the
// scraper source leaves them at zero and ordering degrades to
// source order.
type Skill struct {
	Name             string `json:"name"`
	EndorsementCount int    `json:"endorsement_count"`
}

// Certification is a license or certification entry
type Certification struct {
	Name          string     `json:"name"`
	Authority     string     `json:"authority"`
	LicenseNumber string     `json:"license_number"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	URL           string     `json:"url"`
}

// Publication is a published work entry
type Publication struct {
	Name            string    `json:"name"`
	Publisher       string    `json:"publisher"`
	PublicationDate time.Time `json:"publication_date"`
	URL             string    `json:"url"`
	Description     string    `json:"description"`
}

// VolunteerExperience is a volunteer work entry
type VolunteerExperience struct {
	Organization string     `json:"organization"`
	Role         string     `json:"role"`
	Cause        string     `json:"cause"`
	Description  string     `json:"description"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// Honor is an honor or award entry
type Honor struct {
	Title       string    `json:"title"`
	Issuer      string    `json:"issuer"`
	IssueDate   time.Time `json:"issue_date"`
	Description string    `json:"description"`
}

// Language is a language proficiency entry
type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}
