package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/khrees2412/linkfolio/internal/apperror"
	"github.com/khrees2412/linkfolio/internal/config"
	"github.com/khrees2412/linkfolio/pkg/models"
)

const defaultAPIBaseURL = "https://api.linkedin.com/v2"

// API fetches profiles over the partner REST API. Requires an access
// token with profile read scope; unlike the scraper it returns
// endorsement counts.
type API struct {
	client *resty.Client
	log    *zap.Logger
}

// NewAPI builds an API source from configuration.
func NewAPI(cfg config.APIConfig, log *zap.Logger) (*API, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.AccessToken == "" {
		return nil, apperror.NewAuth("no API access token configured", nil)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(cfg.AccessToken).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(15 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	return &API{client: client, log: log}, nil
}

// Close is a no-op; resty clients hold no resources needing teardown.
func (a *API) Close() {}

// FetchProfile retrieves the profile for a member identifier.
func (a *API) FetchProfile(ctx context.Context, ref string) (*models.Profile, error) {
	id := strings.TrimSpace(ref)
	if id == "" {
		return nil, apperror.NewValidation("profile reference is empty")
	}

	var payload apiProfile
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&payload).
		SetPathParam("id", id).
		Get("/profiles/{id}")
	if err != nil {
		return nil, apperror.NewScraper("profile API request failed", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, apperror.NewAuth(fmt.Sprintf("profile API rejected the access token (status %d)", resp.StatusCode()), nil)
	case http.StatusNotFound:
		return nil, apperror.NewProfileNotFound(id)
	default:
		return nil, apperror.New(apperror.ErrScraper, "profile API request failed",
			fmt.Sprintf("unexpected status %d", resp.StatusCode()), nil)
	}

	a.log.Debug("profile fetched from API",
		zap.String("id", id),
		zap.Int("positions", len(payload.Positions)))

	return payload.toProfile(), nil
}

// apiDate is a partial date as the API returns it. A zero year means
// the date is absent.
type apiDate struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (d *apiDate) time() time.Time {
	if d == nil || d.Year == 0 {
		return time.Time{}
	}
	month := time.Month(d.Month)
	if d.Month == 0 {
		month = time.January
	}
	return time.Date(d.Year, month, 1, 0, 0, 0, 0, time.UTC)
}

func (d *apiDate) timePtr() *time.Time {
	t := d.time()
	if t.IsZero() {
		return nil
	}
	return &t
}

// apiProfile is the wire shape of a profile response.
type apiProfile struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	EmailAddress   string `json:"emailAddress"`
	Headline       string `json:"headline"`
	Summary        string `json:"summary"`
	LocationName   string `json:"locationName"`
	Industry       string `json:"industryName"`
	PictureURL     string `json:"profilePictureUrl"`
	Positions      []apiPosition
	Educations     []apiEducation
	Skills         []apiSkill
	Certifications []apiCertification
	Publications   []apiPublication
	Volunteer      []apiVolunteer `json:"volunteerExperiences"`
	Honors         []apiHonor
	Languages      []apiLanguage
}

type apiPosition struct {
	Title          string   `json:"title"`
	CompanyName    string   `json:"companyName"`
	Description    string   `json:"description"`
	LocationName   string   `json:"locationName"`
	EmploymentType string   `json:"employmentType"`
	StartDate      *apiDate `json:"startDate"`
	EndDate        *apiDate `json:"endDate"`
}

type apiEducation struct {
	SchoolName   string   `json:"schoolName"`
	DegreeName   string   `json:"degreeName"`
	FieldOfStudy string   `json:"fieldOfStudy"`
	Grade        string   `json:"grade"`
	Activities   string   `json:"activities"`
	StartDate    *apiDate `json:"startDate"`
	EndDate      *apiDate `json:"endDate"`
}

type apiSkill struct {
	Name             string `json:"name"`
	EndorsementCount int    `json:"endorsementCount"`
}

type apiCertification struct {
	Name          string   `json:"name"`
	Authority     string   `json:"authority"`
	LicenseNumber string   `json:"licenseNumber"`
	URL           string   `json:"url"`
	StartDate     *apiDate `json:"startDate"`
	EndDate       *apiDate `json:"endDate"`
}

type apiPublication struct {
	Name        string   `json:"name"`
	Publisher   string   `json:"publisher"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Date        *apiDate `json:"date"`
}

type apiVolunteer struct {
	Organization string   `json:"organizationName"`
	Role         string   `json:"role"`
	Cause        string   `json:"cause"`
	Description  string   `json:"description"`
	StartDate    *apiDate `json:"startDate"`
	EndDate      *apiDate `json:"endDate"`
}

type apiHonor struct {
	Title       string   `json:"title"`
	Issuer      string   `json:"issuer"`
	Description string   `json:"description"`
	IssueDate   *apiDate `json:"issueDate"`
}

type apiLanguage struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

func (a *apiProfile) toProfile() *models.Profile {
	p := &models.Profile{
		ProfileID:         a.ID,
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Email:             a.EmailAddress,
		Headline:          a.Headline,
		Summary:           a.Summary,
		Location:          a.LocationName,
		Industry:          a.Industry,
		ProfilePictureURL: a.PictureURL,
	}

	for _, pos := range a.Positions {
		p.Positions = append(p.Positions, models.Position{
			Title:          pos.Title,
			CompanyName:    pos.CompanyName,
			Description:    pos.Description,
			Location:       pos.LocationName,
			EmploymentType: pos.EmploymentType,
			StartDate:      pos.StartDate.time(),
			EndDate:        pos.EndDate.timePtr(),
		})
	}
	for _, edu := range a.Educations {
		p.Education = append(p.Education, models.Education{
			School:       edu.SchoolName,
			Degree:       edu.DegreeName,
			FieldOfStudy: edu.FieldOfStudy,
			Grade:        edu.Grade,
			Activities:   edu.Activities,
			StartDate:    edu.StartDate.time(),
			EndDate:      edu.EndDate.timePtr(),
		})
	}
	for _, skill := range a.Skills {
		p.Skills = append(p.Skills, models.Skill{
			Name:             skill.Name,
			EndorsementCount: skill.EndorsementCount,
		})
	}
	for _, cert := range a.Certifications {
		p.Certifications = append(p.Certifications, models.Certification{
			Name:          cert.Name,
			Authority:     cert.Authority,
			LicenseNumber: cert.LicenseNumber,
			URL:           cert.URL,
			StartDate:     cert.StartDate.time(),
			EndDate:       cert.EndDate.timePtr(),
		})
	}
	for _, pub := range a.Publications {
		p.Publications = append(p.Publications, models.Publication{
			Name:            pub.Name,
			Publisher:       pub.Publisher,
			URL:             pub.URL,
			Description:     pub.Description,
			PublicationDate: pub.Date.time(),
		})
	}
	for _, vol := range a.Volunteer {
		p.Volunteer = append(p.Volunteer, models.VolunteerExperience{
			Organization: vol.Organization,
			Role:         vol.Role,
			Cause:        vol.Cause,
			Description:  vol.Description,
			StartDate:    vol.StartDate.time(),
			EndDate:      vol.EndDate.timePtr(),
		})
	}
	for _, honor := range a.Honors {
		p.Honors = append(p.Honors, models.Honor{
			Title:       honor.Title,
			Issuer:      honor.Issuer,
			Description: honor.Description,
			IssueDate:   honor.IssueDate.time(),
		})
	}
	for _, lang := range a.Languages {
		p.Languages = append(p.Languages, models.Language{
			Name:        lang.Name,
			Proficiency: lang.Proficiency,
		})
	}

	return p
}
