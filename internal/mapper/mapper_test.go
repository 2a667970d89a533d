package mapper

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/khrees2412/linkfolio/internal/apperror"
	"github.com/khrees2412/linkfolio/pkg/models"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func datePtr(year, month, day int) *time.Time {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &d
}

func baseProfile() *models.Profile {
	return &models.Profile{
		ProfileID: "janedoe",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
	}
}

func TestMapRequiresName(t *testing.T) {
	profile := baseProfile()
	profile.FirstName = ""
	profile.LastName = ""

	_, _, err := Map(profile, "", testNow, nil)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
}

func TestMapEmailPrecedence(t *testing.T) {
	tests := []struct {
		name         string
		profileEmail string
		override     string
		expected     string
		wantErr      bool
	}{
		{
			name:         "override wins over source email",
			profileEmail: "source@example.com",
			override:     "override@example.com",
			expected:     "override@example.com",
		},
		{
			name:         "source email used without override",
			profileEmail: "source@example.com",
			expected:     "source@example.com",
		},
		{
			name:     "override used when source has none",
			override: "override@example.com",
			expected: "override@example.com",
		},
		{
			name:    "no email anywhere fails",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := baseProfile()
			profile.Email = tt.profileEmail

			user, _, err := Map(profile, tt.override, testNow, nil)
			if tt.wantErr {
				if !errors.Is(err, apperror.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Map failed: %v", err)
			}
			if user.Email != tt.expected {
				t.Errorf("email = %q, expected %q", user.Email, tt.expected)
			}
		})
	}
}

func TestMapUserRecord(t *testing.T) {
	profile := baseProfile()
	profile.ProfilePictureURL = "https://cdn.example.com/jane.jpg"

	user, _, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}

	if user.Name != "Jane Doe" {
		t.Errorf("name = %q", user.Name)
	}
	if user.AvatarURL != profile.ProfilePictureURL {
		t.Errorf("avatar = %q", user.AvatarURL)
	}
	if user.PasswordHash != "" {
		t.Errorf("imported accounts must have an empty password hash, got %q", user.PasswordHash)
	}
}

func TestBioComposition(t *testing.T) {
	profile := baseProfile()
	profile.Headline = "Engineer"
	profile.Location = "City"
	profile.Industry = "Tech"

	user, _, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}

	sections := strings.Split(user.Bio, "\n\n")
	if len(sections) != 2 {
		t.Fatalf("expected exactly 2 bio sections, got %d: %q", len(sections), user.Bio)
	}
	if sections[0] != "Engineer" {
		t.Errorf("first section = %q", sections[0])
	}
	if sections[1] != "Location: City, Industry: Tech" {
		t.Errorf("second section = %q", sections[1])
	}
	for i, s := range sections {
		if strings.TrimSpace(s) == "" {
			t.Errorf("section %d is blank", i)
		}
	}
}

func TestBioEducationAndLanguages(t *testing.T) {
	profile := baseProfile()
	profile.Education = []models.Education{
		{
			School:       "State University",
			Degree:       "BSc",
			FieldOfStudy: "Computer Science",
			StartDate:    time.Date(2010, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      datePtr(2014, 6, 1),
		},
		{School: "Night School"},
	}
	profile.Languages = []models.Language{
		{Name: "English", Proficiency: "native"},
		{Name: "German"},
	}

	user, _, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}

	if !strings.Contains(user.Bio, "BSc in Computer Science from State University (2010 - 2014)") {
		t.Errorf("education line missing from bio:\n%s", user.Bio)
	}
	if !strings.Contains(user.Bio, "Night School") {
		t.Errorf("undated education entry missing from bio:\n%s", user.Bio)
	}
	if !strings.Contains(user.Bio, "English (native), German") {
		t.Errorf("language line missing from bio:\n%s", user.Bio)
	}
	if strings.Contains(user.Bio, "HONORS") {
		t.Errorf("empty honors section leaked into bio:\n%s", user.Bio)
	}
}

func TestPositionMapping(t *testing.T) {
	profile := baseProfile()
	profile.Positions = []models.Position{
		{
			CompanyName:      "Acme Inc",
			Title:            "Software Engineer",
			Description:      "Built the platform",
			Responsibilities: "Owned the billing system",
			Location:         "Remote",
			EmploymentType:   "full-time",
			CompanyURL:       "https://acme.example.com",
			CompanyLogoURL:   "https://acme.example.com/logo.png",
			StartDate:        time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:          datePtr(2022, 3, 1),
		},
	}

	_, projects, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}

	p := projects[0]
	if p.Title != "Software Engineer at Acme Inc" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Slug != "software-engineer-at-acme-inc" {
		t.Errorf("slug = %q", p.Slug)
	}
	if p.Description != "Built the platform" {
		t.Errorf("description = %q", p.Description)
	}
	if !strings.Contains(p.LongDescription, "Location: Remote") ||
		!strings.Contains(p.LongDescription, "Employment Type: full-time") ||
		!strings.Contains(p.LongDescription, "Owned the billing system") {
		t.Errorf("long description incomplete: %q", p.LongDescription)
	}
	if p.ImageURL != "https://acme.example.com/logo.png" {
		t.Errorf("image url = %q", p.ImageURL)
	}
	if p.LiveURL != "https://acme.example.com" {
		t.Errorf("live url = %q", p.LiveURL)
	}
	if p.GithubURL != "" {
		t.Errorf("github url must be empty for imports, got %q", p.GithubURL)
	}
	if !p.CreatedAt.Equal(profile.Positions[0].StartDate) {
		t.Errorf("created at = %v", p.CreatedAt)
	}
	if !p.UpdatedAt.Equal(*profile.Positions[0].EndDate) {
		t.Errorf("updated at = %v", p.UpdatedAt)
	}
}

func TestOngoingPositionUsesInjectedNow(t *testing.T) {
	profile := baseProfile()
	profile.Positions = []models.Position{
		{
			CompanyName: "Acme Inc",
			Title:       "Engineer",
			StartDate:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     nil, // ongoing
		},
	}

	_, projects, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if !projects[0].UpdatedAt.Equal(testNow) {
		t.Errorf("ongoing position updated_at = %v, expected injected now %v", projects[0].UpdatedAt, testNow)
	}
}

func TestPositionWithoutStartDateIsSkipped(t *testing.T) {
	profile := baseProfile()
	profile.Positions = []models.Position{
		{CompanyName: "No Dates Ltd", Title: "Mystery Role"},
		{
			CompanyName: "Acme Inc",
			Title:       "Engineer",
			StartDate:   time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	_, projects, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("skipping a position must not fail the mapping: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project after skip, got %d", len(projects))
	}
	if projects[0].Title != "Engineer at Acme Inc" {
		t.Errorf("wrong position survived: %q", projects[0].Title)
	}
}

func TestCertificationsWithoutPositions(t *testing.T) {
	profile := baseProfile()
	profile.Certifications = []models.Certification{
		{Name: "AWS Solutions Architect", Authority: "Amazon", URL: "https://aws.example.com/cert"},
		{Name: "CKA", Authority: "CNCF", LicenseNumber: "LF-123"},
		{Name: "OSCP", Authority: "Offensive Security"},
	}

	_, projects, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}
	for _, p := range projects {
		if !strings.HasPrefix(p.Title, "Certification: ") {
			t.Errorf("title %q missing prefix", p.Title)
		}
		if !p.CreatedAt.Equal(testNow) {
			t.Errorf("undated certification created_at = %v, expected now", p.CreatedAt)
		}
	}
}

func TestPublicationAndVolunteerMapping(t *testing.T) {
	profile := baseProfile()
	profile.Publications = []models.Publication{
		{
			Name:            "Scaling Postgres",
			Publisher:       "ACM Queue",
			PublicationDate: time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC),
			URL:             "https://queue.example.com/scaling",
			Description:     "A study of partitioning",
		},
	}
	profile.Volunteer = []models.VolunteerExperience{
		{
			Organization: "Code Club",
			Role:         "Mentor",
			Cause:        "Education",
			Description:  "Weekly sessions",
			StartDate:    time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	_, projects, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}

	var pub, vol *ProjectRecord
	for i := range projects {
		switch {
		case strings.HasPrefix(projects[i].Title, "Publication: "):
			pub = &projects[i]
		case strings.HasPrefix(projects[i].Title, "Volunteer: "):
			vol = &projects[i]
		}
	}
	if pub == nil || vol == nil {
		t.Fatalf("missing publication or volunteer project: %+v", projects)
	}

	if pub.Description != "ACM Queue" || pub.LongDescription != "A study of partitioning" {
		t.Errorf("publication fields: %+v", pub)
	}
	if !pub.UpdatedAt.Equal(pub.CreatedAt) {
		t.Errorf("publication updated_at should equal created_at")
	}

	if vol.Title != "Volunteer: Mentor at Code Club" {
		t.Errorf("volunteer title = %q", vol.Title)
	}
	if !strings.Contains(vol.LongDescription, "Cause: Education") ||
		!strings.Contains(vol.LongDescription, "Weekly sessions") {
		t.Errorf("volunteer long description = %q", vol.LongDescription)
	}
	if !vol.UpdatedAt.Equal(testNow) {
		t.Errorf("ongoing volunteer updated_at = %v, expected now", vol.UpdatedAt)
	}
}

func TestSlugsDistinctAcrossAllSources(t *testing.T) {
	profile := baseProfile()
	profile.Positions = []models.Position{
		{CompanyName: "Acme", Title: "Engineer", StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{CompanyName: "Acme", Title: "Engineer", StartDate: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	profile.Certifications = []models.Certification{
		{Name: "Engineer at Acme", Authority: "Board"},
	}

	_, projects, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}

	seen := map[string]bool{}
	for _, p := range projects {
		if p.Slug == "" {
			t.Errorf("project %q has empty slug", p.Title)
		}
		if seen[p.Slug] {
			t.Errorf("duplicate slug %q", p.Slug)
		}
		seen[p.Slug] = true
	}
}

func TestTechnologyLinkingTopThree(t *testing.T) {
	profile := baseProfile()
	for i, year := range []int{2016, 2018, 2020, 2022, 2023} {
		profile.Positions = append(profile.Positions, models.Position{
			CompanyName: "Company " + string(rune('A'+i)),
			Title:       "Engineer",
			StartDate:   time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	profile.Skills = []models.Skill{
		{Name: "Go", EndorsementCount: 40},
		{Name: "Postgres", EndorsementCount: 25},
		{Name: "Docker", EndorsementCount: 10},
		{Name: "Kafka", EndorsementCount: 5},
	}

	_, projects, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(projects) != 5 {
		t.Fatalf("expected 5 projects, got %d", len(projects))
	}

	// Sorted most recent first: 2023, 2022, 2020 get skills.
	totalLinks := 0
	for i, p := range projects {
		totalLinks += len(p.Technologies)
		if i < 3 && len(p.Technologies) != 4 {
			t.Errorf("project %d (%d) has %d technologies, expected 4", i, p.CreatedAt.Year(), len(p.Technologies))
		}
		if i >= 3 && len(p.Technologies) != 0 {
			t.Errorf("project %d (%d) outside top 3 has technologies", i, p.CreatedAt.Year())
		}
	}
	if totalLinks != 12 {
		t.Errorf("total technology rows = %d, expected 12", totalLinks)
	}

	// Endorsement ordering.
	want := []string{"Go", "Postgres", "Docker", "Kafka"}
	for i, name := range want {
		if projects[0].Technologies[i] != name {
			t.Errorf("technologies[%d] = %q, expected %q", i, projects[0].Technologies[i], name)
		}
	}
}

func TestSkillDeduplication(t *testing.T) {
	profile := baseProfile()
	profile.Positions = []models.Position{
		{CompanyName: "Acme", Title: "Engineer", StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	profile.Skills = []models.Skill{
		{Name: "Go", EndorsementCount: 10},
		{Name: " go ", EndorsementCount: 99},
		{Name: "GO"},
		{Name: "Rust"},
		{Name: "   "},
	}

	_, projects, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	techs := projects[0].Technologies
	if len(techs) != 2 {
		t.Fatalf("expected 2 deduplicated skills, got %v", techs)
	}
	if techs[0] != "Go" || techs[1] != "Rust" {
		t.Errorf("technologies = %v", techs)
	}
}

func TestMapIsDeterministic(t *testing.T) {
	profile := baseProfile()
	profile.Headline = "Engineer"
	profile.Positions = []models.Position{
		{CompanyName: "Acme", Title: "Engineer", StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{CompanyName: "Beta", Title: "Engineer", StartDate: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	profile.Skills = []models.Skill{{Name: "Go"}, {Name: "SQL"}}

	user1, projects1, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	user2, projects2, err := Map(profile, "", testNow, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}

	if *user1 != *user2 {
		t.Errorf("user records differ between runs")
	}
	if len(projects1) != len(projects2) {
		t.Fatalf("project counts differ")
	}
	for i := range projects1 {
		if projects1[i].Slug != projects2[i].Slug || !projects1[i].UpdatedAt.Equal(projects2[i].UpdatedAt) {
			t.Errorf("project %d differs between runs", i)
		}
	}
}
