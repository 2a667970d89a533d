// Package mapper transforms a fetched profile into the row records
// persisted by the portfolio database. It performs no I/O and is
// deterministic given the same profile, email override, and clock
// value.
package mapper

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khrees2412/linkfolio/internal/apperror"
	"github.com/khrees2412/linkfolio/internal/slug"
	"github.com/khrees2412/linkfolio/pkg/models"
)

// maxLinkedProjects is how many of the most recent projects receive
// technology links.
const maxLinkedProjects = 3

// sectionSeparator joins the bio sections.
const sectionSeparator = "\n\n"

// UserRecord is the users-table row derived from a profile. Imported
// accounts have no local password, so PasswordHash stays empty.
type UserRecord struct {
	Email        string
	Name         string
	Bio          string
	AvatarURL    string
	PasswordHash string
}

// ProjectRecord is a projects-table row derived from one profile
// section entry, plus the technologies to link to it.
type ProjectRecord struct {
	Slug            string
	Title           string
	Description     string
	LongDescription string
	ImageURL        string
	LiveURL         string
	GithubURL       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Technologies    []string
}

// Map derives the user row and project rows for one profile.
//
// emailOverride always wins over the profile's own email; a profile
// with neither fails validation, as does one without any name. now is
// the injected import time used for ongoing positions and undated
// entries.
func Map(profile *models.Profile, emailOverride string, now time.Time, log *zap.Logger) (*UserRecord, []ProjectRecord, error) {
	if log == nil {
		log = zap.NewNop()
	}

	name := strings.TrimSpace(profile.FullName())
	if name == "" {
		return nil, nil, apperror.NewValidation("profile has no name")
	}

	email := strings.TrimSpace(emailOverride)
	if email == "" {
		email = strings.TrimSpace(profile.Email)
	}
	if email == "" {
		return nil, nil, apperror.NewValidation("no email: profile has none and no override was supplied")
	}

	user := &UserRecord{
		Email:     email,
		Name:      name,
		Bio:       formatBio(profile),
		AvatarURL: profile.ProfilePictureURL,
	}

	registry := slug.NewRegistry()
	var projects []ProjectRecord

	for _, pos := range profile.Positions {
		if pos.StartDate.IsZero() {
			log.Warn("skipping position without start date",
				zap.String("title", pos.Title),
				zap.String("company", pos.CompanyName))
			continue
		}
		projects = append(projects, mapPosition(pos, registry, now))
	}
	for _, cert := range profile.Certifications {
		projects = append(projects, mapCertification(cert, registry, now))
	}
	for _, pub := range profile.Publications {
		projects = append(projects, mapPublication(pub, registry, now))
	}
	for _, vol := range profile.Volunteer {
		projects = append(projects, mapVolunteer(vol, registry, now))
	}

	// Most recent first; stable so same-day entries keep source order.
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})

	linkSkills(projects, profile.Skills)

	return user, projects, nil
}

func mapPosition(pos models.Position, registry *slug.Registry, now time.Time) ProjectRecord {
	title := fmt.Sprintf("%s at %s", pos.Title, pos.CompanyName)

	description := pos.Description
	if description == "" {
		description = pos.EmploymentType
	}

	var longParts []string
	if pos.Location != "" {
		longParts = append(longParts, "Location: "+pos.Location)
	}
	if pos.EmploymentType != "" {
		longParts = append(longParts, "Employment Type: "+pos.EmploymentType)
	}
	if pos.Responsibilities != "" {
		longParts = append(longParts, pos.Responsibilities)
	}

	updatedAt := now
	if pos.EndDate != nil {
		updatedAt = *pos.EndDate
	}

	return ProjectRecord{
		Slug:            registry.Unique(title),
		Title:           title,
		Description:     description,
		LongDescription: strings.Join(longParts, "\n\n"),
		ImageURL:        pos.CompanyLogoURL,
		LiveURL:         pos.CompanyURL,
		CreatedAt:       pos.StartDate,
		UpdatedAt:       updatedAt,
	}
}

func mapCertification(cert models.Certification, registry *slug.Registry, now time.Time) ProjectRecord {
	title := "Certification: " + cert.Name

	var long string
	if cert.LicenseNumber != "" {
		long = "License Number: " + cert.LicenseNumber
	}

	createdAt := cert.StartDate
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := createdAt
	if cert.EndDate != nil {
		updatedAt = *cert.EndDate
	}

	return ProjectRecord{
		Slug:            registry.Unique(title),
		Title:           title,
		Description:     cert.Authority,
		LongDescription: long,
		LiveURL:         cert.URL,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

func mapPublication(pub models.Publication, registry *slug.Registry, now time.Time) ProjectRecord {
	title := "Publication: " + pub.Name

	createdAt := pub.PublicationDate
	if createdAt.IsZero() {
		createdAt = now
	}

	return ProjectRecord{
		Slug:            registry.Unique(title),
		Title:           title,
		Description:     pub.Publisher,
		LongDescription: pub.Description,
		LiveURL:         pub.URL,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func mapVolunteer(vol models.VolunteerExperience, registry *slug.Registry, now time.Time) ProjectRecord {
	title := fmt.Sprintf("Volunteer: %s at %s", vol.Role, vol.Organization)

	var longParts []string
	if vol.Cause != "" {
		longParts = append(longParts, "Cause: "+vol.Cause)
	}
	if vol.Description != "" {
		longParts = append(longParts, vol.Description)
	}

	createdAt := vol.StartDate
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := now
	if vol.EndDate != nil {
		updatedAt = *vol.EndDate
	}

	return ProjectRecord{
		Slug:            registry.Unique(title),
		Title:           title,
		Description:     vol.Description,
		LongDescription: strings.Join(longParts, "\n\n"),
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// linkSkills attaches the deduplicated skill list to the most recent
// projects. projects must already be sorted most recent first.
func linkSkills(projects []ProjectRecord, skills []models.Skill) {
	if len(skills) == 0 || len(projects) == 0 {
		return
	}

	seen := make(map[string]bool, len(skills))
	deduped := make([]models.Skill, 0, len(skills))
	for _, s := range skills {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, models.Skill{Name: name, EndorsementCount: s.EndorsementCount})
	}

	// Highest endorsement first; stable keeps source order on ties,
	// which is all the scraper path has.
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].EndorsementCount > deduped[j].EndorsementCount
	})

	names := make([]string, len(deduped))
	for i, s := range deduped {
		names[i] = s.Name
	}

	for i := range projects {
		if i >= maxLinkedProjects {
			break
		}
		projects[i].Technologies = append([]string(nil), names...)
	}
}

// formatBio builds the composite bio text: headline, summary,
// location/industry metadata, education, languages, and honors, each
// section omitted entirely when its inputs are absent.
func formatBio(profile *models.Profile) string {
	var parts []string

	if profile.Headline != "" {
		parts = append(parts, profile.Headline)
	}
	if profile.Summary != "" {
		parts = append(parts, profile.Summary)
	}

	var meta []string
	if profile.Location != "" {
		meta = append(meta, "Location: "+profile.Location)
	}
	if profile.Industry != "" {
		meta = append(meta, "Industry: "+profile.Industry)
	}
	if len(meta) > 0 {
		parts = append(parts, strings.Join(meta, ", "))
	}

	if len(profile.Education) > 0 {
		parts = append(parts, "EDUCATION\n"+strings.Repeat("-", 9))
		for _, edu := range profile.Education {
			parts = append(parts, formatEducation(edu))
		}
	}

	if len(profile.Languages) > 0 {
		parts = append(parts, "LANGUAGES\n"+strings.Repeat("-", 9))
		langs := make([]string, len(profile.Languages))
		for i, lang := range profile.Languages {
			if lang.Proficiency != "" {
				langs[i] = fmt.Sprintf("%s (%s)", lang.Name, lang.Proficiency)
			} else {
				langs[i] = lang.Name
			}
		}
		parts = append(parts, strings.Join(langs, ", "))
	}

	if len(profile.Honors) > 0 {
		parts = append(parts, "HONORS & AWARDS\n"+strings.Repeat("-", 15))
		for _, honor := range profile.Honors {
			line := honor.Title
			if honor.Issuer != "" {
				line += " - " + honor.Issuer
			}
			if !honor.IssueDate.IsZero() {
				line += fmt.Sprintf(" (%d)", honor.IssueDate.Year())
			}
			parts = append(parts, line)
			if honor.Description != "" {
				parts = append(parts, honor.Description)
			}
		}
	}

	return strings.Join(parts, sectionSeparator)
}

func formatEducation(edu models.Education) string {
	var degree []string
	if edu.Degree != "" {
		degree = append(degree, edu.Degree)
	}
	if edu.FieldOfStudy != "" {
		degree = append(degree, "in "+edu.FieldOfStudy)
	}
	if len(degree) > 0 {
		degree = append(degree, "from "+edu.School)
	} else {
		degree = append(degree, edu.School)
	}

	if !edu.StartDate.IsZero() || edu.EndDate != nil {
		start := "?"
		if !edu.StartDate.IsZero() {
			start = fmt.Sprintf("%d", edu.StartDate.Year())
		}
		end := "Present"
		if edu.EndDate != nil {
			end = fmt.Sprintf("%d", edu.EndDate.Year())
		}
		degree = append(degree, fmt.Sprintf("(%s - %s)", start, end))
	}

	lines := []string{strings.Join(degree, " ")}
	if edu.Grade != "" {
		lines = append(lines, edu.Grade)
	}
	if edu.Activities != "" {
		lines = append(lines, edu.Activities)
	}
	return strings.Join(lines, "\n")
}
