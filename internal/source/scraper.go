package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/khrees2412/linkfolio/internal/apperror"
	"github.com/khrees2412/linkfolio/internal/config"
	"github.com/khrees2412/linkfolio/pkg/models"
)

const (
	linkedinBase  = "https://www.linkedin.com"
	checkpointMax = 60 * time.Second
)

// Scraper extracts a profile from the public LinkedIn web UI with a
// headless browser. It prefers cookie auth (no login form, no
// checkpoint) and falls back to credential login.
type Scraper struct {
	auth    config.AuthConfig
	opts    config.ScraperConfig
	log     *zap.Logger
	browser context.Context
	cancel  context.CancelFunc
}

// NewScraper starts a browser and returns a scraper over it. Close
// must be called to tear the browser down.
func NewScraper(auth config.AuthConfig, opts config.ScraperConfig, log *zap.Logger) (*Scraper, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !auth.Configured() {
		return nil, apperror.NewAuth("no cookie or credentials configured", nil)
	}

	browser, cancel := newBrowserContext(context.Background(), opts.Headless)
	return &Scraper{auth: auth, opts: opts, log: log, browser: browser, cancel: cancel}, nil
}

// Close tears down the browser.
func (s *Scraper) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// newBrowserContext creates a browser context with flags that keep
// LinkedIn from flagging the session as automated.
func newBrowserContext(parent context.Context, headless bool) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("excludeSwitches", "enable-automation"),
		chromedp.Flag("useAutomationExtension", false),
		chromedp.UserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		// chromedp spams unmarshal warnings for CDP events it does not
		// know; they are harmless.
		msg := fmt.Sprintf(format, v...)
		if strings.Contains(msg, "could not unmarshal event") {
			return
		}
	}))

	return ctx, func() {
		cancelCtx()
		cancelAlloc()
	}
}

// FetchProfile authenticates, navigates to the profile page, and
// extracts the structured profile. ref is a profile URL or a public
// identifier such as "ada-lovelace".
func (s *Scraper) FetchProfile(ctx context.Context, ref string) (*models.Profile, error) {
	profileURL, err := NormalizeRef(ref)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(s.browser, 4*s.opts.PageLoadTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		if attempt > 1 {
			s.log.Warn("retrying profile fetch",
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-time.After(time.Duration(attempt) * s.opts.ActionDelay):
			case <-ctx.Done():
				return nil, apperror.NewScraper("fetch cancelled", ctx.Err())
			}
		}

		profile, err := s.fetchOnce(ctx, profileURL)
		if err == nil {
			return profile, nil
		}
		// Auth rejections and missing profiles will not improve with
		// retries.
		if isPermanent(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func isPermanent(err error) bool {
	return errors.Is(err, apperror.ErrAuth) || errors.Is(err, apperror.ErrProfileNotFound)
}

func (s *Scraper) fetchOnce(ctx context.Context, profileURL string) (*models.Profile, error) {
	if err := s.login(ctx); err != nil {
		return nil, err
	}

	if err := s.openProfile(ctx, profileURL); err != nil {
		return nil, err
	}

	raw, err := s.extract(ctx)
	if err != nil {
		return nil, err
	}

	profile := raw.toProfile()
	if profile.FullName() == "" {
		return nil, apperror.NewScraper("profile page yielded no name; layout may have changed", nil)
	}
	return profile, nil
}

// login establishes an authenticated session, preferring the session
// cookie over the login form.
func (s *Scraper) login(ctx context.Context) error {
	if s.auth.Method() == config.AuthCookie {
		return s.loginWithCookie(ctx)
	}
	return s.loginWithCredentials(ctx)
}

func (s *Scraper) loginWithCookie(ctx context.Context) error {
	s.log.Debug("authenticating with session cookie")
	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookie("li_at", s.auth.Cookie).
				WithDomain(".linkedin.com").
				WithPath("/").
				WithHTTPOnly(true).
				WithSecure(true).
				Do(ctx)
		}),
		chromedp.Navigate(linkedinBase+"/feed/"),
		chromedp.Sleep(s.opts.ActionDelay),
	)
	if err != nil {
		return apperror.NewScraper("cookie login navigation failed", err)
	}

	var currentURL string
	if err := chromedp.Run(ctx, chromedp.Location(&currentURL)); err != nil {
		return apperror.NewScraper("failed to read page location", err)
	}
	if strings.Contains(currentURL, "/login") || strings.Contains(currentURL, "/authwall") {
		return apperror.NewAuth("session cookie was rejected; it may have expired", nil)
	}
	return nil
}

func (s *Scraper) loginWithCredentials(ctx context.Context) error {
	s.log.Debug("authenticating with credentials", zap.String("email", s.auth.Email))
	err := chromedp.Run(ctx,
		chromedp.Navigate(linkedinBase+"/login"),
		chromedp.WaitVisible(`input[name="session_key"]`, chromedp.ByQuery),
		chromedp.Sleep(s.opts.ActionDelay),
		chromedp.SendKeys(`input[name="session_key"]`, s.auth.Email, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="session_password"]`, s.auth.Password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(3*s.opts.ActionDelay),
	)
	if err != nil {
		return apperror.NewScraper("login form submission failed", err)
	}

	var currentURL string
	if err := chromedp.Run(ctx, chromedp.Location(&currentURL)); err != nil {
		return apperror.NewScraper("failed to read page location", err)
	}

	if strings.Contains(currentURL, "/checkpoint") {
		return s.waitForCheckpoint(ctx)
	}
	if strings.Contains(currentURL, "/login") {
		return apperror.NewAuth("login rejected; check the configured credentials", nil)
	}
	return nil
}

// waitForCheckpoint handles the two-factor / verification page. With a
// visible browser the user can complete it; headless sessions cannot.
func (s *Scraper) waitForCheckpoint(ctx context.Context) error {
	if s.opts.Headless {
		return apperror.NewAuth("hit a verification checkpoint in headless mode; use cookie auth or run with HEADLESS=false", nil)
	}

	s.log.Info("verification checkpoint detected, waiting for manual completion",
		zap.Duration("timeout", checkpointMax))

	deadline := time.Now().Add(checkpointMax)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return apperror.NewScraper("fetch cancelled", ctx.Err())
		case <-time.After(2 * time.Second):
		}
		var currentURL string
		if err := chromedp.Run(ctx, chromedp.Location(&currentURL)); err != nil {
			return apperror.NewScraper("failed to read page location", err)
		}
		if !strings.Contains(currentURL, "/checkpoint") && !strings.Contains(currentURL, "/login") {
			s.log.Info("checkpoint cleared")
			return nil
		}
	}
	return apperror.NewAuth("verification checkpoint was not completed in time", nil)
}

// openProfile navigates to the profile page and scrolls it so lazily
// loaded sections render.
func (s *Scraper) openProfile(ctx context.Context, profileURL string) error {
	err := chromedp.Run(ctx,
		chromedp.Navigate(profileURL),
		chromedp.Sleep(s.opts.ActionDelay),
	)
	if err != nil {
		return apperror.NewScraper("profile navigation failed", err)
	}

	var currentURL string
	if err := chromedp.Run(ctx, chromedp.Location(&currentURL)); err != nil {
		return apperror.NewScraper("failed to read page location", err)
	}
	if strings.Contains(currentURL, "/404") || strings.Contains(currentURL, "unavailable") {
		return apperror.NewProfileNotFound(profileURL)
	}
	if strings.Contains(currentURL, "/authwall") || strings.Contains(currentURL, "/login") {
		return apperror.NewAuth("session lost while opening the profile", nil)
	}

	return chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			for i := 0; i < 6; i++ {
				chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil).Do(ctx)
				chromedp.Sleep(s.opts.ScrollDelay).Do(ctx)
			}
			chromedp.Evaluate(`window.scrollTo(0, 0)`, nil).Do(ctx)
			return nil
		}),
	)
}

// rawProfile is the shape the in-page extraction script returns.
// Everything is strings; date parsing happens in Go.
type rawProfile struct {
	Name           string             `json:"name"`
	Headline       string             `json:"headline"`
	Location       string             `json:"location"`
	Summary        string             `json:"summary"`
	AvatarURL      string             `json:"avatar_url"`
	Positions      []rawPosition      `json:"positions"`
	Education      []rawEducation     `json:"education"`
	Skills         []string           `json:"skills"`
	Certifications []rawCertification `json:"certifications"`
	Languages      []rawLanguage      `json:"languages"`
}

type rawPosition struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	DateRange   string `json:"date_range"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type rawEducation struct {
	School    string `json:"school"`
	Degree    string `json:"degree"`
	DateRange string `json:"date_range"`
}

type rawCertification struct {
	Name      string `json:"name"`
	Authority string `json:"authority"`
	DateRange string `json:"date_range"`
}

type rawLanguage struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

// extract pulls the profile sections out of the rendered page. Each
// section uses several selector strategies because LinkedIn ships
// multiple layouts.
func (s *Scraper) extract(ctx context.Context) (*rawProfile, error) {
	var raw rawProfile
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(() => {
				const text = (root, sels) => {
					for (const sel of sels) {
						const el = root.querySelector(sel);
						if (el && el.textContent.trim()) return el.textContent.trim();
					}
					return '';
				};

				const section = (anchors) => {
					for (const anchor of anchors) {
						const el = document.querySelector('#' + anchor);
						if (el) return el.closest('section');
					}
					return null;
				};

				const items = (sec) => sec
					? Array.from(sec.querySelectorAll('li.artdeco-list__item, li.pvs-list__paged-list-item, .pvs-entity'))
					: [];

				const out = {
					name: text(document, ['.pv-text-details__left-panel h1', 'h1.text-heading-xlarge', 'main h1']),
					headline: text(document, ['.pv-text-details__left-panel .text-body-medium', '.text-body-medium.break-words']),
					location: text(document, ['.pv-text-details__left-panel .text-body-small', 'span.text-body-small.inline.t-black--light']),
					summary: '',
					avatar_url: '',
					positions: [],
					education: [],
					skills: [],
					certifications: [],
					languages: []
				};

				const avatar = document.querySelector('img.pv-top-card-profile-picture__image, img.profile-photo-edit__preview, .pv-top-card__photo img');
				if (avatar && avatar.src) out.avatar_url = avatar.src;

				const about = section(['about']);
				if (about) {
					out.summary = text(about, ['.inline-show-more-text', '.pv-shared-text-with-see-more span[aria-hidden="true"]', 'div.display-flex span[aria-hidden="true"]']);
				}

				for (const item of items(section(['experience']))) {
					const spans = Array.from(item.querySelectorAll('span[aria-hidden="true"]')).map(s => s.textContent.trim());
					out.positions.push({
						title: spans[0] || '',
						company: (spans[1] || '').split(' · ')[0],
						date_range: spans.find(s => /\d{4}/.test(s)) || '',
						location: spans.length > 3 ? spans[3] : '',
						description: text(item, ['.inline-show-more-text', '.pvs-entity__sub-components span[aria-hidden="true"]'])
					});
				}

				for (const item of items(section(['education']))) {
					const spans = Array.from(item.querySelectorAll('span[aria-hidden="true"]')).map(s => s.textContent.trim());
					out.education.push({
						school: spans[0] || '',
						degree: spans[1] || '',
						date_range: spans.find(s => /\d{4}/.test(s)) || ''
					});
				}

				for (const item of items(section(['skills']))) {
					const name = text(item, ['span[aria-hidden="true"]']);
					if (name) out.skills.push(name);
				}

				for (const item of items(section(['licenses_and_certifications', 'certifications']))) {
					const spans = Array.from(item.querySelectorAll('span[aria-hidden="true"]')).map(s => s.textContent.trim());
					out.certifications.push({
						name: spans[0] || '',
						authority: spans[1] || '',
						date_range: spans.find(s => /\d{4}/.test(s)) || ''
					});
				}

				for (const item of items(section(['languages']))) {
					const spans = Array.from(item.querySelectorAll('span[aria-hidden="true"]')).map(s => s.textContent.trim());
					out.languages.push({ name: spans[0] || '', proficiency: spans[1] || '' });
				}

				return out;
			})()
		`, &raw),
	)
	if err != nil {
		return nil, apperror.NewScraper("profile extraction failed", err)
	}
	return &raw, nil
}

// toProfile converts scraped strings into the structured model.
func (r *rawProfile) toProfile() *models.Profile {
	first, last := SplitName(r.Name)
	p := &models.Profile{
		FirstName:         first,
		LastName:          last,
		Headline:          r.Headline,
		Summary:           r.Summary,
		Location:          r.Location,
		ProfilePictureURL: r.AvatarURL,
	}

	for _, pos := range r.Positions {
		if pos.Title == "" {
			continue
		}
		start, end := ParseDateRange(pos.DateRange)
		p.Positions = append(p.Positions, models.Position{
			Title:       pos.Title,
			CompanyName: pos.Company,
			Description: pos.Description,
			Location:    pos.Location,
			StartDate:   start,
			EndDate:     end,
		})
	}

	for _, edu := range r.Education {
		if edu.School == "" {
			continue
		}
		start, end := ParseDateRange(edu.DateRange)
		p.Education = append(p.Education, models.Education{
			School:    edu.School,
			Degree:    edu.Degree,
			StartDate: start,
			EndDate:   end,
		})
	}

	for _, name := range r.Skills {
		p.Skills = append(p.Skills, models.Skill{Name: name})
	}

	for _, cert := range r.Certifications {
		if cert.Name == "" {
			continue
		}
		start, end := ParseDateRange(cert.DateRange)
		p.Certifications = append(p.Certifications, models.Certification{
			Name:      cert.Name,
			Authority: cert.Authority,
			StartDate: start,
			EndDate:   end,
		})
	}

	for _, lang := range r.Languages {
		if lang.Name == "" {
			continue
		}
		p.Languages = append(p.Languages, models.Language{
			Name:        lang.Name,
			Proficiency: lang.Proficiency,
		})
	}

	return p
}
