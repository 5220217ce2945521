// Package scraper extracts contact information and keyword candidates from
// lead websites over plain HTTP.
package scraper

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Pages checked for contact details, after the home page
var contactPaths = []string{
	"/contacto",
	"/contact",
	"/contactenos",
	"/aviso-legal",
	"/legal",
	"/aviso_legal",
	"/politica-privacidad",
	"/privacy",
	"/empresa",
	"/about",
	"/about-us",
	"/quienes-somos",
	"/nosotros",
	"/informacion",
	"/info",
}

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// Spanish, French, Portuguese and generic European phone formats
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:\+34\s?|0034\s?)?[6789]\d{2}[\s.-]?\d{2}[\s.-]?\d{2}[\s.-]?\d{2}\b`),
	regexp.MustCompile(`(?:\+33\s?|0033\s?)?\d{3}[\s.-]?\d{2}[\s.-]?\d{2}[\s.-]?\d{2}\b`),
	regexp.MustCompile(`(?:\+351\s?|00351\s?)?\d{3}[\s.-]?\d{3}[\s.-]?\d{3}\b`),
	regexp.MustCompile(`\+\d{2,3}[\s.-]?\d{2,4}[\s.-]?\d{2,4}[\s.-]?\d{2,4}[\s.-]?\d{2,4}`),
}

// Spanish CIF/NIF: letter + 8 digits or 8 digits + letter
var cifPattern = regexp.MustCompile(`\b[A-Z]\d{8}\b|\b\d{8}[A-Z]\b`)

// Address fragments that are never a real contact email
var excludedEmailFragments = []string{
	"example@", "test@", "info@example", "noreply@",
	"no-reply@", "admin@admin", "@sentry.io", "@google",
	"@facebook", "@twitter", "@instagram", ".png", ".jpg",
	".gif", ".webp", "@2x.", "@3x.",
}

var nonDigits = regexp.MustCompile(`\D`)
var phoneSeparators = regexp.MustCompile(`[\s.-]`)

// ContactInfo is the result of a contact extraction run
type ContactInfo struct {
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	CIF          string   `json:"cif"`
	EmailsFound  []string `json:"emails_found"`
	PhonesFound  []string `json:"phones_found"`
	PagesVisited []string `json:"pages_visited"`
}

// ContactScraper fetches a site's contact pages and pulls emails, phones
// and the CIF out of the text.
type ContactScraper struct {
	client    *http.Client
	userAgent string
	delay     time.Duration
	maxPages  int
}

// NewContactScraper creates a scraper with the given timeout and politeness
// delay between page fetches.
func NewContactScraper(timeout, delay time.Duration, userAgent string) *ContactScraper {
	return &ContactScraper{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				// Small-business sites routinely have broken certificates
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		userAgent: userAgent,
		delay:     delay,
		maxPages:  3,
	}
}

// ExtractContactInfo visits the site's home and contact pages and returns
// the best email, phone and CIF found.
func (s *ContactScraper) ExtractContactInfo(ctx context.Context, rawURL string) (*ContactInfo, error) {
	base, err := normalizeBaseURL(rawURL)
	if err != nil {
		return nil, err
	}

	pages := []string{base}
	for _, path := range contactPaths {
		if len(pages) >= s.maxPages {
			break
		}
		pages = append(pages, strings.TrimSuffix(base, "/")+path)
	}

	info := &ContactInfo{
		EmailsFound:  []string{},
		PhonesFound:  []string{},
		PagesVisited: []string{},
	}

	for i, pageURL := range pages {
		if i > 0 {
			select {
			case <-ctx.Done():
				return info, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		emails, phones, cif, err := s.scrapePage(ctx, pageURL)
		if err != nil {
			continue
		}
		info.PagesVisited = append(info.PagesVisited, pageURL)
		info.EmailsFound = append(info.EmailsFound, emails...)
		info.PhonesFound = append(info.PhonesFound, phones...)
		if cif != "" && info.CIF == "" {
			info.CIF = cif
		}

		if len(info.EmailsFound) > 0 && len(info.PhonesFound) > 0 && info.CIF != "" {
			break
		}
	}

	info.EmailsFound = dedupe(info.EmailsFound)
	info.PhonesFound = dedupe(info.PhonesFound)
	info.Email = selectBestEmail(info.EmailsFound)
	info.Phone = selectBestPhone(info.PhonesFound)

	return info, nil
}

func (s *ContactScraper) scrapePage(ctx context.Context, pageURL string) (emails, phones []string, cif string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, "", err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, "", errNotHTML
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, nil, "", errNotHTML
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, "", err
	}

	var sb strings.Builder
	sb.WriteString(doc.Text())

	// mailto: and tel: links often carry the only machine-readable contact
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.HasPrefix(href, "mailto:") {
			sb.WriteString(" " + strings.TrimPrefix(href, "mailto:"))
		} else if strings.HasPrefix(href, "tel:") {
			sb.WriteString(" " + strings.TrimPrefix(href, "tel:"))
		}
	})

	text := sb.String()
	return findEmails(text), findPhones(text), findCIF(text), nil
}

var (
	errNotHTML    = errors.New("not an HTML page")
	errInvalidURL = errors.New("invalid URL")
)

func findEmails(text string) []string {
	var valid []string
	for _, email := range emailPattern.FindAllString(text, -1) {
		lower := strings.ToLower(email)
		excluded := false
		for _, fragment := range excludedEmailFragments {
			if strings.Contains(lower, fragment) {
				excluded = true
				break
			}
		}
		if !excluded {
			valid = append(valid, lower)
		}
	}
	return valid
}

func findPhones(text string) []string {
	var phones []string
	for _, pattern := range phonePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			clean := phoneSeparators.ReplaceAllString(match, "")
			if len(clean) >= 9 {
				phones = append(phones, clean)
			}
		}
	}
	return phones
}

func findCIF(text string) string {
	if match := cifPattern.FindString(text); match != "" {
		return strings.ToUpper(match)
	}
	return ""
}

// selectBestEmail prefers generic business mailboxes over personal ones
func selectBestEmail(emails []string) string {
	if len(emails) == 0 {
		return ""
	}
	priorities := []string{"info@", "contacto@", "contact@", "comercial@", "ventas@", "sales@"}
	for _, priority := range priorities {
		for _, email := range emails {
			if strings.HasPrefix(email, priority) {
				return email
			}
		}
	}
	return emails[0]
}

// selectBestPhone prefers Spanish mobile numbers (6/7 prefix)
func selectBestPhone(phones []string) string {
	if len(phones) == 0 {
		return ""
	}
	for _, phone := range phones {
		digits := nonDigits.ReplaceAllString(phone, "")
		if len(digits) >= 11 && strings.HasPrefix(digits, "34") {
			if digits[2] == '6' || digits[2] == '7' {
				return formatPhone(phone)
			}
		} else if len(digits) >= 9 && (digits[0] == '6' || digits[0] == '7') {
			return formatPhone(phone)
		}
	}
	return formatPhone(phones[0])
}

func formatPhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")

	if len(digits) == 9 && strings.ContainsRune("6789", rune(digits[0])) {
		return "+34 " + digits[:3] + " " + digits[3:5] + " " + digits[5:7] + " " + digits[7:]
	}
	if len(digits) >= 11 && strings.HasPrefix(digits, "34") {
		return "+" + digits[:2] + " " + digits[2:5] + " " + digits[5:7] + " " + digits[7:9] + " " + digits[9:]
	}
	return phone
}

func normalizeBaseURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errInvalidURL
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Host == "" {
		return "", errInvalidURL
	}
	return parsed.Scheme + "://" + parsed.Host + "/", nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
