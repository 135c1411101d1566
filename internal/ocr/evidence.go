package ocr

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Evidence errors. Each names the first check a screenshot failed.
var (
	ErrEmptyText             = errors.New("no text recognized in screenshot")
	ErrChannelNotMentioned   = errors.New("screenshot does not mention the channel")
	ErrNoMembershipKeyword   = errors.New("screenshot does not look like a membership page")
	ErrNoBillingDate         = errors.New("no billing date found in screenshot")
	ErrBillingDateInPast     = errors.New("billing date is in the past")
	ErrBillingDateTooDistant = errors.New("billing date is too far in the future")
)

// maxBillingHorizon bounds how far ahead a monthly billing date may be.
const maxBillingHorizon = 62 * 24 * time.Hour

var membershipKeywords = []string{"membership", "member", "メンバー", "會員", "会员", "membresía"}

// Evidence is what a screenshot proves about a membership.
type Evidence struct {
	ChannelTitle string
	Keyword      string
	BillingDate  time.Time
	// ExpiresAt is the end of the billing day in UTC.
	ExpiresAt time.Time
}

type datePattern struct {
	re     *regexp.Regexp
	layout string
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`\b\d{4}/\d{1,2}/\d{1,2}\b`), "2006/1/2"},
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "2006-01-02"},
	{regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日`), "2006年1月2日"},
	{regexp.MustCompile(`(?i)\b[a-z]{3,9}\.? \d{1,2}, \d{4}\b`), "Jan 2, 2006"},
	{regexp.MustCompile(`(?i)\b\d{1,2} [a-z]{3,9}\.? \d{4}\b`), "2 Jan 2006"},
}

var spaces = regexp.MustCompile(`\s+`)

// billingKeywords mark the renewal date among other dates on the page, such as
// "Member since" or "Joined".
var billingKeywords = regexp.MustCompile(`(?i)billing|billed|renews?|帳單|账单|請求|请求|facturaci[oó]n`)

// ParseEvidence checks text for the channel title, a membership keyword and a
// future billing date. now is the reference time for the date check.
func ParseEvidence(text, channelTitle string, now time.Time) (Evidence, error) {
	normalized := normalize(text)
	if normalized == "" {
		return Evidence{}, ErrEmptyText
	}

	title := normalize(channelTitle)
	if title == "" || !strings.Contains(fold(normalized), fold(title)) {
		return Evidence{}, ErrChannelNotMentioned
	}

	keyword := findKeyword(fold(normalized))
	if keyword == "" {
		return Evidence{}, ErrNoMembershipKeyword
	}

	billing, ok := findBillingDate(normalized, now)
	if !ok {
		return Evidence{}, ErrNoBillingDate
	}

	expires := endOfDay(billing)
	if expires.Before(now) {
		return Evidence{}, ErrBillingDateInPast
	}
	if billing.Sub(now) > maxBillingHorizon {
		return Evidence{}, ErrBillingDateTooDistant
	}

	return Evidence{
		ChannelTitle: channelTitle,
		Keyword:      keyword,
		BillingDate:  billing,
		ExpiresAt:    expires,
	}, nil
}

// normalize collapses whitespace and drops control characters OCR tends to emit.
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\u3000' || r == '\u00a0':
			return ' '
		case unicode.IsControl(r) && !unicode.IsSpace(r):
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

func fold(s string) string {
	return strings.ToLower(s)
}

func findKeyword(folded string) string {
	for _, kw := range membershipKeywords {
		if strings.Contains(folded, kw) {
			return kw
		}
	}
	return ""
}

// dateMatch is a parsed date and its byte offset in the text.
type dateMatch struct {
	at   int
	date time.Time
}

// findBillingDate picks the date that follows a billing keyword most closely.
// Without a keyword it falls back to the earliest date that is not yet past,
// and then to the latest date so a stale screenshot is reported as such.
func findBillingDate(text string, now time.Time) (time.Time, bool) {
	dates := findDates(text)
	if len(dates) == 0 {
		return time.Time{}, false
	}

	keywords := billingKeywords.FindAllStringIndex(text, -1)
	best, bestDistance := -1, len(text)+1
	for i, d := range dates {
		for _, kw := range keywords {
			if kw[1] > d.at {
				continue
			}
			if distance := d.at - kw[1]; distance < bestDistance {
				best, bestDistance = i, distance
			}
		}
	}
	if best >= 0 {
		return dates[best].date, true
	}

	var upcoming, latest time.Time
	for _, d := range dates {
		if !endOfDay(d.date).Before(now) && (upcoming.IsZero() || d.date.Before(upcoming)) {
			upcoming = d.date
		}
		if d.date.After(latest) {
			latest = d.date
		}
	}
	if !upcoming.IsZero() {
		return upcoming, true
	}
	return latest, true
}

func findDates(text string) []dateMatch {
	var dates []dateMatch
	for _, p := range datePatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if t, ok := parseDate(text[loc[0]:loc[1]], p.layout); ok {
				dates = append(dates, dateMatch{at: loc[0], date: t})
			}
		}
	}
	return dates
}

func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Second)
}

func parseDate(s, layout string) (time.Time, bool) {
	s = strings.ReplaceAll(s, ".", "")
	if t, err := time.Parse(layout, s); err == nil {
		return t, true
	}
	// full month names ("March 3, 2026")
	long := strings.Replace(layout, "Jan", "January", 1)
	if long != layout {
		if t, err := time.Parse(long, titleCaseMonth(s)); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(layout, titleCaseMonth(s)); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// titleCaseMonth fixes OCR casing like "MAR" so time.Parse accepts it.
func titleCaseMonth(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 && unicode.IsLetter(rune(w[0])) {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}
