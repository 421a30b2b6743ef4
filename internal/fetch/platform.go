package fetch

import (
	"net/url"
	"strings"
)

// Platform is a known job board.
type Platform string

const (
	PlatformLinkedIn   Platform = "linkedin"
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

// DetectPlatform identifies the job board from a posting URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)
	switch {
	case strings.Contains(host, "linkedin.com"):
		return PlatformLinkedIn
	case strings.Contains(host, "greenhouse.io"):
		return PlatformGreenhouse
	case strings.Contains(host, "lever.co"):
		return PlatformLever
	case strings.Contains(host, "workday.com"), strings.Contains(host, "myworkdayjobs.com"):
		return PlatformWorkday
	default:
		return PlatformUnknown
	}
}

// fieldSelector reads one posting field. Attr, when set, reads that
// attribute instead of the element text. Split keeps one part of the text
// split on " - " (used for <title> fallbacks).
type fieldSelector struct {
	CSS   string
	Attr  string
	Split int
}

func sel(css string) fieldSelector { return fieldSelector{CSS: css, Split: -1} }

func attr(css, name string) fieldSelector { return fieldSelector{CSS: css, Attr: name, Split: -1} }

func titlePart(i int) fieldSelector { return fieldSelector{CSS: "title", Split: i} }

// postingSelectors lists candidates per field in priority order.
type postingSelectors struct {
	Company  []fieldSelector
	Location []fieldSelector
	Title    []fieldSelector
}

func selectorsFor(platform Platform) postingSelectors {
	switch platform {
	case PlatformLinkedIn:
		return postingSelectors{
			Company: []fieldSelector{
				sel("a.topcard__org-name-link"),
				sel(".top-card-layout__card h4 a"),
				sel(`[data-tracking-control-name="public_jobs_topcard-org-name"]`),
			},
			Location: []fieldSelector{
				sel(".topcard__flavor--bullet"),
				sel(`[class*="job-details-jobs-unified-top-card__bullet"]`),
			},
			Title: []fieldSelector{sel("h1.topcard__title"), sel(".top-card-layout__card h1"), sel("h1")},
		}
	case PlatformGreenhouse:
		return postingSelectors{
			Company:  []fieldSelector{sel("span.company-name"), sel(".app-title")},
			Location: []fieldSelector{sel("div.location"), sel(".location"), sel(".job__location")},
			Title:    []fieldSelector{sel("h1.app-title"), sel("h1")},
		}
	case PlatformLever:
		return postingSelectors{
			Company:  []fieldSelector{attr("a.main-header-logo img", "alt"), titlePart(1)},
			Location: []fieldSelector{sel("div.location"), sel(".posting-categories .location")},
			Title:    []fieldSelector{sel(`h2[data-qa="posting-name"]`), sel("h2")},
		}
	case PlatformWorkday:
		return postingSelectors{
			Company:  []fieldSelector{attr(`meta[property="og:site_name"]`, "content")},
			Location: []fieldSelector{sel(`[data-automation-id="locations"] dd`), sel(`[data-automation-id="locations"]`)},
			Title:    []fieldSelector{sel(`[data-automation-id="jobPostingHeader"]`), sel("h2"), sel("h1")},
		}
	default:
		return postingSelectors{
			Company: []fieldSelector{
				sel(`[class*="company"]`),
				sel("[data-company]"),
				attr(`meta[property="og:site_name"]`, "content"),
			},
			Location: []fieldSelector{sel(`[class*="location"]`), sel("[data-location]"), sel("address")},
			Title:    []fieldSelector{sel("h1"), titlePart(0)},
		}
	}
}

// PlatformContentSelectors returns description selectors for a platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformLinkedIn:
		return []string{".show-more-less-html__markup", ".description__text", ".jobs-description__content"}
	case PlatformGreenhouse:
		return []string{".job__description.body", ".job__description", "#content"}
	case PlatformLever:
		return []string{".posting-page", ".section-wrapper.page-full-width", ".content"}
	case PlatformWorkday:
		return []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"}
	default:
		return []string{
			".job-description",
			"#job-description",
			".job-details",
			".posting-content",
			"[data-testid='job-description']",
			"main",
			"article",
		}
	}
}

// PlatformNoiseSelectors returns elements stripped before reading the description.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".application-form",
		".eeo-statement",
		".social-share",
		".cookie-consent",
	}

	switch platform {
	case PlatformLinkedIn:
		return append(common, ".similar-jobs", ".sign-up-modal", ".contextual-sign-in-modal")
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", "#usa_self_id_section")
	case PlatformLever:
		return append(common, ".posting-apply", ".lever-application-form")
	case PlatformWorkday:
		return append(common, "[data-automation-id='applyButton']")
	default:
		return common
	}
}
