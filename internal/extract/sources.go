package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/svensoldin/job-searcher/internal/model"
)

// Source describes one external listing board: how to build a search URL and
// the ranked locator chains for its listing and detail pages. Boards change
// their DOM independently and without notice, so every source declares a
// primary layout plus the fallbacks observed in the wild.
type Source interface {
	Name() string
	SearchURL(params model.SearchParams) string
	ListingLocators() []ListLocator
	DescriptionLocators() []TextLocator
}

// DefaultSources returns the boards scraped in source-declaration order.
// The pipeline merges results in this order.
func DefaultSources() []Source {
	return []Source{devBoard{}, remoteHub{}}
}

// resolveURL joins a possibly-relative href against the board's base URL.
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// cardListing builds a ListLocator for the common card layout: a repeated
// container holding the title anchor and a company element.
func cardListing(source, base string, card func(*html.Node) bool, company func(*html.Node) bool) ListLocator {
	return func(doc *html.Node) []model.Posting {
		var postings []model.Posting
		for _, node := range findAll(doc, card) {
			a := firstAnchor(node)
			if a == nil {
				continue
			}
			title := nodeText(a)
			href := resolveURL(base, attrVal(a, "href"))

			companyName := ""
			if c := findFirst(node, company); c != nil {
				companyName = nodeText(c)
			}

			if title == "" || href == "" {
				continue
			}
			postings = append(postings, model.Posting{
				Title:   title,
				Company: companyName,
				URL:     href,
				Source:  source,
			})
		}
		return postings
	}
}

// ─── devboard ────────────────────────────────────────────────────────────────

// devBoard scrapes a conventional job board with card, legacy-list and
// table-row layouts.
type devBoard struct{}

const devBoardBase = "https://www.devboard.io"

func (devBoard) Name() string { return "devboard" }

func (devBoard) SearchURL(params model.SearchParams) string {
	q := url.Values{}
	q.Set("q", params.Keywords)
	q.Set("l", params.Location)
	if params.ExperienceLevel != "" {
		q.Set("exp", params.ExperienceLevel)
	}
	return devBoardBase + "/jobs?" + q.Encode()
}

func (devBoard) ListingLocators() []ListLocator {
	return []ListLocator{
		// Primary layout: card grid.
		cardListing("devboard", devBoardBase,
			byTagClass("div", "job-card"),
			byTagClass("span", "company-name"),
		),
		// Legacy layout: result list.
		cardListing("devboard", devBoardBase,
			byTagClass("li", "result-row"),
			byTagClass("div", "employer"),
		),
		// Alternate layout: plain table rows.
		cardListing("devboard", devBoardBase,
			byTagClass("tr", "job-row"),
			byTagClass("td", "company"),
		),
	}
}

func (devBoard) DescriptionLocators() []TextLocator {
	return []TextLocator{
		TextByID("jobDescriptionText"),
		TextByTagClass("div", "job-description"),
		TextByTagClass("section", "description"),
	}
}

// ─── remotehub ───────────────────────────────────────────────────────────────

// remoteHub scrapes a remote-work board; its markup churns between a listing
// table and an article feed.
type remoteHub struct{}

const remoteHubBase = "https://remotehub.careers"

func (remoteHub) Name() string { return "remotehub" }

func (remoteHub) SearchURL(params model.SearchParams) string {
	q := url.Values{}
	q.Set("search", params.Keywords)
	if params.Location != "" {
		q.Set("region", params.Location)
	}
	return remoteHubBase + "/search?" + q.Encode()
}

func (remoteHub) ListingLocators() []ListLocator {
	return []ListLocator{
		cardListing("remotehub", remoteHubBase,
			byTagClass("tr", "listing"),
			byTagClass("td", "company-cell"),
		),
		cardListing("remotehub", remoteHubBase,
			byTagClass("article", "job-post"),
			byTagClass("p", "company"),
		),
	}
}

func (remoteHub) DescriptionLocators() []TextLocator {
	return []TextLocator{
		TextByTagClass("div", "listing-body"),
		TextByID("job-detail"),
		TextByTagClass("div", "markdown"),
	}
}
