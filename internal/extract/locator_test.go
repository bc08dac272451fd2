package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/svensoldin/job-searcher/internal/model"
)

func parseHTML(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

const longBody = "This role involves building resilient ingestion pipelines in a small, focused team of engineers."

func TestExtractTextFallbackOrder(t *testing.T) {
	doc := parseHTML(t, `
		<html><body>
			<div class="legacy">`+longBody+` (legacy)</div>
			<div class="primary">`+longBody+` (primary)</div>
		</body></html>`)

	chain := []TextLocator{
		TextByTagClass("div", "primary"),
		TextByTagClass("div", "legacy"),
	}

	text, ok := ExtractText(doc, chain)
	require.True(t, ok)
	assert.Contains(t, text, "(primary)")
}

func TestExtractTextFallsBackWhenPrimaryMissing(t *testing.T) {
	doc := parseHTML(t, `<html><body><div class="legacy">`+longBody+`</div></body></html>`)

	chain := []TextLocator{
		TextByTagClass("div", "primary"),
		TextByTagClass("div", "legacy"),
	}

	text, ok := ExtractText(doc, chain)
	require.True(t, ok)
	assert.Contains(t, text, "resilient ingestion pipelines")
}

func TestExtractTextRejectsTrivialContent(t *testing.T) {
	// The primary region exists but is below the length threshold; the chain
	// must move on to the next locator.
	doc := parseHTML(t, `
		<html><body>
			<div class="primary">Apply now</div>
			<div class="legacy">`+longBody+`</div>
		</body></html>`)

	chain := []TextLocator{
		TextByTagClass("div", "primary"),
		TextByTagClass("div", "legacy"),
	}

	text, ok := ExtractText(doc, chain)
	require.True(t, ok)
	assert.Contains(t, text, "resilient ingestion pipelines")
}

func TestExtractTextExhaustedChain(t *testing.T) {
	doc := parseHTML(t, `<html><body><p>unrelated</p></body></html>`)

	text, ok := ExtractText(doc, []TextLocator{
		TextByTagClass("div", "primary"),
		TextByID("description"),
	})
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestTextByIDCollapsesWhitespace(t *testing.T) {
	doc := parseHTML(t, `<html><body><div id="desc">  line one
			line&nbsp;two  </div></body></html>`)

	text, ok := TextByID("desc")(doc)
	require.True(t, ok)
	assert.Equal(t, "line one line two", text)
}

func TestExtractListingsFallbackOrder(t *testing.T) {
	legacyOnly := parseHTML(t, `
		<html><body><ul>
			<li class="result-row">
				<a href="/jobs/42">Backend Developer</a>
				<div class="employer">Acme</div>
			</li>
		</ul></body></html>`)

	chain := devBoard{}.ListingLocators()
	postings := ExtractListings(legacyOnly, chain)

	require.Len(t, postings, 1)
	assert.Equal(t, "Backend Developer", postings[0].Title)
	assert.Equal(t, "Acme", postings[0].Company)
	assert.Equal(t, "https://www.devboard.io/jobs/42", postings[0].URL)
	assert.Equal(t, "devboard", postings[0].Source)
}

func TestExtractListingsPrimaryLayout(t *testing.T) {
	doc := parseHTML(t, `
		<html><body>
			<div class="job-card">
				<h2><a href="https://www.devboard.io/jobs/1">Frontend Developer</a></h2>
				<span class="company-name">Initech</span>
			</div>
			<div class="job-card">
				<h2><a href="/jobs/2">Platform Engineer</a></h2>
				<span class="company-name">Globex</span>
			</div>
		</body></html>`)

	postings := ExtractListings(doc, devBoard{}.ListingLocators())

	require.Len(t, postings, 2)
	assert.Equal(t, "Frontend Developer", postings[0].Title)
	assert.Equal(t, "Initech", postings[0].Company)
	assert.Equal(t, "Platform Engineer", postings[1].Title)
	assert.Equal(t, "https://www.devboard.io/jobs/2", postings[1].URL)
}

func TestExtractListingsSkipsCardsWithoutAnchor(t *testing.T) {
	doc := parseHTML(t, `
		<html><body>
			<div class="job-card"><span class="company-name">NoLink Inc</span></div>
			<div class="job-card">
				<a href="/jobs/3">DevOps Engineer</a>
				<span class="company-name">Hooli</span>
			</div>
		</body></html>`)

	postings := ExtractListings(doc, devBoard{}.ListingLocators())
	require.Len(t, postings, 1)
	assert.Equal(t, "DevOps Engineer", postings[0].Title)
}

func TestExtractListingsEmptyDocument(t *testing.T) {
	doc := parseHTML(t, `<html><body><p>No openings right now.</p></body></html>`)
	got := ExtractListings(doc, devBoard{}.ListingLocators())
	assert.Empty(t, got)
}

func TestSearchURLEncodesParams(t *testing.T) {
	u := devBoard{}.SearchURL(model.SearchParams{
		Keywords:        "frontend developer",
		Location:        "Berlin",
		ExperienceLevel: "mid",
	})
	assert.Contains(t, u, "q=frontend+developer")
	assert.Contains(t, u, "l=Berlin")
	assert.Contains(t, u, "exp=mid")
}
