package extract

import (
	"golang.org/x/net/html"

	"github.com/svensoldin/job-searcher/internal/model"
)

// minDescriptionLength is the threshold below which extracted description
// text is considered trivial and the next locator in the chain is tried.
const minDescriptionLength = 50

// TextLocator is one pure extraction strategy for a text region of a page.
// It returns false when its expected structure is absent.
type TextLocator func(doc *html.Node) (string, bool)

// ListLocator is one pure extraction strategy for a listing page. It returns
// the postings it could parse, or an empty slice when its expected structure
// is absent.
type ListLocator func(doc *html.Node) []model.Posting

// ExtractText evaluates locators in rank order and accepts the first result
// of non-trivial length. A single locator is a single point of failure
// against markup churn; an exhaustible chain degrades to ("", false) instead
// of failing outright.
func ExtractText(doc *html.Node, locators []TextLocator) (string, bool) {
	for _, locate := range locators {
		text, ok := locate(doc)
		if ok && len(text) >= minDescriptionLength {
			return text, true
		}
	}
	return "", false
}

// ExtractListings evaluates locators in rank order and accepts the first
// non-empty result.
func ExtractListings(doc *html.Node, locators []ListLocator) []model.Posting {
	for _, locate := range locators {
		if postings := locate(doc); len(postings) > 0 {
			return postings
		}
	}
	return nil
}

// TextByTagClass builds a TextLocator matching the first <tag class="class">.
func TextByTagClass(tag, class string) TextLocator {
	return func(doc *html.Node) (string, bool) {
		n := findFirst(doc, byTagClass(tag, class))
		if n == nil {
			return "", false
		}
		return nodeText(n), true
	}
}

// TextByID builds a TextLocator matching the element with the given id.
func TextByID(id string) TextLocator {
	return func(doc *html.Node) (string, bool) {
		n := findFirst(doc, byID(id))
		if n == nil {
			return "", false
		}
		return nodeText(n), true
	}
}
