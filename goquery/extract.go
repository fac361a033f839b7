package goquery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// textLines splits a selection's text into trimmed non-empty lines.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	for _, line := range strings.Split(sel.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// imageAttrs lists image source attributes in the order lazy-loading
// marketplaces populate them.
var imageAttrs = []string{"data-original", "data-lazy", "data-src", "srcset", "src"}

// firstImageURL finds the first usable image URL inside a result card.
func firstImageURL(sel *goquery.Selection) string {
	var found string
	sel.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		for _, attr := range imageAttrs {
			val, ok := img.Attr(attr)
			if !ok || val == "" {
				continue
			}
			if attr == "srcset" {
				fields := strings.Fields(strings.SplitN(val, ",", 2)[0])
				if len(fields) == 0 {
					continue
				}
				val = fields[0]
			}
			if strings.HasPrefix(val, "//") {
				val = "https:" + val
			}
			if strings.HasPrefix(val, "http") {
				found = val
				return false
			}
		}
		return true
	})
	return found
}

// maxPaginationPage returns the highest page number visible in the page's
// pagination controls, or 0 when no pagination is present.
func maxPaginationPage(doc *goquery.Document) int {
	maxPage := 0
	doc.Find(".pagination, .pager, [class*='pagination'], [data-testid='pagination'], nav[aria-label*='pagination']").
		Find("a, button, span").
		Each(func(_ int, el *goquery.Selection) {
			text := strings.TrimSpace(el.Text())
			n, err := strconv.Atoi(text)
			if err != nil {
				return
			}
			if n > maxPage {
				maxPage = n
			}
		})
	return maxPage
}

var resultCountText = regexp.MustCompile(`(?i)(\d[\d.,]*)\s*(resultado|result|anuncio|art[íi]culo|item|lote|lot|watch)`)

// resultCount returns the advertised total result count, or 0 when the page
// does not state one.
func resultCount(doc *goquery.Document) int {
	count := 0
	doc.Find("[class*='result'], [class*='total'], [class*='count'], [data-testid='result-count']").
		EachWithBreak(func(_ int, el *goquery.Selection) bool {
			m := resultCountText.FindStringSubmatch(el.Text())
			if m == nil {
				return true
			}
			n, ok := parseGroupedInt(m[1])
			if !ok {
				return true
			}
			count = n
			return false
		})
	return count
}
