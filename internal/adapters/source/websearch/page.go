package websearch

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"micdrop/internal/core/normalize"
)

// PageInfo is the best-effort set of event facts scraped from one page
type PageInfo struct {
	Title     string
	DayOfWeek *int
	TimeText  string
	Venue     string
	Address   string
	SignupURL string
}

// venueAtRe guesses a venue from prose like "at The Laughing Skull"
var venueAtRe = regexp.MustCompile(`\bat\s+((?:[A-Z][\w'&-]*\s*){1,5})`)

// ExtractPage parses event HTML and pulls out what it can.
// Anything it cannot find stays zero; malformed markup is not an error
func ExtractPage(r io.Reader) (PageInfo, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return PageInfo{}, err
	}

	var info PageInfo
	var docTitle, h1 string
	var bodyText strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if docTitle == "" {
					docTitle = nodeText(n)
				}
			case "h1":
				if h1 == "" {
					h1 = nodeText(n)
				}
			case "a":
				if info.SignupURL == "" {
					txt := strings.ToLower(nodeText(n))
					if strings.Contains(txt, "sign") {
						info.SignupURL = attr(n, "href")
					}
				}
			}
			switch attr(n, "itemprop") {
			case "name":
				if info.Venue == "" {
					info.Venue = nodeText(n)
				}
			case "streetAddress":
				if info.Address == "" {
					info.Address = nodeText(n)
				}
			}
		}
		if n.Type == html.TextNode {
			bodyText.WriteString(n.Data)
			bodyText.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	info.Title = h1
	if info.Title == "" {
		info.Title = docTitle
	}

	text := bodyText.String()
	if dow, ok := normalize.ExtractDayOfWeek(text); ok {
		info.DayOfWeek = &dow
	}
	if tt, ok := normalize.ExtractClockTime(text); ok {
		info.TimeText = tt
	}
	if info.Venue == "" {
		if m := venueAtRe.FindStringSubmatch(text); m != nil {
			info.Venue = strings.TrimSpace(m[1])
		}
	}
	return info, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
