package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/postpilot/postpilot-api/internal/apperrors"
)

const (
	maxPageBytes = 2 << 20
	maxPageText  = 8000
	pageTimeout  = 20 * time.Second
)

var errBlockedAddress = errors.New("address is not publicly routable")

// PageSummary is what the model sees of a business website.
type PageSummary struct {
	URL         string
	Title       string
	Description string
	Headings    []string
	Text        string
}

func (p *PageSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", p.URL)
	if p.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
	}
	if len(p.Headings) > 0 {
		fmt.Fprintf(&b, "Headings: %s\n", strings.Join(p.Headings, " | "))
	}
	if p.Text != "" {
		fmt.Fprintf(&b, "Page text:\n%s\n", p.Text)
	}
	return b.String()
}

type pageFetcher struct {
	http   *http.Client
	strict *bluemonday.Policy
}

// newPageFetcher returns a fetcher whose connections may only reach addresses allow accepts.
// The check runs on the resolved IP of every dial, redirects included.
func newPageFetcher(allow func(net.IP) bool) *pageFetcher {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || !allow(ip) {
				return errBlockedAddress
			}
			return nil
		},
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &pageFetcher{
		http:   &http.Client{Timeout: pageTimeout, Transport: transport},
		strict: bluemonday.StrictPolicy(),
	}
}

// publicAddress rejects loopback, private, link-local, multicast and unspecified addresses.
func publicAddress(ip net.IP) bool {
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified())
}

func (f *pageFetcher) Fetch(ctx context.Context, url string) (*PageSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Validation("url", "Invalid URL")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; PostPilotBot/1.0)")
	req.Header.Set("Accept", "text/html")

	resp, err := f.http.Do(req)
	if errors.Is(err, errBlockedAddress) {
		return nil, apperrors.Validation("url", "This website address cannot be analyzed")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch website: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.UpstreamError{Service: "Website", Status: resp.StatusCode, Body: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading website: %w", err)
	}
	return f.Summarize(url, body)
}

// Summarize pulls the title, meta description and headings from the markup and
// reduces the rest to plain text.
func (f *pageFetcher) Summarize(url string, page []byte) (*PageSummary, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("error parsing website: %w", err)
	}

	summary := &PageSummary{URL: url}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "svg":
				return
			case "title":
				if summary.Title == "" {
					summary.Title = nodeText(n)
				}
			case "meta":
				name := strings.ToLower(attr(n, "name") + attr(n, "property"))
				if summary.Description == "" && (name == "description" || name == "og:description") {
					summary.Description = strings.TrimSpace(attr(n, "content"))
				}
			case "h1", "h2", "h3":
				if t := nodeText(n); t != "" && len(summary.Headings) < 20 {
					summary.Headings = append(summary.Headings, t)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var buf bytes.Buffer
	if body := findElement(doc, "body"); body != nil {
		stripElements(body, "script", "style", "noscript", "svg")
		if err := html.Render(&buf, body); err != nil {
			return nil, fmt.Errorf("error rendering website: %w", err)
		}
	}
	text := strings.Join(strings.Fields(html.UnescapeString(f.strict.Sanitize(buf.String()))), " ")
	if len(text) > maxPageText {
		cut := maxPageText
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	summary.Text = text
	return summary, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func stripElements(n *html.Node, tags ...string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		removed := false
		if c.Type == html.ElementNode {
			for _, t := range tags {
				if c.Data == t {
					n.RemoveChild(c)
					removed = true
					break
				}
			}
		}
		if !removed {
			stripElements(c, tags...)
		}
		c = next
	}
}
