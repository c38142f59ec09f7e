// Package upnp implements a minimal UPnP AV ContentDirectory client and a
// media server scanner over configured device description URLs.
package upnp

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-media-library/internal/domain/media"
)

// Client browses one ContentDirectory service.
type Client struct {
	http        *http.Client
	controlURL  string
	serviceType string
	baseURL     string
}

// NewClient creates a ContentDirectory client. baseURL resolves relative
// resource and album art URLs.
func NewClient(httpClient *http.Client, controlURL, serviceType, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:        httpClient,
		controlURL:  controlURL,
		serviceType: serviceType,
		baseURL:     baseURL,
	}
}

type browseResponseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		BrowseResponse browseResponse `xml:"BrowseResponse"`
		Fault          *soapFault     `xml:"Fault"`
	} `xml:"Body"`
}

type browseResponse struct {
	Result         string `xml:"Result"`
	NumberReturned int64  `xml:"NumberReturned"`
	TotalMatches   int64  `xml:"TotalMatches"`
	UpdateID       int64  `xml:"UpdateID"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail string `xml:"detail"`
}

func (f *soapFault) Error() string {
	if f.Detail != "" {
		return f.String + ": " + strings.TrimSpace(f.Detail)
	}
	return f.String
}

// Browse lists the direct children of containerID, containers first.
func (c *Client) Browse(ctx context.Context, containerID, sortSpec string, limit, offset int) ([]media.Props, error) {
	envelope := buildBrowseEnvelope(c.serviceType, containerID, sortCriteria(sortSpec), offset, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.controlURL, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("failed to build browse request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", fmt.Sprintf(`"%s#Browse"`, c.serviceType))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to browse %q: %w", containerID, err)
	}
	defer resp.Body.Close()

	var env browseResponseEnvelope
	decodeErr := xml.NewDecoder(resp.Body).Decode(&env)
	if decodeErr == nil && env.Body.Fault != nil {
		return nil, fmt.Errorf("content directory fault: %w", env.Body.Fault)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("content directory error: %s", resp.Status)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode browse response: %w", decodeErr)
	}

	result := env.Body.BrowseResponse
	var didl didlLite
	if strings.TrimSpace(result.Result) != "" {
		if err := xml.Unmarshal([]byte(result.Result), &didl); err != nil {
			return nil, fmt.Errorf("failed to decode DIDL-Lite: %w", err)
		}
	}

	log.Debug().
		Str("container", containerID).
		Int("offset", offset).
		Int64("returned", result.NumberReturned).
		Int64("total", result.TotalMatches).
		Msg("Content directory browse ok")

	out := make([]media.Props, 0, len(didl.Containers)+len(didl.Items))
	for _, obj := range didl.Containers {
		out = append(out, containerProps(obj))
	}
	for _, obj := range didl.Items {
		out = append(out, itemProps(obj, c.baseURL))
	}
	return out, nil
}

func buildBrowseEnvelope(serviceType, objectID, sort string, start, count int) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0"?>`)
	buf.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`)
	buf.WriteString(`<s:Body><u:Browse xmlns:u="` + xmlEscape(serviceType) + `">`)
	buf.WriteString(`<ObjectID>` + xmlEscape(objectID) + `</ObjectID>`)
	buf.WriteString(`<BrowseFlag>BrowseDirectChildren</BrowseFlag>`)
	buf.WriteString(`<Filter>*</Filter>`)
	fmt.Fprintf(&buf, `<StartingIndex>%d</StartingIndex>`, start)
	fmt.Fprintf(&buf, `<RequestedCount>%d</RequestedCount>`, count)
	buf.WriteString(`<SortCriteria>` + xmlEscape(sort) + `</SortCriteria>`)
	buf.WriteString(`</u:Browse></s:Body></s:Envelope>`)
	return buf.Bytes()
}

// sortFields maps library sort keys onto ContentDirectory properties.
var sortFields = map[string]string{
	"DisplayName": "dc:title",
	"Artist":      "upnp:artist",
	"Album":       "upnp:album",
}

// sortCriteria converts "+DisplayName,-Album" into "+dc:title,-upnp:album".
// Unknown keys are passed through.
func sortCriteria(spec string) string {
	if spec == "" {
		return ""
	}
	parts := strings.Split(spec, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		sign, key := p[:1], p[1:]
		if sign != "+" && sign != "-" {
			sign, key = "+", p
		}
		if field, ok := sortFields[key]; ok {
			key = field
		}
		parts[i] = sign + key
	}
	return strings.Join(parts, ",")
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() || base == "" {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
