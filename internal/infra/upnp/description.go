package upnp

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/edumarques81/stellar-media-library/internal/domain/remote"
)

// ErrNoContentDirectory is returned for devices without a ContentDirectory
// service.
var ErrNoContentDirectory = errors.New("content directory not found")

// rootObjectID is the ContentDirectory root container.
const rootObjectID = "0"

type deviceDescription struct {
	URLBase string `xml:"URLBase"`
	Device  struct {
		DeviceType   string          `xml:"deviceType"`
		FriendlyName string          `xml:"friendlyName"`
		Manufacturer string          `xml:"manufacturer"`
		ModelName    string          `xml:"modelName"`
		UDN          string          `xml:"UDN"`
		IconList     []deviceIcon    `xml:"iconList>icon"`
		Services     []deviceService `xml:"serviceList>service"`
	} `xml:"device"`
}

type deviceService struct {
	ServiceType string `xml:"serviceType"`
	ServiceID   string `xml:"serviceId"`
	ControlURL  string `xml:"controlURL"`
}

type deviceIcon struct {
	MimeType string `xml:"mimetype"`
	URL      string `xml:"url"`
	Width    int    `xml:"width"`
	Height   int    `xml:"height"`
}

func (d deviceDescription) contentDirectory() (deviceService, bool) {
	for _, svc := range d.Device.Services {
		if strings.Contains(strings.ToLower(svc.ServiceType), "contentdirectory") {
			return svc, true
		}
	}
	return deviceService{}, false
}

func (d deviceDescription) baseURL(location string) string {
	if strings.TrimSpace(d.URLBase) != "" {
		return strings.TrimRight(d.URLBase, "/") + "/"
	}
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	return fmt.Sprintf("%s://%s/", u.Scheme, u.Host)
}

func (d deviceDescription) iconURL(base string) string {
	if len(d.Device.IconList) == 0 {
		return ""
	}
	return resolveURL(base, d.Device.IconList[0].URL)
}

// Describe fetches the device description at location and returns a
// browsable media source.
func Describe(ctx context.Context, httpClient *http.Client, location string) (remote.Source, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return remote.Source{}, fmt.Errorf("failed to build description request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return remote.Source{}, fmt.Errorf("failed to fetch device description: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return remote.Source{}, fmt.Errorf("device description error: %s", resp.Status)
	}

	var desc deviceDescription
	if err := xml.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return remote.Source{}, fmt.Errorf("failed to decode device description: %w", err)
	}
	service, ok := desc.contentDirectory()
	if !ok {
		return remote.Source{}, fmt.Errorf("%w: %s", ErrNoContentDirectory, location)
	}

	base := desc.baseURL(location)
	id := strings.TrimPrefix(desc.Device.UDN, "uuid:")
	if id == "" {
		id = location
	}

	return remote.Source{
		ID:           id,
		FriendlyName: strings.TrimSpace(desc.Device.FriendlyName),
		IconURL:      desc.iconURL(base),
		Root: remote.RootDescriptor{
			ID:    rootObjectID,
			Title: "Root",
			Type:  "container",
		},
		Server: NewClient(httpClient, resolveURL(base, service.ControlURL), service.ServiceType, base),
	}, nil
}
