package sonos

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// UPnP endpoints and service URNs used to read playback state.
const (
	avTransportEndpoint = "/MediaRenderer/AVTransport/Control"
	avTransportService  = "urn:schemas-upnp-org:service:AVTransport:1"

	zoneGroupTopologyEndpoint = "/ZoneGroupTopology/Control"
	zoneGroupTopologyService  = "urn:upnp-org:serviceId:ZoneGroupTopology"
)

// soapClient makes SOAP requests to Sonos devices.
type soapClient struct {
	httpClient *http.Client
}

func newSOAPClient() *soapClient {
	return &soapClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// call invokes action on the device and decodes the response body's first
// element into out.
func (c *soapClient) call(ctx context.Context, d *Device, endpoint, service, action string, args map[string]string, out any) error {
	url := fmt.Sprintf("http://%s:%d%s", d.IP, d.Port, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(envelope(service, action, args)))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", fmt.Sprintf("%q", service+"#"+action))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("soap %s: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("soap %s: status %d: %s", action, resp.StatusCode, bytes.TrimSpace(body))
	}

	var env struct {
		Body struct {
			Inner []byte `xml:",innerxml"`
		} `xml:"Body"`
	}
	if err := xml.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("parse %s envelope: %w", action, err)
	}
	if err := xml.Unmarshal(env.Body.Inner, out); err != nil {
		return fmt.Errorf("parse %s response: %w", action, err)
	}
	return nil
}

// envelope builds the SOAP request. Arguments are written in sorted order.
func envelope(service, action string, args map[string]string) []byte {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`)
	fmt.Fprintf(&buf, `<s:Body><u:%s xmlns:u="%s">`, action, service)
	for _, k := range keys {
		fmt.Fprintf(&buf, "<%s>", k)
		_ = xml.EscapeText(&buf, []byte(args[k]))
		fmt.Fprintf(&buf, "</%s>", k)
	}
	fmt.Fprintf(&buf, `</u:%s></s:Body></s:Envelope>`, action)
	return buf.Bytes()
}
