package sonos

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	ssdpAddr  = "239.255.255.250:1900"
	sonosURN  = "urn:schemas-upnp-org:device:ZonePlayer:1"
	sonosPort = 1400
)

var mSearchRequest = []byte(
	"M-SEARCH * HTTP/1.1\r\n" +
		"HOST: 239.255.255.250:1900\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"MX: 2\r\n" +
		"ST: " + sonosURN + "\r\n" +
		"\r\n",
)

// Device is a Sonos zone player reachable on the local network.
type Device struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	UUID     string `json:"uuid"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
}

// discover sends an SSDP M-SEARCH and collects Sonos responses until timeout.
func discover(ctx context.Context, timeout time.Duration) ([]*Device, error) {
	addr, err := net.ResolveUDPAddr("udp4", ssdpAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve ssdp addr: %w", err)
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("listen udp: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	if _, err := conn.WriteToUDP(mSearchRequest, addr); err != nil {
		return nil, fmt.Errorf("send m-search: %w", err)
	}

	var devices []*Device
	seen := make(map[string]bool)
	buf := make([]byte, 2048)
	for ctx.Err() == nil {
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				break
			}
			continue
		}

		device := parseResponse(buf[:n], remote)
		if device == nil || seen[device.UUID] {
			continue
		}
		seen[device.UUID] = true
		devices = append(devices, device)
	}
	return devices, ctx.Err()
}

// parseResponse turns an SSDP reply into a Device, or nil if it is not a
// Sonos zone player.
func parseResponse(data []byte, addr *net.UDPAddr) *Device {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), nil)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.Header.Get("ST") != sonosURN {
		return nil
	}
	uuid := extractUUID(resp.Header.Get("USN"))
	if uuid == "" {
		return nil
	}

	location := resp.Header.Get("Location")
	port := sonosPort
	if u, err := url.Parse(location); err == nil {
		if p, err := strconv.Atoi(u.Port()); err == nil {
			port = p
		}
	}

	return &Device{
		IP:       addr.IP.String(),
		Port:     port,
		UUID:     uuid,
		Location: location,
	}
}

// extractUUID returns the RINCON id from "uuid:RINCON_xxx::urn:...".
func extractUUID(usn string) string {
	if !strings.HasPrefix(usn, "uuid:") {
		return ""
	}
	id, _, _ := strings.Cut(strings.TrimPrefix(usn, "uuid:"), "::")
	return id
}
