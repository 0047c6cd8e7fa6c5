package sonos

import (
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strconv"
)

// Group is a set of zone players that play in sync. Only the coordinator
// reports the group's transport state.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Coordinator *Device   `json:"coordinator"`
	Members     []*Device `json:"members"`
}

// parseZoneGroupState parses the (escaped) ZoneGroupState XML document.
func parseZoneGroupState(escaped string) ([]Group, error) {
	type member struct {
		UUID     string `xml:"UUID,attr"`
		Location string `xml:"Location,attr"`
		ZoneName string `xml:"ZoneName,attr"`
	}
	type zoneGroup struct {
		Coordinator string   `xml:"Coordinator,attr"`
		ID          string   `xml:"ID,attr"`
		Members     []member `xml:"ZoneGroupMember"`
	}
	var doc struct {
		Groups []zoneGroup `xml:"ZoneGroups>ZoneGroup"`
	}

	if err := xml.Unmarshal([]byte(html.UnescapeString(escaped)), &doc); err != nil {
		return nil, fmt.Errorf("parse zone group state: %w", err)
	}

	var groups []Group
	for _, zg := range doc.Groups {
		group := Group{ID: zg.ID}
		for _, m := range zg.Members {
			dev := &Device{UUID: m.UUID, Name: m.ZoneName, Location: m.Location, Port: sonosPort}
			if u, err := url.Parse(m.Location); err == nil {
				dev.IP = u.Hostname()
				if p, err := strconv.Atoi(u.Port()); err == nil {
					dev.Port = p
				}
			}
			if m.UUID == zg.Coordinator {
				group.Coordinator = dev
				group.Name = m.ZoneName
			}
			group.Members = append(group.Members, dev)
		}
		groups = append(groups, group)
	}
	return groups, nil
}
