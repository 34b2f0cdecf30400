package upnp

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/upnp-display/upnp-display-go/pkg/variables"
)

// ErrMalformedEvent is returned for NOTIFY bodies that cannot be parsed.
var ErrMalformedEvent = errors.New("malformed event")

// lastChange is the evented variable carrying the AVTransport and
// RenderingControl state.
const lastChange = "LastChange"

type propertySet struct {
	XMLName    xml.Name   `xml:"propertyset"`
	Properties []property `xml:"property"`
}

type property struct {
	Vars []rawVar `xml:",any"`
}

type rawVar struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// ParsePropertySet decodes a GENA NOTIFY body. Plain evented variables are
// returned as is; a LastChange variable is expanded into the variables it
// reports.
func ParsePropertySet(body []byte) (variables.Batch, error) {
	var ps propertySet
	if err := xml.Unmarshal(body, &ps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	var batch variables.Batch
	for _, p := range ps.Properties {
		for _, v := range p.Vars {
			if v.XMLName.Local != lastChange {
				batch.Set(v.XMLName.Local, v.Value)
				continue
			}
			changes, err := ParseLastChange(v.Value)
			if err != nil {
				return nil, err
			}
			batch = append(batch, changes...)
		}
	}
	return batch, nil
}

type lastChangeEvent struct {
	XMLName   xml.Name   `xml:"Event"`
	Instances []instance `xml:"InstanceID"`
}

type instance struct {
	Val  string        `xml:"val,attr"`
	Vars []instanceVar `xml:",any"`
}

type instanceVar struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"`
	Channel string `xml:"channel,attr"`
}

// masterChannel is the RenderingControl channel shown on the display.
const masterChannel = "Master"

// ParseLastChange decodes a LastChange document. Only the first InstanceID
// is read. Each child element yields one variable named after the element,
// valued by its val attribute. Per-channel variables such as Volume are
// only taken from the Master channel.
func ParseLastChange(doc string) (variables.Batch, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, nil
	}

	var ev lastChangeEvent
	if err := xml.Unmarshal([]byte(doc), &ev); err != nil {
		return nil, fmt.Errorf("%w: LastChange: %v", ErrMalformedEvent, err)
	}
	if len(ev.Instances) == 0 {
		return nil, nil
	}

	vars := ev.Instances[0].Vars
	batch := make(variables.Batch, 0, len(vars))
	for _, v := range vars {
		if v.Channel != "" && v.Channel != masterChannel {
			continue
		}
		batch.Set(v.XMLName.Local, v.Val)
	}
	return batch, nil
}
