package irgen

import (
	"fmt"
	"strings"

	"github.com/eivy/irgen/broadlink"
	"github.com/eivy/irgen/hass"
	"github.com/eivy/irgen/pronto"
	"github.com/eivy/irgen/protocol"
	"github.com/eivy/irgen/raw"
	"github.com/eivy/irgen/remo"
)

// Render formats codes as output lines. Decoder outputs produce one line per
// decoded frame.
func (c *Converter) Render(codes []Code, output Output) ([]string, error) {
	if p, ok := output.Decoder(); ok {
		return c.renderFrames(codes, p)
	}

	if output == OutputBroadlinkHass {
		entries := make([]hass.Entry, 0, len(codes))
		for _, code := range codes {
			command, err := broadlink.EncodeBase64(broadlink.Packet{Signal: code.Signal})
			if err != nil {
				return nil, fmt.Errorf("%s: %w", code.Name, err)
			}
			entries = append(entries, hass.Entry{FriendlyName: code.Name, Command: command})
		}
		data, err := hass.Render(entries)
		if err != nil {
			return nil, err
		}
		return []string{strings.TrimRight(string(data), "\n")}, nil
	}

	lines := make([]string, 0, len(codes))
	for _, code := range codes {
		line, err := c.renderOne(code.Signal, output)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", code.Name, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// RenderCode formats a single signal. Decoder and hass outputs are not
// supported here.
func (c *Converter) RenderCode(s raw.Signal, output Output) (string, error) {
	return c.renderOne(s, output)
}

func (c *Converter) renderOne(s raw.Signal, output Output) (string, error) {
	switch output {
	case OutputRaw:
		return s.String(), nil

	case OutputBroadlink:
		return broadlink.EncodeHex(broadlink.Packet{Signal: s})

	case OutputBroadlinkBase64:
		return broadlink.EncodeBase64(broadlink.Packet{Signal: s})

	case OutputPronto:
		values, err := pronto.Encode(nil, s, pronto.Options{Base: c.prontoBase})
		if err != nil {
			return "", err
		}
		return pronto.Format(values), nil

	case OutputRemo:
		data, err := remo.Marshal(s, c.remoFreq)
		if err != nil {
			return "", err
		}
		return string(data), nil

	default:
		return "", fmt.Errorf("output %s renders a whole code set", output)
	}
}

func (c *Converter) renderFrames(codes []Code, p protocol.Protocol) ([]string, error) {
	var lines []string
	for _, code := range codes {
		d, err := protocol.NewDecoder(p, code.Signal)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", code.Name, err)
		}
		frames, err := d.All()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", code.Name, err)
		}
		if len(frames) == 0 {
			return nil, fmt.Errorf("%s: no %s frames found", code.Name, p)
		}
		if c.metrics != nil {
			c.metrics.AddDecodedFrames(p.String(), len(frames))
		}
		for _, f := range frames {
			lines = append(lines, formatFrame(p, f))
		}
	}
	return lines, nil
}

func formatFrame(p protocol.Protocol, f protocol.Params) string {
	line := fmt.Sprintf("device=%d function=%d toggle=%d", f.Device, f.Function, f.Toggle)
	if p.Family == protocol.RC6 {
		line += fmt.Sprintf(" mode=%d", f.Mode)
	}
	return line
}
