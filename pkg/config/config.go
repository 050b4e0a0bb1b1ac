// Package config loads a Dispatcher's static configuration from an INI
// profile and wires up the concrete pieces (interchanges, dispatcher,
// application registry) a command-line driver needs to run one.
//
// It loads an ini.v1 document, walks its sections with a small regular
// expression to tell "configuration" sections from "object" sections, and
// builds in-memory structures from the matched keys.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"

	"gopkg.in/ini.v1"

	apdudispatch "github.com/mlemaux/apdudispatch"
	"github.com/mlemaux/apdudispatch/internal/demoapp"
	"github.com/mlemaux/apdudispatch/pkg/dispatch"
	"github.com/mlemaux/apdudispatch/pkg/interchange"
)

// Defaults per the capacities this core ships with.
const (
	DefaultCommandCapacity     = 7609
	DefaultResponseCapacity    = 7609
	DefaultInterchangeCapacity = 3072
)

var appSectionRe = regexp.MustCompile(`^app:(.+)$`)

// AppDescriptor is one configured demo application: its AID and the single
// instruction byte it answers.
type AppDescriptor struct {
	AID []byte
	INS byte
}

// Config is the fully-resolved static configuration for one dispatcher
// instance.
type Config struct {
	CommandCapacity     int
	ResponseCapacity    int
	InterchangeCapacity int
	Apps                []AppDescriptor
}

// Default returns a Config with the shipped capacity defaults and no
// applications registered.
func Default() *Config {
	return &Config{
		CommandCapacity:     DefaultCommandCapacity,
		ResponseCapacity:    DefaultResponseCapacity,
		InterchangeCapacity: DefaultInterchangeCapacity,
	}
}

// Load parses an INI profile at path. A [dispatch] section may override the
// capacities; every section named "app:<hex-aid>" registers one demo
// application, with its "ins" key (hex, default "10") as the instruction it
// answers.
func Load(path string) (*Config, error) {
	doc, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	cfg := Default()
	if doc.HasSection("dispatch") {
		sec := doc.Section("dispatch")
		cfg.CommandCapacity = sec.Key("command_capacity").MustInt(cfg.CommandCapacity)
		cfg.ResponseCapacity = sec.Key("response_capacity").MustInt(cfg.ResponseCapacity)
		cfg.InterchangeCapacity = sec.Key("interchange_capacity").MustInt(cfg.InterchangeCapacity)
	}

	for _, sec := range doc.Sections() {
		m := appSectionRe.FindStringSubmatch(sec.Name())
		if m == nil {
			continue
		}
		aid, err := hex.DecodeString(m[1])
		if err != nil {
			return nil, fmt.Errorf("config: section %s: invalid AID: %w", sec.Name(), err)
		}
		insHex := sec.Key("ins").MustString("10")
		insBytes, err := hex.DecodeString(insHex)
		if err != nil || len(insBytes) != 1 {
			return nil, fmt.Errorf("config: section %s: invalid ins %q", sec.Name(), insHex)
		}
		cfg.Apps = append(cfg.Apps, AppDescriptor{AID: aid, INS: insBytes[0]})
	}
	return cfg, nil
}

// Runtime is the assembled set of live pieces a driver needs: the
// dispatcher itself, one Requester per interface, and the application list
// to pass to every Poll call.
type Runtime struct {
	Dispatcher  *dispatch.Dispatcher
	Contact     interchange.Requester
	Contactless interchange.Requester
	Apps        []apdudispatch.AppHandle
}

// Build constructs a Runtime from c. logger may be nil to use slog's
// default logger.
func (c *Config) Build(logger *slog.Logger) (*Runtime, error) {
	contactIC := interchange.New(c.InterchangeCapacity)
	contactlessIC := interchange.New(c.InterchangeCapacity)
	contactReq, contactResp := contactIC.Split()
	contactlessReq, contactlessResp := contactlessIC.Split()

	d, err := dispatch.New(logger, dispatch.Config{
		CommandCapacity:     c.CommandCapacity,
		ResponseCapacity:    c.ResponseCapacity,
		InterchangeCapacity: c.InterchangeCapacity,
	}, contactResp, contactlessResp)
	if err != nil {
		return nil, err
	}

	apps := make([]apdudispatch.AppHandle, 0, len(c.Apps))
	for _, ad := range c.Apps {
		apps = append(apps, demoapp.NewEcho(logger, ad.AID, ad.INS))
	}

	return &Runtime{
		Dispatcher:  d,
		Contact:     contactReq,
		Contactless: contactlessReq,
		Apps:        apps,
	}, nil
}
