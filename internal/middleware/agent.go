package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

// Agent identifies a non-browser storefront client.
type Agent struct {
	Name    string
	Version string
}

func (a Agent) String() string {
	if a.Version == "" {
		return a.Name
	}
	return a.Name + "/" + a.Version
}

// ParseShopperAgentHeader extracts the client identity from a Shopper-Agent
// header. Format: name="shopctl";version="1.0" (RFC 8941 Dictionary).
//
// Examples:
//   - name="shopctl"               → shopctl
//   - name="shopctl";version="1.0" → shopctl/1.0
//
// Returns an error if the header is empty, malformed, or missing the name key.
func ParseShopperAgentHeader(header string) (Agent, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Agent{}, errors.New("empty Shopper-Agent header")
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return Agent{}, fmt.Errorf("invalid Shopper-Agent header: %w", err)
	}

	member, ok := dict.Get("name")
	if !ok {
		return Agent{}, errors.New("name key not found in Shopper-Agent header")
	}

	item, ok := member.(httpsfv.Item)
	if !ok {
		return Agent{}, errors.New("name value must be an item")
	}

	name, ok := item.Value.(string)
	if !ok {
		return Agent{}, errors.New("name value must be a string")
	}

	agent := Agent{Name: name}

	if v, ok := dict.Get("version"); ok {
		if item, ok := v.(httpsfv.Item); ok {
			if s, ok := item.Value.(string); ok {
				agent.Version = s
			}
		}
	}

	return agent, nil
}

// FormatShopperAgentHeader renders an Agent as a Shopper-Agent header value.
func FormatShopperAgentHeader(a Agent) string {
	dict := httpsfv.NewDictionary()
	dict.Add("name", httpsfv.NewItem(a.Name))
	if a.Version != "" {
		dict.Add("version", httpsfv.NewItem(a.Version))
	}
	s, err := httpsfv.Marshal(dict)
	if err != nil {
		return fmt.Sprintf("name=%q", a.Name)
	}
	return s
}
