package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/orsayn/site-api/internal/contact/domain"
)

// Identity describes the integration bot behind the API key.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// DatabaseInfo summarizes the target database schema.
type DatabaseInfo struct {
	ID    string
	Title string
	// Properties maps property names to their Notion type.
	Properties map[string]string
	// SelectOptions lists the options of each select property.
	SelectOptions map[string][]string
}

// Missing returns the expected properties absent from the database, sorted.
func (d DatabaseInfo) Missing() []string {
	var missing []string
	for _, name := range ExpectedProperties {
		if _, ok := d.Properties[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// MissingOptions returns the wanted options that the select property lacks.
// Notion creates unknown options on write, so a gap is a warning only.
func (d DatabaseInfo) MissingOptions(property string, wanted []string) []string {
	have := make(map[string]struct{}, len(d.SelectOptions[property]))
	for _, o := range d.SelectOptions[property] {
		have[o] = struct{}{}
	}
	var missing []string
	for _, w := range wanted {
		if _, ok := have[w]; !ok {
			missing = append(missing, w)
		}
	}
	return missing
}

type databaseResponse struct {
	ID    string `json:"id"`
	Title []struct {
		PlainText string `json:"plain_text"`
	} `json:"title"`
	Properties map[string]struct {
		Type   string `json:"type"`
		Select *struct {
			Options []struct {
				Name string `json:"name"`
			} `json:"options"`
		} `json:"select,omitempty"`
	} `json:"properties"`
}

// Me verifies the API key and returns the integration identity.
func (c *Client) Me(ctx context.Context) (Identity, error) {
	if c.apiKey == "" {
		return Identity{}, fmt.Errorf("notion: api key: %w", domain.ErrConfigMissing)
	}
	var id Identity
	err := c.do(ctx, http.MethodGet, "/v1/users/me", nil, &id)
	return id, err
}

// Database fetches the configured database schema.
func (c *Client) Database(ctx context.Context) (DatabaseInfo, error) {
	if err := c.checkConfig(); err != nil {
		return DatabaseInfo{}, err
	}
	var raw databaseResponse
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+url.PathEscape(c.databaseID), nil, &raw); err != nil {
		return DatabaseInfo{}, err
	}

	info := DatabaseInfo{
		ID:            raw.ID,
		Properties:    make(map[string]string, len(raw.Properties)),
		SelectOptions: make(map[string][]string),
	}
	for _, t := range raw.Title {
		info.Title += t.PlainText
	}
	for name, prop := range raw.Properties {
		info.Properties[name] = prop.Type
		if prop.Select == nil {
			continue
		}
		for _, o := range prop.Select.Options {
			info.SelectOptions[name] = append(info.SelectOptions[name], o.Name)
		}
	}
	return info, nil
}
