package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/orsayn/site-api/internal/contact/domain"
)

// Database property names written for each record.
const (
	PropertyIdentity  = "Identité"
	PropertyCompany   = "Structure"
	PropertyEmail     = "Email"
	PropertyAmbition  = "Ambition"
	PropertyContext   = "Contexte"
	PropertyDate      = "Date"
	PropertyStatus    = "Statut"
	emptyTextFallback = "-"
)

// ExpectedProperties lists every property Create writes.
var ExpectedProperties = []string{
	PropertyIdentity,
	PropertyCompany,
	PropertyEmail,
	PropertyAmbition,
	PropertyContext,
	PropertyDate,
	PropertyStatus,
}

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	Text textContent `json:"text"`
}

type selectOption struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

type property struct {
	Title    []richText    `json:"title,omitempty"`
	RichText []richText    `json:"rich_text,omitempty"`
	Email    *string       `json:"email,omitempty"`
	Select   *selectOption `json:"select,omitempty"`
	Date     *dateValue    `json:"date,omitempty"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type createPageRequest struct {
	Parent     parent              `json:"parent"`
	Properties map[string]property `json:"properties"`
}

type pageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func text(value string) []richText {
	return []richText{{Text: textContent{Content: value}}}
}

func textOrDash(value string) []richText {
	if value == "" {
		value = emptyTextFallback
	}
	return text(value)
}

func pageProperties(record domain.Record) map[string]property {
	email := record.Email
	return map[string]property{
		PropertyIdentity: {Title: text(record.Name)},
		PropertyCompany:  {RichText: textOrDash(record.Company)},
		PropertyEmail:    {Email: &email},
		PropertyAmbition: {Select: &selectOption{Name: record.Ambition}},
		PropertyContext:  {RichText: textOrDash(record.Context)},
		PropertyDate:     {Date: &dateValue{Start: record.SubmittedAt.UTC().Format(time.RFC3339)}},
		PropertyStatus:   {Select: &selectOption{Name: record.Status}},
	}
}

// Create adds record as a page of the configured database and returns the
// page id. Missing secrets fail before any request is sent.
func (c *Client) Create(ctx context.Context, record domain.Record) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}

	req := createPageRequest{
		Parent:     parent{DatabaseID: c.databaseID},
		Properties: pageProperties(record),
	}
	var page pageResponse
	if err := c.do(ctx, http.MethodPost, "/v1/pages", req, &page); err != nil {
		return "", err
	}
	if page.ID == "" {
		return "", fmt.Errorf("notion: page created without id")
	}
	return page.ID, nil
}
