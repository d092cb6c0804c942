package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Director notice audiences.
const (
	DirectorAudienceTeachers = "Teachers"
	DirectorAudienceHODs     = "HODs"
)

// StringList decodes from either a JSON string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	default:
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}
}

// DirectorNotice is a message the director addressed to named teachers or HODs.
type DirectorNotice struct {
	ID             string     `json:"_id"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Audience       string     `json:"audience"`
	RecipientName  StringList `json:"recipientName"`
	RecipientNames StringList `json:"recipientNames,omitempty"`
	CreatedAt      time.Time  `json:"createdAt,omitempty"`
}

// Recipients returns every name the notice is addressed to.
func (n DirectorNotice) Recipients() []string {
	out := make([]string, 0, len(n.RecipientName)+len(n.RecipientNames))
	out = append(out, n.RecipientName...)
	return append(out, n.RecipientNames...)
}

// AddressedTo reports whether name is among the recipients, ignoring case.
func (n DirectorNotice) AddressedTo(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, r := range n.Recipients() {
		if strings.EqualFold(strings.TrimSpace(r), name) {
			return true
		}
	}
	return false
}

// DirectorNoticeInput is the payload for publishing a director notice.
type DirectorNoticeInput struct {
	Title           string   `json:"title" validate:"required,min=3"`
	Message         string   `json:"message" validate:"required,min=8"`
	Audience        string   `json:"audience" validate:"required,oneof=Teachers HODs"`
	SelectedMembers []string `json:"selectedAudienceMembers"`
	RecipientNames  []string `json:"recipientNames" validate:"required,min=1,dive,required"`
}

// DirectorNoticeUpdate replaces the text of a director notice.
type DirectorNoticeUpdate struct {
	Title   string `json:"title" validate:"required,min=3"`
	Message string `json:"message" validate:"required,min=8"`
}

// ListDirectorNotices returns every notice the director published.
func (c *Client) ListDirectorNotices(ctx context.Context) ([]DirectorNotice, error) {
	var notices []DirectorNotice
	if err := c.doJSON(ctx, http.MethodGet, "directorNotice/all", nil, nil, &notices); err != nil {
		return nil, err
	}
	return notices, nil
}

// ListNoticesAddressedTo returns the director notices naming recipient.
func (c *Client) ListNoticesAddressedTo(ctx context.Context, recipient string) ([]DirectorNotice, error) {
	var notices []DirectorNotice
	if err := c.doJSON(ctx, http.MethodGet, "directorNotice/recipient", nil, nil, &notices); err != nil {
		return nil, err
	}
	kept := notices[:0]
	for _, n := range notices {
		if n.AddressedTo(recipient) {
			kept = append(kept, n)
		}
	}
	return kept, nil
}

// CreateDirectorNotice publishes a director notice and returns the first stored copy.
func (c *Client) CreateDirectorNotice(ctx context.Context, input DirectorNoticeInput) (*DirectorNotice, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	var created []DirectorNotice
	if err := c.doJSONKey(ctx, http.MethodPost, "directorNotice/create", nil, input, "notices", &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("create director notice: no notice in response")
	}
	return &created[0], nil
}

// UpdateDirectorNotice replaces the title and message of a director notice.
func (c *Client) UpdateDirectorNotice(ctx context.Context, id string, input DirectorNoticeUpdate) (*DirectorNotice, error) {
	if id == "" {
		return nil, fmt.Errorf("notice id is required")
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	var notice DirectorNotice
	if err := c.doJSONKey(ctx, http.MethodPut, "directorNotice/update/"+url.PathEscape(id), nil, input, "notice", &notice); err != nil {
		return nil, err
	}
	return &notice, nil
}

// DeleteDirectorNotice removes a director notice.
func (c *Client) DeleteDirectorNotice(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("notice id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, "directorNotice/delete/"+url.PathEscape(id), nil, nil, nil)
}
