package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Notice is a message posted by the department to students, teachers or both.
type Notice struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Audience  string    `json:"audience"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NoticeInput is the payload for creating or updating a notice.
type NoticeInput struct {
	Title    string `json:"title" validate:"required,min=3"`
	Message  string `json:"message" validate:"required,min=8"`
	Audience string `json:"audience" validate:"required"`
}

// NoticeAudience selects which notice feed to read.
type NoticeAudience string

const (
	NoticeAudienceAll     NoticeAudience = "all"
	NoticeAudienceStudent NoticeAudience = "student"
	NoticeAudienceTeacher NoticeAudience = "teacher"
)

// ListNotices returns the notice feed for audience ("all" when empty).
func (c *Client) ListNotices(ctx context.Context, audience NoticeAudience) ([]Notice, error) {
	if audience == "" {
		audience = NoticeAudienceAll
	}
	switch audience {
	case NoticeAudienceAll, NoticeAudienceStudent, NoticeAudienceTeacher:
	default:
		return nil, fmt.Errorf("unknown notice audience %q", audience)
	}

	var notices []Notice
	if err := c.doJSON(ctx, http.MethodGet, "notice/"+string(audience), nil, nil, &notices); err != nil {
		return nil, err
	}
	return notices, nil
}

// NoticeFeedFor picks the notice feed a role reads on its dashboard.
func NoticeFeedFor(role Role) NoticeAudience {
	switch NormalizeRole(string(role)) {
	case RoleStudent:
		return NoticeAudienceStudent
	case RoleTeacher:
		return NoticeAudienceTeacher
	default:
		return NoticeAudienceAll
	}
}

// CreateNotice publishes a new notice.
func (c *Client) CreateNotice(ctx context.Context, input NoticeInput) (*Notice, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	var notice Notice
	if err := c.doJSON(ctx, http.MethodPost, "notice/create", nil, input, &notice); err != nil {
		return nil, err
	}
	return &notice, nil
}

// UpdateNotice replaces the content of an existing notice.
func (c *Client) UpdateNotice(ctx context.Context, id string, input NoticeInput) error {
	if id == "" {
		return fmt.Errorf("notice id is required")
	}
	if err := validateStruct(input); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPatch, "notice/update/"+url.PathEscape(id), nil, input, nil)
}

// DeleteNotice removes a notice. The backend exposes deletion as a GET.
func (c *Client) DeleteNotice(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("notice id is required")
	}
	return c.doJSON(ctx, http.MethodGet, "notice/delete/"+url.PathEscape(id), nil, nil, nil)
}
