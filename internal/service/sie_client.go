package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/config"
	"github.com/go-resty/resty/v2"
)

// SieEligibility is the external provider's verdict on whether a learner may
// receive a certificate for one of its courses.
type SieEligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

// SieClient is the narrow seam in front of the SIE integration. Callers must
// treat any error (network, auth, timeout) as "SIE unavailable" and apply
// their own fallback policy.
type SieClient interface {
	CheckEligibility(ctx context.Context, sieUserID, sieUserToken, sieCourseID string) (*SieEligibility, error)
}

type restySieClient struct {
	client *resty.Client
	cfg    *config.SieConfig
}

func NewSieClient(cfg *config.SieConfig) SieClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("X-Api-Key", cfg.APIKey)
	return &restySieClient{client: client, cfg: cfg}
}

func (c *restySieClient) CheckEligibility(ctx context.Context, sieUserID, sieUserToken, sieCourseID string) (*SieEligibility, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user_id":   sieUserID,
			"course_id": sieCourseID,
		}).
		SetHeader("Authorization", "Bearer "+sieUserToken).
		Get("/v1/certificates/eligibility")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("sie eligibility check returned status %d", resp.StatusCode())
	}

	var result SieEligibility
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("sie eligibility response malformed: %w", err)
	}
	return &result, nil
}
