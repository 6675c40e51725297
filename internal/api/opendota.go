package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"draft-assistant/internal/config"
	"draft-assistant/internal/constants"
	"draft-assistant/internal/domain"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

type OpenDotaClient struct {
	baseURL   string
	apiKey    string
	client    *fasthttp.Client
	limiter   *rate.Limiter
	retries   uint64
	retryBase time.Duration
	logger    zerolog.Logger

	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	RemainingMinute int       `json:"remaining_minute"`
	RemainingDay    int       `json:"remaining_day"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StatusError is a non-200 answer from the API.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d on %s", e.Code, e.Path)
}

func (e *StatusError) Retryable() bool {
	return e.Code == fasthttp.StatusTooManyRequests || e.Code >= 500
}

func NewOpenDotaClient(cfg *config.Config, logger zerolog.Logger) *OpenDotaClient {
	limit := rate.Inf
	if cfg.MatchupRequestInterval > 0 {
		limit = rate.Every(cfg.MatchupRequestInterval)
	}

	return &OpenDotaClient{
		baseURL: cfg.OpenDotaBaseURL,
		apiKey:  cfg.OpenDotaAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter:   rate.NewLimiter(limit, 1),
		retries:   uint64(cfg.FetchRetries),
		retryBase: constants.RetryBaseDelay,
		logger:    logger,
		rateLimit: RateLimitInfo{
			RemainingMinute: 60,
			UpdatedAt:       time.Now(),
		},
	}
}

func (c *OpenDotaClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *OpenDotaClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if v := string(resp.Header.Peek("X-Rate-Limit-Remaining-Minute")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.rateLimit.RemainingMinute = n
		}
	}
	if v := string(resp.Header.Peek("X-Rate-Limit-Remaining-Day")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.rateLimit.RemainingDay = n
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func (c *OpenDotaClient) GetHeroStats(ctx context.Context) ([]HeroStatsEntry, error) {
	res, err := doRequest[[]HeroStatsEntry](ctx, c, "/heroStats")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (c *OpenDotaClient) GetHeroMatchups(ctx context.Context, heroID int) ([]MatchupEntry, error) {
	res, err := doRequest[[]MatchupEntry](ctx, c, fmt.Sprintf("/heroes/%d/matchups", heroID))
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (c *OpenDotaClient) GetPlayerHeroes(ctx context.Context, accountID string) ([]PlayerHeroEntry, error) {
	res, err := doRequest[[]PlayerHeroEntry](ctx, c, fmt.Sprintf("/players/%s/heroes", accountID))
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (c *OpenDotaClient) GetPlayerProfile(ctx context.Context, accountID string) (*PlayerResponse, error) {
	return doRequest[PlayerResponse](ctx, c, fmt.Sprintf("/players/%s", accountID))
}

// GetHeroAggregates returns bracket-summed totals for the given heroes only.
func (c *OpenDotaClient) GetHeroAggregates(ctx context.Context, heroIDs []int) ([]domain.HeroAggregate, error) {
	entries, err := c.GetHeroStats(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[int]struct{}, len(heroIDs))
	for _, id := range heroIDs {
		wanted[id] = struct{}{}
	}

	aggregates := make([]domain.HeroAggregate, 0, len(heroIDs))
	for _, e := range entries {
		if _, ok := wanted[e.ID]; !ok {
			continue
		}
		picks, wins := e.Totals()
		aggregates = append(aggregates, domain.HeroAggregate{
			HeroID:     e.ID,
			SourceName: e.LocalizedName,
			TotalPicks: picks,
			TotalWins:  wins,
		})
	}
	return aggregates, nil
}

// GetMatchupMatrix fetches one matchup row per hero, paced by the limiter.
// A hero whose request fails gets an empty row; the build only fails when
// the context ends or every request failed.
func (c *OpenDotaClient) GetMatchupMatrix(ctx context.Context, heroIDs []int) (domain.MatchupMatrix, error) {
	wanted := make(map[int]struct{}, len(heroIDs))
	for _, id := range heroIDs {
		wanted[id] = struct{}{}
	}

	matrix := make(domain.MatchupMatrix, len(heroIDs))
	var failed int
	var lastErr error

	for _, heroID := range heroIDs {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("matchup matrix aborted: %w", err)
		}

		row := make(map[int]domain.Matchup)
		entries, err := c.GetHeroMatchups(ctx, heroID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("matchup matrix aborted: %w", ctx.Err())
			}
			failed++
			lastErr = err
			c.logger.Warn().Err(err).Int("hero_id", heroID).Msg("failed to fetch hero matchups")
			matrix[heroID] = row
			continue
		}

		for _, m := range entries {
			if _, ok := wanted[m.HeroID]; !ok || m.HeroID == heroID {
				continue
			}
			row[m.HeroID] = domain.Matchup{Wins: m.Wins, GamesPlayed: m.GamesPlayed}
		}
		matrix[heroID] = row
	}

	if len(heroIDs) > 0 && failed == len(heroIDs) {
		return nil, fmt.Errorf("all %d matchup requests failed: %w", failed, lastErr)
	}
	if failed > 0 {
		c.logger.Warn().Int("failed", failed).Int("total", len(heroIDs)).Msg("matchup matrix built with empty rows")
	}
	return matrix, nil
}

func doRequest[T any](ctx context.Context, client *OpenDotaClient, path string) (*T, error) {
	var result *T
	backoff := retry.WithMaxRetries(client.retries, retry.NewExponential(client.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := doOnce[T](ctx, client, path)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && !statusErr.Retryable() {
				return err
			}
			client.logger.Debug().Err(err).Str("path", path).Msg("retrying request")
			return retry.RetryableError(err)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func doOnce[T any](ctx context.Context, client *OpenDotaClient, path string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	if client.apiKey != "" {
		req.URI().QueryArgs().Add("api_key", client.apiKey)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.DoTimeout(req, resp, constants.ExternalAPITimeout); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode(), Path: path}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &result, nil
}

type HeroStatsEntry struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LocalizedName string `json:"localized_name"`
	PrimaryAttr   string `json:"primary_attr"`

	Pick1 int `json:"1_pick"`
	Win1  int `json:"1_win"`
	Pick2 int `json:"2_pick"`
	Win2  int `json:"2_win"`
	Pick3 int `json:"3_pick"`
	Win3  int `json:"3_win"`
	Pick4 int `json:"4_pick"`
	Win4  int `json:"4_win"`
	Pick5 int `json:"5_pick"`
	Win5  int `json:"5_win"`
	Pick6 int `json:"6_pick"`
	Win6  int `json:"6_win"`
	Pick7 int `json:"7_pick"`
	Win7  int `json:"7_win"`
	Pick8 int `json:"8_pick"`
	Win8  int `json:"8_win"`
}

// Totals sums picks and wins over all rank brackets (Herald through Immortal).
func (e HeroStatsEntry) Totals() (picks, wins int) {
	picks = e.Pick1 + e.Pick2 + e.Pick3 + e.Pick4 + e.Pick5 + e.Pick6 + e.Pick7 + e.Pick8
	wins = e.Win1 + e.Win2 + e.Win3 + e.Win4 + e.Win5 + e.Win6 + e.Win7 + e.Win8
	return picks, wins
}

type MatchupEntry struct {
	HeroID      int `json:"hero_id"`
	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
}

type PlayerHeroEntry struct {
	HeroID     FlexInt `json:"hero_id"`
	LastPlayed int64   `json:"last_played"`
	Games      int     `json:"games"`
	Win        int     `json:"win"`
}

type PlayerResponse struct {
	Profile struct {
		AccountID   int64  `json:"account_id"`
		PersonaName string `json:"personaname"`
		Avatar      string `json:"avatar"`
		AvatarFull  string `json:"avatarfull"`
	} `json:"profile"`
}

// FlexInt accepts both 42 and "42"; the players endpoint has returned either.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q: %w", s, err)
		}
		*f = FlexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}
