package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/StevenSuh/feeder/internal/config"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const (
	platformBaseURL = "https://na1.api.riotgames.com"
	regionalBaseURL = "https://americas.api.riotgames.com"
)

// APIError is a non-200 answer from the Riot API. Most of the time this is
// their rate limiter (429); callers treat any of them as a hard failure for
// the enclosing operation.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("riot API error: %d", e.StatusCode)
}

// IsNotFound reports whether err is a Riot 404 (unknown summoner, pruned
// match, etc).
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == fasthttp.StatusNotFound
}

// Client talks to the Riot API. Every request waits on one shared token
// bucket so that aggregate request rate stays under the key's limit no
// matter how wide a refresh cycle fans out.
type Client struct {
	apiKey  string
	client  *fasthttp.Client
	limiter *rate.Limiter
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey: cfg.RiotAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RiotRPS), 1),
	}
}

// GetSummonerByName looks up a summoner profile by display name.
func (c *Client) GetSummonerByName(ctx context.Context, name string) (*Summoner, error) {
	u := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-name/%s", platformBaseURL, url.PathEscape(name))
	return doRequest[Summoner](ctx, c, u)
}

// GetMatchIDs lists match ids for a player starting at startTime (epoch
// seconds), paged by start/count. Riot caps count at 100.
func (c *Client) GetMatchIDs(ctx context.Context, puuid string, startTime int64, start, count int) ([]string, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?startTime=%s&start=%s&count=%s",
		regionalBaseURL, url.PathEscape(puuid),
		strconv.FormatInt(startTime, 10), strconv.Itoa(start), strconv.Itoa(count))
	ids, err := doRequest[[]string](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

// GetMatch fetches full match detail by id.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", regionalBaseURL, url.PathEscape(matchID))
	return doRequest[Match](ctx, c, u)
}

func doRequest[T any](ctx context.Context, client *Client, url string) (*T, error) {
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", client.apiKey)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode()}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
