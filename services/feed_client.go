package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"survivor-pool-go/logging"
	"survivor-pool-go/models"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// GameFeed is the upstream boundary: schedule/score state and point-in-time
// odds quotes. The second return of GamesForWeek names the adapter that
// recognized the payload.
type GameFeed interface {
	GamesForWeek(ctx context.Context, season, week int) ([]models.Game, string, error)
	QuoteForGame(ctx context.Context, game *models.Game) (*models.OddsQuote, error)
}

// FeedClient talks to the upstream scoreboard and odds endpoints. All calls
// go through a shared rate limiter and a bounded retry with exponential
// backoff; after the last attempt the error surfaces as an upstream failure
// for the batch item.
type FeedClient struct {
	client        *http.Client
	scoreboardURL string
	oddsURL       string
	limiter       *rate.Limiter
	maxAttempts   int
	logger        *logging.Logger
}

// NewFeedClient creates a new feed client
func NewFeedClient(scoreboardURL, oddsURL string, timeout time.Duration, ratePerSecond float64, maxAttempts int) *FeedClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 4
	}
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &FeedClient{
		client:        &http.Client{Timeout: timeout},
		scoreboardURL: scoreboardURL,
		oddsURL:       oddsURL,
		limiter:       rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		maxAttempts:   maxAttempts,
		logger:        logging.WithPrefix("FeedClient"),
	}
}

// GamesForWeek fetches the scoreboard for a season/week and normalizes it.
// The payload shape varies between upstream endpoint generations, so the
// named adapters run in order and the first one that recognizes the shape
// wins.
func (c *FeedClient) GamesForWeek(ctx context.Context, season, week int) ([]models.Game, string, error) {
	url := fmt.Sprintf("%s?dates=%d&seasontype=2&week=%d&limit=1000", c.scoreboardURL, season, week)

	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}

	for _, adapter := range scoreboardAdapters {
		if games, ok := adapter.parse(body); ok {
			c.logger.Debugf("Scoreboard payload recognized by %q adapter: %d games", adapter.name, len(games))
			return filterGames(games, season, week), adapter.name, nil
		}
	}
	return nil, "", models.UpstreamError("scoreboard payload shape not recognized", nil)
}

// QuoteForGame fetches the current odds quote for a game. Missing odds are
// an upstream error the caller treats as a skipped item, not a fatal one.
func (c *FeedClient) QuoteForGame(ctx context.Context, game *models.Game) (*models.OddsQuote, error) {
	url := fmt.Sprintf("%s/%d/competitions/%d/odds", c.oddsURL, game.ID, game.ID)

	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	quote, ok := parseOddsPayload(body, game)
	if !ok {
		return nil, models.UpstreamError(fmt.Sprintf("no odds available for game %d", game.ID), nil)
	}
	return quote, nil
}

// fetch performs one rate-limited GET with bounded retries
func (c *FeedClient) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("feed returned status %d", resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxAttempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		c.logger.Errorf("Feed fetch failed after %d attempts: %v", c.maxAttempts, err)
		return nil, models.UpstreamError("feed fetch failed", err)
	}
	return body, nil
}

func filterGames(games []models.Game, season, week int) []models.Game {
	filtered := make([]models.Game, 0, len(games))
	for _, game := range games {
		if game.Season == season && game.Week == week {
			filtered = append(filtered, game)
		}
	}
	return filtered
}
