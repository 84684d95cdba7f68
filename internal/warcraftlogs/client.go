package warcraftlogs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/raidledger/api/internal/cache"
	"github.com/raidledger/api/internal/config"
	"github.com/raidledger/api/internal/middleware"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenSafetyMargin is subtracted from the reported token lifetime so a
// token is never used right at its expiry.
const tokenSafetyMargin = 60 * time.Second

const cacheTTL = time.Hour

// classNames maps WarcraftLogs numeric class ids (alphabetical order) to
// class names.
var classNames = map[int]string{
	1:  "Death Knight",
	2:  "Druid",
	3:  "Hunter",
	4:  "Mage",
	5:  "Monk",
	6:  "Paladin",
	7:  "Priest",
	8:  "Rogue",
	9:  "Shaman",
	10: "Warlock",
	11: "Warrior",
}

var reportCodePattern = regexp.MustCompile(`/reports/([A-Za-z0-9]{16})`)

// ParseReportCode extracts the 16-character report code from a WarcraftLogs
// report URL.
func ParseReportCode(url string) (string, error) {
	m := reportCodePattern.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("no report code in url: %s", url)
	}
	return m[1], nil
}

type Client struct {
	oauth      clientcredentials.Config
	apiURL     string
	httpClient *http.Client
	cache      *cache.RedisCache

	mu    sync.Mutex
	token *oauth2.Token
}

// NewClient builds a WarcraftLogs API client. redisCache may be nil; the
// client then skips response caching.
func NewClient(cfg *config.Config, redisCache *cache.RedisCache) *Client {
	return &Client{
		oauth: clientcredentials.Config{
			ClientID:     cfg.WarcraftlogsClientID,
			ClientSecret: cfg.WarcraftlogsClientSecret,
			TokenURL:     cfg.WarcraftlogsTokenURL,
		},
		apiURL: cfg.WarcraftlogsAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: redisCache,
	}
}

// bearerToken returns the cached client-credentials token, requesting a new
// one when the cached token is within the safety margin of expiry.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && time.Now().Before(c.token.Expiry.Add(-tokenSafetyMargin)) {
		return c.token.AccessToken, nil
	}

	token, err := c.oauth.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("warcraftlogs oauth: %w", err)
	}
	c.token = token
	return token.AccessToken, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// query posts a GraphQL query and decodes the "data" object into out.
func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	middleware.RecordWarcraftlogsCall(err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("warcraftlogs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("warcraftlogs returned status %d: %s", resp.StatusCode, string(raw))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("warcraftlogs query: %s", envelope.Errors[0].Message)
	}

	return json.Unmarshal(envelope.Data, out)
}

// cachedQuery serves the query from Redis when possible, caching successful
// responses. Cache failures are ignored; the API is the source of truth.
func (c *Client) cachedQuery(ctx context.Context, cacheKey, query string, variables map[string]any, out any) error {
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, cacheKey); err == nil {
			return json.Unmarshal(raw, out)
		}
	}

	if err := c.query(ctx, query, variables, out); err != nil {
		return err
	}

	if c.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			c.cache.Set(ctx, cacheKey, raw, cacheTTL)
		}
	}
	return nil
}

type Report struct {
	Code      string `json:"code"`
	Title     string `json:"title"`
	Owner     string `json:"owner"`
	Zone      string `json:"zone"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

const reportQuery = `query($code: String!) {
  reportData {
    report(code: $code) {
      code
      title
      owner { name }
      zone { name }
      startTime
      endTime
    }
  }
}`

func (c *Client) GetReport(ctx context.Context, code string) (*Report, error) {
	var data struct {
		ReportData struct {
			Report *struct {
				Code  string `json:"code"`
				Title string `json:"title"`
				Owner struct {
					Name string `json:"name"`
				} `json:"owner"`
				Zone struct {
					Name string `json:"name"`
				} `json:"zone"`
				StartTime int64 `json:"startTime"`
				EndTime   int64 `json:"endTime"`
			} `json:"report"`
		} `json:"reportData"`
	}

	err := c.cachedQuery(ctx, cache.ReportKey("report", code), reportQuery, map[string]any{"code": code}, &data)
	if err != nil {
		return nil, err
	}
	if data.ReportData.Report == nil {
		return nil, fmt.Errorf("report not found: %s", code)
	}

	r := data.ReportData.Report
	return &Report{
		Code:      r.Code,
		Title:     r.Title,
		Owner:     r.Owner.Name,
		Zone:      r.Zone.Name,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}, nil
}

type Participant struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

const participantsQuery = `query($code: String!) {
  reportData {
    report(code: $code) {
      masterData {
        actors(type: "Player") {
          id
          name
          subType
          gameID
        }
      }
    }
  }
}`

func (c *Client) GetParticipants(ctx context.Context, code string) ([]Participant, error) {
	var data struct {
		ReportData struct {
			Report *struct {
				MasterData struct {
					Actors []struct {
						ID      int    `json:"id"`
						Name    string `json:"name"`
						SubType string `json:"subType"`
						GameID  int    `json:"gameID"`
					} `json:"actors"`
				} `json:"masterData"`
			} `json:"report"`
		} `json:"reportData"`
	}

	err := c.cachedQuery(ctx, cache.ReportKey("participants", code), participantsQuery, map[string]any{"code": code}, &data)
	if err != nil {
		return nil, err
	}
	if data.ReportData.Report == nil {
		return nil, fmt.Errorf("report not found: %s", code)
	}

	var participants []Participant
	for _, actor := range data.ReportData.Report.MasterData.Actors {
		class := actor.SubType
		if class == "" {
			class = classNames[actor.GameID]
		}
		participants = append(participants, Participant{
			ID:    actor.ID,
			Name:  actor.Name,
			Class: class,
		})
	}
	return participants, nil
}

type Fight struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Difficulty int    `json:"difficulty"`
	Kill       bool   `json:"kill"`
}

const fightsQuery = `query($code: String!) {
  reportData {
    report(code: $code) {
      fights {
        id
        name
        difficulty
        kill
      }
    }
  }
}`

func (c *Client) GetFights(ctx context.Context, code string) ([]Fight, error) {
	var data struct {
		ReportData struct {
			Report *struct {
				Fights []Fight `json:"fights"`
			} `json:"report"`
		} `json:"reportData"`
	}

	err := c.cachedQuery(ctx, cache.ReportKey("fights", code), fightsQuery, map[string]any{"code": code}, &data)
	if err != nil {
		return nil, err
	}
	if data.ReportData.Report == nil {
		return nil, fmt.Errorf("report not found: %s", code)
	}
	return data.ReportData.Report.Fights, nil
}
