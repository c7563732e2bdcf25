// Package dogapi は外部犬種API（dogapi.dog v2）のクライアントを提供する。
// リトライは行わず、1回の呼び出し結果をそのまま返す。
package dogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/furcode/internal/model"
	"github.com/hitoshi/furcode/internal/security"
)

const (
	breedsPath = "/breeds"
	userAgent  = "furcode/1.0"

	// maxResponseSize は1レスポンスあたりの最大読み取りバイト数。
	maxResponseSize = 5 << 20
	// maxPages はページネーションを辿る上限。
	maxPages = 100
)

// メトリクスのendpointラベル
const (
	endpointBreedByID  = "breed_by_id"
	endpointBreedsPage = "breeds_page"
)

// UpstreamRecorder は外部API呼び出しの結果を記録する。
type UpstreamRecorder interface {
	RecordUpstreamCall(endpoint, outcome string, duration time.Duration)
}

// Client は犬種APIのクライアント。
// ページネーションのnextリンクが設定されたベースURLと異なるホストを指す場合は、
// SSRFガードで検証したうえでsafeurlクライアントを使って取得する。
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	safeClient *http.Client
	validator  security.URLValidator
	recorder   UpstreamRecorder
	logger     *slog.Logger
}

// Option はClientの任意設定。
type Option func(*Client)

// WithSSRFGuard はベースURL外のリンクの検証器と、その取得に使うクライアントを設定する。
func WithSSRFGuard(validator security.URLValidator, safeClient *http.Client) Option {
	return func(c *Client) {
		c.validator = validator
		c.safeClient = safeClient
	}
}

// WithRecorder は外部API呼び出しのメトリクス記録先を設定する。
func WithRecorder(r UpstreamRecorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordUpstreamCall(string, string, time.Duration) {}

// NewClient はClientを生成する。baseURLは末尾の/を含まない形に正規化する。
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid dog API base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("dog API base URL must be absolute: %q", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{
		baseURL:    u,
		httpClient: httpClient,
		recorder:   nopRecorder{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.validator == nil {
		guard := security.NewSSRFGuard()
		c.validator = guard
		c.safeClient = guard.NewSafeClient(httpClient.Timeout)
	}
	return c, nil
}

// breedResource はJSON:API形式の犬種リソース。
type breedResource struct {
	ID         string `json:"id"`
	Attributes struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Life        struct {
			Min int `json:"min"`
			Max int `json:"max"`
		} `json:"life"`
		Hypoallergenic bool `json:"hypoallergenic"`
	} `json:"attributes"`
}

func (b *breedResource) toModel() *model.DogBreed {
	return &model.DogBreed{
		ID:             b.ID,
		Name:           b.Attributes.Name,
		Description:    b.Attributes.Description,
		LifeMin:        b.Attributes.Life.Min,
		LifeMax:        b.Attributes.Life.Max,
		Hypoallergenic: b.Attributes.Hypoallergenic,
	}
}

type breedByIDResponse struct {
	Data *breedResource `json:"data"`
}

type breedsPageResponse struct {
	Data  []breedResource `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

// FetchBreedByID はIDを指定して犬種を1件取得する。
// 上流が404を返した場合、またはdataが空の場合はBREED_NOT_FOUNDを返す。
func (c *Client) FetchBreedByID(ctx context.Context, id string) (*model.DogBreed, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.NewBreedNotFoundError(id)
	}

	target := c.baseURL.String() + breedsPath + "/" + url.PathEscape(id)
	var resp breedByIDResponse
	if err := c.getJSON(ctx, c.httpClient, endpointBreedByID, target, id, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, model.NewBreedNotFoundError(id)
	}
	return resp.Data.toModel(), nil
}

// FetchAllBreedNames は全ページを辿って犬種名の一覧を返す。
func (c *Client) FetchAllBreedNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.eachPage(ctx, func(page []breedResource) bool {
		for i := range page {
			names = append(names, page[i].Attributes.Name)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// FetchBreedByName は名前（大文字小文字を区別しない）で犬種を探す。
// 全ページに見つからなければBREED_NOT_FOUNDを返す。
func (c *Client) FetchBreedByName(ctx context.Context, name string) (*model.DogBreed, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewBreedNotFoundError(name)
	}

	var found *model.DogBreed
	err := c.eachPage(ctx, func(page []breedResource) bool {
		for i := range page {
			if strings.EqualFold(page[i].Attributes.Name, name) {
				found = page[i].toModel()
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, model.NewBreedNotFoundError(name)
	}
	return found, nil
}

// eachPage は一覧の各ページに対してfnを呼ぶ。fnがfalseを返すと打ち切る。
func (c *Client) eachPage(ctx context.Context, fn func(page []breedResource) bool) error {
	next := c.baseURL.String() + breedsPath
	client := c.httpClient
	seen := make(map[string]struct{})

	for pages := 0; next != ""; pages++ {
		if pages >= maxPages {
			return model.NewUpstreamFailureError(fmt.Sprintf("pagination exceeded %d pages", maxPages))
		}
		if _, dup := seen[next]; dup {
			return model.NewUpstreamFailureError("pagination loop detected")
		}
		seen[next] = struct{}{}

		var resp breedsPageResponse
		if err := c.getJSON(ctx, client, endpointBreedsPage, next, "", &resp); err != nil {
			return err
		}
		if resp.Data == nil {
			return model.NewUpstreamFailureError("breed list response has no data")
		}
		if !fn(resp.Data) {
			return nil
		}

		var err error
		next, client, err = c.resolveNext(resp.Links.Next)
		if err != nil {
			return model.NewUpstreamFailureError("refused to follow pagination link")
		}
	}
	return nil
}

// resolveNext はnextリンクを絶対URLに解決し、取得に使うクライアントを選ぶ。
// ベースURLと同じホストなら通常のクライアントを、異なるホストならSSRF検証後にsafeurlクライアントを返す。
func (c *Client) resolveNext(raw string) (string, *http.Client, error) {
	if raw == "" {
		return "", nil, nil
	}
	ref, err := url.Parse(raw)
	if err != nil {
		c.logger.Warn("invalid pagination link", slog.String("next", raw), slog.String("error", err.Error()))
		return "", nil, err
	}
	abs := c.baseURL.ResolveReference(ref)
	if strings.EqualFold(abs.Host, c.baseURL.Host) && abs.Scheme == c.baseURL.Scheme {
		return abs.String(), c.httpClient, nil
	}
	if err := c.validator.ValidateURL(abs.String()); err != nil {
		c.logger.Warn("pagination link rejected by SSRF guard",
			slog.String("next", abs.String()),
			slog.String("error", err.Error()),
		)
		return "", nil, err
	}
	return abs.String(), c.safeClient, nil
}

// getJSON は1回のGETを行いJSONをデコードする。
// 404はBREED_NOT_FOUND、それ以外の失敗はUPSTREAM_FAILUREに変換する。
func (c *Client) getJSON(ctx context.Context, client *http.Client, endpoint, target, ref string, out any) error {
	start := time.Now()
	outcome := "error"
	defer func() {
		c.recorder.RecordUpstreamCall(endpoint, outcome, time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.NewUpstreamFailureError("failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			outcome = "canceled"
			return err
		}
		c.logger.Error("dog API request failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return model.NewUpstreamFailureError("request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		outcome = "not_found"
		if ref == "" {
			ref = target
		}
		return model.NewBreedNotFoundError(ref)
	case resp.StatusCode != http.StatusOK:
		c.logger.Error("dog API returned error status",
			slog.String("endpoint", endpoint),
			slog.Int("http_status", resp.StatusCode),
		)
		return model.NewUpstreamFailureError(fmt.Sprintf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.logger.Error("failed to read dog API response", slog.String("error", err.Error()))
		return model.NewUpstreamFailureError("failed to read response")
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("failed to decode dog API response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return model.NewUpstreamFailureError("malformed response")
	}

	outcome = "ok"
	return nil
}
