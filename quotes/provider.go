package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jackccrawford/msona/logbuf"
	"github.com/jackccrawford/msona/resilience"
)

// Quote is a display-ready quote.
type Quote struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// DefaultCount is fetched when the caller asks for a negative count.
const DefaultCount = 5

// defaultCatalogTag is the API's catch-all tag, too generic to use as a
// title.
const defaultCatalogTag = "famous quotes"

// categories title untagged quotes.
var categories = []string{
	"Reflection", "Wisdom", "Life", "Inspiration",
	"Growth", "Journey", "Purpose", "Understanding",
}

// Config configures a Provider.
type Config struct {
	// BaseURL of the quotable-compatible API.
	BaseURL string

	// HTTPClient issues the requests. Default: http.DefaultClient.
	HTTPClient *http.Client

	// Log receives diagnostic entries. Optional.
	Log *logbuf.Sink

	// Now stamps fallback quote IDs. Default: time.Now.
	Now func() time.Time

	// Rand drives the fallback shuffle and category pick.
	Rand *rand.Rand

	// RetryDelay spaces the fetch attempts. Default: 1s.
	RetryDelay time.Duration
}

// Provider fetches quotes, falling back to the bundled pool on failure.
type Provider struct {
	config Config
	retry  *resilience.Retry
}

// New creates a provider, applying defaults to the config.
func New(config Config) *Provider {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.quotable.io"
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		config.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	return &Provider{
		config: config,
		retry: resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: config.RetryDelay,
			Strategy:     resilience.BackoffConstant,
		}),
	}
}

// apiQuote is the wire shape of one quote.
type apiQuote struct {
	ID      string   `json:"_id"`
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
}

// Fetch returns count quotes: exactly count when the API responds, and at
// most count from the bundled pool otherwise. It never returns an error:
// when the API call fails after its retry budget, or returns an unusable
// payload, the pool is shuffled and served instead. A count of zero yields
// an empty slice; negative counts are treated as DefaultCount.
func (p *Provider) Fetch(ctx context.Context, count int) []Quote {
	if count == 0 {
		return []Quote{}
	}
	if count < 0 {
		count = DefaultCount
	}
	p.log(logbuf.LevelInfo, "fetching quotes", map[string]any{"count": count})

	var fetched []Quote
	err := p.retry.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		fetched, opErr = p.fetch(ctx, count)
		return opErr
	})
	if err != nil {
		p.log(logbuf.LevelWarn, "quote api failed, using fallback pool", map[string]any{
			"error": err.Error(),
		})
		return p.fallback(count)
	}

	p.log(logbuf.LevelDebug, "fetched quotes", map[string]any{"count": len(fetched)})
	return fetched
}

func (p *Provider) fetch(ctx context.Context, count int) ([]Quote, error) {
	url := fmt.Sprintf("%s/quotes/random?limit=%d", p.config.BaseURL, count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("quote api returned status %d", resp.StatusCode)
	}

	var raw []apiQuote
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode quotes: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("quote api returned no quotes")
	}

	quotes := make([]Quote, 0, len(raw))
	for _, q := range raw {
		if q.ID == "" || q.Content == "" || q.Author == "" {
			return nil, fmt.Errorf("quote api returned malformed quote")
		}
		quotes = append(quotes, Quote{
			ID:      q.ID,
			Title:   p.title(q.Tags),
			Content: q.Content,
			Author:  q.Author,
		})
	}
	return quotes, nil
}

// title derives a display title from the quote's tags: the first tag that is
// not the catch-all, capitalized, or a random category for untagged quotes.
func (p *Provider) title(tags []string) string {
	for _, tag := range tags {
		if tag == "" || strings.EqualFold(tag, defaultCatalogTag) {
			continue
		}
		lower := strings.ToLower(tag)
		first, size := utf8.DecodeRuneInString(lower)
		return string(unicode.ToUpper(first)) + lower[size:]
	}
	return categories[p.config.Rand.IntN(len(categories))]
}

func (p *Provider) fallback(count int) []Quote {
	shuffled := make([]fallbackQuote, len(fallbackPool))
	copy(shuffled, fallbackPool)
	p.config.Rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if count > len(shuffled) {
		count = len(shuffled)
	}

	stamp := p.config.Now().UnixMilli()
	quotes := make([]Quote, count)
	for i, q := range shuffled[:count] {
		quotes[i] = Quote{
			ID:      fmt.Sprintf("fallback-%d-%s", stamp, uuid.NewString()),
			Title:   q.title,
			Content: q.content,
			Author:  q.author,
		}
	}

	p.log(logbuf.LevelInfo, "serving fallback quotes", map[string]any{"count": count})
	return quotes
}

func (p *Provider) log(level logbuf.Level, msg string, data any) {
	if p.config.Log == nil {
		return
	}
	p.config.Log.Log(level, "quotes", msg, data)
}
