package stockgenius

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultLLMTimeout   = 2 * time.Minute
	defaultFetchWorkers = 4
)

// Options controls Core initialization.
type Options struct {
	Logger  *slog.Logger
	Market  MarketDataFetcher
	LLM     LLMProvider
	Sampler NormalSampler

	FetchTimeout time.Duration
	LLMTimeout   time.Duration
	FetchWorkers int

	// JournalPath enables the advice journal when set.
	JournalPath string
}

// Core wires the selector, simulator, comparison builder and advisor to their collaborators.
// Apart from the sampler and the optional journal it holds no state between calls.
type Core struct {
	logger  *slog.Logger
	market  MarketDataFetcher
	llm     LLMProvider
	sampler NormalSampler

	fetchTimeout time.Duration
	llmTimeout   time.Duration
	fetchWorkers int

	db          *sql.DB
	journalPath string
	now         func() time.Time
}

// Open initializes a Core with an unseeded sampler and no collaborators.
func Open() (*Core, error) {
	return OpenWithOptions(Options{})
}

// OpenWithOptions initializes a Core using the provided options.
func OpenWithOptions(opts Options) (*Core, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sampler := opts.Sampler
	if sampler == nil {
		sampler = NewSampler()
	}

	c := &Core{
		logger:       logger,
		market:       opts.Market,
		llm:          opts.LLM,
		sampler:      sampler,
		fetchTimeout: defaultDuration(opts.FetchTimeout, defaultFetchTimeout),
		llmTimeout:   defaultDuration(opts.LLMTimeout, defaultLLMTimeout),
		fetchWorkers: defaultInt(opts.FetchWorkers, defaultFetchWorkers),
		now:          time.Now,
	}

	if opts.JournalPath != "" {
		db, cleanPath, err := openJournal(opts.JournalPath, logger)
		if err != nil {
			return nil, err
		}
		c.db = db
		c.journalPath = cleanPath
	}
	return c, nil
}

func openJournal(path string, logger *slog.Logger) (*sql.DB, string, error) {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, "", fmt.Errorf("open journal: %w", err)
	}
	// SQLite performs best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}

	if err := initJournal(db); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("init journal: %w", err)
	}
	return db, cleanPath, nil
}

// Close releases journal resources.
func (c *Core) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Logger returns the core logger.
func (c *Core) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// JournalPath returns the advice journal path, empty when the journal is disabled.
func (c *Core) JournalPath() string {
	return c.journalPath
}

// JournalEnabled reports whether advice runs are recorded.
func (c *Core) JournalEnabled() bool {
	return c.db != nil
}

// MarketName returns the configured market-data provider name.
func (c *Core) MarketName() string {
	if c.market == nil {
		return ""
	}
	return c.market.Name()
}

// LLMName returns the configured LLM provider name.
func (c *Core) LLMName() string {
	if c.llm == nil {
		return ""
	}
	return c.llm.Name()
}

func (c *Core) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

func defaultDuration(v time.Duration, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}

func defaultInt(v int, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
