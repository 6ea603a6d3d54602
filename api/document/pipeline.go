// Package document fetches one published document: it finds the download link
// on a listing page, learns the document length, and serves the bytes from a
// single-file cache when the stored length matches, downloading otherwise.
//
//	p := document.New(document.Config{
//		Domain:    "http://example.test",
//		URL:       "/documents/",
//		CacheFile: "/home/me/.ex/cache",
//	})
//	res, err := p.Run(ctx)
package document

import (
	"context"

	"github.com/edward-yakop/go-pubdoc/internal/cache"
	"github.com/edward-yakop/go-pubdoc/internal/core"
	"github.com/edward-yakop/go-pubdoc/internal/link"
	"github.com/edward-yakop/go-pubdoc/internal/misc"
)

const (
	DefaultDomain  = "http://mininform.gov.by"
	DefaultURL     = "/documents/respublikanskiy-spisok-ekstremistskikh-materialov/"
	DefaultPattern = link.DefaultPattern
)

var log = misc.NewLogger("Document")

// Config names everything a run reads. Empty Domain, URL and Pattern fall
// back to the package defaults; CacheFile is required.
type Config struct {
	Domain    string
	URL       string
	Pattern   string
	CacheFile string
}

func (c Config) withDefaults() Config {
	if c.Domain == "" {
		c.Domain = DefaultDomain
	}
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Pattern == "" {
		c.Pattern = DefaultPattern
	}
	return c
}

// PageURL is the listing page the document link is scraped from.
func (c Config) PageURL() string {
	c = c.withDefaults()
	return c.Domain + c.URL
}

// Store is the cache slot a pipeline reads and overwrites.
type Store interface {
	ReadIfValid(expected uint64) ([]byte, bool, error)
	Write(data []byte) error
}

// ProgressListener is called for every received chunk with the cumulative
// byte count and the expected total.
type ProgressListener func(received, total uint64)

// StateListener is called on every state transition.
type StateListener func(State)

type Option func(*Pipeline)

// WithDownloader replaces the HTTP client.
func WithDownloader(d core.Downloader) Option {
	return func(p *Pipeline) {
		p.net = d
	}
}

// WithStore replaces the file slot at Config.CacheFile.
func WithStore(s Store) Option {
	return func(p *Pipeline) {
		p.store = s
	}
}

func WithProgress(l ProgressListener) Option {
	return func(p *Pipeline) {
		p.onProgress = l
	}
}

func WithStateListener(l StateListener) Option {
	return func(p *Pipeline) {
		p.onState = l
	}
}

// Result of a successful run.
type Result struct {
	URL       string
	Length    uint64
	Data      []byte
	FromCache bool
}

// Pipeline runs the resolve, probe, cache, fetch sequence once per Run. It
// holds no state between runs besides the cache slot itself.
type Pipeline struct {
	cfg        Config
	net        core.Downloader
	store      Store
	onProgress ProgressListener
	onState    StateListener
	state      State
}

func New(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg: cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.net == nil {
		p.net = core.NewDownloader(core.Options{})
	}
	if p.store == nil {
		p.store = cache.NewSlot(p.cfg.CacheFile)
	}
	return p
}

// State is the state the last Run reached.
func (p *Pipeline) State() State {
	return p.state
}

// Run executes one pass. Every failure ends the run and is returned as a
// *StageError. The cache is written only after a complete download.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.enter(ResolvingLink)
	pageURL := p.cfg.Domain + p.cfg.URL
	page, err := p.net.Page(ctx, pageURL)
	if err != nil {
		return nil, p.fail(err)
	}
	href, err := link.Resolve(page, p.cfg.Pattern)
	if err != nil {
		return nil, p.fail(err)
	}
	docURL := link.Absolute(p.cfg.Domain, href)
	log.Debugf("Resolved document %s from %s.", docURL, pageURL)

	p.enter(ProbingLength)
	length, err := p.net.Probe(ctx, docURL)
	if err != nil {
		return nil, p.fail(err)
	}

	p.enter(CheckingCache)
	data, ok, err := p.store.ReadIfValid(length)
	if err != nil {
		return nil, p.fail(err)
	}
	if ok {
		p.enter(ServingFromCache)
		log.Infof("Serving %s from cache (%d bytes).", docURL, length)
		return &Result{URL: docURL, Length: length, Data: data, FromCache: true}, nil
	}

	p.enter(Fetching)
	log.Infof("Downloading %s (%d bytes).", docURL, length)
	data, err = p.net.Fetch(ctx, docURL, length, p.progress(length))
	if err != nil {
		return nil, p.fail(err)
	}
	if err = p.store.Write(data); err != nil {
		return nil, p.fail(err)
	}

	p.enter(Done)
	return &Result{URL: docURL, Length: length, Data: data}, nil
}

func (p *Pipeline) progress(total uint64) core.ProgressFunc {
	if p.onProgress == nil {
		return nil
	}
	return func(received uint64) {
		p.onProgress(received, total)
	}
}

func (p *Pipeline) enter(s State) {
	log.Debugf("%s -> %s", p.state, s)
	p.state = s
	if p.onState != nil {
		p.onState(s)
	}
}

func (p *Pipeline) fail(err error) error {
	stage := p.state
	p.enter(Failed)
	return &StageError{Stage: stage, Err: err}
}
