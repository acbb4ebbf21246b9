// Package coupon checks promo codes against several independently published
// code lists. A code is accepted when it is 8 to 10 characters long and at
// least two lists contain it.
package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	minCodeLength = 8
	maxCodeLength = 10
	requiredLists = 2
)

// ErrNoSources is returned when a load is asked for zero lists.
var ErrNoSources = errors.New("no coupon sources provided")

// Validator holds one bloom filter per loaded code list.
type Validator struct {
	mu       sync.RWMutex
	sets     []*codeSet
	expected uint
	fpRate   float64
	client   *http.Client
}

// codeSet is one loaded list.
type codeSet struct {
	source string
	filter *bloom.BloomFilter
	lines  int
}

type loadResult struct {
	index int
	set   *codeSet
	err   error
}

// Option configures a Validator.
type Option func(*Validator)

// WithExpectedCodes sizes each filter for n codes.
func WithExpectedCodes(n uint) Option {
	return func(v *Validator) {
		if n > 0 {
			v.expected = n
		}
	}
}

// WithFalsePositiveRate sets the per-list false positive target.
func WithFalsePositiveRate(p float64) Option {
	return func(v *Validator) {
		if p > 0 && p < 1 {
			v.fpRate = p
		}
	}
}

// WithHTTPClient replaces the client used by LoadFromURLs.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Validator) {
		if c != nil {
			v.client = c
		}
	}
}

// NewValidator creates a validator with no lists loaded. Until a load
// succeeds every code is invalid.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		expected: 1_000_000,
		fpRate:   0.0001,
		// the published lists are several hundred MB each
		client: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// LoadFromFiles loads plain or gzip-compressed lists from disk concurrently.
// The previous lists are replaced only when every file loads.
func (v *Validator) LoadFromFiles(ctx context.Context, paths []string) error {
	return v.Load(ctx, paths, nil)
}

// LoadFromURLs downloads gzip-compressed lists concurrently. The previous
// lists are replaced only when every download succeeds.
func (v *Validator) LoadFromURLs(ctx context.Context, urls []string) error {
	return v.Load(ctx, nil, urls)
}

// Load reads files and downloads urls concurrently as one set of lists,
// files first. Either may be empty, but not both.
func (v *Validator) Load(ctx context.Context, files, urls []string) error {
	sources := make([]source, 0, len(files)+len(urls))
	for _, path := range files {
		sources = append(sources, source{name: path, fetch: v.loadFromFile})
	}
	for _, url := range urls {
		sources = append(sources, source{name: url, fetch: v.loadFromURL})
	}
	return v.load(ctx, sources)
}

// source is one list and how to read it.
type source struct {
	name  string
	fetch func(context.Context, string) (*codeSet, error)
}

func (v *Validator) load(ctx context.Context, sources []source) error {
	if len(sources) == 0 {
		return ErrNoSources
	}

	results := make(chan loadResult, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(index int, src source) {
			defer wg.Done()
			set, err := src.fetch(ctx, src.name)
			results <- loadResult{index: index, set: set, err: err}
		}(i, src)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	sets := make([]*codeSet, len(sources))
	var errs []error
	for res := range results {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("list %d (%s): %w", res.index+1, sources[res.index].name, res.err))
			continue
		}
		sets[res.index] = res.set
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	v.mu.Lock()
	v.sets = sets
	v.mu.Unlock()
	return nil
}

func (v *Validator) loadFromFile(ctx context.Context, path string) (*codeSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return v.parse(ctx, path, f)
}

func (v *Validator) loadFromURL(ctx context.Context, url string) (*codeSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return v.parse(ctx, url, resp.Body)
}

// parse streams one code per line into a fresh filter. Gzip input is
// detected from its magic bytes.
func (v *Validator) parse(ctx context.Context, source string, r io.Reader) (*codeSet, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		br = bufio.NewReader(gz)
	}

	set := &codeSet{
		source: source,
		filter: bloom.NewWithEstimates(v.expected, v.fpRate),
	}
	scanner := bufio.NewScanner(br)
	for scanner.Scan() {
		if set.lines%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		code := normalize(scanner.Text())
		if code == "" {
			continue
		}
		set.filter.AddString(code)
		set.lines++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return set, nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValid reports whether code passes the length rule and appears in at
// least two loaded lists. Codes are compared case-insensitively after
// trimming surrounding space.
func (v *Validator) IsValid(ctx context.Context, code string) bool {
	code = normalize(code)
	if len(code) < minCodeLength || len(code) > maxCodeLength {
		return false
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	found := 0
	for _, set := range v.sets {
		if ctx.Err() != nil {
			return false
		}
		if set.filter.TestString(code) {
			found++
			if found >= requiredLists {
				return true
			}
		}
	}
	return false
}

// Loaded reports whether any list is loaded.
func (v *Validator) Loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.sets) > 0
}

// GetStats describes the loaded lists.
func (v *Validator) GetStats() map[string]interface{} {
	v.mu.RLock()
	defer v.mu.RUnlock()

	paths := make([]string, len(v.sets))
	sizes := make([]int, len(v.sets))
	total := 0
	for i, set := range v.sets {
		paths[i] = set.source
		sizes[i] = set.lines
		total += set.lines
	}

	return map[string]interface{}{
		"total_files":   len(v.sets),
		"file_paths":    paths,
		"file_sizes":    sizes,
		"total_coupons": total,
	}
}
