package rates

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
)

//go:embed data/*.yaml
var bundled embed.FS

// DefaultTaxYear is the year of the bundled rate data
const DefaultTaxYear = 2024

// Loader produces a validated rate table
type Loader interface {
	Load(ctx context.Context) (*Table, error)
	Describe() string
}

// Defaults returns the bundled table for DefaultTaxYear
func Defaults() (*Table, error) {
	return EmbeddedLoader{Year: DefaultTaxYear}.Load(context.Background())
}

// MustDefaults is Defaults for callers that cannot proceed without rates (tests, main)
func MustDefaults() *Table {
	t, err := Defaults()
	if err != nil {
		panic("bundled rate table is invalid: " + err.Error())
	}
	return t
}

// EmbeddedLoader reads a bundled rate document compiled into the binary
type EmbeddedLoader struct {
	Year int
}

func (l EmbeddedLoader) Load(_ context.Context) (*Table, error) {
	data, err := bundled.ReadFile(fmt.Sprintf("data/rates_%d.yaml", l.Year))
	if err != nil {
		return nil, fmt.Errorf("no bundled rates for %d: %w", l.Year, err)
	}
	return Parse(data)
}

func (l EmbeddedLoader) Describe() string {
	return fmt.Sprintf("bundled %d rates", l.Year)
}

// FileLoader reads a rate document from disk
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(_ context.Context) (*Table, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", l.Path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return t, nil
}

func (l FileLoader) Describe() string {
	return "file " + l.Path
}

// ChainLoader tries each loader in order and returns the first table that loads.
// The error lists every failure when none succeed.
type ChainLoader []Loader

func (c ChainLoader) Load(ctx context.Context) (*Table, error) {
	var errs []error
	for _, l := range c {
		t, err := l.Load(ctx)
		if err == nil {
			return t, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", l.Describe(), err))
	}
	if len(errs) == 0 {
		return nil, errors.New("no rate loaders configured")
	}
	return nil, errors.Join(errs...)
}

func (c ChainLoader) Describe() string {
	if len(c) == 0 {
		return "empty chain"
	}
	desc := c[0].Describe()
	for _, l := range c[1:] {
		desc += " -> " + l.Describe()
	}
	return desc
}
