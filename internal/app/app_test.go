package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/config"
	"github.com/rgehrsitz/taxcalc/internal/rates"
	"github.com/rgehrsitz/taxcalc/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// writeRates writes the bundled table under a different tax year
func writeRates(t *testing.T, path string, year int) {
	t.Helper()
	table := rates.MustDefaults()
	table.TaxYear = year
	data, err := yaml.Marshal(table)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func baseConfig() *config.Config {
	return &config.Config{Engine: calculation.DefaultPolicy()}
}

func TestNew_BundledDefaults(t *testing.T) {
	a, err := New(context.Background(), baseConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, rates.DefaultTaxYear, a.Engine.Rates.Current().TaxYear)
	assert.Equal(t, "bundled 2024 rates", a.Engine.Rates.LoaderDescription())
	assert.Nil(t, a.Engine.Remote)
	assert.Equal(t, calculation.DefaultPolicy(), a.Engine.Policy)
	assert.NotNil(t, a.Logger)
}

func TestNew_RateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	writeRates(t, path, 2025)

	cfg := baseConfig()
	cfg.Rates.File = path
	cfg.Engine.HighBurdenRatio = 0.4

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 2025, a.Engine.Rates.Current().TaxYear)
	assert.Equal(t, "file "+path, a.Engine.Rates.LoaderDescription())
	assert.Equal(t, 0.4, a.Engine.Policy.HighBurdenRatio)
}

func TestNew_MissingRateFileFallsThrough(t *testing.T) {
	cfg := baseConfig()
	cfg.Rates.File = filepath.Join(t.TempDir(), "missing.yaml")

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, rates.DefaultTaxYear, a.Engine.Rates.Current().TaxYear)
}

func TestNew_RemoteEnabled(t *testing.T) {
	cfg := baseConfig()
	cfg.Remote = remote.Config{
		Enabled:         true,
		TaxAuthorityURL: "http://127.0.0.1:1/tax",
		SalesTaxURL:     "http://127.0.0.1:1/sales",
		Timeout:         time.Second,
	}

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, a.Engine.Remote)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestNewRateLoader(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.RatesConfig
		want string
	}{
		{"bundled only", config.RatesConfig{}, "bundled 2024 rates"},
		{"file", config.RatesConfig{File: "/tmp/r.yaml"}, "file /tmp/r.yaml -> bundled 2024 rates"},
		{
			"url and file",
			config.RatesConfig{URL: "https://rates.example.com/2024", File: "/tmp/r.yaml"},
			"remote https://rates.example.com/2024 -> file /tmp/r.yaml -> bundled 2024 rates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRateLoader(tt.cfg, nil).Describe())
		})
	}
}

func TestNewRefreshLoader(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.RatesConfig
		want string
	}{
		{"bundled only", config.RatesConfig{}, "bundled 2024 rates"},
		{"file", config.RatesConfig{File: "/tmp/r.yaml"}, "file /tmp/r.yaml"},
		{"url wins over file", config.RatesConfig{URL: "https://rates.example.com/2024", File: "/tmp/r.yaml"}, "remote https://rates.example.com/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRefreshLoader(tt.cfg, nil).Describe())
		})
	}
}

func TestRefresh_OutageKeepsRemoteTable(t *testing.T) {
	table := rates.MustDefaults()
	table.TaxYear = 2025
	data, err := yaml.Marshal(table)
	require.NoError(t, err)

	var down atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer server.Close()

	cfg := baseConfig()
	cfg.Rates.URL = server.URL
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 2025, a.Engine.Rates.Current().TaxYear)

	down.Store(true)
	current, err := a.Engine.Rates.Refresh(context.Background())
	require.Error(t, err, "Refresh during an outage must report the failure")
	assert.Equal(t, 2025, current.TaxYear)
	assert.Equal(t, 2025, a.Engine.Rates.Current().TaxYear, "Outage must not fall back to bundled rates")
}

func TestNew_UnreachableURLStartsFromBundled(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	cfg := baseConfig()
	cfg.Rates.URL = server.URL
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, rates.DefaultTaxYear, a.Engine.Rates.Current().TaxYear)
	assert.Equal(t, "remote "+server.URL, a.Engine.Rates.LoaderDescription())
}

func TestRefreshLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	writeRates(t, path, 2025)

	cfg := baseConfig()
	cfg.Rates.File = path
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 2025, a.Engine.Rates.Current().TaxYear)

	writeRates(t, path, 2026)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.RefreshLoop(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return a.Engine.Rates.Current().TaxYear == 2026
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh loop did not stop")
	}
}

func TestRefreshLoop_DisabledReturnsImmediately(t *testing.T) {
	a, err := New(context.Background(), baseConfig(), nil)
	require.NoError(t, err)
	a.RefreshLoop(context.Background(), 0)
}
