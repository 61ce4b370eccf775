package remote

import (
	"context"

	"github.com/rgehrsitz/taxcalc/internal/rates"
)

// TableLoader fetches a rate document over HTTP. It satisfies rates.Loader.
type TableLoader struct {
	URL    string
	Client *HTTPClient
}

var _ rates.Loader = TableLoader{}

// NewTableLoader creates a loader for url using client, or a default client when nil
func NewTableLoader(url string, client *HTTPClient) TableLoader {
	if client == nil {
		client = NewHTTPClient(WithDefaultHeader("Accept", "application/yaml, application/json"))
	}
	return TableLoader{URL: url, Client: client}
}

func (l TableLoader) Load(ctx context.Context) (*rates.Table, error) {
	data, err := l.Client.Get(ctx, l.URL)
	if err != nil {
		return nil, err
	}
	return rates.Parse(data)
}

func (l TableLoader) Describe() string {
	return "remote " + l.URL
}
