package main

import (
	"fmt"

	"github.com/spf13/viper"

	"casewizard/internal/wizard/apiclient"
	"casewizard/internal/wizard/draft"
)

// deps bundles what every subcommand needs: the local draft store and
// an API client that reads the stored access token on each request.
type deps struct {
	store  *draft.Store
	client *apiclient.Client
}

func newDeps() (*deps, error) {
	store, err := draft.NewStore(viper.GetString("data_dir"))
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	client := apiclient.New(viper.GetString("api_url"), func() string {
		cred, ok, err := store.Credential()
		if err != nil || !ok {
			return ""
		}
		return cred.AccessToken
	})
	return &deps{store: store, client: client}, nil
}
