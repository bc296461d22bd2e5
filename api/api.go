// Package api provides a client for the GeniusT recommendation API.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gtplayer-cli/gtplayer/auth"
	"github.com/gtplayer-cli/gtplayer/constant"
	"github.com/gtplayer-cli/gtplayer/key"
	"github.com/gtplayer-cli/gtplayer/log"
	"github.com/gtplayer-cli/gtplayer/network"
	"github.com/gtplayer-cli/gtplayer/util"
	"github.com/spf13/viper"
)

// envelope is the common response wrapper every API endpoint uses.
type envelope struct {
	Response json.RawMessage `json:"response"`
}

// request performs one GET against the API root with bounded retries.
// Transient failures and non-200 statuses are retried with a fixed delay;
// the caller sees an error only after the attempts are exhausted.
func request(path string, params url.Values) (json.RawMessage, error) {
	root := viper.GetString(key.APIRoot)
	endpoint := strings.TrimSuffix(root, "/") + "/" + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	retries := viper.GetInt(key.APIRetries)
	delay := viper.GetDuration(key.APIRetryDelay)

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			log.Infof("Retrying %s (attempt %d of %d)", path, attempt+1, retries+1)
			time.Sleep(delay)
		}

		payload, err := fetch(endpoint)
		if err != nil {
			lastErr = err
			continue
		}

		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			log.Error(err)
			return nil, err
		}
		return env.Response, nil
	}

	return nil, lastErr
}

// fetch performs one GET against an arbitrary URL and returns the raw body.
// Used directly for preview and full-track audio, which live outside the
// API root and carry no response envelope.
func fetch(rawURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		log.Error(err)
		return nil, err
	}

	req.Header.Set("Application", constant.UserAgent)
	if token, err := auth.GetToken(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{
		Transport: network.Client.Transport,
		Timeout:   viper.GetDuration(key.APITimeout),
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("invalid response code %d", resp.StatusCode)
		log.Error(err)
		return nil, err
	}

	return io.ReadAll(resp.Body)
}
