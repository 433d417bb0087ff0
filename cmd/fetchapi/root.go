package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kochabx/fetchapi/config"
	fhttp "github.com/kochabx/fetchapi/core/net/http"
	"github.com/kochabx/fetchapi/log"
)

var exampleUsage = strings.TrimSpace(`
  fetchapi GET users -q id=5
  fetchapi --base-url http://localhost:5000 POST orders --data '{"item":"x"}'
  SERVER_URL=https://api.example.com fetchapi GET /health
`)

type options struct {
	configFile string
	baseURL    string
	logLevel   string
	data       string
	query      []string
	headers    map[string]string
	timeout    time.Duration
	requestID  bool
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "fetchapi METHOD ENDPOINT",
		Short: "Send one JSON request to the configured API and print the response",
		Long: strings.TrimSpace(`
Send one JSON request to an endpoint under the configured base URL.

GET sends the payload as query parameters, POST as the JSON body. Any other
method is sent without a payload. The method is used exactly as given.

The base URL comes from --base-url, SERVER_URL, REACT_APP_SERVER_URL, a .env
file or fetchapi.yaml, in that order of precedence.`),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args[0], args[1])
		},
	}

	root.Flags().StringVar(&o.configFile, "config", "", "path to config file (default: ./"+config.DefaultFile+" when present)")
	root.Flags().StringVar(&o.baseURL, "base-url", "", "base URL every endpoint is appended to")
	root.Flags().StringVar(&o.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.Flags().StringVarP(&o.data, "data", "d", "", "JSON payload")
	root.Flags().StringArrayVarP(&o.query, "query", "q", nil, "payload field as key=value, repeatable")
	root.Flags().StringToStringVarP(&o.headers, "header", "H", nil, "extra request header as name=value")
	root.Flags().BoolVar(&o.requestID, "request-id", false, "send a generated X-Request-Id header")
	root.Flags().DurationVar(&o.timeout, "timeout", 30*time.Second, "request timeout, 0 disables it")

	return root
}

func run(cmd *cobra.Command, o *options, method, endpoint string) error {
	_, settings, err := config.LoadSettings(o.configFile, config.WithFlags(cmd.Flags(), map[string]string{
		"server.url": "base-url",
		"log.level":  "log-level",
	}))
	if err != nil {
		return err
	}

	logger, err := log.NewFromConfig(settings.Log)
	if err != nil {
		return err
	}
	defer logger.Close()
	log.SetGlobalLogger(logger)
	log.Debug().Str("base_url", settings.Server.URL).Str("config", o.configFile).Msg("settings loaded")

	data, err := parsePayload(o.data, o.query)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	dopts := []fhttp.DispatcherOption{
		fhttp.WithHTTPClient(&http.Client{}),
		fhttp.WithStaticHeader(o.headers),
		fhttp.WithLogger(logger.Logger),
	}
	if o.requestID {
		dopts = append(dopts, fhttp.WithRequestID())
	}
	d := fhttp.NewDispatcher(settings.Server.URL, dopts...)

	out, err := d.Dispatch(ctx, endpoint, method, data)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// parsePayload merges the --data document with -q pairs. Pairs require --data to be
// an object, if given; a key repeated across pairs becomes an array.
func parsePayload(raw string, pairs []string) (any, error) {
	var data any
	if raw != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("invalid --data: %w", err)
		}
	}
	if len(pairs) == 0 {
		return data, nil
	}

	obj, ok := data.(map[string]any)
	if data == nil {
		obj, ok = map[string]any{}, true
	}
	if !ok {
		return nil, fmt.Errorf("--query needs --data to be a JSON object, got %T", data)
	}

	for _, pair := range pairs {
		k, v, found := strings.Cut(pair, "=")
		if !found || k == "" {
			return nil, fmt.Errorf("invalid --query %q, want key=value", pair)
		}
		switch cur := obj[k].(type) {
		case nil:
			obj[k] = v
		case []any:
			obj[k] = append(cur, v)
		default:
			obj[k] = []any{cur, v}
		}
	}
	return obj, nil
}
