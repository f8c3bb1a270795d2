// Package main provides the redditview CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gauthierbraillon/redditview/internal/config"
	"github.com/gauthierbraillon/redditview/internal/display"
	"github.com/gauthierbraillon/redditview/internal/feed"
	"github.com/gauthierbraillon/redditview/internal/logging"
	"github.com/gauthierbraillon/redditview/internal/reddit"
	"github.com/gauthierbraillon/redditview/internal/tui"
	"github.com/gauthierbraillon/redditview/pkg/browser"
	"github.com/gauthierbraillon/redditview/pkg/oauth"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for redditview CLI.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "redditview",
		Short:   "Browse the media posts of a subreddit",
		Long:    "Redditview lists the image, gallery and video posts of a subreddit, page by page.",
		Version: currentVersion(),
	}

	rootCmd.SetVersionTemplate("redditview version {{.Version}}\n")

	rootCmd.AddCommand(newFeedCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// env is what every command needs from the environment.
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.EnvLogLevel, err)
	}
	return &env{cfg: cfg, log: log}, nil
}

// newClient wires the listing client from configuration. A token source is
// attached when credentials are configured or a token was stored by 'auth'.
func (e *env) newClient() *reddit.Client {
	opts := []reddit.ClientOption{
		reddit.WithHTTPClient(&http.Client{Timeout: e.cfg.Timeout}),
		reddit.WithUserAgent(e.cfg.UserAgent),
		reddit.WithLogger(e.log.Named("reddit")),
	}
	if e.cfg.APIURL != "" {
		opts = append(opts, reddit.WithBaseURL(e.cfg.APIURL))
	}
	if e.cfg.RateLimit > 0 {
		opts = append(opts, reddit.WithLimiter(rate.NewLimiter(rate.Limit(e.cfg.RateLimit), 1)))
	}
	if ts := e.tokenSource(); ts != nil {
		opts = append(opts, reddit.WithTokenSource(ts))
	}
	return reddit.NewClient(opts...)
}

func (e *env) tokenSource() *oauth.TokenSource {
	storage := oauth.NewTokenStorage(e.cfg.ConfigDir)
	if e.cfg.HasCredentials() {
		return oauth.NewTokenSource(oauth.NewFlow(e.oauthConfig()), storage)
	}
	if _, err := storage.Load(oauth.TokenName); err == nil {
		return oauth.NewTokenSource(nil, storage)
	}
	return nil
}

func (e *env) oauthConfig() oauth.Config {
	oc := oauth.RedditAppConfig(e.cfg.ClientID, e.cfg.ClientSecret)
	if e.cfg.APIURL != "" {
		oc.TokenURL = strings.TrimRight(e.cfg.APIURL, "/") + "/api/v1/access_token"
	}
	if e.cfg.UserAgent != "" {
		oc.UserAgent = e.cfg.UserAgent
	}
	return oc
}

// newFeedCmd creates the feed subcommand.
func newFeedCmd() *cobra.Command {
	var category string
	var pages int
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "feed <subreddit>",
		Short: "Print the media posts of a subreddit",
		Long:  "Fetch one or more pages of a subreddit listing and print the media posts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := reddit.NewQuery(args[0], category)
			if err != nil {
				return err
			}
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1, got %d", pages)
			}
			cmd.SilenceUsage = true

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			pageSize := e.cfg.PageSize
			if cmd.Flags().Changed("limit") {
				pageSize = limit
			}
			if pageSize < 1 || pageSize > reddit.MaxPageSize {
				return fmt.Errorf("--limit must be between 1 and %d, got %d", reddit.MaxPageSize, pageSize)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			ctrl := feed.New(e.newClient(), feed.WithPageSize(pageSize), feed.WithLogger(e.log.Named("feed")))
			defer ctrl.Close()

			formatter := display.NewTerminalFormatter()

			if err := ctrl.SubmitQuery(ctx, q); err != nil {
				if reddit.KindOf(err).Soft() {
					fmt.Fprint(cmd.OutOrStdout(), formatter.FormatError(err))
					return nil
				}
				return err
			}

			var loadErr error
			for i := 1; i < pages && ctrl.Snapshot().CanLoadMore(); i++ {
				if loadErr = ctrl.LoadMore(ctx); loadErr != nil {
					break
				}
			}

			posts := ctrl.Snapshot().Posts
			if asJSON {
				data, err := formatter.FormatJSON(posts)
				if err != nil {
					return err
				}
				_, _ = cmd.OutOrStdout().Write(data)
			} else {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatFeed(posts))
			}

			if loadErr != nil && ctx.Err() == nil {
				return fmt.Errorf("stopped after %d posts: %w", len(posts), loadErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(reddit.CategoryHot), "Ranking: hot, new, top, rising or best")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "Number of listing pages to fetch")
	cmd.Flags().IntVarP(&limit, "limit", "l", reddit.DefaultPageSize, "Posts requested per page (1-100)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print posts as JSON")

	return cmd
}

// newBrowseCmd creates the interactive browser subcommand.
func newBrowseCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "browse [subreddit]",
		Short: "Browse a subreddit in the terminal",
		Long:  "Open an interactive, infinitely scrolling view of a subreddit's media posts.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var initial reddit.Query
			if len(args) == 1 {
				q, err := reddit.NewQuery(args[0], category)
				if err != nil {
					return err
				}
				initial = q
			}
			cmd.SilenceUsage = true

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			updates := tui.NewUpdates()
			ctrl := feed.New(e.newClient(),
				feed.WithPageSize(e.cfg.PageSize),
				feed.WithLogger(e.log.Named("feed")),
				feed.WithObserver(updates.Publish),
			)
			defer ctrl.Close()

			model := tui.New(ctx, ctrl, updates, browser.Open, initial)
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("browser failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(reddit.CategoryHot), "Ranking: hot, new, top, rising or best")

	return cmd
}

// newAuthCmd creates the auth subcommand.
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain an application-only Reddit token",
		Long:  "Request an application-only OAuth token with REDDITVIEW_CLIENT_ID and REDDITVIEW_CLIENT_SECRET and store it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			if !e.cfg.HasCredentials() {
				return fmt.Errorf("missing credentials: set %s and %s environment variables", config.EnvClientID, config.EnvClientSecret)
			}
			cmd.SilenceUsage = true

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Timeout)
			defer cancel()

			fmt.Fprintf(cmd.OutOrStdout(), "Requesting token...\n")
			flow := oauth.NewFlow(e.oauthConfig(), oauth.WithHTTPClient(&http.Client{Timeout: e.cfg.Timeout}))
			token, err := flow.ClientCredentials(ctx)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			storage := oauth.NewTokenStorage(e.cfg.ConfigDir)
			if err := storage.Save(oauth.TokenName, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully authenticated with Reddit!\n")
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to: %s\n", storage.Path(oauth.TokenName))
			return nil
		},
	}

	return cmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration",
		Long:  "Print the settings redditview resolved from the environment and .env.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, entry := range cfg.Entries() {
				fmt.Fprintf(w, "%s\t%s\n", entry.Key, entry.Value)
			}
			return w.Flush()
		},
	}

	return cmd
}
