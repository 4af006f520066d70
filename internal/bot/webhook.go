package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"github.com/smartlime/spam-restrictor-bot/internal/config"
	"github.com/smartlime/spam-restrictor-bot/internal/handler"
	"github.com/smartlime/spam-restrictor-bot/internal/logger"
	"github.com/smartlime/spam-restrictor-bot/internal/metrics"
)

// WebhookServer represents the bot's HTTP server
type WebhookServer struct {
	server   *http.Server
	certFile string
	keyFile  string
}

// Start starts the server, blocking until Shutdown
func (ws *WebhookServer) Start() error {
	logger.Infof("Starting HTTP server on %s", ws.server.Addr)

	var err error
	if ws.certFile != "" && ws.keyFile != "" {
		logger.Infof("Using TLS with cert: %s, key: %s", ws.certFile, ws.keyFile)
		err = ws.server.ListenAndServeTLS(ws.certFile, ws.keyFile)
	} else {
		err = ws.server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (ws *WebhookServer) Shutdown(ctx context.Context) error {
	return ws.server.Shutdown(ctx)
}

// Handler exposes the HTTP handler, for tests.
func (ws *WebhookServer) Handler() http.Handler {
	return ws.server.Handler
}

// NewMonitoringServer serves only the debug and metrics endpoints, for long polling mode.
func NewMonitoringServer(bot *telego.Bot, cfg config.WebhookConfig) *WebhookServer {
	return newServer(newMux(bot, cfg, ""), cfg)
}

// SetupWebhook registers the webhook with Telegram and returns a handler fed by it
func SetupWebhook(ctx context.Context, bot *telego.Bot, cfg config.WebhookConfig, secretToken string) (*th.BotHandler, *WebhookServer, error) {
	if cfg.Endpoint == "" {
		return nil, nil, fmt.Errorf("webhook endpoint is required")
	}

	if (cfg.CertFile == "" || cfg.KeyFile == "") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return nil, nil, fmt.Errorf("HTTPS configuration required: set cert_file and key_file in config or use a HTTPS proxy")
	}

	webhookPath, err := webhookPath(cfg.Endpoint)
	if err != nil {
		return nil, nil, err
	}

	logger.Infof("Setting webhook to: %s", cfg.Endpoint)
	err = bot.SetWebhook(ctx, &telego.SetWebhookParams{
		URL:            cfg.Endpoint,
		AllowedUpdates: allowedUpdates,
		SecretToken:    secretToken,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set webhook: %w", err)
	}

	webhookInfo, err := bot.GetWebhookInfo(ctx)
	if err != nil {
		logger.Warningf("Failed to get webhook info: %v", err)
	} else {
		logger.Infof("Webhook info: URL=%s, HasCustomCert=%v, PendingUpdateCount=%d",
			webhookInfo.URL, webhookInfo.HasCustomCertificate, webhookInfo.PendingUpdateCount)
		if webhookInfo.LastErrorDate > 0 {
			logger.Warningf("Webhook last error: [%d] %s", webhookInfo.LastErrorDate, webhookInfo.LastErrorMessage)
		}
	}

	mux := newMux(bot, cfg, webhookPath)

	updates, err := bot.UpdatesViaWebhook(ctx,
		telego.WebhookHTTPServeMux(mux, webhookPath, secretToken),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get updates channel: %w", err)
	}

	bh, err := th.NewBotHandler(bot, updates)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bot handler: %w", err)
	}

	return bh, newServer(mux, cfg), nil
}

// webhookPath extracts the path Telegram will post to, "/webhook" when the endpoint has none.
func webhookPath(endpoint string) (string, error) {
	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid webhook endpoint: %w", err)
	}
	if parsedURL.Path == "" || parsedURL.Path == "/" {
		logger.Info("No path specified in webhook endpoint, using /webhook")
		return "/webhook", nil
	}
	return parsedURL.Path, nil
}

func newServer(mux *http.ServeMux, cfg config.WebhookConfig) *WebhookServer {
	listenPort := cfg.ListenPort
	if listenPort == "" {
		listenPort = "8443"
	}
	return &WebhookServer{
		server: &http.Server{
			Addr:              "0.0.0.0:" + listenPort,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		certFile: cfg.CertFile,
		keyFile:  cfg.KeyFile,
	}
}

func newMux(bot *telego.Bot, cfg config.WebhookConfig, webhookPath string) *http.ServeMux {
	mux := http.NewServeMux()

	if cfg.MetricsPath != "" {
		mux.Handle(cfg.MetricsPath, metrics.Handler())
	}

	if cfg.DebugPath != "" {
		mux.HandleFunc(cfg.DebugPath, func(w http.ResponseWriter, r *http.Request) {
			logger.Infof("Debug endpoint accessed: %s %s", r.Method, r.URL.Path)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(debugReport(r.Context(), bot, webhookPath)))
		})
	}

	return mux
}

func debugReport(ctx context.Context, bot *telego.Bot, webhookPath string) string {
	var b strings.Builder
	b.WriteString("Bot server is running\n\n")

	if botUser, err := bot.GetMe(ctx); err == nil {
		fmt.Fprintf(&b, "Bot username: %s\n", botUser.Username)
	}

	if webhookPath == "" {
		b.WriteString("Updates: long polling\n")
	} else {
		fmt.Fprintf(&b, "Webhook path: %s\n", webhookPath)
		webhookInfo, err := bot.GetWebhookInfo(ctx)
		if err != nil {
			fmt.Fprintf(&b, "\nError getting webhook info: %v\n", err)
		} else {
			fmt.Fprintf(&b, "\nWebhook Info:\nURL: %s\nPending Updates: %d\n",
				webhookInfo.URL, webhookInfo.PendingUpdateCount)
			if webhookInfo.LastErrorDate > 0 {
				errorTime := time.Unix(int64(webhookInfo.LastErrorDate), 0)
				fmt.Fprintf(&b, "Last Error: [%s] %s\n",
					errorTime.Format("2006-01-02 15:04:05"), webhookInfo.LastErrorMessage)
			}
		}
	}

	stats := handler.GetProcessingStats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("\nProcessing stats:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, stats[k])
	}
	return b.String()
}
