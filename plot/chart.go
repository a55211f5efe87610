// Package plot serves an interactive browser view of a chart engine.
// The engine owns every coordinate computation; this package ships its
// candle history and visible-range updates to the page over websocket.
package plot

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/raykavin/lightchart"
	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/logger"
)

// Static assets embedded in the binary
var (
	//go:embed assets
	staticFiles embed.FS
)

// Candle is the JSON shape shipped to the browser
type Candle struct {
	Time     int64   `json:"time"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
	Complete bool    `json:"complete"`
}

// WebChart exposes a chart engine over HTTP and websocket
type WebChart struct {
	sync.Mutex
	port          int
	debug         bool
	engine        *lightchart.Chart
	candles       map[string][]Candle
	scriptContent string
	indexHTML     *template.Template
	lastUpdate    time.Time
	log           logger.Logger
	wsManager     *WebSocketManager
}

// Option defines a function type for configuring a WebChart instance
type Option func(*WebChart)

// WithPort sets the HTTP server port
func WithPort(port int) Option {
	return func(chart *WebChart) {
		chart.port = port
	}
}

// WithDebug enables debug mode (disables minification)
func WithDebug() Option {
	return func(chart *WebChart) {
		chart.debug = true
	}
}

// NewWebChart creates a web view over an existing chart engine
func NewWebChart(log logger.Logger, engine *lightchart.Chart, options ...Option) (*WebChart, error) {
	if log == nil {
		log = logger.Nop()
	}

	chart := &WebChart{
		port:    8080,
		log:     log,
		engine:  engine,
		candles: make(map[string][]Candle),
	}

	// Apply all options
	for _, option := range options {
		option(chart)
	}

	// Parse chart HTML template
	var err error
	chart.indexHTML, err = template.ParseFS(staticFiles, "assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse chart template: %w", err)
	}

	// Read and transpile chart JavaScript
	chartJS, err := staticFiles.ReadFile("assets/js/main.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read main.js: %w", err)
	}

	transpileChartJS := api.Transform(string(chartJS), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2015,
		MinifySyntax:      !chart.debug,
		MinifyIdentifiers: !chart.debug,
		MinifyWhitespace:  !chart.debug,
	})

	if len(transpileChartJS.Errors) > 0 {
		return nil, fmt.Errorf("chart script failed with: %v", transpileChartJS.Errors)
	}

	chart.scriptContent = string(transpileChartJS.Code)

	// Create WebSocket manager
	chart.wsManager = NewWebSocketManager(log, chart)

	// Ship visible-range changes to connected pages
	engine.SubscribeVisibleRangeChange(func(r core.VisibleRange) {
		chart.wsManager.BroadcastVisibleRange(r)
	})

	return chart, nil
}

// Engine returns the underlying chart engine
func (c *WebChart) Engine() *lightchart.Chart {
	return c.engine
}

// GetPort returns the configured port
func (c *WebChart) GetPort() int {
	return c.port
}

// GetWSManager returns the WebSocket manager
func (c *WebChart) GetWSManager() *WebSocketManager {
	return c.wsManager
}

// OnCandle routes a streaming candle into the engine and broadcasts it
// to connected pages. Implements core.CandleSubscriber.
func (c *WebChart) OnCandle(candle core.Candle) {
	c.engine.OnCandle(candle)

	webCandle := Candle{
		Time:     candle.Time.Unix(),
		Open:     candle.Open,
		High:     candle.High,
		Low:      candle.Low,
		Close:    candle.Close,
		Volume:   candle.Volume,
		Complete: candle.Complete,
	}

	c.Lock()
	history := c.candles[candle.Pair]
	if n := len(history); n > 0 && history[n-1].Time == webCandle.Time {
		history[n-1] = webCandle
	} else {
		history = append(history, webCandle)
	}
	c.candles[candle.Pair] = history
	c.lastUpdate = time.Now()
	c.Unlock()

	c.wsManager.BroadcastCandle(webCandle, candle.Pair)
}

// LoadCandles seeds a pair's history in bulk, both into the engine and
// the web view
func (c *WebChart) LoadCandles(pair string, candles []core.Candle) error {
	if err := c.engine.AddCandleSeries(pair, ""); err != nil {
		return err
	}
	if err := c.engine.SetCandles(pair, candles); err != nil {
		return err
	}

	history := make([]Candle, len(candles))
	for i, candle := range candles {
		history[i] = Candle{
			Time:     candle.Time.Unix(),
			Open:     candle.Open,
			High:     candle.High,
			Low:      candle.Low,
			Close:    candle.Close,
			Volume:   candle.Volume,
			Complete: candle.Complete,
		}
	}

	c.Lock()
	c.candles[pair] = history
	c.lastUpdate = time.Now()
	c.Unlock()

	return nil
}

// GetFirstAvailablePair returns the first available pair or empty string
func (c *WebChart) GetFirstAvailablePair() string {
	c.Lock()
	defer c.Unlock()

	for p := range c.candles {
		return p
	}

	return ""
}

// candlesByPair returns a copy of the pair's history. Callers must not
// hold the chart lock.
func (c *WebChart) candlesByPair(pair string) []Candle {
	c.Lock()
	defer c.Unlock()

	history := c.candles[pair]
	out := make([]Candle, len(history))
	copy(out, history)
	return out
}

// RegisterHandlers registers all necessary handlers on the HTTP server
func (c *WebChart) RegisterHandlers(server HTTPServer) {
	// Register static file handler
	server.RegisterFileServer("/assets/", http.FS(staticFiles))

	// Register API handlers
	server.RegisterHandler("/health", c.handleHealth)
	server.RegisterHandler("/chart.js", c.handleScript)
	server.RegisterHandler("/history", c.handleCandleHistory)
	server.RegisterHandler("/crosshair", c.handleCrosshair)
	server.RegisterHandler("/ws", c.wsManager.HandleWebSocket)
	server.RegisterHandler("/", c.handleIndex)
}
