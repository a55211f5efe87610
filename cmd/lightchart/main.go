package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/spf13/cobra"

	"github.com/raykavin/lightchart"
	"github.com/raykavin/lightchart/pkg/feed"
	"github.com/raykavin/lightchart/pkg/feed/binance"
	"github.com/raykavin/lightchart/pkg/indicator"
	"github.com/raykavin/lightchart/pkg/logger"
	"github.com/raykavin/lightchart/pkg/logger/zerolog"
	"github.com/raykavin/lightchart/pkg/storage"
	"github.com/raykavin/lightchart/plot"
)

// Command line flags
var (
	csvFile   string
	pair      string
	timeframe string
	port      int
	interval  time.Duration
	dbFile    string
	limit     int
	output    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "lightchart",
		Short:   "Interactive candle chart server and data utilities",
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildServeCmd())
	rootCmd.AddCommand(buildSummaryCmd())
	rootCmd.AddCommand(buildDownloadCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (logger.Logger, error) {
	return zerolog.New("info", "2006-01-02 15:04:05", true, false)
}

func buildServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an interactive chart from a CSV candle file",
		RunE:  runServe,
	}

	serveCmd.Flags().StringVarP(&csvFile, "csv", "c", "", "CSV candle file path")
	serveCmd.Flags().StringVarP(&pair, "pair", "p", "", "Trading pair (e.g. BTCUSDT)")
	serveCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "1d", "Candle timeframe (e.g. 1h)")
	serveCmd.Flags().IntVar(&port, "port", 8080, "HTTP port")
	serveCmd.Flags().DurationVar(&interval, "replay", 0, "Replay candles live at this interval instead of loading at once")
	serveCmd.Flags().StringVar(&dbFile, "db", "", "SQLite file to persist candles to")

	serveCmd.MarkFlagRequired("csv")
	serveCmd.MarkFlagRequired("pair")

	return serveCmd
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}

	csvFeed, err := feed.NewCSVFeed(timeframe, feed.PairFeed{
		Pair:      pair,
		File:      csvFile,
		Timeframe: timeframe,
	})
	if err != nil {
		return err
	}

	engine := lightchart.New(
		lightchart.WithLogger(log),
		lightchart.WithSize(1200, 600),
	)

	webChart, err := plot.NewWebChart(log, engine, plot.WithPort(port))
	if err != nil {
		return err
	}

	candles, err := csvFeed.Candles(pair)
	if err != nil {
		return err
	}

	if dbFile != "" {
		store, err := storage.FromSQLite(dbFile)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, candle := range candles {
			if err := store.SaveCandle(candle); err != nil {
				return err
			}
		}
		log.WithField("db", dbFile).Info("candles persisted")
	}

	if interval > 0 {
		// Register the series up front so indicators apply after warmup
		warmup := len(candles) / 4
		if err := webChart.LoadCandles(pair, candles[:warmup]); err != nil {
			return err
		}
		go func() {
			if err := csvFeed.Stream(cmd.Context(), pair, interval, webChart); err != nil {
				log.WithError(err).Error("replay stream stopped")
			}
		}()
	} else {
		if err := webChart.LoadCandles(pair, candles); err != nil {
			return err
		}
		for _, ind := range []indicator.Indicator{
			indicator.SMA(9, "#ff9800"),
			indicator.EMA(21, "#2196f3"),
		} {
			if err := engine.ApplyIndicator(pair, ind); err != nil {
				return err
			}
		}
	}

	server := plot.NewChartServer(webChart, plot.NewStandardHTTPServer(), log)
	return server.Start()
}

func buildSummaryCmd() *cobra.Command {
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print statistics and a return histogram for a CSV candle file",
		RunE:  runSummary,
	}

	summaryCmd.Flags().StringVarP(&csvFile, "csv", "c", "", "CSV candle file path")
	summaryCmd.Flags().StringVarP(&pair, "pair", "p", "", "Trading pair (e.g. BTCUSDT)")
	summaryCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "1d", "Candle timeframe (e.g. 1h)")

	summaryCmd.MarkFlagRequired("csv")
	summaryCmd.MarkFlagRequired("pair")

	return summaryCmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	csvFeed, err := feed.NewCSVFeed(timeframe, feed.PairFeed{
		Pair:      pair,
		File:      csvFile,
		Timeframe: timeframe,
	})
	if err != nil {
		return err
	}

	candles, err := csvFeed.Candles(pair)
	if err != nil {
		return err
	}

	fmt.Print(feed.Summary(pair, candles))

	returns := feed.Returns(candles)
	if len(returns) > 0 {
		fmt.Println("------ RETURN DISTRIBUTION (%) ------")
		hist := histogram.Hist(15, returns)
		if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(10)); err != nil {
			return err
		}
		fmt.Println()
	}

	return nil
}

func buildDownloadCmd() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download historical candles from Binance to a CSV file",
		RunE:  runDownload,
	}

	downloadCmd.Flags().StringVarP(&pair, "pair", "p", "", "Trading pair (e.g. BTCUSDT)")
	downloadCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "1h", "Candle timeframe (e.g. 1h)")
	downloadCmd.Flags().IntVarP(&limit, "limit", "l", 500, "Number of candles to download")
	downloadCmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (e.g. ./btc.csv)")

	downloadCmd.MarkFlagRequired("pair")
	downloadCmd.MarkFlagRequired("output")

	return downloadCmd
}

func runDownload(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}

	klineFeed := binance.NewKlineFeed(log, "", "")

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	candles, err := klineFeed.CandlesByLimit(ctx, pair, timeframe, limit)
	if err != nil {
		return err
	}

	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"time", "open", "close", "low", "high", "volume"}); err != nil {
		return err
	}
	for _, candle := range candles {
		if err := writer.Write(candle.ToSlice(8)); err != nil {
			return err
		}
	}
	writer.Flush()

	log.WithField("candles", len(candles)).WithField("file", output).Info("download complete")
	return writer.Error()
}
