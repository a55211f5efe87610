// Package binance streams live klines from Binance into a chart.
package binance

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/jpillora/backoff"
	"github.com/raykavin/lightchart/pkg/core"
	"github.com/raykavin/lightchart/pkg/logger"
)

// KlineFeed subscribes to Binance websocket klines and converts them
// into chart candles. Incomplete klines arrive as current-bar updates,
// matching the chart's update semantics.
type KlineFeed struct {
	client *binance.Client
	log    logger.Logger
}

// NewKlineFeed creates a feed. Credentials are optional; market data
// streams are public.
func NewKlineFeed(log logger.Logger, apiKey, secretKey string) *KlineFeed {
	if log == nil {
		log = logger.Nop()
	}
	return &KlineFeed{
		client: binance.NewClient(apiKey, secretKey),
		log:    log,
	}
}

// CandlesByLimit fetches the most recent historical candles so a chart
// can be warm-started before the live stream attaches.
func (f *KlineFeed) CandlesByLimit(ctx context.Context, pair, period string, limit int) ([]core.Candle, error) {
	data, err := f.client.NewKlinesService().
		Symbol(pair).
		Interval(period).
		Limit(limit + 1). // +1 to discard the last incomplete candle
		Do(ctx)
	if err != nil {
		return nil, err
	}

	candles := make([]core.Candle, 0, len(data))
	for _, d := range data {
		candles = append(candles, convertKlineToCandle(pair, d))
	}

	// Drop the incomplete tail candle.
	if len(candles) > 0 {
		candles = candles[:len(candles)-1]
	}

	return candles, nil
}

// CandlesSubscription subscribes to candle updates for a pair. The
// stream reconnects with backoff until the context is cancelled.
func (f *KlineFeed) CandlesSubscription(ctx context.Context, pair, period string) (chan core.Candle, chan error) {
	candleChan := make(chan core.Candle)
	errChan := make(chan error)
	retry := setupBackoffRetry()

	go func() {
		for {
			done, _, err := binance.WsKlineServe(pair, period, func(event *binance.WsKlineEvent) {
				retry.Reset()
				candleChan <- convertWsKlineToCandle(pair, event.Kline)
			}, func(err error) {
				errChan <- err
			})

			if err != nil {
				errChan <- err
				close(errChan)
				close(candleChan)
				return
			}

			select {
			case <-ctx.Done():
				close(errChan)
				close(candleChan)
				return
			case <-done:
				wait := retry.Duration()
				f.log.WithField("pair", pair).Warnf("kline stream closed, reconnecting in %s", wait)
				time.Sleep(wait)
			}
		}
	}()

	return candleChan, errChan
}

// Attach pumps a pair's subscription into a chart until the context is
// cancelled. Stream errors are logged, not fatal; the subscription
// reconnects underneath.
func (f *KlineFeed) Attach(ctx context.Context, pair, period string, subscriber core.CandleSubscriber) {
	candles, errs := f.CandlesSubscription(ctx, pair, period)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errs:
				if !ok {
					return
				}
				f.log.WithError(err).WithField("pair", pair).Error("kline stream error")
			case candle, ok := <-candles:
				if !ok {
					return
				}
				subscriber.OnCandle(candle)
			}
		}
	}()
}

// setupBackoffRetry creates a backoff with sensible defaults
func setupBackoffRetry() *backoff.Backoff {
	return &backoff.Backoff{
		Min: 100 * time.Millisecond,
		Max: 1 * time.Second,
	}
}

// convertKlineToCandle converts a historical Binance kline to a core.Candle
func convertKlineToCandle(pair string, k *binance.Kline) core.Candle {
	t := time.Unix(0, k.OpenTime*int64(time.Millisecond))
	candle := core.Candle{
		Pair:      pair,
		Time:      t,
		UpdatedAt: t,
		Complete:  true,
	}

	candle.Open, _ = strconv.ParseFloat(k.Open, 64)
	candle.Close, _ = strconv.ParseFloat(k.Close, 64)
	candle.High, _ = strconv.ParseFloat(k.High, 64)
	candle.Low, _ = strconv.ParseFloat(k.Low, 64)
	candle.Volume, _ = strconv.ParseFloat(k.Volume, 64)

	return candle
}

// convertWsKlineToCandle converts a Binance websocket kline to a core.Candle
func convertWsKlineToCandle(pair string, k binance.WsKline) core.Candle {
	t := time.Unix(0, k.StartTime*int64(time.Millisecond))
	candle := core.Candle{
		Pair:      pair,
		Time:      t,
		UpdatedAt: t,
		Complete:  k.IsFinal,
	}

	candle.Open, _ = strconv.ParseFloat(k.Open, 64)
	candle.Close, _ = strconv.ParseFloat(k.Close, 64)
	candle.High, _ = strconv.ParseFloat(k.High, 64)
	candle.Low, _ = strconv.ParseFloat(k.Low, 64)
	candle.Volume, _ = strconv.ParseFloat(k.Volume, 64)

	return candle
}
