package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/grd/stat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cedrichaddad/flash-lob/engine"
	"github.com/cedrichaddad/flash-lob/internal/feed"
	"github.com/cedrichaddad/flash-lob/internal/obs"
	"github.com/cedrichaddad/flash-lob/matching"
)

// float64Slice adapts a plain slice to grd/stat's Get/Len interface
// for trade-size and trade-price summary statistics.
type float64Slice []float64

func (s float64Slice) Get(i int) float64 { return s[i] }
func (s float64Slice) Len() int          { return len(s) }

func newReplayCmd() *cobra.Command {
	var (
		count    int
		seed     int64
		capacity int
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a synthetic command stream through the engine and summarize trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.New()

			zapLog, err := obs.NewDevelopmentLogger()
			if err != nil {
				return err
			}
			defer zapLog.Sync()
			log := zapLog.Sugar()

			registry := prometheus.NewRegistry()
			metrics := obs.NewMetrics(registry)

			e := engine.New(uint32(capacity))
			e.WarmUp()

			gen := feed.New(feed.DefaultConfig(), seed)

			var tradePrices, tradeQtys []float64
			var rejects, trades int

			book := e.Matcher().Book

			for i := 0; i < count; i++ {
				cmd := gen.Next()
				events := e.Process(cmd)

				metrics.CommandsProcessed.WithLabelValues(kindLabel(cmd.Kind)).Inc()

				rested := false
				for _, ev := range events {
					switch ev.Kind {
					case matching.EventTrade:
						trades++
						metrics.TradesTotal.Inc()
						tradePrices = append(tradePrices, float64(ev.Price))
						tradeQtys = append(tradeQtys, float64(ev.Qty))
						if !book.ContainsOrder(ev.MakerOrderID) {
							gen.NotifyFilled(ev.MakerOrderID)
						}
					case matching.EventAccepted:
						rested = true
					case matching.EventRejected:
						rejects++
						metrics.RejectsTotal.WithLabelValues(ev.Reason.String()).Inc()
					}
				}

				// A place that never rested (fully filled, rejected, or an
				// IOC/FOK) is not cancelable; drop it from the generator's
				// active pool so later cancels keep targeting real orders.
				if cmd.Kind == matching.Place && !rested {
					gen.NotifyFilled(cmd.OrderID)
				}
			}

			bid, bidOK := e.BestBid()
			if !bidOK {
				bid = 0
			}
			ask, askOK := e.BestAsk()
			if !askOK {
				ask = 0
			}
			metrics.ObserveBest(bid, ask)
			metrics.OrdersResting.Set(float64(e.OrderCount()))

			log.Info("replay complete",
				"run_id", runID.String(),
				"commands", count,
				"trades", trades,
				"rejects", rejects,
				"resting_orders", e.OrderCount(),
			)

			if len(tradePrices) > 0 {
				priceMean := stat.Mean(float64Slice(tradePrices))
				priceStdDev := stat.SdMean(float64Slice(tradePrices), priceMean)
				qtyMean := stat.Mean(float64Slice(tradeQtys))

				fmt.Printf("run %s: %d trades, mean(price)=%.2f sd(price)=%.2f mean(qty)=%.2f\n",
					runID, trades, priceMean, priceStdDev, qtyMean)
			} else {
				fmt.Printf("run %s: no trades occurred\n", runID)
			}

			fmt.Printf("final state hash: %#016x\n", e.StateHash())

			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 10000, "number of commands to replay")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed for reproducible generation")
	cmd.Flags().IntVar(&capacity, "capacity", 200000, "arena capacity (max concurrently resting orders)")

	return cmd
}

func kindLabel(k matching.CommandKind) string {
	switch k {
	case matching.Place:
		return "place"
	case matching.Cancel:
		return "cancel"
	case matching.Modify:
		return "modify"
	default:
		return "unknown"
	}
}
