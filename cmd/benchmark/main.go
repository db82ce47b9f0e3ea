package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/oms"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

const (
	minPrice = 100.0
	maxPrice = 200.0
	minQty   = 1
	maxQty   = 100
)

var symbols = []string{"ABC", "DEF", "GHI", "JKL"}

func randomSubmission(rnd *rand.Rand) (string, float64, int64, orderbook.Side) {
	side := orderbook.BUY
	if rnd.Intn(2) == 0 {
		side = orderbook.SELL
	}
	price := minPrice + rnd.Float64()*(maxPrice-minPrice)
	qty := int64(rnd.Intn(maxQty-minQty+1) + minQty)

	return symbols[rnd.Intn(len(symbols))], float64(int(price*100)) / 100, qty, side
}

func main() {
	var (
		numOrders int
		poolSize  int
	)
	flag.IntVar(&numOrders, "orders", 1_000_000, "Number of orders to submit")
	flag.IntVar(&poolSize, "pool-size", 4, "Worker pool size")
	flag.Parse()

	books := orderbook.NewOrderBookManager()
	engine, err := oms.NewOMS(books, &oms.Config{PoolSize: poolSize},
		oms.WithLogger(logging.NewLogger(logging.WARN)))
	if err != nil {
		panic(err)
	}
	if err := engine.Start(context.Background()); err != nil {
		panic(err)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		symbol, price, qty, side := randomSubmission(rnd)
		if _, err := engine.Submit(ctx, symbol, price, qty, side); err != nil {
			panic(err)
		}
	}
	submitted := time.Since(start)

	for engine.Stats().Processed+engine.Stats().DeadLettered < int64(numOrders) {
		time.Sleep(5 * time.Millisecond)
	}
	elapsed := time.Since(start)
	_ = engine.Shutdown()

	stats := engine.Stats()
	fmt.Println("--------")
	fmt.Printf("Total Orders      : %d\n", numOrders)
	fmt.Printf("Total Matches     : %d\n", stats.Matches)
	fmt.Printf("Total Matched Qty : %d\n", stats.MatchedQty)
	fmt.Printf("Dead Letters      : %d\n", stats.DeadLettered)
	fmt.Printf("Submit Time       : %s\n", submitted)
	fmt.Printf("Time Taken        : %s\n", elapsed)
	fmt.Printf("Throughput        : %.0f orders/s\n", float64(numOrders)/elapsed.Seconds())
	for _, symbol := range books.Symbols() {
		bids, asks := books.Depth(symbol)
		fmt.Printf("  %s depth        : %d bids / %d asks\n", symbol, bids, asks)
	}
}
