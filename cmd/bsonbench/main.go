package main

import (
	"os"

	"github.com/mongodb/mongo-swift-driver-sub005/benchmark"
)

func main() { os.Exit(benchmark.BSONBenchmarkMain()) }
