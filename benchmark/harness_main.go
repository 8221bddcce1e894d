// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"encoding/json"
	"os"
)

func runBSONCases() []*BenchResult {
	cases := getAllCases()

	results := []*BenchResult{}
	for _, bc := range cases {
		results = append(results, bc.Run(context.Background()))
	}

	return results
}

// BSONBenchmarkMain runs the complete benchmark suite and writes the
// results, in the evergreen perf format, to perf.json in the current
// directory. The return value is the process exit code.
func BSONBenchmarkMain() int {
	var hasErrors bool
	output := []interface{}{}
	for _, res := range runBSONCases() {
		if res.HasErrors() {
			hasErrors = true
		}

		evg, err := res.EvergreenPerfFormat()
		if err != nil {
			hasErrors = true
			continue
		}

		output = append(output, evg...)
	}

	evgOutput, err := json.MarshalIndent(output, "", "   ")
	if err != nil {
		return 1
	}
	evgOutput = append(evgOutput, []byte("\n")...)

	if err = os.WriteFile("perf.json", evgOutput, 0644); err != nil {
		return 1
	}

	if hasErrors {
		return 1
	}

	return 0
}
