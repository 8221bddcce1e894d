package benchmark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	ExecutionTimeout = 5 * time.Minute
	StandardRuntime  = time.Minute
	MinimumRuntime   = 10 * time.Second
	MinIterations    = 100

	ten         = 10
	hundred     = ten * ten
	thousand    = ten * hundred
	tenThousand = ten * thousand
)

// TimerManager is a subset of the testing.B tool, used to manage
// setup code.
type TimerManager interface {
	ResetTimer()
	StartTimer()
	StopTimer()
}

type BenchCase func(context.Context, TimerManager, int) error
type BenchFunction func(*testing.B)

func WrapCase(bench BenchCase) BenchFunction {
	name := getName(bench)
	return func(b *testing.B) {
		ctx := context.Background()
		b.ResetTimer()
		err := bench(ctx, b, b.N)
		require.NoError(b, err, "case='%s'", name)
	}
}

func getAllCases() []*CaseDefinition {
	return []*CaseDefinition{
		{
			Bench:   CanaryIncCase,
			Count:   hundred,
			Size:    -1,
			Runtime: MinimumRuntime,
		},
		{
			Bench:   GlobalCanaryIncCase,
			Count:   hundred,
			Size:    -1,
			Runtime: MinimumRuntime,
		},
		{
			Bench:   BSONFlatDocumentEncoding,
			Count:   tenThousand,
			Size:    28180000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONFlatDocumentDecodingLazy,
			Count:   tenThousand,
			Size:    28180000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONFlatDocumentDecoding,
			Count:   tenThousand,
			Size:    28180000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONDeepDocumentEncoding,
			Count:   tenThousand,
			Size:    20870000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONDeepDocumentDecodingLazy,
			Count:   tenThousand,
			Size:    20870000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONDeepDocumentDecoding,
			Count:   tenThousand,
			Size:    20870000,
			Runtime: StandardRuntime,
		},
		// {
		//	Bench:   BSONFullDocumentEncoding,
		//	Count:   tenThousand,
		//	Size:    20850000,
		//	Runtime: StandardRuntime,
		// },
		// {
		//	Bench:   BSONFullDocumentDecodingLazy,
		//	Count:   tenThousand,
		//	Size:    20850000,
		//	Runtime: StandardRuntime,
		// },
		// {
		//	Bench:   BSONFullDocumentDecoding,
		//	Count:   tenThousand,
		//	Size:    20850000,
		//	Runtime: StandardRuntime,
		// },
		{
			Bench:   BSONFlatIteratorDecoding,
			Count:   tenThousand,
			Size:    28180000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONDeepIteratorDecoding,
			Count:   tenThousand,
			Size:    20870000,
			Runtime: StandardRuntime,
		},
		// {
		//	Bench:   BSONFullIteratorDecoding,
		//	Count:   tenThousand,
		//	Size:    20850000,
		//	Runtime: StandardRuntime,
		// },
		{
			Bench:   BSONFlatMapDecoding,
			Count:   tenThousand,
			Size:    28180000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONFlatMapEncoding,
			Count:   tenThousand,
			Size:    28180000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONDeepMapDecoding,
			Count:   tenThousand,
			Size:    20870000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONDeepMapEncoding,
			Count:   tenThousand,
			Size:    20870000,
			Runtime: StandardRuntime,
		},
		// {
		//	Bench:   BSONFullMapDecoding,
		//	Count:   tenThousand,
		//	Size:    20850000,
		//	Runtime: StandardRuntime,
		// },
		// {
		//	Bench:   BSONFullMapEncoding,
		//	Count:   tenThousand,
		//	Size:    20850000,
		//	Runtime: StandardRuntime,
		// },
		{
			Bench:   BSONRecordDecoding,
			Count:   tenThousand,
			Size:    1480000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONRecordEncoding,
			Count:   tenThousand,
			Size:    1480000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONFlatExtJSONEncoding,
			Count:   tenThousand,
			Size:    28180000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONFlatExtJSONDecoding,
			Count:   tenThousand,
			Size:    28180000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONDeepExtJSONEncoding,
			Count:   tenThousand,
			Size:    20870000,
			Runtime: StandardRuntime,
		},
		{
			Bench:   BSONDeepExtJSONDecoding,
			Count:   tenThousand,
			Size:    20870000,
			Runtime: StandardRuntime,
		},
	}
}
