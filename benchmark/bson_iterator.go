package benchmark

import (
	"context"
	"errors"
)

func bsonIteratorDecoding(ctx context.Context, tm TimerManager, iters, numKeys int, dataSet string) error {
	doc, err := loadSourceDocument(dataSet)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		keys, err := countKeys(doc)
		if err != nil {
			return err
		}
		if keys != numKeys {
			return errors.New("iterator parsing error")
		}
	}

	return nil
}

func BSONFlatIteratorDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonIteratorDecoding(ctx, tm, iters, flatDocumentKeys, flatBSONData)
}

func BSONDeepIteratorDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonIteratorDecoding(ctx, tm, iters, deepDocumentKeys, deepBSONData)
}

func BSONFullIteratorDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonIteratorDecoding(ctx, tm, iters, fullDocumentKeys, fullBSONData)
}
